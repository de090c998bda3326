package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fszn/contracts-service/internal/audit"
	"github.com/fszn/contracts-service/internal/excel"
	"github.com/fszn/contracts-service/internal/http/middleware"
	"github.com/fszn/contracts-service/internal/model"
	"github.com/fszn/contracts-service/internal/pdf"
	"github.com/fszn/contracts-service/internal/service"
)

type Handler struct {
	contracts *service.Contracts
	records   *service.Records
	files     *service.Files
	excel     *excel.Generator
	pdf       *pdf.Generator
	log       zerolog.Logger
}

func NewHandler(
	contracts *service.Contracts,
	records *service.Records,
	files *service.Files,
	excelGen *excel.Generator,
	pdfGen *pdf.Generator,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		contracts: contracts,
		records:   records,
		files:     files,
		excel:     excelGen,
		pdf:       pdfGen,
		log:       log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/contracts", h.createContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.DELETE("/contracts/:id", h.deleteContract)
	protected.GET("/contracts/:id/overview", h.contractOverview)
	protected.GET("/contracts/:id/finance", h.contractFinance)
	protected.PUT("/contracts/:id/planned-delivery", h.setPlannedDelivery)

	protected.GET("/contracts/:id/sales", h.getSales)
	protected.PUT("/contracts/:id/sales", h.upsertSales)
	protected.DELETE("/contracts/:id/sales", h.deleteSales)

	protected.POST("/contracts/:id/tasks", h.createTask)
	protected.GET("/contracts/:id/tasks", h.listTasks)
	protected.PATCH("/contracts/:id/tasks/:recordID", h.updateTask)
	protected.DELETE("/contracts/:id/tasks/:recordID", h.deleteTask)

	protected.POST("/contracts/:id/procurements", h.createProcurement)
	protected.GET("/contracts/:id/procurements", h.listProcurements)
	protected.DELETE("/contracts/:id/procurements/:recordID", h.deleteProcurement)

	protected.POST("/contracts/:id/acceptances", h.createAcceptance)
	protected.GET("/contracts/:id/acceptances", h.listAcceptances)
	protected.DELETE("/contracts/:id/acceptances/:recordID", h.deleteAcceptance)

	protected.POST("/contracts/:id/payments", h.createPayment)
	protected.GET("/contracts/:id/payments", h.listPayments)
	protected.DELETE("/contracts/:id/payments/:recordID", h.deletePayment)

	protected.POST("/contracts/:id/invoices", h.createInvoice)
	protected.GET("/contracts/:id/invoices", h.listInvoices)
	protected.DELETE("/contracts/:id/invoices/:recordID", h.deleteInvoice)

	protected.POST("/contracts/:id/refunds", h.createRefund)
	protected.GET("/contracts/:id/refunds", h.listRefunds)
	protected.DELETE("/contracts/:id/refunds/:recordID", h.deleteRefund)

	protected.POST("/contracts/:id/feedbacks", h.createFeedback)
	protected.GET("/contracts/:id/feedbacks", h.listFeedbacks)
	protected.PUT("/contracts/:id/feedbacks/:recordID/resolution", h.setFeedbackResolution)
	protected.DELETE("/contracts/:id/feedbacks/:recordID", h.deleteFeedback)

	protected.POST("/contracts/:id/leaders", h.addLeader)
	protected.GET("/contracts/:id/leaders", h.listLeaders)
	protected.DELETE("/contracts/:id/leaders/:recordID", h.removeLeader)

	protected.POST("/contracts/:id/files", h.uploadFile)
	protected.GET("/contracts/:id/files", h.listFiles)
	protected.GET("/contracts/:id/files/:recordID/download", h.downloadFile)
	protected.DELETE("/contracts/:id/files/:recordID", h.deleteFile)

	protected.GET("/contracts/:id/operation-logs", h.contractOperationLogs)
	protected.GET("/operation-logs", h.listOperationLogs)

	protected.GET("/contracts/:id/export/excel", h.exportContractExcel)
	protected.GET("/contracts/:id/export/pdf", h.exportContractPDF)
}

// ------------------------------------------------------------ contracts

type createContractRequest struct {
	Company        string `json:"company" binding:"required"`
	ProjectCode    string `json:"project_code" binding:"required"`
	ContractNumber string `json:"contract_number" binding:"required"`
	Name           string `json:"name" binding:"required"`
	ClientManager  string `json:"client_manager"`
	ClientContact  string `json:"client_contact"`
	OurManager     string `json:"our_manager"`
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contracts.Create(c.Request.Context(), principal, service.CreateContractInput{
		CompanyName:    req.Company,
		ProjectCode:    req.ProjectCode,
		ContractNumber: req.ContractNumber,
		Name:           req.Name,
		ClientManager:  req.ClientManager,
		ClientContact:  req.ClientContact,
		OurManager:     req.OurManager,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

func (h *Handler) listContracts(c *gin.Context) {
	filter := service.ListFilter{
		ContractFilter: service.ContractFilter{
			CompanyContains:        c.Query("company"),
			ProjectCodeContains:    c.Query("project_code"),
			ContractNumberContains: c.Query("contract_number"),
			SalesPersonContains:    c.Query("sales_person"),
			LeaderContains:         c.Query("leader"),
			Order:                  c.Query("order"),
		},
		Status: model.ContractStatus(c.Query("status")),
	}

	summaries, err := h.contracts.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": summaries})
}

func (h *Handler) getContract(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	contract, err := h.contracts.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) deleteContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	if err := h.contracts.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) contractOverview(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	overview, err := h.contracts.Overview(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *Handler) contractFinance(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	summary, err := h.contracts.Finance(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type plannedDeliveryRequest struct {
	Date string `json:"date"` // empty clears the date
}

func (h *Handler) setPlannedDelivery(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var req plannedDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var date *time.Time
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		date = &parsed
	}

	if err := h.contracts.SetPlannedDelivery(c.Request.Context(), principal, id, date); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"planned_delivery_date": req.Date})
}

// ---------------------------------------------------------------- sales

type upsertSalesRequest struct {
	QuoteAmount   string `json:"quote_amount"`
	QuoteDate     string `json:"quote_date"`
	DealDate      string `json:"deal_date"`
	SalesPersonID *int64 `json:"sales_person_id"`
	Remarks       string `json:"remarks"`
}

func (h *Handler) upsertSales(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var req upsertSalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quoteDate, err := parseOptionalDate(req.QuoteDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quote_date"})
		return
	}
	dealDate, err := parseOptionalDate(req.DealDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deal_date"})
		return
	}

	info, err := h.contracts.UpsertSales(c.Request.Context(), principal, id, service.UpsertSalesInput{
		QuoteAmount:   req.QuoteAmount,
		QuoteDate:     quoteDate,
		DealDate:      dealDate,
		SalesPersonID: req.SalesPersonID,
		Remarks:       req.Remarks,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) getSales(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	info, err := h.contracts.Sales(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": info})
}

func (h *Handler) deleteSales(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	if err := h.contracts.DeleteSales(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ------------------------------------------------------- operation logs

func (h *Handler) listOperationLogs(c *gin.Context) {
	filter := audit.Filter{
		ActionContains: c.Query("action"),
		TargetType:     c.Query("target_type"),
	}
	if raw := c.Query("target_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_id"})
			return
		}
		filter.TargetID = &id
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	logs, err := h.contracts.OperationLogs(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *Handler) contractOperationLogs(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	logs, err := h.contracts.ContractOperationLogs(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// -------------------------------------------------------------- helpers

func (h *Handler) paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateProjectCode):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parsed, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
