package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fszn/contracts-service/internal/http/middleware"
	"github.com/fszn/contracts-service/internal/model"
	"github.com/fszn/contracts-service/internal/service"
)

// recordIDs pulls the contract id and child record id off the path.
func (h *Handler) recordIDs(c *gin.Context) (contractID, recordID int64, ok bool) {
	contractID, ok = h.paramID(c, "id")
	if !ok {
		return 0, 0, false
	}
	recordID, ok = h.paramID(c, "recordID")
	if !ok {
		return 0, 0, false
	}
	return contractID, recordID, true
}

func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return principal, ok
}

// ---------------------------------------------------------------- tasks

type createTaskRequest struct {
	Title        string `json:"title" binding:"required"`
	DepartmentID *int64 `json:"department_id" binding:"required"`
	PersonID     *int64 `json:"person_id"`
	StartDate    string `json:"start_date" binding:"required"`
	EndDate      string `json:"end_date"`
	Status       string `json:"status"`
	Remarks      string `json:"remarks"`
}

func (h *Handler) createTask(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	task, err := h.records.CreateTask(c.Request.Context(), principal, contractID, service.CreateTaskInput{
		Title:        req.Title,
		DepartmentID: req.DepartmentID,
		PersonID:     req.PersonID,
		StartDate:    startDate,
		EndDate:      endDate,
		Status:       req.Status,
		Remarks:      req.Remarks,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

type updateTaskRequest struct {
	Title        *string `json:"title"`
	DepartmentID *int64  `json:"department_id"`
	PersonID     *int64  `json:"person_id"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	Status       *string `json:"status"`
	Remarks      *string `json:"remarks"`
}

func (h *Handler) updateTask(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, taskID, ok := h.recordIDs(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.UpdateTaskInput{
		Title:        req.Title,
		DepartmentID: req.DepartmentID,
		PersonID:     req.PersonID,
		Status:       req.Status,
		Remarks:      req.Remarks,
	}
	var err error
	if in.StartDate, err = parseDatePtr(req.StartDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	if in.EndDate, err = parseDatePtr(req.EndDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	task, err := h.records.UpdateTask(c.Request.Context(), principal, contractID, taskID, in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) deleteTask(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, taskID, ok := h.recordIDs(c)
	if !ok {
		return
	}
	if _, err := h.records.DeleteTask(c.Request.Context(), principal, contractID, taskID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listTasks(c *gin.Context) {
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	tasks, err := h.records.ListTasks(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// ---------------------------------------------------------- procurement

type createProcurementRequest struct {
	ItemName     string `json:"item_name" binding:"required"`
	Quantity     int    `json:"quantity"`
	Unit         string `json:"unit"`
	ExpectedDate string `json:"expected_date"`
	Status       string `json:"status"`
	PersonID     *int64 `json:"person_id"`
	Remarks      string `json:"remarks"`
}

func (h *Handler) createProcurement(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var req createProcurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	expectedDate, err := parseOptionalDate(req.ExpectedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expected_date"})
		return
	}

	item, err := h.records.CreateProcurement(c.Request.Context(), principal, contractID, service.CreateProcurementInput{
		ItemName:     req.ItemName,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		ExpectedDate: expectedDate,
		Status:       req.Status,
		PersonID:     req.PersonID,
		Remarks:      req.Remarks,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) deleteProcurement(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, itemID, ok := h.recordIDs(c)
	if !ok {
		return
	}
	if _, err := h.records.DeleteProcurement(c.Request.Context(), principal, contractID, itemID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listProcurements(c *gin.Context) {
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.records.ListProcurements(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"procurements": items})
}

// ----------------------------------------------------------- acceptance

type createAcceptanceRequest struct {
	StageName string `json:"stage_name" binding:"required"`
	PersonID  *int64 `json:"person_id"`
	Date      string `json:"date" binding:"required"`
	Status    string `json:"status"`
	Remarks   string `json:"remarks"`
}

func (h *Handler) createAcceptance(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var req createAcceptanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	acceptance, err := h.records.CreateAcceptance(c.Request.Context(), principal, contractID, service.CreateAcceptanceInput{
		StageName: req.StageName,
		PersonID:  req.PersonID,
		Date:      date,
		Status:    req.Status,
		Remarks:   req.Remarks,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, acceptance)
}

func (h *Handler) deleteAcceptance(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, acceptanceID, ok := h.recordIDs(c)
	if !ok {
		return
	}
	if _, err := h.records.DeleteAcceptance(c.Request.Context(), principal, contractID, acceptanceID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listAcceptances(c *gin.Context) {
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	acceptances, err := h.records.ListAcceptances(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acceptances": acceptances})
}

// ------------------------------------------------------------- payments

type createPaymentRequest struct {
	Amount  string `json:"amount" binding:"required"`
	Date    string `json:"date" binding:"required"`
	Method  string `json:"method"`
	Remarks string `json:"remarks"`
}

func (h *Handler) createPayment(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	payment, err := h.records.CreatePayment(c.Request.Context(), principal, contractID, service.CreatePaymentInput{
		Amount:  req.Amount,
		Date:    date,
		Method:  req.Method,
		Remarks: req.Remarks,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *Handler) deletePayment(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, paymentID, ok := h.recordIDs(c)
	if !ok {
		return
	}
	if _, err := h.records.DeletePayment(c.Request.Context(), principal, contractID, paymentID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listPayments(c *gin.Context) {
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	payments, err := h.records.ListPayments(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// ------------------------------------------------------------- invoices

type createInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number"`
	Amount        string `json:"amount" binding:"required"`
	Date          string `json:"date" binding:"required"`
	Remarks       string `json:"remarks"`
}

func (h *Handler) createInvoice(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	invoice, err := h.records.CreateInvoice(c.Request.Context(), principal, contractID, service.CreateInvoiceInput{
		InvoiceNumber: req.InvoiceNumber,
		Amount:        req.Amount,
		Date:          date,
		Remarks:       req.Remarks,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (h *Handler) deleteInvoice(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, invoiceID, ok := h.recordIDs(c)
	if !ok {
		return
	}
	if _, err := h.records.DeleteInvoice(c.Request.Context(), principal, contractID, invoiceID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listInvoices(c *gin.Context) {
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	invoices, err := h.records.ListInvoices(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

// -------------------------------------------------------------- refunds

type createRefundRequest struct {
	Amount  string `json:"amount" binding:"required"`
	Date    string `json:"date" binding:"required"`
	Reason  string `json:"reason"`
	Remarks string `json:"remarks"`
}

func (h *Handler) createRefund(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var req createRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	refund, err := h.records.CreateRefund(c.Request.Context(), principal, contractID, service.CreateRefundInput{
		Amount:  req.Amount,
		Date:    date,
		Reason:  req.Reason,
		Remarks: req.Remarks,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, refund)
}

func (h *Handler) deleteRefund(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, refundID, ok := h.recordIDs(c)
	if !ok {
		return
	}
	if _, err := h.records.DeleteRefund(c.Request.Context(), principal, contractID, refundID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listRefunds(c *gin.Context) {
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	refunds, err := h.records.ListRefunds(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refunds": refunds})
}

// ------------------------------------------------------------- feedback

type createFeedbackRequest struct {
	Content   string `json:"content" binding:"required"`
	HandlerID *int64 `json:"handler_id"`
	Result    string `json:"result"`
}

func (h *Handler) createFeedback(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var req createFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	feedback, err := h.records.CreateFeedback(c.Request.Context(), principal, contractID, service.CreateFeedbackInput{
		Content:   req.Content,
		HandlerID: req.HandlerID,
		Result:    req.Result,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, feedback)
}

type feedbackResolutionRequest struct {
	Resolved *bool `json:"resolved" binding:"required"`
}

func (h *Handler) setFeedbackResolution(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, feedbackID, ok := h.recordIDs(c)
	if !ok {
		return
	}

	var req feedbackResolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	feedback, err := h.records.SetFeedbackResolved(c.Request.Context(), principal, contractID, feedbackID, *req.Resolved)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (h *Handler) deleteFeedback(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, feedbackID, ok := h.recordIDs(c)
	if !ok {
		return
	}
	if _, err := h.records.DeleteFeedback(c.Request.Context(), principal, contractID, feedbackID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listFeedbacks(c *gin.Context) {
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	feedbacks, err := h.records.ListFeedbacks(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedbacks": feedbacks})
}

// -------------------------------------------------------------- leaders

type addLeaderRequest struct {
	DepartmentID int64 `json:"department_id" binding:"required"`
	PersonID     int64 `json:"person_id" binding:"required"`
}

func (h *Handler) addLeader(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var req addLeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	leader, err := h.records.AddLeader(c.Request.Context(), principal, contractID, req.DepartmentID, req.PersonID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, leader)
}

func (h *Handler) removeLeader(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, leaderID, ok := h.recordIDs(c)
	if !ok {
		return
	}
	if err := h.records.RemoveLeader(c.Request.Context(), principal, contractID, leaderID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listLeaders(c *gin.Context) {
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	leaders, err := h.records.ListLeaders(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaders": leaders})
}

func parseDatePtr(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	parsed, err := parseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
