package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fszn/contracts-service/internal/model"
	"github.com/fszn/contracts-service/internal/service"
	"github.com/fszn/contracts-service/internal/storage"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) exportContractExcel(c *gin.Context) {
	overview, payments, invoices, refunds, ok := h.exportData(c, "xlsx")
	if !ok {
		return
	}

	content, err := h.excel.ContractWorkbook(*overview, payments, invoices, refunds)
	if err != nil {
		h.handleError(c, err)
		return
	}

	fileName := exportFileName(overview, "xlsx")
	c.Header("Content-Type", excelContentType)
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, excelContentType, content)
}

func (h *Handler) exportContractPDF(c *gin.Context) {
	overview, _, _, _, ok := h.exportData(c, "pdf")
	if !ok {
		return
	}

	content, err := h.pdf.ContractSummary(*overview)
	if err != nil {
		h.handleError(c, err)
		return
	}

	fileName := exportFileName(overview, "pdf")
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, "application/pdf", content)
}

func (h *Handler) exportData(c *gin.Context, format string) (*service.Overview, []model.Payment, []model.Invoice, []model.Refund, bool) {
	principal, ok := h.principal(c)
	if !ok {
		return nil, nil, nil, nil, false
	}
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return nil, nil, nil, nil, false
	}

	if err := h.contracts.AuthorizeExport(c.Request.Context(), principal, contractID, format); err != nil {
		h.handleError(c, err)
		return nil, nil, nil, nil, false
	}

	overview, err := h.contracts.Overview(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return nil, nil, nil, nil, false
	}
	payments, err := h.records.ListPayments(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return nil, nil, nil, nil, false
	}
	invoices, err := h.records.ListInvoices(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return nil, nil, nil, nil, false
	}
	refunds, err := h.records.ListRefunds(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return nil, nil, nil, nil, false
	}
	return overview, payments, invoices, refunds, true
}

func exportFileName(overview *service.Overview, ext string) string {
	base := storage.SanitizePart(overview.Contract.ProjectCode)
	if base == "" {
		base = "contract"
	}
	return base + "_overview." + ext
}
