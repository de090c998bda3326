package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/fszn/contracts-service/internal/model"
	"github.com/fszn/contracts-service/internal/service"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// ContractWorkbook renders one contract as a workbook: a summary sheet
// followed by one sheet per money-record kind.
func (g *Generator) ContractWorkbook(
	overview service.Overview,
	payments []model.Payment,
	invoices []model.Invoice,
	refunds []model.Refund,
) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, overview); err != nil {
		return nil, err
	}

	file.NewSheet("Payments")
	if err := g.writePayments(file, "Payments", payments); err != nil {
		return nil, err
	}
	file.NewSheet("Invoices")
	if err := g.writeInvoices(file, "Invoices", invoices); err != nil {
		return nil, err
	}
	file.NewSheet("Refunds")
	if err := g.writeRefunds(file, "Refunds", refunds); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, overview service.Overview) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	contract := overview.Contract
	set("A1", "Company")
	set("B1", contract.Company.Name)
	set("A2", "Project code")
	set("B2", contract.ProjectCode)
	set("A3", "Contract number")
	set("B3", contract.ContractNumber)
	set("A4", "Contract name")
	set("B4", contract.Name)
	set("A5", "Status")
	set("B5", string(overview.Status))
	set("A6", "Planned delivery")
	set("B6", formatDatePtr(contract.PlannedDeliveryDate))

	finance := overview.Finance
	set("A8", "Quote amount")
	set("B8", formatDecimalPtr(finance.QuoteAmount))
	set("A9", "Paid total")
	set("B9", finance.PaidTotal.StringFixed(2))
	set("A10", "Refund total")
	set("B10", finance.RefundTotal.StringFixed(2))
	set("A11", "Net received")
	set("B11", finance.NetReceived.StringFixed(2))
	set("A12", "Invoiced total")
	set("B12", finance.InvoicedTotal.StringFixed(2))
	set("A13", "Receivable remaining")
	set("B13", formatDecimalPtr(finance.ReceivableRemaining))
	set("A14", "Invoice remaining")
	set("B14", formatDecimalPtr(finance.InvoiceRemaining))

	counts := overview.Counts
	tableRow := 16
	set(fmt.Sprintf("A%d", tableRow), "Record")
	set(fmt.Sprintf("B%d", tableRow), "Count")
	rows := []struct {
		label string
		count int64
	}{
		{"Tasks", counts.Tasks},
		{"Procurement items", counts.Procurements},
		{"Acceptance stages", counts.Acceptances},
		{"Payments", counts.Payments},
		{"Invoices", counts.Invoices},
		{"Refunds", counts.Refunds},
		{"Feedback", counts.Feedbacks},
		{"Files", counts.Files},
	}
	for i, row := range rows {
		set(fmt.Sprintf("A%d", tableRow+1+i), row.label)
		set(fmt.Sprintf("B%d", tableRow+1+i), row.count)
	}

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 32)
	return nil
}

func (g *Generator) writePayments(file *excelize.File, sheet string, payments []model.Payment) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Date")
	set("B1", "Amount")
	set("C1", "Method")
	set("D1", "Remarks")
	for i, payment := range payments {
		row := i + 2
		set(fmt.Sprintf("A%d", row), formatDate(payment.Date))
		set(fmt.Sprintf("B%d", row), payment.Amount.StringFixed(2))
		set(fmt.Sprintf("C%d", row), payment.Method)
		set(fmt.Sprintf("D%d", row), payment.Remarks)
	}

	_ = file.SetColWidth(sheet, "A", "A", 14)
	_ = file.SetColWidth(sheet, "B", "B", 16)
	_ = file.SetColWidth(sheet, "C", "D", 28)
	return nil
}

func (g *Generator) writeInvoices(file *excelize.File, sheet string, invoices []model.Invoice) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Date")
	set("B1", "Invoice number")
	set("C1", "Amount")
	set("D1", "Remarks")
	for i, invoice := range invoices {
		row := i + 2
		set(fmt.Sprintf("A%d", row), formatDate(invoice.Date))
		set(fmt.Sprintf("B%d", row), invoice.InvoiceNumber)
		set(fmt.Sprintf("C%d", row), invoice.Amount.StringFixed(2))
		set(fmt.Sprintf("D%d", row), invoice.Remarks)
	}

	_ = file.SetColWidth(sheet, "A", "A", 14)
	_ = file.SetColWidth(sheet, "B", "B", 24)
	_ = file.SetColWidth(sheet, "C", "C", 16)
	_ = file.SetColWidth(sheet, "D", "D", 28)
	return nil
}

func (g *Generator) writeRefunds(file *excelize.File, sheet string, refunds []model.Refund) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Date")
	set("B1", "Amount")
	set("C1", "Reason")
	set("D1", "Remarks")
	for i, refund := range refunds {
		row := i + 2
		set(fmt.Sprintf("A%d", row), formatDate(refund.Date))
		set(fmt.Sprintf("B%d", row), refund.Amount.StringFixed(2))
		set(fmt.Sprintf("C%d", row), refund.Reason)
		set(fmt.Sprintf("D%d", row), refund.Remarks)
	}

	_ = file.SetColWidth(sheet, "A", "A", 14)
	_ = file.SetColWidth(sheet, "B", "B", 16)
	_ = file.SetColWidth(sheet, "C", "D", 28)
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func formatDecimalPtr(value *decimal.Decimal) string {
	if value == nil {
		return ""
	}
	return value.StringFixed(2)
}
