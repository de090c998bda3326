package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/fszn/contracts-service/internal/service"
)

const fontName = "Helvetica"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// ContractSummary renders a one-page status and finance snapshot.
func (g *Generator) ContractSummary(overview service.Overview) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	contract := overview.Contract

	pdf.SetFont(fontName, "B", 14)
	pdf.CellFormat(0, 10, "Contract Overview", "", 1, "C", false, 0, "")

	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Project %s / Contract %s", contract.ProjectCode, contract.ContractNumber), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, "Contract", "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	lines := []string{
		fmt.Sprintf("Company: %s", safeValue(contract.Company.Name)),
		fmt.Sprintf("Name: %s", safeValue(contract.Name)),
		fmt.Sprintf("Client manager: %s", safeValue(contract.ClientManager)),
		fmt.Sprintf("Our manager: %s", safeValue(contract.OurManager)),
		fmt.Sprintf("Planned delivery: %s", formatDatePtr(contract.PlannedDeliveryDate)),
		fmt.Sprintf("Status: %s (%s)", overview.Status, overview.Tier),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
	pdf.Ln(2)

	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, "Finance", "", 1, "L", false, 0, "")

	finance := overview.Finance
	headers := []string{"Metric", "Amount"}
	colWidths := []float64{90, 90}
	drawTableRow(pdf, headers, colWidths, true)
	rows := [][2]string{
		{"Quote amount", formatDecimalPtr(finance.QuoteAmount)},
		{"Paid total", finance.PaidTotal.StringFixed(2)},
		{"Refund total", finance.RefundTotal.StringFixed(2)},
		{"Net received", finance.NetReceived.StringFixed(2)},
		{"Invoiced total", finance.InvoicedTotal.StringFixed(2)},
		{"Receivable remaining", formatDecimalPtr(finance.ReceivableRemaining)},
		{"Invoice remaining", formatDecimalPtr(finance.InvoiceRemaining)},
	}
	for _, row := range rows {
		drawTableRow(pdf, row[:], colWidths, false)
	}
	pdf.Ln(2)

	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, "Records", "", 1, "L", false, 0, "")
	counts := overview.Counts
	drawTableRow(pdf, []string{"Record", "Count"}, colWidths, true)
	countRows := [][2]string{
		{"Tasks", fmt.Sprintf("%d", counts.Tasks)},
		{"Procurement items", fmt.Sprintf("%d", counts.Procurements)},
		{"Acceptance stages", fmt.Sprintf("%d", counts.Acceptances)},
		{"Payments", fmt.Sprintf("%d", counts.Payments)},
		{"Invoices", fmt.Sprintf("%d", counts.Invoices)},
		{"Refunds", fmt.Sprintf("%d", counts.Refunds)},
		{"Feedback", fmt.Sprintf("%d", counts.Feedbacks)},
		{"Files", fmt.Sprintf("%d", counts.Files)},
	}
	for _, row := range countRows {
		drawTableRow(pdf, row[:], colWidths, false)
	}

	pdf.Ln(4)
	pdf.SetFont(fontName, "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02 15:04")), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatDecimalPtr(value *decimal.Decimal) string {
	if value == nil {
		return "-"
	}
	return value.StringFixed(2)
}
