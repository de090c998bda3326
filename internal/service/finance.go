package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fszn/contracts-service/internal/model"
)

// FinanceSummary is the financial position of one contract. The two
// remainders are nil whenever the quote amount is unknown: without a
// target there is nothing meaningful to subtract from, and reporting 0
// would imply the contract is settled.
type FinanceSummary struct {
	QuoteAmount         *decimal.Decimal `json:"quote_amount"`
	PaidTotal           decimal.Decimal  `json:"paid_total"`
	RefundTotal         decimal.Decimal  `json:"refund_total"`
	NetReceived         decimal.Decimal  `json:"net_received"`
	InvoicedTotal       decimal.Decimal  `json:"invoiced_total"`
	ReceivableRemaining *decimal.Decimal `json:"receivable_remaining"`
	InvoiceRemaining    *decimal.Decimal `json:"invoice_remaining"`
}

// SummarizeFinance sums a contract's money records against its quote.
// sales may be nil when the contract has no SalesInfo yet.
func SummarizeFinance(sales *model.SalesInfo, payments []model.Payment, refunds []model.Refund, invoices []model.Invoice) FinanceSummary {
	paidTotal := decimal.Zero
	for _, p := range payments {
		paidTotal = paidTotal.Add(p.Amount)
	}
	refundTotal := decimal.Zero
	for _, r := range refunds {
		refundTotal = refundTotal.Add(r.Amount)
	}
	invoicedTotal := decimal.Zero
	for _, inv := range invoices {
		invoicedTotal = invoicedTotal.Add(inv.Amount)
	}

	summary := FinanceSummary{
		PaidTotal:     paidTotal,
		RefundTotal:   refundTotal,
		NetReceived:   paidTotal.Sub(refundTotal),
		InvoicedTotal: invoicedTotal,
	}

	if sales != nil && sales.QuoteAmount != nil {
		quote := *sales.QuoteAmount
		receivable := quote.Sub(summary.NetReceived)
		invoiceRemaining := quote.Sub(invoicedTotal)
		summary.QuoteAmount = &quote
		summary.ReceivableRemaining = &receivable
		summary.InvoiceRemaining = &invoiceRemaining
	}
	return summary
}

// parseAmount parses a user-entered money amount. Unlike stored rows,
// where an absent amount sums as zero, malformed user input is rejected
// outright so a typo never silently books a zero payment.
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidInput)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed amount %q", ErrInvalidInput, raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	return amount, nil
}

// parseOptionalAmount accepts an empty string as "not set yet".
func parseOptionalAmount(raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	amount, err := parseAmount(raw)
	if err != nil {
		return nil, err
	}
	return &amount, nil
}
