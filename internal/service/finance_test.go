package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fszn/contracts-service/internal/model"
)

func money(raw string) decimal.Decimal {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		panic(err)
	}
	return amount
}

func TestSummarizeFinanceWithoutQuote(t *testing.T) {
	payments := []model.Payment{
		{Amount: money("100.25"), Date: time.Now()},
		{Amount: money("40.25"), Date: time.Now()},
	}

	summary := SummarizeFinance(nil, payments, nil, nil)

	if !summary.NetReceived.Equal(money("140.50")) {
		t.Fatalf("NetReceived = %s, want 140.50", summary.NetReceived)
	}
	if summary.QuoteAmount != nil {
		t.Fatalf("QuoteAmount = %v, want nil", summary.QuoteAmount)
	}
	if summary.ReceivableRemaining != nil {
		t.Fatalf("ReceivableRemaining = %v, want nil without a quote", summary.ReceivableRemaining)
	}
	if summary.InvoiceRemaining != nil {
		t.Fatalf("InvoiceRemaining = %v, want nil without a quote", summary.InvoiceRemaining)
	}
}

func TestSummarizeFinanceNilQuoteAmount(t *testing.T) {
	// SalesInfo row exists but the quote is still undecided.
	sales := &model.SalesInfo{ID: 1, ContractID: 1}

	summary := SummarizeFinance(sales, []model.Payment{{Amount: money("10")}}, nil, nil)

	if summary.ReceivableRemaining != nil || summary.InvoiceRemaining != nil {
		t.Fatalf("remainders must stay nil while the quote is undecided")
	}
}

func TestSummarizeFinanceRemainders(t *testing.T) {
	quote := money("1000")
	sales := &model.SalesInfo{QuoteAmount: &quote}
	payments := []model.Payment{{Amount: money("500")}, {Amount: money("150")}}
	refunds := []model.Refund{{Amount: money("50")}}
	invoices := []model.Invoice{{Amount: money("250")}}

	summary := SummarizeFinance(sales, payments, refunds, invoices)

	if !summary.PaidTotal.Equal(money("650")) {
		t.Fatalf("PaidTotal = %s, want 650", summary.PaidTotal)
	}
	if !summary.NetReceived.Equal(money("600")) {
		t.Fatalf("NetReceived = %s, want 600", summary.NetReceived)
	}
	if summary.ReceivableRemaining == nil || !summary.ReceivableRemaining.Equal(money("400")) {
		t.Fatalf("ReceivableRemaining = %v, want 400", summary.ReceivableRemaining)
	}
	if summary.InvoiceRemaining == nil || !summary.InvoiceRemaining.Equal(money("750")) {
		t.Fatalf("InvoiceRemaining = %v, want 750", summary.InvoiceRemaining)
	}
}

func TestSummarizeFinanceOverpayment(t *testing.T) {
	quote := money("100")
	sales := &model.SalesInfo{QuoteAmount: &quote}

	summary := SummarizeFinance(sales, []model.Payment{{Amount: money("130")}}, nil, nil)

	if summary.ReceivableRemaining == nil || !summary.ReceivableRemaining.Equal(money("-30")) {
		t.Fatalf("ReceivableRemaining = %v, want -30", summary.ReceivableRemaining)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain", raw: "250.75", want: "250.75"},
		{name: "trimmed", raw: "  19.90 ", want: "19.90"},
		{name: "zero", raw: "0", want: "0"},
		{name: "empty", raw: "", wantErr: true},
		{name: "spaces only", raw: "   ", wantErr: true},
		{name: "malformed", raw: "12,5", wantErr: true},
		{name: "negative", raw: "-3", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amount, err := parseAmount(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("err = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAmount(%q): %v", tc.raw, err)
			}
			if !amount.Equal(money(tc.want)) {
				t.Fatalf("amount = %s, want %s", amount, tc.want)
			}
		})
	}
}

func TestParseOptionalAmount(t *testing.T) {
	if amount, err := parseOptionalAmount(" "); err != nil || amount != nil {
		t.Fatalf("blank input: amount=%v err=%v, want nil, nil", amount, err)
	}
	if _, err := parseOptionalAmount("nope"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	amount, err := parseOptionalAmount("88.00")
	if err != nil || amount == nil || !amount.Equal(money("88")) {
		t.Fatalf("amount=%v err=%v, want 88", amount, err)
	}
}
