package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Contract is the top-level aggregate for one customer engagement.
// Status is never stored on the row; it is derived from the related
// records on every read (see service.DeriveStatus).
type Contract struct {
	ID                  int64      `json:"id"`
	CompanyID           int64      `json:"company_id"`
	ProjectCode         string     `json:"project_code"` // globally unique
	ContractNumber      string     `json:"contract_number"`
	Name                string     `json:"name"`
	ClientManager       string     `json:"client_manager"`
	ClientContact       string     `json:"client_contact"`
	OurManager          string     `json:"our_manager"`
	PlannedDeliveryDate *time.Time `json:"planned_delivery_date"`
	CreatedByID         *int64     `json:"created_by_id"`
	CreatedAt           time.Time  `json:"created_at"`

	Company Company `json:"company" gorm:"-"`
}

// SalesInfo is the 0-or-1 quote record per contract. QuoteAmount is nil
// while the quote is still undecided, which in turn leaves the finance
// remainders undefined.
type SalesInfo struct {
	ID            int64            `json:"id"`
	ContractID    int64            `json:"contract_id"`
	QuoteAmount   *decimal.Decimal `json:"quote_amount"`
	QuoteDate     *time.Time       `json:"quote_date"`
	DealDate      *time.Time       `json:"deal_date"`
	SalesPersonID *int64           `json:"sales_person_id"`
	Remarks       *string          `json:"remarks"`
}
