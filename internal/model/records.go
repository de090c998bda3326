package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Task/procurement/acceptance statuses are open vocabularies: the UI
// offers the defaults below but historical rows may carry arbitrary
// text, so they stay plain strings.
const (
	TaskStatusDefault        = "pending"
	ProcurementStatusDefault = "not_purchased"
	AcceptanceStatusDefault  = "in_progress"

	// AcceptanceStatusPassed is the one value the status derivation
	// cares about.
	AcceptanceStatusPassed = "passed"
)

type Task struct {
	ID           int64      `json:"id"`
	ContractID   int64      `json:"contract_id"`
	DepartmentID *int64     `json:"department_id"`
	PersonID     *int64     `json:"person_id"`
	Title        string     `json:"title"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Status       string     `json:"status"`
	Remarks      string     `json:"remarks"`
}

type ProcurementItem struct {
	ID           int64      `json:"id"`
	ContractID   int64      `json:"contract_id"`
	ItemName     string     `json:"item_name"`
	Quantity     int        `json:"quantity"`
	Unit         string     `json:"unit"`
	ExpectedDate *time.Time `json:"expected_date"`
	Status       string     `json:"status"`
	PersonID     *int64     `json:"person_id"`
	Remarks      string     `json:"remarks"`
}

type Acceptance struct {
	ID         int64     `json:"id"`
	ContractID int64     `json:"contract_id"`
	StageName  string    `json:"stage_name"`
	PersonID   *int64    `json:"person_id"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	Remarks    string    `json:"remarks"`
}

type Payment struct {
	ID         int64           `json:"id"`
	ContractID int64           `json:"contract_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Method     string          `json:"method"`
	Remarks    string          `json:"remarks"`
}

type Invoice struct {
	ID            int64           `json:"id"`
	ContractID    int64           `json:"contract_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Remarks       string          `json:"remarks"`
}

type Refund struct {
	ID         int64           `json:"id"`
	ContractID int64           `json:"contract_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Reason     string          `json:"reason"`
	Remarks    string          `json:"remarks"`
}

type Feedback struct {
	ID             int64      `json:"id"`
	ContractID     int64      `json:"contract_id"`
	Content        string     `json:"content"`
	HandlerID      *int64     `json:"handler_id"`
	Result         string     `json:"result"`
	IsResolved     bool       `json:"is_resolved"`
	FeedbackTime   time.Time  `json:"feedback_time"`
	CompletionTime *time.Time `json:"completion_time"`
}

type ProjectDepartmentLeader struct {
	ID           int64 `json:"id"`
	ContractID   int64 `json:"contract_id"`
	DepartmentID int64 `json:"department_id"`
	PersonID     int64 `json:"person_id"`
}

// ActivityCounts is the snapshot of related-record counts the status
// derivation runs over. It is queried fresh per read and never cached.
type ActivityCounts struct {
	Tasks              int64 `json:"tasks"`
	Acceptances        int64 `json:"acceptances"`
	PassedAcceptances  int64 `json:"passed_acceptances"`
	Payments           int64 `json:"payments"`
	Invoices           int64 `json:"invoices"`
	UnresolvedFeedback int64 `json:"unresolved_feedback"`
}
