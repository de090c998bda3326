package service

import (
	"context"
	"time"

	"github.com/fszn/contracts-service/internal/audit"
	"github.com/fszn/contracts-service/internal/model"
)

// ContractFilter narrows and orders the contract list. Substring
// filters are case-insensitive; the zero value lists everything newest
// first.
type ContractFilter struct {
	CompanyContains        string
	ProjectCodeContains    string
	ContractNumberContains string
	SalesPersonContains    string
	LeaderContains         string
	Order                  string // created_at_desc (default), created_at_asc, deal_date_asc, deal_date_desc
}

// RecordCounts backs the contract overview page. Files excludes
// soft-deleted rows.
type RecordCounts struct {
	Tasks        int64 `json:"tasks"`
	Procurements int64 `json:"procurements"`
	Acceptances  int64 `json:"acceptances"`
	Payments     int64 `json:"payments"`
	Invoices     int64 `json:"invoices"`
	Refunds      int64 `json:"refunds"`
	Feedbacks    int64 `json:"feedbacks"`
	Files        int64 `json:"files"`
}

// Store is the persistence boundary for all services. Mutations run
// through InTx so each business change commits atomically with its
// operation-log row. Lookups that miss return gorm.ErrRecordNotFound.
type Store interface {
	InTx(ctx context.Context, fn func(tx Store) error) error

	FindOrCreateCompany(ctx context.Context, name string) (*model.Company, error)

	GetContract(ctx context.Context, id int64) (*model.Contract, error)
	GetContractByProjectCode(ctx context.Context, code string) (*model.Contract, error)
	CreateContract(ctx context.Context, contract *model.Contract) error
	SetContractPlannedDelivery(ctx context.Context, id int64, date *time.Time) error
	DeleteContractCascade(ctx context.Context, id int64) error
	ListContracts(ctx context.Context, filter ContractFilter) ([]model.Contract, error)

	ActivityCounts(ctx context.Context, contractID int64) (model.ActivityCounts, error)
	RecordCounts(ctx context.Context, contractID int64) (RecordCounts, error)

	GetSalesInfo(ctx context.Context, contractID int64) (*model.SalesInfo, error)
	CreateSalesInfo(ctx context.Context, info *model.SalesInfo) error
	UpdateSalesInfo(ctx context.Context, info *model.SalesInfo) error
	DeleteSalesInfo(ctx context.Context, contractID int64) error

	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, id, contractID int64) (*model.Task, error)
	UpdateTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, id, contractID int64) error
	ListTasks(ctx context.Context, contractID int64) ([]model.Task, error)

	CreateProcurement(ctx context.Context, item *model.ProcurementItem) error
	GetProcurement(ctx context.Context, id, contractID int64) (*model.ProcurementItem, error)
	DeleteProcurement(ctx context.Context, id, contractID int64) error
	ListProcurements(ctx context.Context, contractID int64) ([]model.ProcurementItem, error)

	CreateAcceptance(ctx context.Context, acceptance *model.Acceptance) error
	GetAcceptance(ctx context.Context, id, contractID int64) (*model.Acceptance, error)
	DeleteAcceptance(ctx context.Context, id, contractID int64) error
	ListAcceptances(ctx context.Context, contractID int64) ([]model.Acceptance, error)

	CreatePayment(ctx context.Context, payment *model.Payment) error
	GetPayment(ctx context.Context, id, contractID int64) (*model.Payment, error)
	DeletePayment(ctx context.Context, id, contractID int64) error
	ListPayments(ctx context.Context, contractID int64) ([]model.Payment, error)

	CreateInvoice(ctx context.Context, invoice *model.Invoice) error
	GetInvoice(ctx context.Context, id, contractID int64) (*model.Invoice, error)
	DeleteInvoice(ctx context.Context, id, contractID int64) error
	ListInvoices(ctx context.Context, contractID int64) ([]model.Invoice, error)

	CreateRefund(ctx context.Context, refund *model.Refund) error
	GetRefund(ctx context.Context, id, contractID int64) (*model.Refund, error)
	DeleteRefund(ctx context.Context, id, contractID int64) error
	ListRefunds(ctx context.Context, contractID int64) ([]model.Refund, error)

	CreateFeedback(ctx context.Context, feedback *model.Feedback) error
	GetFeedback(ctx context.Context, id, contractID int64) (*model.Feedback, error)
	SetFeedbackResolution(ctx context.Context, id int64, resolved bool, completionTime *time.Time) error
	DeleteFeedback(ctx context.Context, id, contractID int64) error
	ListFeedbacks(ctx context.Context, contractID int64) ([]model.Feedback, error)

	CreateLeader(ctx context.Context, leader *model.ProjectDepartmentLeader) error
	FindLeader(ctx context.Context, contractID, departmentID, personID int64) (*model.ProjectDepartmentLeader, error)
	DeleteLeader(ctx context.Context, id, contractID int64) error
	ListLeaders(ctx context.Context, contractID int64) ([]model.ProjectDepartmentLeader, error)

	CreateFile(ctx context.Context, file *model.ProjectFile) error
	GetFile(ctx context.Context, id, contractID int64) (*model.ProjectFile, error)
	SoftDeleteFile(ctx context.Context, id int64) error
	ListFiles(ctx context.Context, contractID int64) ([]model.ProjectFile, error)

	AppendOperationLog(ctx context.Context, row model.OperationLog) error
	ListOperationLogs(ctx context.Context, filter audit.Filter) ([]model.OperationLog, error)
}
