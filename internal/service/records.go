package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fszn/contracts-service/internal/audit"
	"github.com/fszn/contracts-service/internal/model"
)

// Records mutates the child records of a contract. Every mutation runs
// in a single transaction together with its operation-log row, so a
// change and its audit trail commit or roll back as one.
type Records struct {
	store Store
}

func NewRecords(store Store) *Records {
	return &Records{store: store}
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func dateString(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

// ---------------------------------------------------------------- tasks

type CreateTaskInput struct {
	Title        string
	DepartmentID *int64
	PersonID     *int64
	StartDate    *time.Time
	EndDate      *time.Time
	Status       string
	Remarks      string
}

func (s *Records) CreateTask(ctx context.Context, actor model.Principal, contractID int64, in CreateTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.DepartmentID == nil {
		return nil, fmt.Errorf("%w: department_id is required", ErrInvalidInput)
	}
	if in.StartDate == nil {
		return nil, fmt.Errorf("%w: start_date is required", ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = model.TaskStatusDefault
	}

	var task *model.Task
	err := s.store.InTx(ctx, func(tx Store) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return notFoundOr(err)
		}

		task = &model.Task{
			ContractID:   contract.ID,
			DepartmentID: in.DepartmentID,
			PersonID:     in.PersonID,
			Title:        title,
			StartDate:    in.StartDate,
			EndDate:      in.EndDate,
			Status:       status,
			Remarks:      in.Remarks,
		}
		if err := tx.CreateTask(ctx, task); err != nil {
			return err
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "task.create",
			TargetType: "Task",
			TargetID:   task.ID,
			Message:    fmt.Sprintf("created task: %s", title),
			Extra: map[string]interface{}{
				"contract_id":   contract.ID,
				"department_id": in.DepartmentID,
				"person_id":     in.PersonID,
				"start_date":    dateString(in.StartDate),
				"end_date":      dateString(in.EndDate),
				"status":        status,
			},
		})
		return tx.AppendOperationLog(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTaskInput is a partial update: nil means "leave unchanged",
// which keeps an explicit empty string distinct from "not supplied".
type UpdateTaskInput struct {
	Title        *string
	DepartmentID *int64
	PersonID     *int64
	StartDate    *time.Time
	EndDate      *time.Time
	Status       *string
	Remarks      *string
}

func (s *Records) UpdateTask(ctx context.Context, actor model.Principal, contractID, taskID int64, in UpdateTaskInput) (*model.Task, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
	}

	var task *model.Task
	err := s.store.InTx(ctx, func(tx Store) error {
		current, err := tx.GetTask(ctx, taskID, contractID)
		if err != nil {
			return notFoundOr(err)
		}

		if in.Title != nil {
			current.Title = strings.TrimSpace(*in.Title)
		}
		if in.DepartmentID != nil {
			current.DepartmentID = in.DepartmentID
		}
		if in.PersonID != nil {
			current.PersonID = in.PersonID
		}
		if in.StartDate != nil {
			current.StartDate = in.StartDate
		}
		if in.EndDate != nil {
			current.EndDate = in.EndDate
		}
		if in.Status != nil {
			current.Status = *in.Status
		}
		if in.Remarks != nil {
			current.Remarks = *in.Remarks
		}

		if err := tx.UpdateTask(ctx, current); err != nil {
			return err
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "task.update",
			TargetType: "Task",
			TargetID:   current.ID,
			Message:    fmt.Sprintf("updated task: %s", current.Title),
			Extra: map[string]interface{}{
				"contract_id": contractID,
				"status":      current.Status,
			},
		})
		if err := tx.AppendOperationLog(ctx, row); err != nil {
			return err
		}
		task = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Records) DeleteTask(ctx context.Context, actor model.Principal, contractID, taskID int64) (*model.Task, error) {
	var task *model.Task
	err := s.store.InTx(ctx, func(tx Store) error {
		current, err := tx.GetTask(ctx, taskID, contractID)
		if err != nil {
			return notFoundOr(err)
		}
		if err := tx.DeleteTask(ctx, taskID, contractID); err != nil {
			return notFoundOr(err)
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "task.delete",
			TargetType: "Task",
			TargetID:   current.ID,
			Message:    fmt.Sprintf("deleted task: %s", current.Title),
			Extra: map[string]interface{}{
				"contract_id": contractID,
				"status":      current.Status,
			},
		})
		if err := tx.AppendOperationLog(ctx, row); err != nil {
			return err
		}
		task = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Records) ListTasks(ctx context.Context, contractID int64) ([]model.Task, error) {
	tasks, err := s.store.ListTasks(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ------------------------------------------------------------- payments

type CreatePaymentInput struct {
	Amount  string
	Date    time.Time
	Method  string
	Remarks string
}

func (s *Records) CreatePayment(ctx context.Context, actor model.Principal, contractID int64, in CreatePaymentInput) (*model.Payment, error) {
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	var payment *model.Payment
	err = s.store.InTx(ctx, func(tx Store) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return notFoundOr(err)
		}

		payment = &model.Payment{
			ContractID: contract.ID,
			Amount:     amount,
			Date:       in.Date,
			Method:     in.Method,
			Remarks:    in.Remarks,
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "payment.create",
			TargetType: "Payment",
			TargetID:   payment.ID,
			Message:    fmt.Sprintf("recorded payment of %s", amount.StringFixed(2)),
			Extra: map[string]interface{}{
				"contract_id": contract.ID,
				"amount":      amount.String(),
				"date":        in.Date.Format("2006-01-02"),
				"method":      in.Method,
			},
		})
		return tx.AppendOperationLog(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *Records) DeletePayment(ctx context.Context, actor model.Principal, contractID, paymentID int64) (*model.Payment, error) {
	var payment *model.Payment
	err := s.store.InTx(ctx, func(tx Store) error {
		current, err := tx.GetPayment(ctx, paymentID, contractID)
		if err != nil {
			return notFoundOr(err)
		}
		if err := tx.DeletePayment(ctx, paymentID, contractID); err != nil {
			return notFoundOr(err)
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "payment.delete",
			TargetType: "Payment",
			TargetID:   current.ID,
			Message:    fmt.Sprintf("deleted payment of %s", current.Amount.StringFixed(2)),
			Extra: map[string]interface{}{
				"contract_id": contractID,
				"amount":      current.Amount.String(),
				"date":        current.Date.Format("2006-01-02"),
			},
		})
		if err := tx.AppendOperationLog(ctx, row); err != nil {
			return err
		}
		payment = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *Records) ListPayments(ctx context.Context, contractID int64) ([]model.Payment, error) {
	return s.store.ListPayments(ctx, contractID)
}

// ------------------------------------------------------------- invoices

type CreateInvoiceInput struct {
	InvoiceNumber string
	Amount        string
	Date          time.Time
	Remarks       string
}

func (s *Records) CreateInvoice(ctx context.Context, actor model.Principal, contractID int64, in CreateInvoiceInput) (*model.Invoice, error) {
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	var invoice *model.Invoice
	err = s.store.InTx(ctx, func(tx Store) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return notFoundOr(err)
		}

		invoice = &model.Invoice{
			ContractID:    contract.ID,
			InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
			Amount:        amount,
			Date:          in.Date,
			Remarks:       in.Remarks,
		}
		if err := tx.CreateInvoice(ctx, invoice); err != nil {
			return err
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "invoice.create",
			TargetType: "Invoice",
			TargetID:   invoice.ID,
			Message:    fmt.Sprintf("issued invoice %s for %s", invoice.InvoiceNumber, amount.StringFixed(2)),
			Extra: map[string]interface{}{
				"contract_id":    contract.ID,
				"invoice_number": invoice.InvoiceNumber,
				"amount":         amount.String(),
				"date":           in.Date.Format("2006-01-02"),
			},
		})
		return tx.AppendOperationLog(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Records) DeleteInvoice(ctx context.Context, actor model.Principal, contractID, invoiceID int64) (*model.Invoice, error) {
	var invoice *model.Invoice
	err := s.store.InTx(ctx, func(tx Store) error {
		current, err := tx.GetInvoice(ctx, invoiceID, contractID)
		if err != nil {
			return notFoundOr(err)
		}
		if err := tx.DeleteInvoice(ctx, invoiceID, contractID); err != nil {
			return notFoundOr(err)
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "invoice.delete",
			TargetType: "Invoice",
			TargetID:   current.ID,
			Message:    fmt.Sprintf("deleted invoice %s", current.InvoiceNumber),
			Extra: map[string]interface{}{
				"contract_id": contractID,
				"amount":      current.Amount.String(),
				"date":        current.Date.Format("2006-01-02"),
			},
		})
		if err := tx.AppendOperationLog(ctx, row); err != nil {
			return err
		}
		invoice = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Records) ListInvoices(ctx context.Context, contractID int64) ([]model.Invoice, error) {
	return s.store.ListInvoices(ctx, contractID)
}

// -------------------------------------------------------------- refunds

type CreateRefundInput struct {
	Amount  string
	Date    time.Time
	Reason  string
	Remarks string
}

func (s *Records) CreateRefund(ctx context.Context, actor model.Principal, contractID int64, in CreateRefundInput) (*model.Refund, error) {
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	var refund *model.Refund
	err = s.store.InTx(ctx, func(tx Store) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return notFoundOr(err)
		}

		refund = &model.Refund{
			ContractID: contract.ID,
			Amount:     amount,
			Date:       in.Date,
			Reason:     in.Reason,
			Remarks:    in.Remarks,
		}
		if err := tx.CreateRefund(ctx, refund); err != nil {
			return err
		}

		// Refund rows are audited against the contract so they show up
		// on the contract's own log page.
		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "refund.create",
			TargetType: "Contract",
			TargetID:   contract.ID,
			Message:    fmt.Sprintf("recorded refund of %s", amount.StringFixed(2)),
			Extra: map[string]interface{}{
				"contract_id":     contract.ID,
				"project_code":    contract.ProjectCode,
				"contract_number": contract.ContractNumber,
				"amount":          amount.String(),
				"date":            in.Date.Format("2006-01-02"),
				"reason":          in.Reason,
			},
		})
		return tx.AppendOperationLog(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return refund, nil
}

func (s *Records) DeleteRefund(ctx context.Context, actor model.Principal, contractID, refundID int64) (*model.Refund, error) {
	var refund *model.Refund
	err := s.store.InTx(ctx, func(tx Store) error {
		current, err := tx.GetRefund(ctx, refundID, contractID)
		if err != nil {
			return notFoundOr(err)
		}
		if err := tx.DeleteRefund(ctx, refundID, contractID); err != nil {
			return notFoundOr(err)
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "refund.delete",
			TargetType: "Contract",
			TargetID:   contractID,
			Message:    fmt.Sprintf("deleted refund of %s", current.Amount.StringFixed(2)),
			Extra: map[string]interface{}{
				"refund_id": current.ID,
				"amount":    current.Amount.String(),
				"date":      current.Date.Format("2006-01-02"),
				"reason":    current.Reason,
			},
		})
		if err := tx.AppendOperationLog(ctx, row); err != nil {
			return err
		}
		refund = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refund, nil
}

func (s *Records) ListRefunds(ctx context.Context, contractID int64) ([]model.Refund, error) {
	return s.store.ListRefunds(ctx, contractID)
}
