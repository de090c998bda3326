package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fszn/contracts-service/internal/audit"
	"github.com/fszn/contracts-service/internal/model"
)

// Contracts owns the contract lifecycle plus the read-side aggregation:
// derived status, finance summary and the operation-log views.
type Contracts struct {
	store Store
}

func NewContracts(store Store) *Contracts {
	return &Contracts{store: store}
}

type CreateContractInput struct {
	CompanyName    string
	ProjectCode    string
	ContractNumber string
	Name           string
	ClientManager  string
	ClientContact  string
	OurManager     string
}

func (s *Contracts) Create(ctx context.Context, actor model.Principal, in CreateContractInput) (*model.Contract, error) {
	companyName := strings.TrimSpace(in.CompanyName)
	projectCode := strings.TrimSpace(in.ProjectCode)
	contractNumber := strings.TrimSpace(in.ContractNumber)
	name := strings.TrimSpace(in.Name)
	if companyName == "" || projectCode == "" || contractNumber == "" || name == "" {
		return nil, fmt.Errorf("%w: company, project_code, contract_number and name are required", ErrInvalidInput)
	}

	var contract *model.Contract
	err := s.store.InTx(ctx, func(tx Store) error {
		// The unique index on project_code backs this check against a
		// concurrent insert; here we just fail early with a clear error.
		if _, err := tx.GetContractByProjectCode(ctx, projectCode); err == nil {
			return ErrDuplicateProjectCode
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		company, err := tx.FindOrCreateCompany(ctx, companyName)
		if err != nil {
			return err
		}

		userID := actor.UserID
		contract = &model.Contract{
			CompanyID:      company.ID,
			ProjectCode:    projectCode,
			ContractNumber: contractNumber,
			Name:           name,
			ClientManager:  in.ClientManager,
			ClientContact:  in.ClientContact,
			OurManager:     in.OurManager,
			CreatedByID:    &userID,
		}
		if err := tx.CreateContract(ctx, contract); err != nil {
			return err
		}
		contract.Company = *company

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "contract.create",
			TargetType: "Contract",
			TargetID:   contract.ID,
			Message:    fmt.Sprintf("created contract: %s", name),
			Extra: map[string]interface{}{
				"company_id":      company.ID,
				"project_code":    projectCode,
				"contract_number": contractNumber,
			},
		})
		return tx.AppendOperationLog(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

func (s *Contracts) Get(ctx context.Context, id int64) (*model.Contract, error) {
	contract, err := s.store.GetContract(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return contract, nil
}

// ContractSummary is one row of the contract list: the contract plus
// its freshly derived status.
type ContractSummary struct {
	Contract model.Contract       `json:"contract"`
	Status   model.ContractStatus `json:"status"`
	Tier     model.StatusTier     `json:"tier"`
}

// ListFilter extends the store filter with the status filter and the
// status ordering, both of which operate on derived values and so run
// here rather than in SQL.
type ListFilter struct {
	ContractFilter
	Status    model.ContractStatus
	OrderDesc bool
}

func (s *Contracts) List(ctx context.Context, filter ListFilter) ([]ContractSummary, error) {
	contracts, err := s.store.ListContracts(ctx, filter.ContractFilter)
	if err != nil {
		return nil, err
	}

	summaries := make([]ContractSummary, 0, len(contracts))
	for _, contract := range contracts {
		counts, err := s.store.ActivityCounts(ctx, contract.ID)
		if err != nil {
			return nil, err
		}
		status, tier := DeriveStatus(counts)
		if filter.Status != "" && status != filter.Status {
			continue
		}
		summaries = append(summaries, ContractSummary{Contract: contract, Status: status, Tier: tier})
	}

	if filter.Order == "status_asc" || filter.Order == "status_desc" {
		desc := filter.Order == "status_desc"
		sort.SliceStable(summaries, func(i, j int) bool {
			if desc {
				return summaries[i].Status > summaries[j].Status
			}
			return summaries[i].Status < summaries[j].Status
		})
	}
	return summaries, nil
}

// Overview is the aggregate read for one contract: record counts,
// derived status and finance summary in one shot.
type Overview struct {
	Contract model.Contract                  `json:"contract"`
	Sales    *model.SalesInfo                `json:"sales"`
	Leaders  []model.ProjectDepartmentLeader `json:"leaders"`
	Counts   RecordCounts                    `json:"counts"`
	Status   model.ContractStatus            `json:"status"`
	Tier     model.StatusTier                `json:"tier"`
	Finance  FinanceSummary                  `json:"finance"`
}

func (s *Contracts) Overview(ctx context.Context, id int64) (*Overview, error) {
	contract, err := s.store.GetContract(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}

	sales, err := s.store.GetSalesInfo(ctx, id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	leaders, err := s.store.ListLeaders(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.RecordCounts(ctx, id)
	if err != nil {
		return nil, err
	}
	activity, err := s.store.ActivityCounts(ctx, id)
	if err != nil {
		return nil, err
	}
	status, tier := DeriveStatus(activity)

	payments, err := s.store.ListPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	refunds, err := s.store.ListRefunds(ctx, id)
	if err != nil {
		return nil, err
	}
	invoices, err := s.store.ListInvoices(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Contract: *contract,
		Sales:    sales,
		Leaders:  leaders,
		Counts:   counts,
		Status:   status,
		Tier:     tier,
		Finance:  SummarizeFinance(sales, payments, refunds, invoices),
	}, nil
}

// Finance returns just the finance summary for one contract.
func (s *Contracts) Finance(ctx context.Context, id int64) (*FinanceSummary, error) {
	if _, err := s.store.GetContract(ctx, id); err != nil {
		return nil, notFoundOr(err)
	}
	sales, err := s.store.GetSalesInfo(ctx, id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	payments, err := s.store.ListPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	refunds, err := s.store.ListRefunds(ctx, id)
	if err != nil {
		return nil, err
	}
	invoices, err := s.store.ListInvoices(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := SummarizeFinance(sales, payments, refunds, invoices)
	return &summary, nil
}

func (s *Contracts) SetPlannedDelivery(ctx context.Context, actor model.Principal, id int64, date *time.Time) error {
	return s.store.InTx(ctx, func(tx Store) error {
		contract, err := tx.GetContract(ctx, id)
		if err != nil {
			return notFoundOr(err)
		}
		if err := tx.SetContractPlannedDelivery(ctx, id, date); err != nil {
			return err
		}

		message := "cleared planned delivery date"
		if date != nil {
			message = fmt.Sprintf("set planned delivery date to %s", date.Format("2006-01-02"))
		}
		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "contract.set_planned_delivery_date",
			TargetType: "Contract",
			TargetID:   contract.ID,
			Message:    message,
			Extra: map[string]interface{}{
				"planned_delivery_date": dateString(date),
				"project_code":          contract.ProjectCode,
				"contract_number":       contract.ContractNumber,
			},
		})
		return tx.AppendOperationLog(ctx, row)
	})
}

// Delete removes a contract and everything under it. The cascade
// hard-deletes ProjectFile rows even though the single-file path only
// soft-deletes: removing the whole contract is an explicit act that
// forgoes per-file recovery, and the audit row written here preserves
// the trail.
func (s *Contracts) Delete(ctx context.Context, actor model.Principal, id int64) error {
	return s.store.InTx(ctx, func(tx Store) error {
		contract, err := tx.GetContract(ctx, id)
		if err != nil {
			return notFoundOr(err)
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "contract.delete",
			TargetType: "Contract",
			TargetID:   contract.ID,
			Message:    fmt.Sprintf("deleted contract: %s", contract.Name),
			Extra: map[string]interface{}{
				"company":         contract.Company.Name,
				"project_code":    contract.ProjectCode,
				"contract_number": contract.ContractNumber,
			},
		})
		if err := tx.AppendOperationLog(ctx, row); err != nil {
			return err
		}

		return tx.DeleteContractCascade(ctx, id)
	})
}

type UpsertSalesInput struct {
	QuoteAmount   string // empty means "quote not decided yet"
	QuoteDate     *time.Time
	DealDate      *time.Time
	SalesPersonID *int64
	Remarks       string
}

// UpsertSales creates or updates the contract's single SalesInfo row.
func (s *Contracts) UpsertSales(ctx context.Context, actor model.Principal, contractID int64, in UpsertSalesInput) (*model.SalesInfo, error) {
	quoteAmount, err := parseOptionalAmount(in.QuoteAmount)
	if err != nil {
		return nil, err
	}

	var info *model.SalesInfo
	err = s.store.InTx(ctx, func(tx Store) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return notFoundOr(err)
		}

		var remarks *string
		if trimmed := strings.TrimSpace(in.Remarks); trimmed != "" {
			remarks = &trimmed
		}

		existing, err := tx.GetSalesInfo(ctx, contract.ID)
		action := "sales.update"
		message := "updated sales info"
		switch {
		case err == nil:
			existing.QuoteAmount = quoteAmount
			existing.QuoteDate = in.QuoteDate
			existing.DealDate = in.DealDate
			existing.SalesPersonID = in.SalesPersonID
			existing.Remarks = remarks
			if err := tx.UpdateSalesInfo(ctx, existing); err != nil {
				return err
			}
			info = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			action = "sales.create"
			message = "created sales info"
			info = &model.SalesInfo{
				ContractID:    contract.ID,
				QuoteAmount:   quoteAmount,
				QuoteDate:     in.QuoteDate,
				DealDate:      in.DealDate,
				SalesPersonID: in.SalesPersonID,
				Remarks:       remarks,
			}
			if err := tx.CreateSalesInfo(ctx, info); err != nil {
				return err
			}
		default:
			return err
		}

		var quoteStr interface{}
		if quoteAmount != nil {
			quoteStr = quoteAmount.String()
		}
		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     action,
			TargetType: "SalesInfo",
			TargetID:   info.ID,
			Message:    message,
			Extra: map[string]interface{}{
				"contract_id":     contract.ID,
				"quote_amount":    quoteStr,
				"quote_date":      dateString(in.QuoteDate),
				"deal_date":       dateString(in.DealDate),
				"sales_person_id": in.SalesPersonID,
			},
		})
		return tx.AppendOperationLog(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (s *Contracts) DeleteSales(ctx context.Context, actor model.Principal, contractID int64) error {
	return s.store.InTx(ctx, func(tx Store) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return notFoundOr(err)
		}
		info, err := tx.GetSalesInfo(ctx, contract.ID)
		if err != nil {
			return notFoundOr(err)
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "sales.delete",
			TargetType: "SalesInfo",
			TargetID:   info.ID,
			Message:    "deleted sales info",
			Extra: map[string]interface{}{
				"contract_id":     contract.ID,
				"project_code":    contract.ProjectCode,
				"contract_number": contract.ContractNumber,
			},
		})
		if err := tx.AppendOperationLog(ctx, row); err != nil {
			return err
		}
		return tx.DeleteSalesInfo(ctx, contract.ID)
	})
}

func (s *Contracts) Sales(ctx context.Context, contractID int64) (*model.SalesInfo, error) {
	if _, err := s.store.GetContract(ctx, contractID); err != nil {
		return nil, notFoundOr(err)
	}
	info, err := s.store.GetSalesInfo(ctx, contractID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return info, nil
}

// AuthorizeExport gates the excel/pdf exports like any other file
// access: the decision's audit row is persisted whether or not access
// is granted.
func (s *Contracts) AuthorizeExport(ctx context.Context, actor model.Principal, contractID int64, format string) error {
	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return notFoundOr(err)
	}

	decision := EvaluateExport(&actor, contract, format)
	err = s.store.InTx(ctx, func(tx Store) error {
		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     decision.AuditAction,
			TargetType: "Contract",
			TargetID:   contract.ID,
			Message:    decision.AuditMessage,
			Extra:      decision.AuditExtra,
		})
		return tx.AppendOperationLog(ctx, row)
	})
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, decision.DenialMessage)
	}
	return nil
}

// OperationLogs queries the global audit trail.
func (s *Contracts) OperationLogs(ctx context.Context, filter audit.Filter) ([]model.OperationLog, error) {
	return s.store.ListOperationLogs(ctx, filter)
}

// ContractOperationLogs lists the audit rows targeting one contract.
func (s *Contracts) ContractOperationLogs(ctx context.Context, contractID int64) ([]model.OperationLog, error) {
	if _, err := s.store.GetContract(ctx, contractID); err != nil {
		return nil, notFoundOr(err)
	}
	return s.store.ListOperationLogs(ctx, audit.Filter{
		TargetType: "Contract",
		TargetID:   &contractID,
	})
}
