package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fszn/contracts-service/internal/audit"
	"github.com/fszn/contracts-service/internal/model"
)

// Acceptance, procurement, department-leader and feedback records share
// the same shape as the money records: mutate plus audit in one tx.

type CreateAcceptanceInput struct {
	StageName string
	PersonID  *int64
	Date      time.Time
	Status    string
	Remarks   string
}

func (s *Records) CreateAcceptance(ctx context.Context, actor model.Principal, contractID int64, in CreateAcceptanceInput) (*model.Acceptance, error) {
	stageName := strings.TrimSpace(in.StageName)
	if stageName == "" {
		return nil, fmt.Errorf("%w: stage_name is required", ErrInvalidInput)
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = model.AcceptanceStatusDefault
	}

	var acceptance *model.Acceptance
	err := s.store.InTx(ctx, func(tx Store) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return notFoundOr(err)
		}

		acceptance = &model.Acceptance{
			ContractID: contract.ID,
			StageName:  stageName,
			PersonID:   in.PersonID,
			Date:       in.Date,
			Status:     status,
			Remarks:    in.Remarks,
		}
		if err := tx.CreateAcceptance(ctx, acceptance); err != nil {
			return err
		}

		// Acceptance audit rows target the contract, not the record,
		// so they appear on the contract's log page.
		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "acceptance.create",
			TargetType: "Contract",
			TargetID:   contract.ID,
			Message:    fmt.Sprintf("added acceptance stage: %s", stageName),
			Extra: map[string]interface{}{
				"contract_id": contract.ID,
				"stage_name":  stageName,
				"date":        in.Date.Format("2006-01-02"),
				"status":      status,
				"person_id":   in.PersonID,
			},
		})
		return tx.AppendOperationLog(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return acceptance, nil
}

func (s *Records) DeleteAcceptance(ctx context.Context, actor model.Principal, contractID, acceptanceID int64) (*model.Acceptance, error) {
	var acceptance *model.Acceptance
	err := s.store.InTx(ctx, func(tx Store) error {
		current, err := tx.GetAcceptance(ctx, acceptanceID, contractID)
		if err != nil {
			return notFoundOr(err)
		}
		if err := tx.DeleteAcceptance(ctx, acceptanceID, contractID); err != nil {
			return notFoundOr(err)
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "acceptance.delete",
			TargetType: "Contract",
			TargetID:   contractID,
			Message:    fmt.Sprintf("deleted acceptance stage: %s", current.StageName),
			Extra: map[string]interface{}{
				"acceptance_id": current.ID,
				"stage_name":    current.StageName,
				"date":          current.Date.Format("2006-01-02"),
				"status":        current.Status,
			},
		})
		if err := tx.AppendOperationLog(ctx, row); err != nil {
			return err
		}
		acceptance = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acceptance, nil
}

func (s *Records) ListAcceptances(ctx context.Context, contractID int64) ([]model.Acceptance, error) {
	return s.store.ListAcceptances(ctx, contractID)
}

type CreateProcurementInput struct {
	ItemName     string
	Quantity     int
	Unit         string
	ExpectedDate *time.Time
	Status       string
	PersonID     *int64
	Remarks      string
}

func (s *Records) CreateProcurement(ctx context.Context, actor model.Principal, contractID int64, in CreateProcurementInput) (*model.ProcurementItem, error) {
	itemName := strings.TrimSpace(in.ItemName)
	if itemName == "" {
		return nil, fmt.Errorf("%w: item_name is required", ErrInvalidInput)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = model.ProcurementStatusDefault
	}

	var item *model.ProcurementItem
	err := s.store.InTx(ctx, func(tx Store) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return notFoundOr(err)
		}

		item = &model.ProcurementItem{
			ContractID:   contract.ID,
			ItemName:     itemName,
			Quantity:     in.Quantity,
			Unit:         in.Unit,
			ExpectedDate: in.ExpectedDate,
			Status:       status,
			PersonID:     in.PersonID,
			Remarks:      in.Remarks,
		}
		if err := tx.CreateProcurement(ctx, item); err != nil {
			return err
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "procurement.create",
			TargetType: "ProcurementItem",
			TargetID:   item.ID,
			Message:    fmt.Sprintf("added procurement item: %s", itemName),
			Extra: map[string]interface{}{
				"contract_id":   contract.ID,
				"quantity":      in.Quantity,
				"unit":          in.Unit,
				"expected_date": dateString(in.ExpectedDate),
				"status":        status,
				"person_id":     in.PersonID,
			},
		})
		return tx.AppendOperationLog(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Records) DeleteProcurement(ctx context.Context, actor model.Principal, contractID, itemID int64) (*model.ProcurementItem, error) {
	var item *model.ProcurementItem
	err := s.store.InTx(ctx, func(tx Store) error {
		current, err := tx.GetProcurement(ctx, itemID, contractID)
		if err != nil {
			return notFoundOr(err)
		}
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return notFoundOr(err)
		}
		if err := tx.DeleteProcurement(ctx, itemID, contractID); err != nil {
			return notFoundOr(err)
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "procurement.delete",
			TargetType: "ProcurementItem",
			TargetID:   current.ID,
			Message:    fmt.Sprintf("deleted procurement item: %s", current.ItemName),
			Extra: map[string]interface{}{
				"contract_id":  contractID,
				"project_code": contract.ProjectCode,
			},
		})
		if err := tx.AppendOperationLog(ctx, row); err != nil {
			return err
		}
		item = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Records) ListProcurements(ctx context.Context, contractID int64) ([]model.ProcurementItem, error) {
	return s.store.ListProcurements(ctx, contractID)
}

func (s *Records) AddLeader(ctx context.Context, actor model.Principal, contractID, departmentID, personID int64) (*model.ProjectDepartmentLeader, error) {
	if departmentID <= 0 || personID <= 0 {
		return nil, fmt.Errorf("%w: department_id and person_id are required", ErrInvalidInput)
	}

	var leader *model.ProjectDepartmentLeader
	err := s.store.InTx(ctx, func(tx Store) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return notFoundOr(err)
		}

		if existing, err := tx.FindLeader(ctx, contract.ID, departmentID, personID); err == nil && existing != nil {
			return fmt.Errorf("%w: leader already assigned for this department", ErrInvalidInput)
		} else if err != nil && notFoundOr(err) != ErrNotFound {
			return err
		}

		leader = &model.ProjectDepartmentLeader{
			ContractID:   contract.ID,
			DepartmentID: departmentID,
			PersonID:     personID,
		}
		if err := tx.CreateLeader(ctx, leader); err != nil {
			return err
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "leader.create",
			TargetType: "ProjectDepartmentLeader",
			TargetID:   leader.ID,
			Message:    "assigned department leader",
			Extra: map[string]interface{}{
				"contract_id":   contract.ID,
				"department_id": departmentID,
				"person_id":     personID,
			},
		})
		return tx.AppendOperationLog(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return leader, nil
}

func (s *Records) RemoveLeader(ctx context.Context, actor model.Principal, contractID, leaderID int64) error {
	return s.store.InTx(ctx, func(tx Store) error {
		if err := tx.DeleteLeader(ctx, leaderID, contractID); err != nil {
			return notFoundOr(err)
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "leader.delete",
			TargetType: "ProjectDepartmentLeader",
			TargetID:   leaderID,
			Message:    "removed department leader",
			Extra: map[string]interface{}{
				"contract_id": contractID,
			},
		})
		return tx.AppendOperationLog(ctx, row)
	})
}

func (s *Records) ListLeaders(ctx context.Context, contractID int64) ([]model.ProjectDepartmentLeader, error) {
	return s.store.ListLeaders(ctx, contractID)
}

type CreateFeedbackInput struct {
	Content   string
	HandlerID *int64
	Result    string
}

func (s *Records) CreateFeedback(ctx context.Context, actor model.Principal, contractID int64, in CreateFeedbackInput) (*model.Feedback, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	var feedback *model.Feedback
	err := s.store.InTx(ctx, func(tx Store) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return notFoundOr(err)
		}

		feedback = &model.Feedback{
			ContractID:   contract.ID,
			Content:      content,
			HandlerID:    in.HandlerID,
			Result:       in.Result,
			FeedbackTime: time.Now().UTC(),
		}
		if err := tx.CreateFeedback(ctx, feedback); err != nil {
			return err
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "feedback.create",
			TargetType: "Contract",
			TargetID:   contract.ID,
			Message:    "added customer feedback",
			Extra: map[string]interface{}{
				"contract_id":     contract.ID,
				"project_code":    contract.ProjectCode,
				"contract_number": contract.ContractNumber,
				"handler_id":      in.HandlerID,
				"is_resolved":     false,
			},
		})
		return tx.AppendOperationLog(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return feedback, nil
}

// SetFeedbackResolved flips the resolution flag; resolving stamps the
// completion time, unresolving clears it.
func (s *Records) SetFeedbackResolved(ctx context.Context, actor model.Principal, contractID, feedbackID int64, resolved bool) (*model.Feedback, error) {
	var feedback *model.Feedback
	err := s.store.InTx(ctx, func(tx Store) error {
		current, err := tx.GetFeedback(ctx, feedbackID, contractID)
		if err != nil {
			return notFoundOr(err)
		}

		var completion *time.Time
		if resolved {
			now := time.Now().UTC()
			completion = &now
		}
		if err := tx.SetFeedbackResolution(ctx, current.ID, resolved, completion); err != nil {
			return err
		}
		current.IsResolved = resolved
		current.CompletionTime = completion

		action := "feedback.unresolve"
		message := "marked feedback as unresolved"
		if resolved {
			action = "feedback.resolve"
			message = "marked feedback as resolved"
		}
		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     action,
			TargetType: "Feedback",
			TargetID:   current.ID,
			Message:    message,
			Extra: map[string]interface{}{
				"contract_id": contractID,
			},
		})
		if err := tx.AppendOperationLog(ctx, row); err != nil {
			return err
		}
		feedback = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *Records) DeleteFeedback(ctx context.Context, actor model.Principal, contractID, feedbackID int64) (*model.Feedback, error) {
	var feedback *model.Feedback
	err := s.store.InTx(ctx, func(tx Store) error {
		current, err := tx.GetFeedback(ctx, feedbackID, contractID)
		if err != nil {
			return notFoundOr(err)
		}
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return notFoundOr(err)
		}
		if err := tx.DeleteFeedback(ctx, feedbackID, contractID); err != nil {
			return notFoundOr(err)
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "feedback.delete",
			TargetType: "Contract",
			TargetID:   contract.ID,
			Message:    "deleted customer feedback",
			Extra: map[string]interface{}{
				"contract_id":     contract.ID,
				"project_code":    contract.ProjectCode,
				"contract_number": contract.ContractNumber,
				"handler_id":      current.HandlerID,
				"is_resolved":     current.IsResolved,
			},
		})
		if err := tx.AppendOperationLog(ctx, row); err != nil {
			return err
		}
		feedback = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *Records) ListFeedbacks(ctx context.Context, contractID int64) ([]model.Feedback, error) {
	return s.store.ListFeedbacks(ctx, contractID)
}
