package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fszn/contracts-service/internal/audit"
	"github.com/fszn/contracts-service/internal/model"
	"github.com/fszn/contracts-service/internal/service"
)

// Store implements service.Store on postgres via gorm.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ service.Store = (*Store)(nil)

// InTx runs fn against a store bound to one database transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx service.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// ------------------------------------------------------------ companies

func (s *Store) FindOrCreateCompany(ctx context.Context, name string) (*model.Company, error) {
	var company model.Company
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, name, created_at FROM companies WHERE name = ?
	`, name).Scan(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID != 0 {
		return &company, nil
	}

	err = s.db.WithContext(ctx).Raw(`
		INSERT INTO companies (name) VALUES (?)
		RETURNING id, name, created_at
	`, name).Scan(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// ------------------------------------------------------------ contracts

type contractRow struct {
	ID                  int64
	CompanyID           int64
	ProjectCode         string
	ContractNumber      string
	Name                string
	ClientManager       string
	ClientContact       string
	OurManager          string
	PlannedDeliveryDate *time.Time
	CreatedByID         *int64
	CreatedAt           time.Time
	CompanyName         string
	CompanyCreatedAt    time.Time
}

func (r contractRow) toModel() model.Contract {
	return model.Contract{
		ID:                  r.ID,
		CompanyID:           r.CompanyID,
		ProjectCode:         r.ProjectCode,
		ContractNumber:      r.ContractNumber,
		Name:                r.Name,
		ClientManager:       r.ClientManager,
		ClientContact:       r.ClientContact,
		OurManager:          r.OurManager,
		PlannedDeliveryDate: r.PlannedDeliveryDate,
		CreatedByID:         r.CreatedByID,
		CreatedAt:           r.CreatedAt,
		Company: model.Company{
			ID:        r.CompanyID,
			Name:      r.CompanyName,
			CreatedAt: r.CompanyCreatedAt,
		},
	}
}

const contractSelect = `
	SELECT
		c.id,
		c.company_id,
		c.project_code,
		c.contract_number,
		c.name,
		c.client_manager,
		c.client_contact,
		c.our_manager,
		c.planned_delivery_date,
		c.created_by_id,
		c.created_at,
		co.name AS company_name,
		co.created_at AS company_created_at
	FROM contracts c
	JOIN companies co ON co.id = c.company_id
`

func (s *Store) GetContract(ctx context.Context, id int64) (*model.Contract, error) {
	var row contractRow
	err := s.db.WithContext(ctx).Raw(contractSelect+` WHERE c.id = ?`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	contract := row.toModel()
	return &contract, nil
}

func (s *Store) GetContractByProjectCode(ctx context.Context, code string) (*model.Contract, error) {
	var row contractRow
	err := s.db.WithContext(ctx).Raw(contractSelect+` WHERE c.project_code = ?`, code).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	contract := row.toModel()
	return &contract, nil
}

func (s *Store) CreateContract(ctx context.Context, contract *model.Contract) error {
	var created struct {
		ID        int64
		CreatedAt time.Time
	}
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO contracts (
			company_id, project_code, contract_number, name,
			client_manager, client_contact, our_manager, created_by_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at
	`,
		contract.CompanyID,
		contract.ProjectCode,
		contract.ContractNumber,
		contract.Name,
		contract.ClientManager,
		contract.ClientContact,
		contract.OurManager,
		contract.CreatedByID,
	).Scan(&created).Error
	if err != nil {
		return err
	}
	contract.ID = created.ID
	contract.CreatedAt = created.CreatedAt
	return nil
}

func (s *Store) SetContractPlannedDelivery(ctx context.Context, id int64, date *time.Time) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE contracts SET planned_delivery_date = ? WHERE id = ?
	`, date, id).Error
}

// DeleteContractCascade removes the contract and every child row.
// ProjectFile rows are hard-deleted here, unlike the single-file path.
func (s *Store) DeleteContractCascade(ctx context.Context, id int64) error {
	statements := []string{
		`DELETE FROM tasks WHERE contract_id = ?`,
		`DELETE FROM procurement_items WHERE contract_id = ?`,
		`DELETE FROM acceptances WHERE contract_id = ?`,
		`DELETE FROM payments WHERE contract_id = ?`,
		`DELETE FROM invoices WHERE contract_id = ?`,
		`DELETE FROM refunds WHERE contract_id = ?`,
		`DELETE FROM feedbacks WHERE contract_id = ?`,
		`DELETE FROM project_department_leaders WHERE contract_id = ?`,
		`DELETE FROM sales_infos WHERE contract_id = ?`,
		`DELETE FROM project_files WHERE contract_id = ?`,
	}
	for _, stmt := range statements {
		if err := s.db.WithContext(ctx).Exec(stmt, id).Error; err != nil {
			return err
		}
	}

	result := s.db.WithContext(ctx).Exec(`DELETE FROM contracts WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Store) ListContracts(ctx context.Context, filter service.ContractFilter) ([]model.Contract, error) {
	query := contractSelect
	var joins []string
	var conditions []string
	var args []interface{}

	if filter.CompanyContains != "" {
		conditions = append(conditions, `co.name ILIKE ?`)
		args = append(args, "%"+filter.CompanyContains+"%")
	}
	if filter.ProjectCodeContains != "" {
		conditions = append(conditions, `c.project_code ILIKE ?`)
		args = append(args, "%"+filter.ProjectCodeContains+"%")
	}
	if filter.ContractNumberContains != "" {
		conditions = append(conditions, `c.contract_number ILIKE ?`)
		args = append(args, "%"+filter.ContractNumberContains+"%")
	}
	if filter.SalesPersonContains != "" {
		joins = append(joins, `
			JOIN sales_infos sf ON sf.contract_id = c.id
			JOIN persons sp ON sp.id = sf.sales_person_id`)
		conditions = append(conditions, `sp.name ILIKE ?`)
		args = append(args, "%"+filter.SalesPersonContains+"%")
	}
	if filter.LeaderContains != "" {
		joins = append(joins, `
			JOIN project_department_leaders pdl ON pdl.contract_id = c.id
			JOIN persons lp ON lp.id = pdl.person_id`)
		conditions = append(conditions, `lp.name ILIKE ?`)
		args = append(args, "%"+filter.LeaderContains+"%")
	}

	order := `c.created_at DESC`
	switch filter.Order {
	case "created_at_asc":
		order = `c.created_at ASC`
	case "deal_date_asc", "deal_date_desc":
		if filter.SalesPersonContains == "" {
			joins = append(joins, `LEFT JOIN sales_infos sf ON sf.contract_id = c.id`)
		}
		if filter.Order == "deal_date_asc" {
			order = `sf.deal_date ASC, c.created_at DESC`
		} else {
			order = `sf.deal_date DESC, c.created_at DESC`
		}
	}

	query += strings.Join(joins, "\n")
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY " + order

	var rows []contractRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	// Joins against leaders can duplicate contracts.
	contracts := make([]model.Contract, 0, len(rows))
	seen := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ID]; ok {
			continue
		}
		seen[row.ID] = struct{}{}
		contracts = append(contracts, row.toModel())
	}
	return contracts, nil
}

// --------------------------------------------------------------- counts

func (s *Store) ActivityCounts(ctx context.Context, contractID int64) (model.ActivityCounts, error) {
	var counts model.ActivityCounts
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM tasks WHERE contract_id = @id) AS tasks,
			(SELECT COUNT(*) FROM acceptances WHERE contract_id = @id) AS acceptances,
			(SELECT COUNT(*) FROM acceptances WHERE contract_id = @id AND status = @passed) AS passed_acceptances,
			(SELECT COUNT(*) FROM payments WHERE contract_id = @id) AS payments,
			(SELECT COUNT(*) FROM invoices WHERE contract_id = @id) AS invoices,
			(SELECT COUNT(*) FROM feedbacks WHERE contract_id = @id AND is_resolved = FALSE) AS unresolved_feedback
	`, map[string]interface{}{"id": contractID, "passed": model.AcceptanceStatusPassed}).Scan(&counts).Error
	return counts, err
}

func (s *Store) RecordCounts(ctx context.Context, contractID int64) (service.RecordCounts, error) {
	var counts service.RecordCounts
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM tasks WHERE contract_id = @id) AS tasks,
			(SELECT COUNT(*) FROM procurement_items WHERE contract_id = @id) AS procurements,
			(SELECT COUNT(*) FROM acceptances WHERE contract_id = @id) AS acceptances,
			(SELECT COUNT(*) FROM payments WHERE contract_id = @id) AS payments,
			(SELECT COUNT(*) FROM invoices WHERE contract_id = @id) AS invoices,
			(SELECT COUNT(*) FROM refunds WHERE contract_id = @id) AS refunds,
			(SELECT COUNT(*) FROM feedbacks WHERE contract_id = @id) AS feedbacks,
			(SELECT COUNT(*) FROM project_files WHERE contract_id = @id AND is_deleted = FALSE) AS files
	`, map[string]interface{}{"id": contractID}).Scan(&counts).Error
	return counts, err
}

// ----------------------------------------------------------- sales info

func (s *Store) GetSalesInfo(ctx context.Context, contractID int64) (*model.SalesInfo, error) {
	var info model.SalesInfo
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, quote_amount, quote_date, deal_date, sales_person_id, remarks
		FROM sales_infos
		WHERE contract_id = ?
	`, contractID).Scan(&info).Error
	if err != nil {
		return nil, err
	}
	if info.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &info, nil
}

func (s *Store) CreateSalesInfo(ctx context.Context, info *model.SalesInfo) error {
	return s.db.WithContext(ctx).Raw(`
		INSERT INTO sales_infos (contract_id, quote_amount, quote_date, deal_date, sales_person_id, remarks)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		info.ContractID,
		info.QuoteAmount,
		info.QuoteDate,
		info.DealDate,
		info.SalesPersonID,
		info.Remarks,
	).Scan(&info.ID).Error
}

func (s *Store) UpdateSalesInfo(ctx context.Context, info *model.SalesInfo) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE sales_infos
		SET quote_amount = ?, quote_date = ?, deal_date = ?, sales_person_id = ?, remarks = ?
		WHERE id = ?
	`,
		info.QuoteAmount,
		info.QuoteDate,
		info.DealDate,
		info.SalesPersonID,
		info.Remarks,
		info.ID,
	).Error
}

func (s *Store) DeleteSalesInfo(ctx context.Context, contractID int64) error {
	result := s.db.WithContext(ctx).Exec(`DELETE FROM sales_infos WHERE contract_id = ?`, contractID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// scopedDelete removes one child row by (id, contract_id).
func (s *Store) scopedDelete(ctx context.Context, table string, id, contractID int64) error {
	result := s.db.WithContext(ctx).Exec(
		fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND contract_id = ?`, table),
		id, contractID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ---------------------------------------------------------------- tasks

func (s *Store) CreateTask(ctx context.Context, task *model.Task) error {
	return s.db.WithContext(ctx).Raw(`
		INSERT INTO tasks (contract_id, department_id, person_id, title, start_date, end_date, status, remarks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		task.ContractID,
		task.DepartmentID,
		task.PersonID,
		task.Title,
		task.StartDate,
		task.EndDate,
		task.Status,
		task.Remarks,
	).Scan(&task.ID).Error
}

func (s *Store) GetTask(ctx context.Context, id, contractID int64) (*model.Task, error) {
	var task model.Task
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, department_id, person_id, title, start_date, end_date, status, remarks
		FROM tasks
		WHERE id = ? AND contract_id = ?
	`, id, contractID).Scan(&task).Error
	if err != nil {
		return nil, err
	}
	if task.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &task, nil
}

func (s *Store) UpdateTask(ctx context.Context, task *model.Task) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE tasks
		SET department_id = ?, person_id = ?, title = ?, start_date = ?, end_date = ?, status = ?, remarks = ?
		WHERE id = ? AND contract_id = ?
	`,
		task.DepartmentID,
		task.PersonID,
		task.Title,
		task.StartDate,
		task.EndDate,
		task.Status,
		task.Remarks,
		task.ID,
		task.ContractID,
	).Error
}

func (s *Store) DeleteTask(ctx context.Context, id, contractID int64) error {
	return s.scopedDelete(ctx, "tasks", id, contractID)
}

func (s *Store) ListTasks(ctx context.Context, contractID int64) ([]model.Task, error) {
	var tasks []model.Task
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, department_id, person_id, title, start_date, end_date, status, remarks
		FROM tasks
		WHERE contract_id = ?
		ORDER BY start_date ASC, id ASC
	`, contractID).Scan(&tasks).Error
	return tasks, err
}

// ---------------------------------------------------------- procurement

func (s *Store) CreateProcurement(ctx context.Context, item *model.ProcurementItem) error {
	return s.db.WithContext(ctx).Raw(`
		INSERT INTO procurement_items (contract_id, item_name, quantity, unit, expected_date, status, person_id, remarks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		item.ContractID,
		item.ItemName,
		item.Quantity,
		item.Unit,
		item.ExpectedDate,
		item.Status,
		item.PersonID,
		item.Remarks,
	).Scan(&item.ID).Error
}

func (s *Store) GetProcurement(ctx context.Context, id, contractID int64) (*model.ProcurementItem, error) {
	var item model.ProcurementItem
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, item_name, quantity, unit, expected_date, status, person_id, remarks
		FROM procurement_items
		WHERE id = ? AND contract_id = ?
	`, id, contractID).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (s *Store) DeleteProcurement(ctx context.Context, id, contractID int64) error {
	return s.scopedDelete(ctx, "procurement_items", id, contractID)
}

func (s *Store) ListProcurements(ctx context.Context, contractID int64) ([]model.ProcurementItem, error) {
	var items []model.ProcurementItem
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, item_name, quantity, unit, expected_date, status, person_id, remarks
		FROM procurement_items
		WHERE contract_id = ?
		ORDER BY id ASC
	`, contractID).Scan(&items).Error
	return items, err
}

// ----------------------------------------------------------- acceptance

func (s *Store) CreateAcceptance(ctx context.Context, acceptance *model.Acceptance) error {
	return s.db.WithContext(ctx).Raw(`
		INSERT INTO acceptances (contract_id, stage_name, person_id, date, status, remarks)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		acceptance.ContractID,
		acceptance.StageName,
		acceptance.PersonID,
		acceptance.Date,
		acceptance.Status,
		acceptance.Remarks,
	).Scan(&acceptance.ID).Error
}

func (s *Store) GetAcceptance(ctx context.Context, id, contractID int64) (*model.Acceptance, error) {
	var acceptance model.Acceptance
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, stage_name, person_id, date, status, remarks
		FROM acceptances
		WHERE id = ? AND contract_id = ?
	`, id, contractID).Scan(&acceptance).Error
	if err != nil {
		return nil, err
	}
	if acceptance.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &acceptance, nil
}

func (s *Store) DeleteAcceptance(ctx context.Context, id, contractID int64) error {
	return s.scopedDelete(ctx, "acceptances", id, contractID)
}

func (s *Store) ListAcceptances(ctx context.Context, contractID int64) ([]model.Acceptance, error) {
	var acceptances []model.Acceptance
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, stage_name, person_id, date, status, remarks
		FROM acceptances
		WHERE contract_id = ?
		ORDER BY date ASC, id ASC
	`, contractID).Scan(&acceptances).Error
	return acceptances, err
}

// ------------------------------------------------------------- payments

func (s *Store) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return s.db.WithContext(ctx).Raw(`
		INSERT INTO payments (contract_id, amount, date, method, remarks)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`,
		payment.ContractID,
		payment.Amount,
		payment.Date,
		payment.Method,
		payment.Remarks,
	).Scan(&payment.ID).Error
}

func (s *Store) GetPayment(ctx context.Context, id, contractID int64) (*model.Payment, error) {
	var payment model.Payment
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, amount, date, method, remarks
		FROM payments
		WHERE id = ? AND contract_id = ?
	`, id, contractID).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &payment, nil
}

func (s *Store) DeletePayment(ctx context.Context, id, contractID int64) error {
	return s.scopedDelete(ctx, "payments", id, contractID)
}

func (s *Store) ListPayments(ctx context.Context, contractID int64) ([]model.Payment, error) {
	var payments []model.Payment
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, amount, date, method, remarks
		FROM payments
		WHERE contract_id = ?
		ORDER BY date ASC, id ASC
	`, contractID).Scan(&payments).Error
	return payments, err
}

// ------------------------------------------------------------- invoices

func (s *Store) CreateInvoice(ctx context.Context, invoice *model.Invoice) error {
	return s.db.WithContext(ctx).Raw(`
		INSERT INTO invoices (contract_id, invoice_number, amount, date, remarks)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`,
		invoice.ContractID,
		invoice.InvoiceNumber,
		invoice.Amount,
		invoice.Date,
		invoice.Remarks,
	).Scan(&invoice.ID).Error
}

func (s *Store) GetInvoice(ctx context.Context, id, contractID int64) (*model.Invoice, error) {
	var invoice model.Invoice
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, invoice_number, amount, date, remarks
		FROM invoices
		WHERE id = ? AND contract_id = ?
	`, id, contractID).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &invoice, nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id, contractID int64) error {
	return s.scopedDelete(ctx, "invoices", id, contractID)
}

func (s *Store) ListInvoices(ctx context.Context, contractID int64) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, invoice_number, amount, date, remarks
		FROM invoices
		WHERE contract_id = ?
		ORDER BY date ASC, id ASC
	`, contractID).Scan(&invoices).Error
	return invoices, err
}

// -------------------------------------------------------------- refunds

func (s *Store) CreateRefund(ctx context.Context, refund *model.Refund) error {
	return s.db.WithContext(ctx).Raw(`
		INSERT INTO refunds (contract_id, amount, date, reason, remarks)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`,
		refund.ContractID,
		refund.Amount,
		refund.Date,
		refund.Reason,
		refund.Remarks,
	).Scan(&refund.ID).Error
}

func (s *Store) GetRefund(ctx context.Context, id, contractID int64) (*model.Refund, error) {
	var refund model.Refund
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, amount, date, reason, remarks
		FROM refunds
		WHERE id = ? AND contract_id = ?
	`, id, contractID).Scan(&refund).Error
	if err != nil {
		return nil, err
	}
	if refund.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &refund, nil
}

func (s *Store) DeleteRefund(ctx context.Context, id, contractID int64) error {
	return s.scopedDelete(ctx, "refunds", id, contractID)
}

func (s *Store) ListRefunds(ctx context.Context, contractID int64) ([]model.Refund, error) {
	var refunds []model.Refund
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, amount, date, reason, remarks
		FROM refunds
		WHERE contract_id = ?
		ORDER BY date ASC, id ASC
	`, contractID).Scan(&refunds).Error
	return refunds, err
}

// ------------------------------------------------------------- feedback

func (s *Store) CreateFeedback(ctx context.Context, feedback *model.Feedback) error {
	return s.db.WithContext(ctx).Raw(`
		INSERT INTO feedbacks (contract_id, content, handler_id, result, is_resolved, feedback_time)
		VALUES (?, ?, ?, ?, FALSE, ?)
		RETURNING id
	`,
		feedback.ContractID,
		feedback.Content,
		feedback.HandlerID,
		feedback.Result,
		feedback.FeedbackTime,
	).Scan(&feedback.ID).Error
}

func (s *Store) GetFeedback(ctx context.Context, id, contractID int64) (*model.Feedback, error) {
	var feedback model.Feedback
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, content, handler_id, result, is_resolved, feedback_time, completion_time
		FROM feedbacks
		WHERE id = ? AND contract_id = ?
	`, id, contractID).Scan(&feedback).Error
	if err != nil {
		return nil, err
	}
	if feedback.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &feedback, nil
}

func (s *Store) SetFeedbackResolution(ctx context.Context, id int64, resolved bool, completionTime *time.Time) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE feedbacks SET is_resolved = ?, completion_time = ? WHERE id = ?
	`, resolved, completionTime, id).Error
}

func (s *Store) DeleteFeedback(ctx context.Context, id, contractID int64) error {
	return s.scopedDelete(ctx, "feedbacks", id, contractID)
}

func (s *Store) ListFeedbacks(ctx context.Context, contractID int64) ([]model.Feedback, error) {
	var feedbacks []model.Feedback
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, content, handler_id, result, is_resolved, feedback_time, completion_time
		FROM feedbacks
		WHERE contract_id = ?
		ORDER BY feedback_time DESC, id DESC
	`, contractID).Scan(&feedbacks).Error
	return feedbacks, err
}

// -------------------------------------------------------------- leaders

func (s *Store) CreateLeader(ctx context.Context, leader *model.ProjectDepartmentLeader) error {
	return s.db.WithContext(ctx).Raw(`
		INSERT INTO project_department_leaders (contract_id, department_id, person_id)
		VALUES (?, ?, ?)
		RETURNING id
	`,
		leader.ContractID,
		leader.DepartmentID,
		leader.PersonID,
	).Scan(&leader.ID).Error
}

func (s *Store) FindLeader(ctx context.Context, contractID, departmentID, personID int64) (*model.ProjectDepartmentLeader, error) {
	var leader model.ProjectDepartmentLeader
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, department_id, person_id
		FROM project_department_leaders
		WHERE contract_id = ? AND department_id = ? AND person_id = ?
	`, contractID, departmentID, personID).Scan(&leader).Error
	if err != nil {
		return nil, err
	}
	if leader.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &leader, nil
}

func (s *Store) DeleteLeader(ctx context.Context, id, contractID int64) error {
	return s.scopedDelete(ctx, "project_department_leaders", id, contractID)
}

func (s *Store) ListLeaders(ctx context.Context, contractID int64) ([]model.ProjectDepartmentLeader, error) {
	var leaders []model.ProjectDepartmentLeader
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, department_id, person_id
		FROM project_department_leaders
		WHERE contract_id = ?
		ORDER BY department_id ASC, person_id ASC
	`, contractID).Scan(&leaders).Error
	return leaders, err
}

// ---------------------------------------------------------------- files

func (s *Store) CreateFile(ctx context.Context, file *model.ProjectFile) error {
	var created struct {
		ID        int64
		CreatedAt time.Time
	}
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO project_files (
			contract_id, uploader_id, file_type, version, author,
			original_filename, stored_filename, content_type, file_size,
			is_public, owner_role
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at
	`,
		file.ContractID,
		file.UploaderID,
		string(file.FileType),
		file.Version,
		file.Author,
		file.OriginalFilename,
		file.StoredFilename,
		file.ContentType,
		file.FileSize,
		file.IsPublic,
		file.OwnerRole,
	).Scan(&created).Error
	if err != nil {
		return err
	}
	file.ID = created.ID
	file.CreatedAt = created.CreatedAt
	return nil
}

func (s *Store) GetFile(ctx context.Context, id, contractID int64) (*model.ProjectFile, error) {
	var file model.ProjectFile
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, uploader_id, file_type, version, author,
			original_filename, stored_filename, content_type, file_size,
			is_public, owner_role, is_deleted, created_at
		FROM project_files
		WHERE id = ? AND contract_id = ?
	`, id, contractID).Scan(&file).Error
	if err != nil {
		return nil, err
	}
	if file.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &file, nil
}

func (s *Store) SoftDeleteFile(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Exec(`
		UPDATE project_files SET is_deleted = TRUE WHERE id = ? AND is_deleted = FALSE
	`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Store) ListFiles(ctx context.Context, contractID int64) ([]model.ProjectFile, error) {
	var files []model.ProjectFile
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, uploader_id, file_type, version, author,
			original_filename, stored_filename, content_type, file_size,
			is_public, owner_role, is_deleted, created_at
		FROM project_files
		WHERE contract_id = ? AND is_deleted = FALSE
		ORDER BY created_at ASC, id ASC
	`, contractID).Scan(&files).Error
	return files, err
}

// ------------------------------------------------------- operation logs

func (s *Store) AppendOperationLog(ctx context.Context, row model.OperationLog) error {
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO operation_logs (user_id, action, target_type, target_id, message, extra_data)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		row.UserID,
		row.Action,
		row.TargetType,
		row.TargetID,
		row.Message,
		row.ExtraData,
	).Error
}

func (s *Store) ListOperationLogs(ctx context.Context, filter audit.Filter) ([]model.OperationLog, error) {
	query := `
		SELECT id, user_id, action, target_type, target_id, message, extra_data, created_at
		FROM operation_logs
	`
	var conditions []string
	var args []interface{}

	if filter.ActionContains != "" {
		conditions = append(conditions, `action ILIKE ?`)
		args = append(args, "%"+filter.ActionContains+"%")
	}
	if filter.TargetType != "" {
		conditions = append(conditions, `target_type = ?`)
		args = append(args, filter.TargetType)
	}
	if filter.TargetID != nil {
		conditions = append(conditions, `target_id = ?`)
		args = append(args, *filter.TargetID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, filter.EffectiveLimit())

	var logs []model.OperationLog
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
