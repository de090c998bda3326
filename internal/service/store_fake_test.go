package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fszn/contracts-service/internal/audit"
	"github.com/fszn/contracts-service/internal/model"
)

// fakeStore is an in-memory Store for service tests. InTx runs the
// callback against the same state without rollback, which is enough
// because the services append audit rows only after the guarded
// mutation has succeeded.
type fakeStore struct {
	nextID int64

	companies    map[int64]*model.Company
	contracts    map[int64]*model.Contract
	sales        map[int64]*model.SalesInfo // keyed by contract id
	tasks        map[int64]*model.Task
	procurements map[int64]*model.ProcurementItem
	acceptances  map[int64]*model.Acceptance
	payments     map[int64]*model.Payment
	invoices     map[int64]*model.Invoice
	refunds      map[int64]*model.Refund
	feedbacks    map[int64]*model.Feedback
	leaders      map[int64]*model.ProjectDepartmentLeader
	files        map[int64]*model.ProjectFile
	logs         []model.OperationLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		companies:    map[int64]*model.Company{},
		contracts:    map[int64]*model.Contract{},
		sales:        map[int64]*model.SalesInfo{},
		tasks:        map[int64]*model.Task{},
		procurements: map[int64]*model.ProcurementItem{},
		acceptances:  map[int64]*model.Acceptance{},
		payments:     map[int64]*model.Payment{},
		invoices:     map[int64]*model.Invoice{},
		refunds:      map[int64]*model.Refund{},
		feedbacks:    map[int64]*model.Feedback{},
		leaders:      map[int64]*model.ProjectDepartmentLeader{},
		files:        map[int64]*model.ProjectFile{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) seedContract(projectCode string) *model.Contract {
	company := &model.Company{ID: f.id(), Name: "Acme Industrial", CreatedAt: time.Now()}
	f.companies[company.ID] = company
	contract := &model.Contract{
		ID:             f.id(),
		CompanyID:      company.ID,
		ProjectCode:    projectCode,
		ContractNumber: "HT-2024-001",
		Name:           "Sorting line",
		CreatedAt:      time.Now(),
		Company:        *company,
	}
	f.contracts[contract.ID] = contract
	return contract
}

func (f *fakeStore) logActions() []string {
	actions := make([]string, 0, len(f.logs))
	for _, row := range f.logs {
		actions = append(actions, row.Action)
	}
	return actions
}

func (f *fakeStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return fn(f)
}

func (f *fakeStore) FindOrCreateCompany(ctx context.Context, name string) (*model.Company, error) {
	for _, company := range f.companies {
		if company.Name == name {
			return company, nil
		}
	}
	company := &model.Company{ID: f.id(), Name: name, CreatedAt: time.Now()}
	f.companies[company.ID] = company
	return company, nil
}

func (f *fakeStore) GetContract(ctx context.Context, id int64) (*model.Contract, error) {
	contract, ok := f.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return contract, nil
}

func (f *fakeStore) GetContractByProjectCode(ctx context.Context, code string) (*model.Contract, error) {
	for _, contract := range f.contracts {
		if contract.ProjectCode == code {
			return contract, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) CreateContract(ctx context.Context, contract *model.Contract) error {
	contract.ID = f.id()
	contract.CreatedAt = time.Now()
	f.contracts[contract.ID] = contract
	return nil
}

func (f *fakeStore) SetContractPlannedDelivery(ctx context.Context, id int64, date *time.Time) error {
	contract, ok := f.contracts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	contract.PlannedDeliveryDate = date
	return nil
}

func (f *fakeStore) DeleteContractCascade(ctx context.Context, id int64) error {
	if _, ok := f.contracts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.contracts, id)
	delete(f.sales, id)
	for recordID, task := range f.tasks {
		if task.ContractID == id {
			delete(f.tasks, recordID)
		}
	}
	for recordID, item := range f.procurements {
		if item.ContractID == id {
			delete(f.procurements, recordID)
		}
	}
	for recordID, acceptance := range f.acceptances {
		if acceptance.ContractID == id {
			delete(f.acceptances, recordID)
		}
	}
	for recordID, payment := range f.payments {
		if payment.ContractID == id {
			delete(f.payments, recordID)
		}
	}
	for recordID, invoice := range f.invoices {
		if invoice.ContractID == id {
			delete(f.invoices, recordID)
		}
	}
	for recordID, refund := range f.refunds {
		if refund.ContractID == id {
			delete(f.refunds, recordID)
		}
	}
	for recordID, feedback := range f.feedbacks {
		if feedback.ContractID == id {
			delete(f.feedbacks, recordID)
		}
	}
	for recordID, leader := range f.leaders {
		if leader.ContractID == id {
			delete(f.leaders, recordID)
		}
	}
	for recordID, file := range f.files {
		if file.ContractID == id {
			delete(f.files, recordID)
		}
	}
	return nil
}

func (f *fakeStore) ListContracts(ctx context.Context, filter ContractFilter) ([]model.Contract, error) {
	contracts := make([]model.Contract, 0, len(f.contracts))
	for _, contract := range f.contracts {
		contracts = append(contracts, *contract)
	}
	return contracts, nil
}

func (f *fakeStore) ActivityCounts(ctx context.Context, contractID int64) (model.ActivityCounts, error) {
	var counts model.ActivityCounts
	for _, task := range f.tasks {
		if task.ContractID == contractID {
			counts.Tasks++
		}
	}
	for _, acceptance := range f.acceptances {
		if acceptance.ContractID == contractID {
			counts.Acceptances++
			if acceptance.Status == model.AcceptanceStatusPassed {
				counts.PassedAcceptances++
			}
		}
	}
	for _, payment := range f.payments {
		if payment.ContractID == contractID {
			counts.Payments++
		}
	}
	for _, invoice := range f.invoices {
		if invoice.ContractID == contractID {
			counts.Invoices++
		}
	}
	for _, feedback := range f.feedbacks {
		if feedback.ContractID == contractID && !feedback.IsResolved {
			counts.UnresolvedFeedback++
		}
	}
	return counts, nil
}

func (f *fakeStore) RecordCounts(ctx context.Context, contractID int64) (RecordCounts, error) {
	var counts RecordCounts
	for _, task := range f.tasks {
		if task.ContractID == contractID {
			counts.Tasks++
		}
	}
	for _, item := range f.procurements {
		if item.ContractID == contractID {
			counts.Procurements++
		}
	}
	for _, acceptance := range f.acceptances {
		if acceptance.ContractID == contractID {
			counts.Acceptances++
		}
	}
	for _, payment := range f.payments {
		if payment.ContractID == contractID {
			counts.Payments++
		}
	}
	for _, invoice := range f.invoices {
		if invoice.ContractID == contractID {
			counts.Invoices++
		}
	}
	for _, refund := range f.refunds {
		if refund.ContractID == contractID {
			counts.Refunds++
		}
	}
	for _, feedback := range f.feedbacks {
		if feedback.ContractID == contractID {
			counts.Feedbacks++
		}
	}
	for _, file := range f.files {
		if file.ContractID == contractID && !file.IsDeleted {
			counts.Files++
		}
	}
	return counts, nil
}

func (f *fakeStore) GetSalesInfo(ctx context.Context, contractID int64) (*model.SalesInfo, error) {
	info, ok := f.sales[contractID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return info, nil
}

func (f *fakeStore) CreateSalesInfo(ctx context.Context, info *model.SalesInfo) error {
	info.ID = f.id()
	f.sales[info.ContractID] = info
	return nil
}

func (f *fakeStore) UpdateSalesInfo(ctx context.Context, info *model.SalesInfo) error {
	f.sales[info.ContractID] = info
	return nil
}

func (f *fakeStore) DeleteSalesInfo(ctx context.Context, contractID int64) error {
	if _, ok := f.sales[contractID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.sales, contractID)
	return nil
}

func (f *fakeStore) CreateTask(ctx context.Context, task *model.Task) error {
	task.ID = f.id()
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeStore) GetTask(ctx context.Context, id, contractID int64) (*model.Task, error) {
	task, ok := f.tasks[id]
	if !ok || task.ContractID != contractID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeStore) UpdateTask(ctx context.Context, task *model.Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, id, contractID int64) error {
	task, ok := f.tasks[id]
	if !ok || task.ContractID != contractID {
		return gorm.ErrRecordNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeStore) ListTasks(ctx context.Context, contractID int64) ([]model.Task, error) {
	var tasks []model.Task
	for _, task := range f.tasks {
		if task.ContractID == contractID {
			tasks = append(tasks, *task)
		}
	}
	return tasks, nil
}

func (f *fakeStore) CreateProcurement(ctx context.Context, item *model.ProcurementItem) error {
	item.ID = f.id()
	f.procurements[item.ID] = item
	return nil
}

func (f *fakeStore) GetProcurement(ctx context.Context, id, contractID int64) (*model.ProcurementItem, error) {
	item, ok := f.procurements[id]
	if !ok || item.ContractID != contractID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeStore) DeleteProcurement(ctx context.Context, id, contractID int64) error {
	item, ok := f.procurements[id]
	if !ok || item.ContractID != contractID {
		return gorm.ErrRecordNotFound
	}
	delete(f.procurements, id)
	return nil
}

func (f *fakeStore) ListProcurements(ctx context.Context, contractID int64) ([]model.ProcurementItem, error) {
	var items []model.ProcurementItem
	for _, item := range f.procurements {
		if item.ContractID == contractID {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (f *fakeStore) CreateAcceptance(ctx context.Context, acceptance *model.Acceptance) error {
	acceptance.ID = f.id()
	f.acceptances[acceptance.ID] = acceptance
	return nil
}

func (f *fakeStore) GetAcceptance(ctx context.Context, id, contractID int64) (*model.Acceptance, error) {
	acceptance, ok := f.acceptances[id]
	if !ok || acceptance.ContractID != contractID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *acceptance
	return &copied, nil
}

func (f *fakeStore) DeleteAcceptance(ctx context.Context, id, contractID int64) error {
	acceptance, ok := f.acceptances[id]
	if !ok || acceptance.ContractID != contractID {
		return gorm.ErrRecordNotFound
	}
	delete(f.acceptances, id)
	return nil
}

func (f *fakeStore) ListAcceptances(ctx context.Context, contractID int64) ([]model.Acceptance, error) {
	var acceptances []model.Acceptance
	for _, acceptance := range f.acceptances {
		if acceptance.ContractID == contractID {
			acceptances = append(acceptances, *acceptance)
		}
	}
	return acceptances, nil
}

func (f *fakeStore) CreatePayment(ctx context.Context, payment *model.Payment) error {
	payment.ID = f.id()
	f.payments[payment.ID] = payment
	return nil
}

func (f *fakeStore) GetPayment(ctx context.Context, id, contractID int64) (*model.Payment, error) {
	payment, ok := f.payments[id]
	if !ok || payment.ContractID != contractID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *payment
	return &copied, nil
}

func (f *fakeStore) DeletePayment(ctx context.Context, id, contractID int64) error {
	payment, ok := f.payments[id]
	if !ok || payment.ContractID != contractID {
		return gorm.ErrRecordNotFound
	}
	delete(f.payments, id)
	return nil
}

func (f *fakeStore) ListPayments(ctx context.Context, contractID int64) ([]model.Payment, error) {
	var payments []model.Payment
	for _, payment := range f.payments {
		if payment.ContractID == contractID {
			payments = append(payments, *payment)
		}
	}
	return payments, nil
}

func (f *fakeStore) CreateInvoice(ctx context.Context, invoice *model.Invoice) error {
	invoice.ID = f.id()
	f.invoices[invoice.ID] = invoice
	return nil
}

func (f *fakeStore) GetInvoice(ctx context.Context, id, contractID int64) (*model.Invoice, error) {
	invoice, ok := f.invoices[id]
	if !ok || invoice.ContractID != contractID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *invoice
	return &copied, nil
}

func (f *fakeStore) DeleteInvoice(ctx context.Context, id, contractID int64) error {
	invoice, ok := f.invoices[id]
	if !ok || invoice.ContractID != contractID {
		return gorm.ErrRecordNotFound
	}
	delete(f.invoices, id)
	return nil
}

func (f *fakeStore) ListInvoices(ctx context.Context, contractID int64) ([]model.Invoice, error) {
	var invoices []model.Invoice
	for _, invoice := range f.invoices {
		if invoice.ContractID == contractID {
			invoices = append(invoices, *invoice)
		}
	}
	return invoices, nil
}

func (f *fakeStore) CreateRefund(ctx context.Context, refund *model.Refund) error {
	refund.ID = f.id()
	f.refunds[refund.ID] = refund
	return nil
}

func (f *fakeStore) GetRefund(ctx context.Context, id, contractID int64) (*model.Refund, error) {
	refund, ok := f.refunds[id]
	if !ok || refund.ContractID != contractID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *refund
	return &copied, nil
}

func (f *fakeStore) DeleteRefund(ctx context.Context, id, contractID int64) error {
	refund, ok := f.refunds[id]
	if !ok || refund.ContractID != contractID {
		return gorm.ErrRecordNotFound
	}
	delete(f.refunds, id)
	return nil
}

func (f *fakeStore) ListRefunds(ctx context.Context, contractID int64) ([]model.Refund, error) {
	var refunds []model.Refund
	for _, refund := range f.refunds {
		if refund.ContractID == contractID {
			refunds = append(refunds, *refund)
		}
	}
	return refunds, nil
}

func (f *fakeStore) CreateFeedback(ctx context.Context, feedback *model.Feedback) error {
	feedback.ID = f.id()
	f.feedbacks[feedback.ID] = feedback
	return nil
}

func (f *fakeStore) GetFeedback(ctx context.Context, id, contractID int64) (*model.Feedback, error) {
	feedback, ok := f.feedbacks[id]
	if !ok || feedback.ContractID != contractID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *feedback
	return &copied, nil
}

func (f *fakeStore) SetFeedbackResolution(ctx context.Context, id int64, resolved bool, completionTime *time.Time) error {
	feedback, ok := f.feedbacks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	feedback.IsResolved = resolved
	feedback.CompletionTime = completionTime
	return nil
}

func (f *fakeStore) DeleteFeedback(ctx context.Context, id, contractID int64) error {
	feedback, ok := f.feedbacks[id]
	if !ok || feedback.ContractID != contractID {
		return gorm.ErrRecordNotFound
	}
	delete(f.feedbacks, id)
	return nil
}

func (f *fakeStore) ListFeedbacks(ctx context.Context, contractID int64) ([]model.Feedback, error) {
	var feedbacks []model.Feedback
	for _, feedback := range f.feedbacks {
		if feedback.ContractID == contractID {
			feedbacks = append(feedbacks, *feedback)
		}
	}
	return feedbacks, nil
}

func (f *fakeStore) CreateLeader(ctx context.Context, leader *model.ProjectDepartmentLeader) error {
	leader.ID = f.id()
	f.leaders[leader.ID] = leader
	return nil
}

func (f *fakeStore) FindLeader(ctx context.Context, contractID, departmentID, personID int64) (*model.ProjectDepartmentLeader, error) {
	for _, leader := range f.leaders {
		if leader.ContractID == contractID && leader.DepartmentID == departmentID && leader.PersonID == personID {
			return leader, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) DeleteLeader(ctx context.Context, id, contractID int64) error {
	leader, ok := f.leaders[id]
	if !ok || leader.ContractID != contractID {
		return gorm.ErrRecordNotFound
	}
	delete(f.leaders, id)
	return nil
}

func (f *fakeStore) ListLeaders(ctx context.Context, contractID int64) ([]model.ProjectDepartmentLeader, error) {
	var leaders []model.ProjectDepartmentLeader
	for _, leader := range f.leaders {
		if leader.ContractID == contractID {
			leaders = append(leaders, *leader)
		}
	}
	return leaders, nil
}

func (f *fakeStore) CreateFile(ctx context.Context, file *model.ProjectFile) error {
	file.ID = f.id()
	file.CreatedAt = time.Now()
	f.files[file.ID] = file
	return nil
}

func (f *fakeStore) GetFile(ctx context.Context, id, contractID int64) (*model.ProjectFile, error) {
	file, ok := f.files[id]
	if !ok || file.ContractID != contractID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *file
	return &copied, nil
}

func (f *fakeStore) SoftDeleteFile(ctx context.Context, id int64) error {
	file, ok := f.files[id]
	if !ok || file.IsDeleted {
		return gorm.ErrRecordNotFound
	}
	file.IsDeleted = true
	return nil
}

func (f *fakeStore) ListFiles(ctx context.Context, contractID int64) ([]model.ProjectFile, error) {
	var files []model.ProjectFile
	for _, file := range f.files {
		if file.ContractID == contractID && !file.IsDeleted {
			files = append(files, *file)
		}
	}
	return files, nil
}

func (f *fakeStore) AppendOperationLog(ctx context.Context, row model.OperationLog) error {
	row.ID = f.id()
	row.CreatedAt = time.Now()
	f.logs = append(f.logs, row)
	return nil
}

func (f *fakeStore) ListOperationLogs(ctx context.Context, filter audit.Filter) ([]model.OperationLog, error) {
	var logs []model.OperationLog
	for i := len(f.logs) - 1; i >= 0; i-- {
		row := f.logs[i]
		if filter.TargetType != "" && (row.TargetType == nil || *row.TargetType != filter.TargetType) {
			continue
		}
		if filter.TargetID != nil && (row.TargetID == nil || *row.TargetID != *filter.TargetID) {
			continue
		}
		logs = append(logs, row)
		if len(logs) >= filter.EffectiveLimit() {
			break
		}
	}
	return logs, nil
}

var _ Store = (*fakeStore)(nil)
