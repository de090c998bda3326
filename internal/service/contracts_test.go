package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fszn/contracts-service/internal/model"
)

func TestCreateContract(t *testing.T) {
	store := newFakeStore()
	contracts := NewContracts(store)

	contract, err := contracts.Create(context.Background(), testActor, CreateContractInput{
		CompanyName:    "  Acme Industrial ",
		ProjectCode:    "P-700",
		ContractNumber: "HT-2024-007",
		Name:           "Palletizer",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if contract.Company.Name != "Acme Industrial" {
		t.Fatalf("Company = %q, want trimmed name", contract.Company.Name)
	}
	if contract.CreatedByID == nil || *contract.CreatedByID != testActor.UserID {
		t.Fatalf("CreatedByID = %v, want %d", contract.CreatedByID, testActor.UserID)
	}
	if actions := store.logActions(); len(actions) != 1 || actions[0] != "contract.create" {
		t.Fatalf("log actions = %v, want [contract.create]", actions)
	}
}

func TestCreateContractValidation(t *testing.T) {
	store := newFakeStore()
	contracts := NewContracts(store)

	_, err := contracts.Create(context.Background(), testActor, CreateContractInput{
		CompanyName: "Acme",
		ProjectCode: "P-1",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCreateContractDuplicateProjectCode(t *testing.T) {
	store := newFakeStore()
	store.seedContract("P-700")
	contracts := NewContracts(store)

	_, err := contracts.Create(context.Background(), testActor, CreateContractInput{
		CompanyName:    "Other Co",
		ProjectCode:    "P-700",
		ContractNumber: "HT-2",
		Name:           "Second line",
	})
	if !errors.Is(err, ErrDuplicateProjectCode) {
		t.Fatalf("err = %v, want ErrDuplicateProjectCode", err)
	}
	if len(store.contracts) != 1 {
		t.Fatalf("duplicate must not create a second contract")
	}
}

func TestDeleteContractCascade(t *testing.T) {
	store := newFakeStore()
	contract := store.seedContract("P-800")
	records := NewRecords(store)
	contracts := NewContracts(store)

	if _, err := records.CreatePayment(context.Background(), testActor, contract.ID, CreatePaymentInput{
		Amount: "10",
		Date:   date("2024-02-02"),
	}); err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if _, err := records.CreateFeedback(context.Background(), testActor, contract.ID, CreateFeedbackInput{
		Content: "noise",
	}); err != nil {
		t.Fatalf("CreateFeedback: %v", err)
	}

	if err := contracts.Delete(context.Background(), testActor, contract.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if len(store.contracts) != 0 || len(store.payments) != 0 || len(store.feedbacks) != 0 {
		t.Fatalf("cascade must remove the contract and its records")
	}
	// The audit trail must survive the cascade.
	actions := store.logActions()
	if actions[len(actions)-1] != "contract.delete" {
		t.Fatalf("log actions = %v, want contract.delete last", actions)
	}
}

func TestDeleteContractMissing(t *testing.T) {
	store := newFakeStore()
	contracts := NewContracts(store)

	if err := contracts.Delete(context.Background(), testActor, 123); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListFiltersByDerivedStatus(t *testing.T) {
	store := newFakeStore()
	idle := store.seedContract("P-900")
	busy := store.seedContract("P-901")
	records := NewRecords(store)
	contracts := NewContracts(store)

	departmentID := int64(1)
	start := date("2024-01-01")
	if _, err := records.CreateTask(context.Background(), testActor, busy.ID, CreateTaskInput{
		Title:        "assembly",
		DepartmentID: &departmentID,
		StartDate:    &start,
	}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	summaries, err := contracts.List(context.Background(), ListFilter{Status: model.StatusInProduction})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Contract.ID != busy.ID {
		t.Fatalf("summaries = %+v, want only the in-production contract", summaries)
	}
	if summaries[0].Tier != model.TierInfo {
		t.Fatalf("Tier = %s, want info", summaries[0].Tier)
	}

	all, err := contracts.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("unfiltered list = %d contracts, want 2", len(all))
	}
	for _, summary := range all {
		if summary.Contract.ID == idle.ID && summary.Status != model.StatusNotStarted {
			t.Fatalf("idle contract status = %s, want NOT_STARTED", summary.Status)
		}
	}
}

func TestUpsertSalesCreateThenUpdate(t *testing.T) {
	store := newFakeStore()
	contract := store.seedContract("P-950")
	contracts := NewContracts(store)

	info, err := contracts.UpsertSales(context.Background(), testActor, contract.ID, UpsertSalesInput{
		QuoteAmount: "120000",
	})
	if err != nil {
		t.Fatalf("UpsertSales: %v", err)
	}
	if info.QuoteAmount == nil || !info.QuoteAmount.Equal(money("120000")) {
		t.Fatalf("QuoteAmount = %v, want 120000", info.QuoteAmount)
	}

	// Second call updates in place and may clear the quote again.
	updated, err := contracts.UpsertSales(context.Background(), testActor, contract.ID, UpsertSalesInput{
		QuoteAmount: "",
		Remarks:     "renegotiating",
	})
	if err != nil {
		t.Fatalf("UpsertSales update: %v", err)
	}
	if updated.QuoteAmount != nil {
		t.Fatalf("QuoteAmount = %v, want nil after clearing", updated.QuoteAmount)
	}
	if updated.ID != info.ID {
		t.Fatalf("update must reuse the existing row")
	}

	actions := store.logActions()
	want := []string{"sales.create", "sales.update"}
	for i, action := range want {
		if actions[i] != action {
			t.Fatalf("log actions = %v, want %v", actions, want)
		}
	}
}

func TestUpsertSalesRejectsBadAmount(t *testing.T) {
	store := newFakeStore()
	contract := store.seedContract("P-950")
	contracts := NewContracts(store)

	if _, err := contracts.UpsertSales(context.Background(), testActor, contract.ID, UpsertSalesInput{
		QuoteAmount: "12k",
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSalesAbsentIsNil(t *testing.T) {
	store := newFakeStore()
	contract := store.seedContract("P-960")
	contracts := NewContracts(store)

	info, err := contracts.Sales(context.Background(), contract.ID)
	if err != nil {
		t.Fatalf("Sales: %v", err)
	}
	if info != nil {
		t.Fatalf("info = %+v, want nil when no sales row exists", info)
	}
}

func TestOverviewAggregates(t *testing.T) {
	store := newFakeStore()
	contract := store.seedContract("P-970")
	records := NewRecords(store)
	contracts := NewContracts(store)

	if _, err := contracts.UpsertSales(context.Background(), testActor, contract.ID, UpsertSalesInput{
		QuoteAmount: "1000",
	}); err != nil {
		t.Fatalf("UpsertSales: %v", err)
	}
	if _, err := records.CreateAcceptance(context.Background(), testActor, contract.ID, CreateAcceptanceInput{
		StageName: "SAT",
		Date:      date("2024-07-01"),
		Status:    model.AcceptanceStatusPassed,
	}); err != nil {
		t.Fatalf("CreateAcceptance: %v", err)
	}
	if _, err := records.CreatePayment(context.Background(), testActor, contract.ID, CreatePaymentInput{
		Amount: "600",
		Date:   date("2024-07-10"),
	}); err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	overview, err := contracts.Overview(context.Background(), contract.ID)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if overview.Status != model.StatusComplete {
		t.Fatalf("Status = %s, want COMPLETE", overview.Status)
	}
	if overview.Counts.Payments != 1 || overview.Counts.Acceptances != 1 {
		t.Fatalf("Counts = %+v, want one payment and one acceptance", overview.Counts)
	}
	if overview.Finance.ReceivableRemaining == nil || !overview.Finance.ReceivableRemaining.Equal(money("400")) {
		t.Fatalf("ReceivableRemaining = %v, want 400", overview.Finance.ReceivableRemaining)
	}
}

func TestAuthorizeExport(t *testing.T) {
	store := newFakeStore()
	contract := store.seedContract("P-900")
	contracts := NewContracts(store)

	staff := model.Principal{UserID: 3, Username: "wang", Role: model.RoleSales}
	if err := contracts.AuthorizeExport(context.Background(), staff, contract.ID, "xlsx"); err != nil {
		t.Fatalf("AuthorizeExport: %v", err)
	}

	customer := model.Principal{UserID: 30, Username: "client", Role: model.RoleCustomer}
	err := contracts.AuthorizeExport(context.Background(), customer, contract.ID, "pdf")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}

	// Both decisions persist, the denial included.
	actions := store.logActions()
	if len(actions) != 2 || actions[0] != "contract.export" || actions[1] != "contract.export_denied" {
		t.Fatalf("log actions = %v, want [contract.export contract.export_denied]", actions)
	}
	logs, err := contracts.ContractOperationLogs(context.Background(), contract.ID)
	if err != nil {
		t.Fatalf("ContractOperationLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("len(logs) = %d, want both export decisions on the contract's log page", len(logs))
	}

	if err := contracts.AuthorizeExport(context.Background(), staff, contract.ID+99, "xlsx"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for an unknown contract", err)
	}
}

func TestContractOperationLogs(t *testing.T) {
	store := newFakeStore()
	contract := store.seedContract("P-980")
	records := NewRecords(store)
	contracts := NewContracts(store)

	// Refund rows target the contract; payment rows target themselves.
	if _, err := records.CreateRefund(context.Background(), testActor, contract.ID, CreateRefundInput{
		Amount: "20",
		Date:   date("2024-08-01"),
	}); err != nil {
		t.Fatalf("CreateRefund: %v", err)
	}
	if _, err := records.CreatePayment(context.Background(), testActor, contract.ID, CreatePaymentInput{
		Amount: "20",
		Date:   date("2024-08-01"),
	}); err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	logs, err := contracts.ContractOperationLogs(context.Background(), contract.ID)
	if err != nil {
		t.Fatalf("ContractOperationLogs: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != "refund.create" {
		t.Fatalf("logs = %+v, want only the contract-targeted refund row", logs)
	}
}

func TestSetPlannedDelivery(t *testing.T) {
	store := newFakeStore()
	contract := store.seedContract("P-990")
	contracts := NewContracts(store)

	when := date("2024-12-01")
	if err := contracts.SetPlannedDelivery(context.Background(), testActor, contract.ID, &when); err != nil {
		t.Fatalf("SetPlannedDelivery: %v", err)
	}
	if store.contracts[contract.ID].PlannedDeliveryDate == nil {
		t.Fatalf("planned delivery date must be stored")
	}

	if err := contracts.SetPlannedDelivery(context.Background(), testActor, contract.ID, nil); err != nil {
		t.Fatalf("SetPlannedDelivery(nil): %v", err)
	}
	if store.contracts[contract.ID].PlannedDeliveryDate != nil {
		t.Fatalf("nil date must clear the planned delivery date")
	}
}
