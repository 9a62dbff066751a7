package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adityahw/koperasi-backoffice/internal/application/port"
	"github.com/adityahw/koperasi-backoffice/internal/domain/apperr"
	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
	"github.com/adityahw/koperasi-backoffice/internal/domain/finance"
	"github.com/adityahw/koperasi-backoffice/internal/domain/workflow"
)

// Mock repositories

type mockAppRepo struct {
	createFunc  func(ctx context.Context, app *entity.Application) error
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*entity.Application, error)
	updateFunc  func(ctx context.Context, app *entity.Application, expectedStatus entity.Status) error
	listFunc    func(ctx context.Context, filter port.ListFilter) ([]*entity.Application, int64, error)

	updateCalls int
}

func (m *mockAppRepo) Create(ctx context.Context, app *entity.Application) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, app)
	}
	return nil
}

func (m *mockAppRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAppRepo) Update(ctx context.Context, app *entity.Application, expectedStatus entity.Status) error {
	m.updateCalls++
	if m.updateFunc != nil {
		return m.updateFunc(ctx, app, expectedStatus)
	}
	return nil
}

func (m *mockAppRepo) List(ctx context.Context, filter port.ListFilter) ([]*entity.Application, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return []*entity.Application{}, 0, nil
}

type mockRecordRepo struct {
	createFunc func(ctx context.Context, rec *entity.ApprovalRecord) error
	records    []*entity.ApprovalRecord
}

func (m *mockRecordRepo) Create(ctx context.Context, rec *entity.ApprovalRecord) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rec)
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockRecordRepo) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]*entity.ApprovalRecord, error) {
	return m.records, nil
}

type mockDisbRepo struct {
	records []*entity.DisbursementRecord
}

func (m *mockDisbRepo) Create(ctx context.Context, rec *entity.DisbursementRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *mockDisbRepo) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*entity.DisbursementRecord, error) {
	return nil, nil
}

type mockAuthRepo struct {
	records []*entity.AuthorizationRecord
}

func (m *mockAuthRepo) Create(ctx context.Context, rec *entity.AuthorizationRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *mockAuthRepo) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*entity.AuthorizationRecord, error) {
	return nil, nil
}

type mockRoleProvider struct {
	roles map[string][]entity.Role
}

func (m *mockRoleProvider) RolesOf(ctx context.Context, actorID string) ([]entity.Role, error) {
	return m.roles[actorID], nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

// Fixtures

func testPolicy() Policy {
	return Policy{
		LoanMinAmount:      decimal.NewFromInt(500_000),
		LoanMaxAmount:      decimal.NewFromInt(200_000_000),
		LoanMinTenorMonths: 3,
		LoanMaxTenorMonths: 60,

		LoanCashAnnualRatePercent:  decimal.NewFromInt(12),
		LoanGoodsAnnualRatePercent: decimal.NewFromInt(10),

		DepositMinAmount:         decimal.NewFromInt(100_000),
		DepositMinTenorMonths:    1,
		DepositMaxTenorMonths:    36,
		DepositAnnualRatePercent: decimal.NewFromInt(6),

		WithdrawalMinAmount:          decimal.NewFromInt(50_000),
		WithdrawalPenaltyRatePercent: decimal.NewFromInt(5),
	}
}

func testRoles() *mockRoleProvider {
	return &mockRoleProvider{roles: map[string][]entity.Role{
		"dsp-1":    {entity.RoleDivisiSimpanPinjam},
		"ketua-1":  {entity.RoleKetua},
		"pgws-1":   {entity.RolePengawas},
		"shop-1":   {entity.RoleShopkeeper},
		"member-1": {entity.RoleAnggota},
	}}
}

type testDeps struct {
	appRepo    *mockAppRepo
	recordRepo *mockRecordRepo
	disbRepo   *mockDisbRepo
	authRepo   *mockAuthRepo
	roles      *mockRoleProvider
}

func newTestService(deps *testDeps) ApplicationService {
	resolver := workflow.NewResolver(decimal.NewFromInt(50_000_000))
	calculator := finance.NewCalculator(finance.Config{
		MaxRatePercent:        decimal.NewFromInt(60),
		ShopMarginRatePercent: decimal.NewFromInt(5),
	})

	return NewApplicationService(
		deps.appRepo,
		deps.recordRepo,
		deps.disbRepo,
		deps.authRepo,
		deps.roles,
		&mockTxManager{},
		resolver,
		calculator,
		testPolicy(),
		nil,
		&mockLogger{},
	)
}

func defaultDeps() *testDeps {
	return &testDeps{
		appRepo:    &mockAppRepo{},
		recordRepo: &mockRecordRepo{},
		disbRepo:   &mockDisbRepo{},
		authRepo:   &mockAuthRepo{},
		roles:      testRoles(),
	}
}

func loanPayload(amount int64) entity.Payload {
	return entity.Payload{
		Amount:      decimal.NewFromInt(amount),
		TenorMonths: 12,
		LoanType:    entity.LoanTypeCash,
	}
}

func loanApp(status entity.Status, step entity.Step) *entity.Application {
	app := &entity.Application{
		ID:          uuid.New(),
		Kind:        entity.KindLoan,
		ApplicantID: "member-1",
		Status:      status,
		Payload:     loanPayload(12_000_000),
	}
	if step != "" {
		app.CurrentStep = &step
	}
	return app
}

// CreateDraft

func TestCreateDraft(t *testing.T) {
	tests := []struct {
		name    string
		kind    entity.Kind
		payload entity.Payload
		wantErr error
	}{
		{
			name:    "valid cash loan",
			kind:    entity.KindLoan,
			payload: loanPayload(12_000_000),
			wantErr: nil,
		},
		{
			name: "goods loan without purpose",
			kind: entity.KindLoan,
			payload: entity.Payload{
				Amount:      decimal.NewFromInt(12_000_000),
				TenorMonths: 12,
				LoanType:    entity.LoanTypeGoodsOnline,
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "loan above plafond",
			kind: entity.KindLoan,
			payload: entity.Payload{
				Amount:      decimal.NewFromInt(300_000_000),
				TenorMonths: 12,
				LoanType:    entity.LoanTypeCash,
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "loan tenor out of bounds",
			kind: entity.KindLoan,
			payload: entity.Payload{
				Amount:      decimal.NewFromInt(12_000_000),
				TenorMonths: 120,
				LoanType:    entity.LoanTypeCash,
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "valid deposit",
			kind: entity.KindDeposit,
			payload: entity.Payload{
				Amount:      decimal.NewFromInt(5_000_000),
				TenorMonths: 12,
			},
			wantErr: nil,
		},
		{
			name: "withdrawal without deposit reference",
			kind: entity.KindWithdrawal,
			payload: entity.Payload{
				Amount: decimal.NewFromInt(1_000_000),
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "unknown kind",
			kind:    entity.Kind("MORTGAGE"),
			payload: loanPayload(12_000_000),
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(defaultDeps())

			app, err := svc.CreateDraft(context.Background(), "member-1", tt.kind, tt.payload)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateDraft() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateDraft() failed: %v", err)
			}
			if app.Status != entity.StatusDraft {
				t.Errorf("Status = %v, want %v", app.Status, entity.StatusDraft)
			}
			if app.CurrentStep != nil {
				t.Error("draft should await no step")
			}
			if app.Computed != nil {
				t.Error("draft should carry no computed pricing")
			}
		})
	}
}

func TestCreateDraft_RequiresApplicant(t *testing.T) {
	svc := newTestService(defaultDeps())

	_, err := svc.CreateDraft(context.Background(), "", entity.KindLoan, loanPayload(12_000_000))
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("CreateDraft() error = %v, want validation error", err)
	}
}

// Submit

func TestSubmit(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusDraft, "")
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	got, err := svc.Submit(context.Background(), app.ID, "member-1")
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if got.Status != entity.StatusUnderReviewDSP {
		t.Errorf("Status = %v, want %v", got.Status, entity.StatusUnderReviewDSP)
	}
	if got.StepOrNil() != entity.StepDSPReview {
		t.Errorf("CurrentStep = %v, want %v", got.StepOrNil(), entity.StepDSPReview)
	}
}

func TestSubmit_OnlyApplicant(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusDraft, "")
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	_, err := svc.Submit(context.Background(), app.ID, "ketua-1")
	if !errors.Is(err, apperr.ErrAuthorization) {
		t.Errorf("Submit() error = %v, want authorization error", err)
	}
	if deps.appRepo.updateCalls != 0 {
		t.Error("denied submit must not write")
	}
}

func TestSubmit_AlreadySubmitted(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusUnderReviewDSP, entity.StepDSPReview)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	_, err := svc.Submit(context.Background(), app.ID, "member-1")
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("Submit() error = %v, want invalid state error", err)
	}
}

func TestSubmit_NotFound(t *testing.T) {
	svc := newTestService(defaultDeps())

	_, err := svc.Submit(context.Background(), uuid.New(), "member-1")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Submit() error = %v, want not found error", err)
	}
}

// ProcessApproval

func TestProcessApproval_DSPApproveStampsPricing(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusUnderReviewDSP, entity.StepDSPReview)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	got, err := svc.ProcessApproval(context.Background(), app.ID, "dsp-1", entity.DecisionApprove, "ok")
	if err != nil {
		t.Fatalf("ProcessApproval() failed: %v", err)
	}

	if got.Status != entity.StatusUnderReviewKetua {
		t.Errorf("Status = %v, want %v", got.Status, entity.StatusUnderReviewKetua)
	}
	if got.StepOrNil() != entity.StepKetuaReview {
		t.Errorf("CurrentStep = %v, want %v", got.StepOrNil(), entity.StepKetuaReview)
	}

	if got.Computed == nil {
		t.Fatal("division approval should stamp computed pricing")
	}
	// 12,000,000 at 12% flat over 12 months
	if !got.Computed.MonthlyInstallment.Equal(decimal.NewFromInt(1_120_000)) {
		t.Errorf("MonthlyInstallment = %s, want 1120000", got.Computed.MonthlyInstallment)
	}
	if !got.Computed.TotalRepayment.Equal(decimal.NewFromInt(13_440_000)) {
		t.Errorf("TotalRepayment = %s, want 13440000", got.Computed.TotalRepayment)
	}

	if len(deps.recordRepo.records) != 1 {
		t.Fatalf("approval records = %d, want 1", len(deps.recordRepo.records))
	}
	rec := deps.recordRepo.records[0]
	if rec.Step != entity.StepDSPReview || rec.Decision != entity.DecisionApprove || rec.PassNumber != 1 {
		t.Errorf("record = {%v %v pass=%d}, want {DSP_REVIEW APPROVE pass=1}", rec.Step, rec.Decision, rec.PassNumber)
	}
}

func TestProcessApproval_KetuaBranchesOnAmount(t *testing.T) {
	tests := []struct {
		name       string
		amount     int64
		wantStatus entity.Status
		wantStep   entity.Step
	}{
		{"small loan skips pengawas", 12_000_000, entity.StatusApprovedPendingDisbursement, entity.StepDisbursement},
		{"large loan requires pengawas", 75_000_000, entity.StatusUnderReviewPengawas, entity.StepPengawasReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := defaultDeps()
			app := loanApp(entity.StatusUnderReviewKetua, entity.StepKetuaReview)
			app.Payload.Amount = decimal.NewFromInt(tt.amount)
			app.Computed = &entity.ComputedFields{AnnualRatePercent: decimal.NewFromInt(12)}
			deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
				return app, nil
			}
			svc := newTestService(deps)

			got, err := svc.ProcessApproval(context.Background(), app.ID, "ketua-1", entity.DecisionApprove, "")
			if err != nil {
				t.Fatalf("ProcessApproval() failed: %v", err)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", got.Status, tt.wantStatus)
			}
			if got.StepOrNil() != tt.wantStep {
				t.Errorf("CurrentStep = %v, want %v", got.StepOrNil(), tt.wantStep)
			}
		})
	}
}

func TestProcessApproval_Reject(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusUnderReviewKetua, entity.StepKetuaReview)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	got, err := svc.ProcessApproval(context.Background(), app.ID, "ketua-1", entity.DecisionReject, "incomplete documents")
	if err != nil {
		t.Fatalf("ProcessApproval() failed: %v", err)
	}
	if got.Status != entity.StatusRejected {
		t.Errorf("Status = %v, want %v", got.Status, entity.StatusRejected)
	}
	if got.CurrentStep != nil {
		t.Error("rejected application should await no step")
	}
	if got.RejectionReason != "incomplete documents" {
		t.Errorf("RejectionReason = %q", got.RejectionReason)
	}
}

func TestProcessApproval_RoleGate(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusUnderReviewKetua, entity.StepKetuaReview)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	// The division reviewer holds no role on the ketua step.
	_, err := svc.ProcessApproval(context.Background(), app.ID, "dsp-1", entity.DecisionApprove, "")
	if !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("ProcessApproval() error = %v, want authorization error", err)
	}

	if deps.appRepo.updateCalls != 0 {
		t.Error("denied approval must not write")
	}
	if len(deps.recordRepo.records) != 0 {
		t.Error("denied approval must not be recorded")
	}
	if app.Status != entity.StatusUnderReviewKetua {
		t.Errorf("Status mutated to %v", app.Status)
	}
}

func TestProcessApproval_TerminalApplication(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusRejected, "")
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	_, err := svc.ProcessApproval(context.Background(), app.ID, "ketua-1", entity.DecisionApprove, "")
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("ProcessApproval() error = %v, want invalid state error", err)
	}
}

func TestProcessApproval_DecisionMustBeApproveOrReject(t *testing.T) {
	svc := newTestService(defaultDeps())

	_, err := svc.ProcessApproval(context.Background(), uuid.New(), "ketua-1", entity.DecisionRevise, "")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("ProcessApproval() error = %v, want validation error", err)
	}
}

func TestProcessApproval_NonReviewStep(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusApprovedPendingDisbursement, entity.StepDisbursement)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	_, err := svc.ProcessApproval(context.Background(), app.ID, "shop-1", entity.DecisionApprove, "")
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("ProcessApproval() error = %v, want invalid state error", err)
	}
}

func TestProcessApproval_ConflictSurfaces(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusUnderReviewKetua, entity.StepKetuaReview)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	deps.appRepo.updateFunc = func(ctx context.Context, app *entity.Application, expectedStatus entity.Status) error {
		return apperr.Conflictf("lost the race")
	}
	svc := newTestService(deps)

	_, err := svc.ProcessApproval(context.Background(), app.ID, "ketua-1", entity.DecisionApprove, "")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("ProcessApproval() error = %v, want conflict error", err)
	}
}

// ReviseLoan

func TestReviseLoan(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusUnderReviewKetua, entity.StepKetuaReview)
	app.Computed = &entity.ComputedFields{
		AnnualRatePercent:  decimal.NewFromInt(12),
		MonthlyInstallment: decimal.NewFromInt(1_120_000),
	}
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	revised := loanPayload(6_000_000)
	got, err := svc.ReviseLoan(context.Background(), app.ID, "ketua-1", revised, "amount reduced")
	if err != nil {
		t.Fatalf("ReviseLoan() failed: %v", err)
	}

	if got.RevisionCount != 1 {
		t.Errorf("RevisionCount = %d, want 1", got.RevisionCount)
	}
	if got.Status != entity.StatusUnderReviewKetua {
		t.Errorf("Status = %v, revision must stay at the initiating step", got.Status)
	}
	if !got.Payload.Amount.Equal(decimal.NewFromInt(6_000_000)) {
		t.Errorf("Amount = %s, want 6000000", got.Payload.Amount)
	}

	// Pricing was already stamped, so it is recomputed from the new payload:
	// 6,000,000 at 12% over 12 months -> 720,000 interest, 560,000 monthly.
	if got.Computed == nil {
		t.Fatal("computed pricing should survive a revision")
	}
	if !got.Computed.MonthlyInstallment.Equal(decimal.NewFromInt(560_000)) {
		t.Errorf("MonthlyInstallment = %s, want 560000", got.Computed.MonthlyInstallment)
	}

	if len(deps.recordRepo.records) != 1 {
		t.Fatalf("approval records = %d, want 1", len(deps.recordRepo.records))
	}
	rec := deps.recordRepo.records[0]
	if rec.Decision != entity.DecisionRevise || rec.PassNumber != 1 {
		t.Errorf("record = {%v pass=%d}, want {REVISE pass=1}", rec.Decision, rec.PassNumber)
	}
}

func TestReviseLoan_KeepsUnpricedDraftsUnpriced(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusUnderReviewDSP, entity.StepDSPReview)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	got, err := svc.ReviseLoan(context.Background(), app.ID, "dsp-1", loanPayload(6_000_000), "")
	if err != nil {
		t.Fatalf("ReviseLoan() failed: %v", err)
	}
	if got.Computed != nil {
		t.Error("revision before pricing must not stamp computed fields")
	}
}

func TestReviseLoan_LoanOnly(t *testing.T) {
	deps := defaultDeps()
	step := entity.StepKetuaReview
	app := &entity.Application{
		ID:          uuid.New(),
		Kind:        entity.KindDeposit,
		ApplicantID: "member-1",
		Status:      entity.StatusUnderReviewKetua,
		CurrentStep: &step,
		Payload:     entity.Payload{Amount: decimal.NewFromInt(5_000_000), TenorMonths: 12},
	}
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	_, err := svc.ReviseLoan(context.Background(), app.ID, "ketua-1", loanPayload(6_000_000), "")
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("ReviseLoan() error = %v, want invalid state error", err)
	}
}

func TestReviseLoan_SecondRevisionIncrementsPass(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusUnderReviewKetua, entity.StepKetuaReview)
	app.RevisionCount = 1
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	got, err := svc.ReviseLoan(context.Background(), app.ID, "ketua-1", loanPayload(9_000_000), "")
	if err != nil {
		t.Fatalf("ReviseLoan() failed: %v", err)
	}
	if got.RevisionCount != 2 {
		t.Errorf("RevisionCount = %d, want 2", got.RevisionCount)
	}
	if deps.recordRepo.records[0].PassNumber != 2 {
		t.Errorf("PassNumber = %d, want 2", deps.recordRepo.records[0].PassNumber)
	}
}

// Disbursement and authorization

func TestProcessDisbursement(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusApprovedPendingDisbursement, entity.StepDisbursement)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	got, err := svc.ProcessDisbursement(context.Background(), app.ID, "shop-1", "2026-08-28", "10:30", "transferred")
	if err != nil {
		t.Fatalf("ProcessDisbursement() failed: %v", err)
	}
	if got.Status != entity.StatusPendingAuthorization {
		t.Errorf("Status = %v, want %v", got.Status, entity.StatusPendingAuthorization)
	}
	if got.StepOrNil() != entity.StepAuthorization {
		t.Errorf("CurrentStep = %v, want %v", got.StepOrNil(), entity.StepAuthorization)
	}
	if len(deps.disbRepo.records) != 1 {
		t.Fatalf("disbursement records = %d, want 1", len(deps.disbRepo.records))
	}
	if deps.disbRepo.records[0].TxDate != "2026-08-28" {
		t.Errorf("TxDate = %q", deps.disbRepo.records[0].TxDate)
	}
}

func TestProcessDisbursement_WrongStatus(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusUnderReviewKetua, entity.StepKetuaReview)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	_, err := svc.ProcessDisbursement(context.Background(), app.ID, "shop-1", "2026-08-28", "10:30", "")
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("ProcessDisbursement() error = %v, want invalid state error", err)
	}
	if len(deps.disbRepo.records) != 0 {
		t.Error("failed disbursement must not create a record")
	}
}

func TestProcessDisbursement_RequiresDate(t *testing.T) {
	svc := newTestService(defaultDeps())

	_, err := svc.ProcessDisbursement(context.Background(), uuid.New(), "shop-1", "", "10:30", "")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("ProcessDisbursement() error = %v, want validation error", err)
	}
}

func TestProcessAuthorization_LoanBecomesDisbursed(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusPendingAuthorization, entity.StepAuthorization)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	got, err := svc.ProcessAuthorization(context.Background(), app.ID, "ketua-1", "2026-08-28", "")
	if err != nil {
		t.Fatalf("ProcessAuthorization() failed: %v", err)
	}
	if got.Status != entity.StatusDisbursed {
		t.Errorf("Status = %v, want %v", got.Status, entity.StatusDisbursed)
	}
	if got.CurrentStep != nil {
		t.Error("terminal application should await no step")
	}
	if len(deps.authRepo.records) != 1 {
		t.Errorf("authorization records = %d, want 1", len(deps.authRepo.records))
	}
}

func TestProcessAuthorization_WithdrawalBecomesCompleted(t *testing.T) {
	deps := defaultDeps()
	step := entity.StepAuthorization
	app := &entity.Application{
		ID:          uuid.New(),
		Kind:        entity.KindWithdrawal,
		ApplicantID: "member-1",
		Status:      entity.StatusPendingAuthorization,
		CurrentStep: &step,
		Payload:     entity.Payload{Amount: decimal.NewFromInt(1_000_000), DepositRef: "DEP-001"},
	}
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	got, err := svc.ProcessAuthorization(context.Background(), app.ID, "ketua-1", "2026-08-28", "")
	if err != nil {
		t.Fatalf("ProcessAuthorization() failed: %v", err)
	}
	if got.Status != entity.StatusCompleted {
		t.Errorf("Status = %v, want %v", got.Status, entity.StatusCompleted)
	}
}

func TestProcessAuthorization_RoleGate(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusPendingAuthorization, entity.StepAuthorization)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	_, err := svc.ProcessAuthorization(context.Background(), app.ID, "shop-1", "2026-08-28", "")
	if !errors.Is(err, apperr.ErrAuthorization) {
		t.Errorf("ProcessAuthorization() error = %v, want authorization error", err)
	}
}

// Cancel

func TestCancel(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusUnderReviewDSP, entity.StepDSPReview)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	got, err := svc.Cancel(context.Background(), app.ID, "member-1")
	if err != nil {
		t.Fatalf("Cancel() failed: %v", err)
	}
	if got.Status != entity.StatusCancelled {
		t.Errorf("Status = %v, want %v", got.Status, entity.StatusCancelled)
	}
}

func TestCancel_OnlyApplicant(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusUnderReviewDSP, entity.StepDSPReview)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	_, err := svc.Cancel(context.Background(), app.ID, "ketua-1")
	if !errors.Is(err, apperr.ErrAuthorization) {
		t.Errorf("Cancel() error = %v, want authorization error", err)
	}
}

func TestCancel_TooLate(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusApprovedPendingDisbursement, entity.StepDisbursement)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	_, err := svc.Cancel(context.Background(), app.ID, "member-1")
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("Cancel() error = %v, want invalid state error", err)
	}
}

// Bulk operations

func TestBulkProcessApproval_PartialFailure(t *testing.T) {
	deps := defaultDeps()

	good := make([]*entity.Application, 4)
	byID := make(map[uuid.UUID]*entity.Application)
	for i := range good {
		good[i] = loanApp(entity.StatusUnderReviewKetua, entity.StepKetuaReview)
		byID[good[i].ID] = good[i]
	}
	rejected := loanApp(entity.StatusRejected, "")
	byID[rejected.ID] = rejected

	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return byID[id], nil
	}
	svc := newTestService(deps)

	ids := []uuid.UUID{good[0].ID, good[1].ID, rejected.ID, good[2].ID, good[3].ID}
	result := svc.BulkProcessApproval(context.Background(), ids, "ketua-1", entity.DecisionApprove, "")

	if len(result.Succeeded) != 4 {
		t.Errorf("Succeeded = %d, want 4", len(result.Succeeded))
	}
	if len(result.Failed) != 1 {
		t.Fatalf("Failed = %d, want 1", len(result.Failed))
	}
	if result.Failed[0].ID != rejected.ID {
		t.Errorf("Failed[0].ID = %v, want the terminal application", result.Failed[0].ID)
	}
	if result.Failed[0].Error == "" {
		t.Error("failure should carry the error message")
	}
}

func TestBulkProcessApproval_EmptyInput(t *testing.T) {
	svc := newTestService(defaultDeps())

	result := svc.BulkProcessApproval(context.Background(), nil, "ketua-1", entity.DecisionApprove, "")
	if len(result.Succeeded) != 0 || len(result.Failed) != 0 {
		t.Errorf("empty batch should succeed vacuously, got %+v", result)
	}
}

// Queries

func TestList_DefaultsLimit(t *testing.T) {
	deps := defaultDeps()
	var captured port.ListFilter
	deps.appRepo.listFunc = func(ctx context.Context, filter port.ListFilter) ([]*entity.Application, int64, error) {
		captured = filter
		return []*entity.Application{}, 0, nil
	}
	svc := newTestService(deps)

	_, _, err := svc.List(context.Background(), port.ListFilter{Limit: 0, Offset: -5})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if captured.Limit != 20 {
		t.Errorf("Limit = %d, want 20", captured.Limit)
	}
	if captured.Offset != 0 {
		t.Errorf("Offset = %d, want 0", captured.Offset)
	}
}

func TestHistory_NotFound(t *testing.T) {
	svc := newTestService(defaultDeps())

	_, err := svc.History(context.Background(), uuid.New())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("History() error = %v, want not found error", err)
	}
}

func TestUpdateDraft(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusDraft, "")
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	got, err := svc.UpdateDraft(context.Background(), app.ID, "member-1", loanPayload(8_000_000))
	if err != nil {
		t.Fatalf("UpdateDraft() failed: %v", err)
	}
	if !got.Payload.Amount.Equal(decimal.NewFromInt(8_000_000)) {
		t.Errorf("Amount = %s, want 8000000", got.Payload.Amount)
	}
}

func TestUpdateDraft_OnlyWhileDraft(t *testing.T) {
	deps := defaultDeps()
	app := loanApp(entity.StatusUnderReviewDSP, entity.StepDSPReview)
	deps.appRepo.getByIDFunc = func(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
		return app, nil
	}
	svc := newTestService(deps)

	_, err := svc.UpdateDraft(context.Background(), app.ID, "member-1", loanPayload(8_000_000))
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("UpdateDraft() error = %v, want invalid state error", err)
	}
}
