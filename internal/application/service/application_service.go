// Package service implements the workflow engine: the operation surface
// that drives loan, deposit, and withdrawal applications through their
// role-gated approval chains. One service covers all three kinds; the
// per-kind differences live in the workflow resolver's tables.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adityahw/koperasi-backoffice/internal/application/dispatcher"
	"github.com/adityahw/koperasi-backoffice/internal/application/port"
	"github.com/adityahw/koperasi-backoffice/internal/domain/apperr"
	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
	"github.com/adityahw/koperasi-backoffice/internal/domain/event"
	"github.com/adityahw/koperasi-backoffice/internal/domain/finance"
	"github.com/adityahw/koperasi-backoffice/internal/domain/workflow"
)

// Logger interface for minimal logging dependency.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Policy carries the externally configured bounds and rates the engine
// stamps and validates against.
type Policy struct {
	LoanMinAmount      decimal.Decimal
	LoanMaxAmount      decimal.Decimal
	LoanMinTenorMonths int
	LoanMaxTenorMonths int

	LoanCashAnnualRatePercent  decimal.Decimal
	LoanGoodsAnnualRatePercent decimal.Decimal

	DepositMinAmount         decimal.Decimal
	DepositMinTenorMonths    int
	DepositMaxTenorMonths    int
	DepositAnnualRatePercent decimal.Decimal

	WithdrawalMinAmount          decimal.Decimal
	WithdrawalPenaltyRatePercent decimal.Decimal
}

// ApplicationService is the engine's caller-facing operation surface.
type ApplicationService interface {
	CreateDraft(ctx context.Context, applicantID string, kind entity.Kind, payload entity.Payload) (*entity.Application, error)
	UpdateDraft(ctx context.Context, id uuid.UUID, actorID string, payload entity.Payload) (*entity.Application, error)
	Submit(ctx context.Context, id uuid.UUID, actorID string) (*entity.Application, error)
	ProcessApproval(ctx context.Context, id uuid.UUID, actorID string, decision entity.Decision, notes string) (*entity.Application, error)
	ReviseLoan(ctx context.Context, id uuid.UUID, actorID string, payload entity.Payload, notes string) (*entity.Application, error)
	ProcessDisbursement(ctx context.Context, id uuid.UUID, actorID string, txDate, txTime, notes string) (*entity.Application, error)
	ProcessAuthorization(ctx context.Context, id uuid.UUID, actorID string, authDate, notes string) (*entity.Application, error)
	Cancel(ctx context.Context, id uuid.UUID, actorID string) (*entity.Application, error)

	BulkProcessApproval(ctx context.Context, ids []uuid.UUID, actorID string, decision entity.Decision, notes string) *BulkResult
	BulkProcessDisbursement(ctx context.Context, ids []uuid.UUID, actorID string, txDate, txTime, notes string) *BulkResult
	BulkProcessAuthorization(ctx context.Context, ids []uuid.UUID, actorID string, authDate, notes string) *BulkResult

	Get(ctx context.Context, id uuid.UUID) (*entity.Application, error)
	List(ctx context.Context, filter port.ListFilter) ([]*entity.Application, int64, error)
	History(ctx context.Context, id uuid.UUID) ([]*entity.ApprovalRecord, error)
}

type applicationServiceImpl struct {
	appRepo    port.ApplicationRepository
	recordRepo port.ApprovalRecordRepository
	disbRepo   port.DisbursementRepository
	authRepo   port.AuthorizationRepository
	roles      port.RoleProvider
	txManager  port.TransactionManager

	resolver   *workflow.Resolver
	calculator *finance.Calculator
	policy     Policy
	dispatcher dispatcher.Dispatcher
	logger     Logger
}

// NewApplicationService creates the workflow engine. All collaborators are
// explicit constructor arguments; there is no ambient state.
func NewApplicationService(
	appRepo port.ApplicationRepository,
	recordRepo port.ApprovalRecordRepository,
	disbRepo port.DisbursementRepository,
	authRepo port.AuthorizationRepository,
	roles port.RoleProvider,
	txManager port.TransactionManager,
	resolver *workflow.Resolver,
	calculator *finance.Calculator,
	policy Policy,
	d dispatcher.Dispatcher,
	logger Logger,
) ApplicationService {
	return &applicationServiceImpl{
		appRepo:    appRepo,
		recordRepo: recordRepo,
		disbRepo:   disbRepo,
		authRepo:   authRepo,
		roles:      roles,
		txManager:  txManager,
		resolver:   resolver,
		calculator: calculator,
		policy:     policy,
		dispatcher: d,
		logger:     logger,
	}
}

// CreateDraft creates a new application in DRAFT, owned by the applicant.
func (s *applicationServiceImpl) CreateDraft(ctx context.Context, applicantID string, kind entity.Kind, payload entity.Payload) (*entity.Application, error) {
	if applicantID == "" {
		return nil, apperr.Validationf("applicant id is required")
	}
	if !kind.IsValid() {
		return nil, apperr.Validationf("unknown application kind %q", kind)
	}
	if err := s.validatePayload(kind, payload); err != nil {
		return nil, err
	}

	now := time.Now()
	app := &entity.Application{
		ID:          uuid.New(),
		Kind:        kind,
		ApplicantID: applicantID,
		Status:      entity.StatusDraft,
		Payload:     payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		s.logger.Error("Failed to create draft", "error", err, "applicant_id", applicantID)
		return nil, err
	}

	s.logger.Info("Draft created", "id", app.ID, "kind", kind, "applicant_id", applicantID)
	return app, nil
}

// UpdateDraft replaces the payload of a draft. Only the applicant may edit,
// and only while the application is still in DRAFT.
func (s *applicationServiceImpl) UpdateDraft(ctx context.Context, id uuid.UUID, actorID string, payload entity.Payload) (*entity.Application, error) {
	var updated *entity.Application

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		app, err := s.loadApplication(txCtx, id)
		if err != nil {
			return err
		}
		if app.Status != entity.StatusDraft {
			return apperr.InvalidStatef("application %s is %s, drafts only", id, app.Status)
		}
		if app.ApplicantID != actorID {
			return apperr.Authorizationf("only the applicant may edit a draft")
		}
		if err := s.validatePayload(app.Kind, payload); err != nil {
			return err
		}

		app.Payload = payload
		app.UpdatedAt = time.Now()
		if err := s.appRepo.Update(txCtx, app, entity.StatusDraft); err != nil {
			return err
		}

		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Submit irreversibly starts the approval chain. The application lands
// directly on the first review step; no idle SUBMITTED state is observable.
func (s *applicationServiceImpl) Submit(ctx context.Context, id uuid.UUID, actorID string) (*entity.Application, error) {
	var submitted *entity.Application

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		app, err := s.loadApplication(txCtx, id)
		if err != nil {
			return err
		}
		if app.ApplicantID != actorID {
			return apperr.Authorizationf("only the applicant may submit")
		}

		expected := app.Status
		machine := s.resolver.BuildMachine(app.Kind, app.Status)
		if !machine.CanFire(workflow.TriggerSubmit) {
			return apperr.InvalidStatef("application %s cannot be submitted from %s", id, app.Status)
		}
		if err := machine.Fire(s.stepCtx(txCtx, app), workflow.TriggerSubmit); err != nil {
			return apperr.InvalidStatef("%v", err)
		}

		first := s.resolver.FirstStep(app.Kind)
		app.Status = machine.State()
		app.CurrentStep = &first
		app.UpdatedAt = time.Now()

		if err := s.appRepo.Update(txCtx, app, expected); err != nil {
			return err
		}

		submitted = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Application submitted", "id", id, "kind", submitted.Kind)
	s.emit(ctx, event.TypeApplicationSubmitted, submitted, nil)
	return submitted, nil
}

// Get retrieves an application by id.
func (s *applicationServiceImpl) Get(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	return s.loadApplication(ctx, id)
}

// List retrieves a filtered, paginated application listing with total count.
func (s *applicationServiceImpl) List(ctx context.Context, filter port.ListFilter) ([]*entity.Application, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.appRepo.List(ctx, filter)
}

// History returns the append-only approval history of an application.
func (s *applicationServiceImpl) History(ctx context.Context, id uuid.UUID) ([]*entity.ApprovalRecord, error) {
	if _, err := s.loadApplication(ctx, id); err != nil {
		return nil, err
	}
	return s.recordRepo.GetByApplicationID(ctx, id)
}

// loadApplication reads current state; callers never act on cached copies.
func (s *applicationServiceImpl) loadApplication(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperr.NotFoundf("application %s", id)
	}
	return app, nil
}

// stepCtx attaches the branching data guards need to the context.
func (s *applicationServiceImpl) stepCtx(ctx context.Context, app *entity.Application) context.Context {
	return workflow.WithStepContext(ctx, workflow.StepContext{
		Kind:   app.Kind,
		Amount: app.Payload.Amount,
	})
}

// requireRole checks the actor's role set against the roles authorized for
// the step.
func (s *applicationServiceImpl) requireRole(ctx context.Context, actorID string, kind entity.Kind, step entity.Step) error {
	authorized := s.resolver.AuthorizedRoles(kind, step)
	if len(authorized) == 0 {
		return apperr.InvalidStatef("step %s is not actionable for %s applications", step, kind)
	}

	held, err := s.roles.RolesOf(ctx, actorID)
	if err != nil {
		return fmt.Errorf("resolve roles of %s: %w", actorID, err)
	}

	for _, h := range held {
		for _, a := range authorized {
			if h == a {
				return nil
			}
		}
	}

	return apperr.Authorizationf("actor %s holds no role authorized for step %s", actorID, step)
}

// emit dispatches a domain event after a committed transition.
func (s *applicationServiceImpl) emit(ctx context.Context, t event.Type, app *entity.Application, extra map[string]interface{}) {
	if s.dispatcher == nil {
		return
	}
	payload := map[string]interface{}{
		"kind":         app.Kind.String(),
		"status":       app.Status.String(),
		"applicant_id": app.ApplicantID,
	}
	for k, v := range extra {
		payload[k] = v
	}
	s.dispatcher.DispatchAsync(ctx, event.New(t, app.ID, payload))
}
