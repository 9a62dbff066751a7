package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adityahw/koperasi-backoffice/internal/domain/apperr"
	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
	"github.com/adityahw/koperasi-backoffice/internal/domain/event"
	"github.com/adityahw/koperasi-backoffice/internal/domain/workflow"
)

// ProcessDisbursement records the shopkeeper's funds-transfer confirmation
// and moves the application to authorization. Legal only from
// APPROVED_PENDING_DISBURSEMENT; the disbursement record is created once
// and immutable afterwards.
func (s *applicationServiceImpl) ProcessDisbursement(ctx context.Context, id uuid.UUID, actorID string, txDate, txTime, notes string) (*entity.Application, error) {
	if txDate == "" {
		return nil, apperr.Validationf("transaction date is required")
	}

	var (
		result    *entity.Application
		fromState entity.Status
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		app, err := s.loadApplication(txCtx, id)
		if err != nil {
			return err
		}
		if app.Status != entity.StatusApprovedPendingDisbursement {
			return apperr.InvalidStatef("application %s is %s, disbursement needs %s",
				id, app.Status, entity.StatusApprovedPendingDisbursement)
		}
		if err := s.requireRole(txCtx, actorID, app.Kind, entity.StepDisbursement); err != nil {
			return err
		}

		expected := app.Status
		fromState = app.Status
		machine := s.resolver.BuildMachine(app.Kind, app.Status)
		if err := machine.Fire(s.stepCtx(txCtx, app), workflow.TriggerDisburse); err != nil {
			return apperr.InvalidStatef("%v", err)
		}

		rec := &entity.DisbursementRecord{
			ID:            uuid.New(),
			ApplicationID: app.ID,
			ActorID:       actorID,
			TxDate:        txDate,
			TxTime:        txTime,
			Notes:         notes,
			CreatedAt:     time.Now(),
		}
		if err := s.disbRepo.Create(txCtx, rec); err != nil {
			return err
		}

		app.Status = machine.State()
		sc := workflow.StepContext{Kind: app.Kind, Amount: app.Payload.Amount}
		if next, ok := s.resolver.NextStep(app.Kind, entity.StepDisbursement, sc); ok {
			app.CurrentStep = &next
		} else {
			app.CurrentStep = nil
		}
		app.UpdatedAt = time.Now()

		if err := s.appRepo.Update(txCtx, app, expected); err != nil {
			return err
		}

		result = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Disbursement processed",
		"id", id, "actor_id", actorID, "tx_date", txDate)
	s.emit(ctx, event.TypeStatusChanged, result, map[string]interface{}{
		"previous_status": fromState.String(),
	})
	return result, nil
}

// ProcessAuthorization records the chairperson's final sign-off and moves
// the application to its terminal success status.
func (s *applicationServiceImpl) ProcessAuthorization(ctx context.Context, id uuid.UUID, actorID string, authDate, notes string) (*entity.Application, error) {
	if authDate == "" {
		return nil, apperr.Validationf("authorization date is required")
	}

	var (
		result    *entity.Application
		fromState entity.Status
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		app, err := s.loadApplication(txCtx, id)
		if err != nil {
			return err
		}
		if app.Status != entity.StatusPendingAuthorization {
			return apperr.InvalidStatef("application %s is %s, authorization needs %s",
				id, app.Status, entity.StatusPendingAuthorization)
		}
		if err := s.requireRole(txCtx, actorID, app.Kind, entity.StepAuthorization); err != nil {
			return err
		}

		expected := app.Status
		fromState = app.Status
		machine := s.resolver.BuildMachine(app.Kind, app.Status)
		if err := machine.Fire(s.stepCtx(txCtx, app), workflow.TriggerAuthorize); err != nil {
			return apperr.InvalidStatef("%v", err)
		}

		rec := &entity.AuthorizationRecord{
			ID:            uuid.New(),
			ApplicationID: app.ID,
			ActorID:       actorID,
			AuthDate:      authDate,
			Notes:         notes,
			CreatedAt:     time.Now(),
		}
		if err := s.authRepo.Create(txCtx, rec); err != nil {
			return err
		}

		app.Status = machine.State()
		app.CurrentStep = nil
		app.UpdatedAt = time.Now()

		if err := s.appRepo.Update(txCtx, app, expected); err != nil {
			return err
		}

		result = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Authorization processed",
		"id", id, "actor_id", actorID, "auth_date", authDate)
	s.emit(ctx, event.TypeApplicationDisbursed, result, map[string]interface{}{
		"previous_status": fromState.String(),
	})
	return result, nil
}

// Cancel lets the applicant withdraw the application while it is still in
// draft or under review. Terminal: no further mutation afterwards.
func (s *applicationServiceImpl) Cancel(ctx context.Context, id uuid.UUID, actorID string) (*entity.Application, error) {
	var result *entity.Application

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		app, err := s.loadApplication(txCtx, id)
		if err != nil {
			return err
		}
		if app.ApplicantID != actorID {
			return apperr.Authorizationf("only the applicant may cancel")
		}

		expected := app.Status
		machine := s.resolver.BuildMachine(app.Kind, app.Status)
		if !machine.CanFire(workflow.TriggerCancel) {
			return apperr.InvalidStatef("application %s cannot be cancelled from %s", id, app.Status)
		}
		if err := machine.Fire(s.stepCtx(txCtx, app), workflow.TriggerCancel); err != nil {
			return apperr.InvalidStatef("%v", err)
		}

		app.Status = machine.State()
		app.CurrentStep = nil
		app.UpdatedAt = time.Now()

		if err := s.appRepo.Update(txCtx, app, expected); err != nil {
			return err
		}

		result = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Application cancelled", "id", id, "actor_id", actorID)
	return result, nil
}
