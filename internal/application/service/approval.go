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

// ProcessApproval records a reviewer's approve/reject decision on the
// current step and advances the chain. Approving the division review stamps
// the computed pricing fields. A second decision on an already-decided step
// fails with an invalid-state error because the step has moved on.
func (s *applicationServiceImpl) ProcessApproval(ctx context.Context, id uuid.UUID, actorID string, decision entity.Decision, notes string) (*entity.Application, error) {
	if decision != entity.DecisionApprove && decision != entity.DecisionReject {
		return nil, apperr.Validationf("decision must be %s or %s, got %q", entity.DecisionApprove, entity.DecisionReject, decision)
	}

	var (
		result    *entity.Application
		rejected  bool
		fromState entity.Status
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		app, err := s.loadApplication(txCtx, id)
		if err != nil {
			return err
		}
		if app.Status.IsTerminal() {
			return apperr.InvalidStatef("application %s is terminal (%s)", id, app.Status)
		}
		step := app.StepOrNil()
		if step == "" {
			return apperr.InvalidStatef("application %s awaits no approval step", id)
		}
		if !step.IsReview() {
			return apperr.InvalidStatef("step %s is not a reviewer decision", step)
		}
		if err := s.requireRole(txCtx, actorID, app.Kind, step); err != nil {
			return err
		}

		expected := app.Status
		fromState = app.Status
		machine := s.resolver.BuildMachine(app.Kind, app.Status)
		fireCtx := s.stepCtx(txCtx, app)

		switch decision {
		case entity.DecisionReject:
			if err := machine.Fire(fireCtx, workflow.TriggerReject); err != nil {
				return apperr.InvalidStatef("%v", err)
			}
			app.Status = machine.State()
			app.CurrentStep = nil
			app.RejectionReason = notes
			rejected = true

		case entity.DecisionApprove:
			// The division review finalizes pricing before the chain moves on.
			if step == entity.StepDSPReview {
				if err := s.price(app); err != nil {
					return err
				}
			}
			if err := machine.Fire(fireCtx, workflow.TriggerApprove); err != nil {
				return apperr.InvalidStatef("%v", err)
			}
			app.Status = machine.State()

			sc := workflow.StepContext{Kind: app.Kind, Amount: app.Payload.Amount}
			if next, ok := s.resolver.NextStep(app.Kind, step, sc); ok {
				app.CurrentStep = &next
			} else {
				app.CurrentStep = nil
			}
		}

		app.UpdatedAt = time.Now()

		rec := &entity.ApprovalRecord{
			ID:            uuid.New(),
			ApplicationID: app.ID,
			Step:          step,
			Decision:      decision,
			ActorID:       actorID,
			Notes:         notes,
			PassNumber:    app.RevisionCount + 1,
			Timestamp:     time.Now(),
		}
		if err := s.recordRepo.Create(txCtx, rec); err != nil {
			return err
		}

		if err := s.appRepo.Update(txCtx, app, expected); err != nil {
			return err
		}

		result = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Approval processed",
		"id", id, "actor_id", actorID, "decision", decision,
		"from", fromState, "to", result.Status)

	s.emit(ctx, event.TypeStatusChanged, result, map[string]interface{}{
		"previous_status": fromState.String(),
		"decision":        decision.String(),
	})
	if rejected {
		s.emit(ctx, event.TypeApplicationRejected, result, map[string]interface{}{
			"reason": notes,
		})
	}

	return result, nil
}

// ReviseLoan is the loan-specific escape hatch: a reviewer mutates the
// payload instead of rejecting. The application returns to the step whose
// reviewer initiated the revision, never further back, and already-stamped
// pricing is recomputed from the new payload.
func (s *applicationServiceImpl) ReviseLoan(ctx context.Context, id uuid.UUID, actorID string, payload entity.Payload, notes string) (*entity.Application, error) {
	var result *entity.Application

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		app, err := s.loadApplication(txCtx, id)
		if err != nil {
			return err
		}
		if app.Kind != entity.KindLoan {
			return apperr.InvalidStatef("revision applies to loans only, application %s is %s", id, app.Kind)
		}
		if app.Status.IsTerminal() {
			return apperr.InvalidStatef("application %s is terminal (%s)", id, app.Status)
		}
		step := app.StepOrNil()
		if step == "" {
			return apperr.InvalidStatef("application %s is a draft, edit it instead", id)
		}
		if err := s.requireRole(txCtx, actorID, app.Kind, step); err != nil {
			return err
		}
		if err := s.validatePayload(app.Kind, payload); err != nil {
			return err
		}

		expected := app.Status
		machine := s.resolver.BuildMachine(app.Kind, app.Status)
		if err := machine.Fire(s.stepCtx(txCtx, app), workflow.TriggerRevise); err != nil {
			return apperr.InvalidStatef("%v", err)
		}

		// Record against the pass being interrupted, then open the next one.
		pass := app.RevisionCount + 1
		app.Payload = payload
		app.RevisionCount++
		app.RevisionNotes = notes
		if app.Computed != nil {
			if err := s.price(app); err != nil {
				return err
			}
		}
		app.UpdatedAt = time.Now()

		rec := &entity.ApprovalRecord{
			ID:            uuid.New(),
			ApplicationID: app.ID,
			Step:          step,
			Decision:      entity.DecisionRevise,
			ActorID:       actorID,
			Notes:         notes,
			PassNumber:    pass,
			Timestamp:     time.Now(),
		}
		if err := s.recordRepo.Create(txCtx, rec); err != nil {
			return err
		}

		if err := s.appRepo.Update(txCtx, app, expected); err != nil {
			return err
		}

		result = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loan revised",
		"id", id, "actor_id", actorID, "revision_count", result.RevisionCount)
	return result, nil
}

// price stamps the calculator output for the application's kind. Written
// only here; callers never set computed fields directly. For withdrawals
// the stamped rate is the penalty rate.
func (s *applicationServiceImpl) price(app *entity.Application) error {
	p := app.Payload

	switch app.Kind {
	case entity.KindLoan:
		rate := s.policy.LoanCashAnnualRatePercent
		if p.LoanType == entity.LoanTypeGoodsOnline {
			rate = s.policy.LoanGoodsAnnualRatePercent
		}
		sched, err := s.calculator.ComputeLoanSchedule(p.Amount, p.TenorMonths, rate, p.LoanType)
		if err != nil {
			return err
		}
		app.Computed = &entity.ComputedFields{
			AnnualRatePercent:  rate,
			MonthlyInstallment: sched.MonthlyInstallment,
			TotalRepayment:     sched.TotalRepayment,
			InterestAmount:     sched.InterestAmount,
			ShopMarginAmount:   sched.ShopMarginAmount,
		}

	case entity.KindDeposit:
		rate := s.policy.DepositAnnualRatePercent
		mat, err := s.calculator.ComputeDepositMaturity(p.Amount, p.TenorMonths, rate)
		if err != nil {
			return err
		}
		app.Computed = &entity.ComputedFields{
			AnnualRatePercent: rate,
			MaturityAmount:    mat.MaturityAmount,
			InterestAmount:    mat.InterestAmount,
		}

	case entity.KindWithdrawal:
		rate := s.policy.WithdrawalPenaltyRatePercent
		pen, err := s.calculator.ComputeWithdrawalPenalty(p.Amount, p.EarlyWithdrawal, rate)
		if err != nil {
			return err
		}
		app.Computed = &entity.ComputedFields{
			AnnualRatePercent: rate,
			PenaltyAmount:     pen.PenaltyAmount,
			NetAmount:         pen.NetAmount,
			PenaltyClamped:    pen.Clamped,
		}
	}

	return nil
}
