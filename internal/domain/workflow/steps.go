// Package workflow holds the status state machine and the approval step
// resolver. Both are pure: deterministic, side-effect free, no I/O. The
// engine always asks the resolver "what comes after this step" instead of
// hard-coding chain lengths, so conditional steps live only here.
package workflow

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
)

// StepContext carries the kind-specific data a chain needs for conditional
// branching, currently just the loan amount for the pengawas threshold.
type StepContext struct {
	Kind   entity.Kind
	Amount decimal.Decimal
}

type stepContextKey struct{}

// WithStepContext attaches a StepContext to ctx for guard evaluation.
func WithStepContext(ctx context.Context, sc StepContext) context.Context {
	return context.WithValue(ctx, stepContextKey{}, sc)
}

// StepContextFrom extracts the StepContext attached by WithStepContext.
func StepContextFrom(ctx context.Context) (StepContext, bool) {
	sc, ok := ctx.Value(stepContextKey{}).(StepContext)
	return sc, ok
}

// Resolver answers step-chain questions for every application kind. The
// pengawas review threshold is injected configuration, never a constant.
type Resolver struct {
	pengawasThreshold decimal.Decimal
}

// NewResolver creates a resolver with the loan amount at or above which the
// pengawas review step is required.
func NewResolver(pengawasThreshold decimal.Decimal) *Resolver {
	return &Resolver{pengawasThreshold: pengawasThreshold}
}

// PengawasRequired reports whether the conditional supervisor step applies.
func (r *Resolver) PengawasRequired(sc StepContext) bool {
	return sc.Kind == entity.KindLoan && sc.Amount.GreaterThanOrEqual(r.pengawasThreshold)
}

// FirstStep returns the step a freshly submitted application awaits.
func (r *Resolver) FirstStep(kind entity.Kind) entity.Step {
	// Every chain opens with the division-of-savings-and-loans review.
	return entity.StepDSPReview
}

// NextStep returns the step after current in the kind's chain, or ok=false
// when current is the last step and the chain completes.
func (r *Resolver) NextStep(kind entity.Kind, current entity.Step, sc StepContext) (entity.Step, bool) {
	switch kind {
	case entity.KindLoan:
		switch current {
		case entity.StepDSPReview:
			return entity.StepKetuaReview, true
		case entity.StepKetuaReview:
			if r.PengawasRequired(sc) {
				return entity.StepPengawasReview, true
			}
			return entity.StepDisbursement, true
		case entity.StepPengawasReview:
			return entity.StepDisbursement, true
		case entity.StepDisbursement:
			return entity.StepAuthorization, true
		}
	case entity.KindDeposit:
		switch current {
		case entity.StepDSPReview:
			return entity.StepKetuaReview, true
		}
	case entity.KindWithdrawal:
		switch current {
		case entity.StepDSPReview:
			return entity.StepKetuaReview, true
		case entity.StepKetuaReview:
			return entity.StepDisbursement, true
		case entity.StepDisbursement:
			return entity.StepAuthorization, true
		}
	}
	return "", false
}

// AuthorizedRoles returns the role set that may act on a step. Empty when
// the (kind, step) pair is not part of the kind's chain.
func (r *Resolver) AuthorizedRoles(kind entity.Kind, step entity.Step) []entity.Role {
	switch step {
	case entity.StepDSPReview:
		return []entity.Role{entity.RoleDivisiSimpanPinjam}
	case entity.StepKetuaReview, entity.StepAuthorization:
		return []entity.Role{entity.RoleKetua}
	case entity.StepPengawasReview:
		if kind != entity.KindLoan {
			return nil
		}
		return []entity.Role{entity.RolePengawas}
	case entity.StepDisbursement:
		if kind == entity.KindDeposit {
			return nil
		}
		return []entity.Role{entity.RoleShopkeeper}
	default:
		return nil
	}
}

// StatusFor maps a step to the status an application holds while awaiting it.
func (r *Resolver) StatusFor(step entity.Step) entity.Status {
	switch step {
	case entity.StepDSPReview:
		return entity.StatusUnderReviewDSP
	case entity.StepKetuaReview:
		return entity.StatusUnderReviewKetua
	case entity.StepPengawasReview:
		return entity.StatusUnderReviewPengawas
	case entity.StepDisbursement:
		return entity.StatusApprovedPendingDisbursement
	case entity.StepAuthorization:
		return entity.StatusPendingAuthorization
	default:
		return ""
	}
}

// TerminalStatus returns the success terminal of a kind's chain: loans go
// on-book as DISBURSED, deposits become ACTIVE, withdrawals COMPLETED once
// the funds have left the cooperative.
func (r *Resolver) TerminalStatus(kind entity.Kind) entity.Status {
	switch kind {
	case entity.KindLoan:
		return entity.StatusDisbursed
	case entity.KindDeposit:
		return entity.StatusActive
	case entity.KindWithdrawal:
		return entity.StatusCompleted
	default:
		return ""
	}
}
