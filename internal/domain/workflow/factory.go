package workflow

import (
	"context"
	"fmt"

	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
)

// BuildMachine creates a state machine for the given kind, positioned at
// initialStatus. The pengawas branch is guarded on the StepContext so the
// machine and the resolver share one threshold decision.
func (r *Resolver) BuildMachine(kind entity.Kind, initialStatus entity.Status) StateMachine {
	switch kind {
	case entity.KindLoan:
		return r.buildLoanMachine(initialStatus)
	case entity.KindDeposit:
		return r.buildDepositMachine(initialStatus)
	case entity.KindWithdrawal:
		return r.buildWithdrawalMachine(initialStatus)
	default:
		panic(fmt.Sprintf("unknown application kind: %s", kind))
	}
}

func (r *Resolver) pengawasGuard() GuardFunc {
	return func(ctx context.Context) bool {
		sc, ok := StepContextFrom(ctx)
		return ok && r.PengawasRequired(sc)
	}
}

func (r *Resolver) buildLoanMachine(initial entity.Status) StateMachine {
	builder := NewBuilder()

	builder.Configure(entity.StatusDraft).
		Permit(TriggerSubmit, entity.StatusUnderReviewDSP).
		Permit(TriggerCancel, entity.StatusCancelled)

	builder.Configure(entity.StatusUnderReviewDSP).
		Permit(TriggerApprove, entity.StatusUnderReviewKetua).
		Permit(TriggerReject, entity.StatusRejected).
		Permit(TriggerRevise, entity.StatusUnderReviewDSP).
		Permit(TriggerCancel, entity.StatusCancelled)

	// The pengawas branch is tried first; larger loans take it, the rest
	// fall through to disbursement.
	builder.Configure(entity.StatusUnderReviewKetua).
		PermitIf(TriggerApprove, entity.StatusUnderReviewPengawas, r.pengawasGuard()).
		Permit(TriggerApprove, entity.StatusApprovedPendingDisbursement).
		Permit(TriggerReject, entity.StatusRejected).
		Permit(TriggerRevise, entity.StatusUnderReviewKetua).
		Permit(TriggerCancel, entity.StatusCancelled)

	builder.Configure(entity.StatusUnderReviewPengawas).
		Permit(TriggerApprove, entity.StatusApprovedPendingDisbursement).
		Permit(TriggerReject, entity.StatusRejected).
		Permit(TriggerRevise, entity.StatusUnderReviewPengawas).
		Permit(TriggerCancel, entity.StatusCancelled)

	builder.Configure(entity.StatusApprovedPendingDisbursement).
		Permit(TriggerDisburse, entity.StatusPendingAuthorization).
		Permit(TriggerRevise, entity.StatusApprovedPendingDisbursement)

	builder.Configure(entity.StatusPendingAuthorization).
		Permit(TriggerAuthorize, entity.StatusDisbursed).
		Permit(TriggerRevise, entity.StatusPendingAuthorization)

	// DISBURSED, REJECTED, CANCELLED are terminal.

	return builder.Build(initial)
}

func (r *Resolver) buildDepositMachine(initial entity.Status) StateMachine {
	builder := NewBuilder()

	builder.Configure(entity.StatusDraft).
		Permit(TriggerSubmit, entity.StatusUnderReviewDSP).
		Permit(TriggerCancel, entity.StatusCancelled)

	builder.Configure(entity.StatusUnderReviewDSP).
		Permit(TriggerApprove, entity.StatusUnderReviewKetua).
		Permit(TriggerReject, entity.StatusRejected).
		Permit(TriggerCancel, entity.StatusCancelled)

	// Chair approval activates the deposit; money moves in, not out, so no
	// disbursement or authorization follows.
	builder.Configure(entity.StatusUnderReviewKetua).
		Permit(TriggerApprove, entity.StatusActive).
		Permit(TriggerReject, entity.StatusRejected).
		Permit(TriggerCancel, entity.StatusCancelled)

	return builder.Build(initial)
}

func (r *Resolver) buildWithdrawalMachine(initial entity.Status) StateMachine {
	builder := NewBuilder()

	builder.Configure(entity.StatusDraft).
		Permit(TriggerSubmit, entity.StatusUnderReviewDSP).
		Permit(TriggerCancel, entity.StatusCancelled)

	builder.Configure(entity.StatusUnderReviewDSP).
		Permit(TriggerApprove, entity.StatusUnderReviewKetua).
		Permit(TriggerReject, entity.StatusRejected).
		Permit(TriggerCancel, entity.StatusCancelled)

	builder.Configure(entity.StatusUnderReviewKetua).
		Permit(TriggerApprove, entity.StatusApprovedPendingDisbursement).
		Permit(TriggerReject, entity.StatusRejected).
		Permit(TriggerCancel, entity.StatusCancelled)

	builder.Configure(entity.StatusApprovedPendingDisbursement).
		Permit(TriggerDisburse, entity.StatusPendingAuthorization)

	builder.Configure(entity.StatusPendingAuthorization).
		Permit(TriggerAuthorize, entity.StatusCompleted)

	return builder.Build(initial)
}
