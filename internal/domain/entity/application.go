package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Application is a member's loan, deposit, or withdrawal request moving
// through the approval workflow. The three kinds share one lifecycle and
// differ only in payload and step chain.
type Application struct {
	ID          uuid.UUID `json:"id"`
	Kind        Kind      `json:"kind"`
	ApplicantID string    `json:"applicant_id"`
	Status      Status    `json:"status"`

	// CurrentStep is nil when the status is terminal or does not await an
	// approval decision (DRAFT).
	CurrentStep *Step `json:"current_step,omitempty"`

	Payload Payload `json:"payload"`

	// Computed is written only by the financial calculator, at the pricing
	// transition. Never set by a caller directly.
	Computed *ComputedFields `json:"computed,omitempty"`

	RevisionCount   int    `json:"revision_count"`
	RevisionNotes   string `json:"revision_notes,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payload carries the kind-specific fields of an application. Loan fields
// are zero-valued for deposits and withdrawals, and vice versa.
type Payload struct {
	Amount      decimal.Decimal `json:"amount"`
	TenorMonths int             `json:"tenor_months,omitempty"`

	// Loan only.
	LoanType LoanType `json:"loan_type,omitempty"`
	Purpose  string   `json:"purpose,omitempty"`

	// Withdrawal only.
	DepositRef      string `json:"deposit_ref,omitempty"`
	EarlyWithdrawal bool   `json:"early_withdrawal,omitempty"`
}

// ComputedFields holds the calculator output stamped onto an application
// when the pricing review step approves. All values recompute
// deterministically from the payload plus the stamped rates.
type ComputedFields struct {
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`

	// Loan.
	MonthlyInstallment decimal.Decimal `json:"monthly_installment,omitempty"`
	TotalRepayment     decimal.Decimal `json:"total_repayment,omitempty"`
	InterestAmount     decimal.Decimal `json:"interest_amount,omitempty"`
	ShopMarginAmount   decimal.Decimal `json:"shop_margin_amount,omitempty"`

	// Deposit.
	MaturityAmount decimal.Decimal `json:"maturity_amount,omitempty"`

	// Withdrawal.
	PenaltyAmount  decimal.Decimal `json:"penalty_amount,omitempty"`
	NetAmount      decimal.Decimal `json:"net_amount,omitempty"`
	PenaltyClamped bool            `json:"penalty_clamped,omitempty"`
}

// StepOrNil returns the current step value, or "" if none is awaited.
func (a *Application) StepOrNil() Step {
	if a.CurrentStep == nil {
		return ""
	}
	return *a.CurrentStep
}
