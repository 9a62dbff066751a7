// Package finance implements the cooperative's pricing math: flat-rate loan
// installment schedules, deposit maturity, and early-withdrawal penalties.
// Every function is pure and recomputes from its inputs, so two calls with
// the same arguments produce byte-identical results.
package finance

import (
	"github.com/shopspring/decimal"

	"github.com/adityahw/koperasi-backoffice/internal/domain/apperr"
	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
)

var (
	oneHundred   = decimal.NewFromInt(100)
	twelveMonths = decimal.NewFromInt(12)
)

// Config bounds the rates the calculator accepts.
type Config struct {
	// MaxRatePercent is the upper bound on annual interest rates.
	MaxRatePercent decimal.Decimal

	// ShopMarginRatePercent is applied to the principal of goods-via-shop
	// loans, on top of the interest portion.
	ShopMarginRatePercent decimal.Decimal
}

// Calculator computes pricing for all three application kinds.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with the given rate bounds.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// LoanSchedule is the priced repayment breakdown of a loan. Interest and
// shop margin stay separately reportable.
type LoanSchedule struct {
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	TotalRepayment     decimal.Decimal `json:"total_repayment"`
	InterestAmount     decimal.Decimal `json:"interest_amount"`
	ShopMarginAmount   decimal.Decimal `json:"shop_margin_amount"`
}

// DepositMaturity is the projected value of a term deposit at maturity.
type DepositMaturity struct {
	MaturityAmount decimal.Decimal `json:"maturity_amount"`
	InterestAmount decimal.Decimal `json:"interest_amount"`
}

// WithdrawalPenalty is the deduction applied to an early withdrawal.
// Clamped is set when the penalty would have driven the net negative.
type WithdrawalPenalty struct {
	PenaltyAmount decimal.Decimal `json:"penalty_amount"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	Clamped       bool            `json:"clamped"`
}

// ComputeLoanSchedule prices a loan with flat-rate interest:
//
//	totalInterest = amount * rate/100 * tenor/12
//	installment   = (amount + totalInterest + margin) / tenor
//
// rounded to whole currency units, half up. The shop margin applies only to
// the goods-via-online-shop sub-type.
func (c *Calculator) ComputeLoanSchedule(amount decimal.Decimal, tenorMonths int, annualRatePercent decimal.Decimal, loanType entity.LoanType) (LoanSchedule, error) {
	if err := c.validateAmount(amount); err != nil {
		return LoanSchedule{}, err
	}
	if tenorMonths <= 0 {
		return LoanSchedule{}, apperr.Validationf("tenor must be positive, got %d", tenorMonths)
	}
	if err := c.validateRate(annualRatePercent); err != nil {
		return LoanSchedule{}, err
	}
	if !loanType.IsValid() {
		return LoanSchedule{}, apperr.Validationf("unknown loan type %q", loanType)
	}

	tenor := decimal.NewFromInt(int64(tenorMonths))
	interest := flatInterest(amount, annualRatePercent, tenorMonths)

	margin := decimal.Zero
	if loanType == entity.LoanTypeGoodsOnline {
		margin = roundUnit(amount.Mul(c.cfg.ShopMarginRatePercent).Div(oneHundred))
	}

	gross := amount.Add(interest).Add(margin)

	return LoanSchedule{
		MonthlyInstallment: roundUnit(gross.Div(tenor)),
		TotalRepayment:     roundUnit(gross),
		InterestAmount:     interest,
		ShopMarginAmount:   margin,
	}, nil
}

// ComputeDepositMaturity projects a term deposit with the same flat-rate
// convention as loans.
func (c *Calculator) ComputeDepositMaturity(amount decimal.Decimal, tenorMonths int, annualRatePercent decimal.Decimal) (DepositMaturity, error) {
	if err := c.validateAmount(amount); err != nil {
		return DepositMaturity{}, err
	}
	if tenorMonths <= 0 {
		return DepositMaturity{}, apperr.Validationf("tenor must be positive, got %d", tenorMonths)
	}
	if err := c.validateRate(annualRatePercent); err != nil {
		return DepositMaturity{}, err
	}

	interest := flatInterest(amount, annualRatePercent, tenorMonths)

	return DepositMaturity{
		MaturityAmount: roundUnit(amount.Add(interest)),
		InterestAmount: interest,
	}, nil
}

// ComputeWithdrawalPenalty deducts the early-withdrawal penalty. The
// penalty is zero unless the withdrawal is early, and the net amount is
// clamped at zero rather than going negative (Clamped flags that case, so a
// misconfigured rate above 100% is visible to the caller).
func (c *Calculator) ComputeWithdrawalPenalty(amount decimal.Decimal, isEarlyWithdrawal bool, penaltyRatePercent decimal.Decimal) (WithdrawalPenalty, error) {
	if err := c.validateAmount(amount); err != nil {
		return WithdrawalPenalty{}, err
	}
	if penaltyRatePercent.IsNegative() {
		return WithdrawalPenalty{}, apperr.Validationf("penalty rate must not be negative, got %s", penaltyRatePercent)
	}

	if !isEarlyWithdrawal {
		return WithdrawalPenalty{
			PenaltyAmount: decimal.Zero,
			NetAmount:     roundUnit(amount),
		}, nil
	}

	penalty := roundUnit(amount.Mul(penaltyRatePercent).Div(oneHundred))
	net := roundUnit(amount).Sub(penalty)

	clamped := false
	if net.IsNegative() {
		net = decimal.Zero
		clamped = true
	}

	return WithdrawalPenalty{
		PenaltyAmount: penalty,
		NetAmount:     net,
		Clamped:       clamped,
	}, nil
}

func (c *Calculator) validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.Validationf("amount must be positive, got %s", amount)
	}
	return nil
}

func (c *Calculator) validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return apperr.Validationf("rate must not be negative, got %s", rate)
	}
	if rate.GreaterThan(c.cfg.MaxRatePercent) {
		return apperr.Validationf("rate %s exceeds configured bound %s", rate, c.cfg.MaxRatePercent)
	}
	return nil
}

// flatInterest computes amount * rate/100 * months/12, rounded to whole
// currency units.
func flatInterest(amount, annualRatePercent decimal.Decimal, tenorMonths int) decimal.Decimal {
	months := decimal.NewFromInt(int64(tenorMonths))
	return roundUnit(amount.Mul(annualRatePercent).Div(oneHundred).Mul(months).Div(twelveMonths))
}

// roundUnit rounds to whole currency units, half up. No fractional rupiah
// ever reach a stored field.
func roundUnit(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}
