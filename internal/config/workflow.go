package config

import (
	"github.com/shopspring/decimal"

	"github.com/adityahw/koperasi-backoffice/internal/application/service"
	"github.com/adityahw/koperasi-backoffice/internal/domain/finance"
)

// SupervisorThreshold returns the loan amount at or above which the
// supervisor review step is inserted.
func (w WorkflowConfig) SupervisorThreshold() decimal.Decimal {
	return decimal.NewFromInt(w.SupervisorAmountThreshold)
}

// FinanceConfig maps the workflow section onto calculator settings.
func (w WorkflowConfig) FinanceConfig() finance.Config {
	return finance.Config{
		MaxRatePercent:        decimal.NewFromFloat(w.MaxRatePercent),
		ShopMarginRatePercent: decimal.NewFromFloat(w.Loan.ShopMarginRatePercent),
	}
}

// Policy maps the workflow section onto the service-layer validation and
// pricing policy.
func (w WorkflowConfig) Policy() service.Policy {
	return service.Policy{
		LoanMinAmount:      decimal.NewFromInt(w.Loan.MinAmount),
		LoanMaxAmount:      decimal.NewFromInt(w.Loan.MaxAmount),
		LoanMinTenorMonths: w.Loan.MinTenorMonths,
		LoanMaxTenorMonths: w.Loan.MaxTenorMonths,

		LoanCashAnnualRatePercent:  decimal.NewFromFloat(w.Loan.CashAnnualRatePercent),
		LoanGoodsAnnualRatePercent: decimal.NewFromFloat(w.Loan.GoodsAnnualRatePercent),

		DepositMinAmount:         decimal.NewFromInt(w.Deposit.MinAmount),
		DepositMinTenorMonths:    w.Deposit.MinTenorMonths,
		DepositMaxTenorMonths:    w.Deposit.MaxTenorMonths,
		DepositAnnualRatePercent: decimal.NewFromFloat(w.Deposit.AnnualRatePercent),

		WithdrawalMinAmount:          decimal.NewFromInt(w.Withdrawal.MinAmount),
		WithdrawalPenaltyRatePercent: decimal.NewFromFloat(w.Withdrawal.PenaltyRatePercent),
	}
}
