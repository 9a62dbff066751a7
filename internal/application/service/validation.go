package service

import (
	"github.com/adityahw/koperasi-backoffice/internal/domain/apperr"
	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
)

// validatePayload enforces the kind-specific schema checks on a draft
// payload: amount bounds, tenor bounds, and required fields per sub-type.
func (s *applicationServiceImpl) validatePayload(kind entity.Kind, p entity.Payload) error {
	if !p.Amount.IsPositive() {
		return apperr.Validationf("amount must be positive, got %s", p.Amount)
	}

	switch kind {
	case entity.KindLoan:
		if p.Amount.LessThan(s.policy.LoanMinAmount) || p.Amount.GreaterThan(s.policy.LoanMaxAmount) {
			return apperr.Validationf("loan amount %s outside plafond bounds [%s, %s]",
				p.Amount, s.policy.LoanMinAmount, s.policy.LoanMaxAmount)
		}
		if p.TenorMonths < s.policy.LoanMinTenorMonths || p.TenorMonths > s.policy.LoanMaxTenorMonths {
			return apperr.Validationf("loan tenor %d outside bounds [%d, %d]",
				p.TenorMonths, s.policy.LoanMinTenorMonths, s.policy.LoanMaxTenorMonths)
		}
		if !p.LoanType.IsValid() {
			return apperr.Validationf("unknown loan type %q", p.LoanType)
		}
		if p.LoanType == entity.LoanTypeGoodsOnline && p.Purpose == "" {
			return apperr.Validationf("goods loans require a purchase description")
		}

	case entity.KindDeposit:
		if p.Amount.LessThan(s.policy.DepositMinAmount) {
			return apperr.Validationf("deposit amount %s below minimum %s", p.Amount, s.policy.DepositMinAmount)
		}
		if p.TenorMonths < s.policy.DepositMinTenorMonths || p.TenorMonths > s.policy.DepositMaxTenorMonths {
			return apperr.Validationf("deposit tenor %d outside bounds [%d, %d]",
				p.TenorMonths, s.policy.DepositMinTenorMonths, s.policy.DepositMaxTenorMonths)
		}

	case entity.KindWithdrawal:
		if p.Amount.LessThan(s.policy.WithdrawalMinAmount) {
			return apperr.Validationf("withdrawal amount %s below minimum %s", p.Amount, s.policy.WithdrawalMinAmount)
		}
		if p.DepositRef == "" {
			return apperr.Validationf("withdrawal requires the deposit reference it draws from")
		}
	}

	return nil
}
