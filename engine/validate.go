/*
validate.go - Portfolio validation at plan construction

PURPOSE:
  Rejects malformed input before the simulation starts, so the loop never
  has to re-check per month and never surfaces a partial schedule for bad
  data. Infeasibility is NOT a validation failure - a budget that cannot
  cover minimums is a legitimate terminal status.

CHECKS:
  - at least one account; recognized strategy and shape
  - non-negative balances and rates, account and bucket level
  - payment due day within 1..28
  - promo flag implies a positive expiry month
  - bucket balances sum to the account balance at plan start
  - minimize_spend_to_clear_promos requires a promo window everywhere
*/
package engine

import "fmt"

// Validate checks a portfolio against the construction-time invariants.
func Validate(p Portfolio) error {
	if len(p.Accounts) == 0 {
		return ErrNoAccounts
	}

	switch p.Preferences.Strategy {
	case StrategyMinimizeTotalInterest, StrategyTargetMaxBudget,
		StrategyPayOffInPromo, StrategyMinimizeMonthlySpend,
		StrategyMinimizeSpendToClearPromos:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, p.Preferences.Strategy)
	}

	switch p.Preferences.Shape {
	case ShapeOptimizedMonthToMonth, ShapeLinearPerAccount:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownShape, p.Preferences.Shape)
	}

	if p.Budget.MonthlyCents.IsNegative() {
		return &AccountValidationError{Field: "budget", Message: "monthly budget must not be negative"}
	}
	for _, c := range p.Budget.Changes {
		if c.AmountCents.IsNegative() {
			return &AccountValidationError{Field: "budget", Message: "budget change amounts must not be negative"}
		}
	}
	for _, ls := range p.Budget.LumpSums {
		if ls.AmountCents.IsNegative() {
			return &AccountValidationError{Field: "budget", Message: "lump sum amounts must not be negative"}
		}
	}

	for _, a := range p.Accounts {
		if err := validateAccount(a); err != nil {
			return err
		}
	}

	if p.Preferences.Strategy == StrategyMinimizeSpendToClearPromos {
		for _, a := range p.Accounts {
			if !accountHasPromo(a) {
				return fmt.Errorf("%w: account %q has none", ErrPromoRequired, a.LenderName)
			}
		}
	}

	return nil
}

func validateAccount(a Account) error {
	fail := func(field, msg string) error {
		return &AccountValidationError{AccountID: a.ID, LenderName: a.LenderName, Field: field, Message: msg}
	}

	if a.LenderName == "" {
		return fail("lender_name", "must not be empty")
	}
	if a.BalanceCents.IsNegative() {
		return fail("balance", "must not be negative")
	}
	if a.StandardRateBps < 0 {
		return fail("apr_standard_bps", "must not be negative")
	}
	if a.PaymentDueDay < 1 || a.PaymentDueDay > 28 {
		return fail("payment_due_day", "must be between 1 and 28")
	}
	if a.MinPayment.FixedCents.IsNegative() {
		return fail("min_payment.fixed", "must not be negative")
	}
	if a.MinPayment.PercentageBps < 0 {
		return fail("min_payment.percentage_bps", "must not be negative")
	}

	for i, b := range a.Buckets {
		field := fmt.Sprintf("buckets[%d]", i)
		if b.BalanceCents.IsNegative() {
			return fail(field, "balance must not be negative")
		}
		if b.AnnualRateBps < 0 {
			return fail(field, "rate must not be negative")
		}
		if b.Promo && b.PromoExpiryMonth <= 0 {
			return fail(field, "promo bucket needs a positive expiry month")
		}
	}

	if len(a.Buckets) > 0 {
		var sum = a.TotalBalance()
		if sum != a.BalanceCents {
			return &BucketSumError{AccountID: a.ID, LenderName: a.LenderName, Account: a.BalanceCents, Buckets: sum}
		}
	}

	return nil
}

func accountHasPromo(a Account) bool {
	if len(a.Buckets) == 0 {
		return a.PromoExpiryMonth > 0
	}
	for _, b := range a.Buckets {
		if b.Promo && b.PromoExpiryMonth > 0 {
			return true
		}
	}
	return false
}
