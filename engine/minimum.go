package engine

import "github.com/finlayjack89/PaydownPilot-sub001/money"

// MinimumPayment computes an account's mandatory payment for one period:
// the greater of the rule's fixed floor and its percentage of balance.
// The percentage base includes the period's not-yet-charged interest only
// when the rule says so (the UK-style "includes interest" convention).
//
// The result never exceeds what is owed this month (balance plus accrued
// interest): when the computed minimum covers the whole debt, the account
// is fully retired this period. A zero balance yields a zero minimum.
func MinimumPayment(rule MinPaymentRule, balance, interest money.Cents) money.Cents {
	if balance <= 0 {
		return 0
	}

	base := balance
	if rule.IncludesInterest {
		base += interest
	}

	min := rule.FixedCents.Max(money.Percentage(base, rule.PercentageBps))

	owed := balance + interest
	return min.Min(owed)
}
