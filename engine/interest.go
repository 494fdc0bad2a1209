package engine

import "github.com/finlayjack89/PaydownPilot-sub001/money"

// BucketInterest computes one month of interest on balance under a
// bucket's rate configuration: a pure function of (balance, rate, promo
// state, month). The bucket's own rate applies only while its promo
// window covers the month; otherwise the account's standard rate does.
// Balance is a parameter because it evolves during simulation while the
// bucket configuration does not. Zero balances accrue nothing.
func BucketInterest(b Bucket, balance money.Cents, standard money.BasisPoints, month int) money.Cents {
	return money.MonthlyInterest(balance, b.EffectiveRate(standard, month))
}
