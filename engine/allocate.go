/*
allocate.go - Allocation strategy resolver

PURPOSE:
  Decides, for one month's discretionary surplus, which bucket receives
  how much, on top of each account's mandatory minimum. Three passes,
  common to every strategy:

  1. Mandatory pass: each account's minimum is applied to its own buckets
     in descending effective rate. This sub-rule is strategy-independent:
     it is always interest-reducing and never affects feasibility.
  2. Ranking pass: a total order over all open buckets across accounts,
     using the strategy's comparator. Fully deterministic: ties fall back
     to promo expiry and then the configured tie-break.
  3. Distribution pass: walk the ranked list, giving each bucket as much
     of the remaining surplus as it can absorb before moving on.

  The resolver always terminates in one pass over a finite bucket list;
  there is no retry or backtracking.

SEE ALSO:
  - simulate.go: drives these passes each month and owns the shape logic
*/
package engine

import (
	"sort"

	"github.com/finlayjack89/PaydownPilot-sub001/money"
)

// bucketState is one bucket's working copy for the current month.
type bucketState struct {
	acctIdx int
	bktIdx  int
	cfg     Bucket

	balance  money.Cents // start of month, pre-interest
	interest money.Cents // accrued this month
	payment  money.Cents // applied this month
}

// outstanding is what the bucket can still absorb this month.
func (bs *bucketState) outstanding() money.Cents {
	return bs.balance + bs.interest - bs.payment
}

// accountState is one account's working copy across the simulation.
type accountState struct {
	acct    Account
	buckets []*bucketState
}

func (as *accountState) startingBalance() money.Cents {
	var sum money.Cents
	for _, b := range as.buckets {
		sum += b.balance
	}
	return sum
}

func (as *accountState) interestAccrued() money.Cents {
	var sum money.Cents
	for _, b := range as.buckets {
		sum += b.interest
	}
	return sum
}

func (as *accountState) paymentApplied() money.Cents {
	var sum money.Cents
	for _, b := range as.buckets {
		sum += b.payment
	}
	return sum
}

func (as *accountState) outstanding() money.Cents {
	var sum money.Cents
	for _, b := range as.buckets {
		sum += b.outstanding()
	}
	return sum
}

func (as *accountState) open() bool { return as.startingBalance() > 0 }

// =============================================================================
// MANDATORY PASS
// =============================================================================

// applyMandatory spreads an account's minimum payment across its buckets
// in descending effective rate, highest first.
func applyMandatory(as *accountState, minimum money.Cents, month int) {
	remaining := minimum
	for _, bs := range rankWithinAccount(as, month) {
		if remaining <= 0 {
			break
		}
		pay := remaining.Min(bs.outstanding())
		bs.payment += pay
		remaining -= pay
	}
}

// rankWithinAccount orders one account's buckets by descending effective
// rate; ties by ascending promo expiry, then declaration order.
func rankWithinAccount(as *accountState, month int) []*bucketState {
	ranked := make([]*bucketState, len(as.buckets))
	copy(ranked, as.buckets)
	std := as.acct.StandardRateBps
	sort.SliceStable(ranked, func(i, j int) bool {
		ri := ranked[i].cfg.EffectiveRate(std, month)
		rj := ranked[j].cfg.EffectiveRate(std, month)
		if ri != rj {
			return ri > rj
		}
		return promoExpiryKey(ranked[i].cfg) < promoExpiryKey(ranked[j].cfg)
	})
	return ranked
}

// =============================================================================
// RANKING PASS
// =============================================================================

// noPromoExpiry sorts buckets without a promo window after all promo holders.
const noPromoExpiry = 1 << 30

func promoExpiryKey(b Bucket) int {
	if b.Promo {
		return b.PromoExpiryMonth
	}
	return noPromoExpiry
}

// rankOpenBuckets builds the strategy's total order over all buckets that
// can still absorb payment this month.
func rankOpenBuckets(accounts []*accountState, prefs Preferences, month int) []*bucketState {
	var open []*bucketState
	for _, as := range accounts {
		for _, bs := range as.buckets {
			if bs.outstanding() > 0 {
				open = append(open, bs)
			}
		}
	}

	less := bucketComparator(accounts, prefs, month)
	sort.SliceStable(open, less(open))
	return open
}

// bucketComparator returns the strategy comparator as a sort.SliceStable
// less function over the given slice.
func bucketComparator(accounts []*accountState, prefs Preferences, month int) func([]*bucketState) func(i, j int) bool {
	rate := func(bs *bucketState) money.BasisPoints {
		return bs.cfg.EffectiveRate(accounts[bs.acctIdx].acct.StandardRateBps, month)
	}

	tie := func(a, b *bucketState) bool {
		if prefs.TieBreak == TieBreakLowestBalance && a.outstanding() != b.outstanding() {
			return a.outstanding() < b.outstanding()
		}
		if a.acctIdx != b.acctIdx {
			return a.acctIdx < b.acctIdx
		}
		return a.bktIdx < b.bktIdx
	}

	switch prefs.Strategy {
	case StrategyPayOffInPromo, StrategyMinimizeSpendToClearPromos:
		// Active promo buckets first, soonest expiry leading; everything
		// else after, by descending rate.
		return func(s []*bucketState) func(i, j int) bool {
			return func(i, j int) bool {
				a, b := s[i], s[j]
				ap, bp := a.cfg.InPromo(month), b.cfg.InPromo(month)
				if ap != bp {
					return ap
				}
				if ap && bp {
					if a.cfg.PromoExpiryMonth != b.cfg.PromoExpiryMonth {
						return a.cfg.PromoExpiryMonth < b.cfg.PromoExpiryMonth
					}
					return tie(a, b)
				}
				if ra, rb := rate(a), rate(b); ra != rb {
					return ra > rb
				}
				if ea, eb := promoExpiryKey(a.cfg), promoExpiryKey(b.cfg); ea != eb {
					return ea < eb
				}
				return tie(a, b)
			}
		}

	default:
		// Avalanche order: descending effective rate, ties by ascending
		// promo expiry, then the configured tie-break.
		return func(s []*bucketState) func(i, j int) bool {
			return func(i, j int) bool {
				a, b := s[i], s[j]
				if ra, rb := rate(a), rate(b); ra != rb {
					return ra > rb
				}
				if ea, eb := promoExpiryKey(a.cfg), promoExpiryKey(b.cfg); ea != eb {
					return ea < eb
				}
				return tie(a, b)
			}
		}
	}
}

// =============================================================================
// DISTRIBUTION PASS
// =============================================================================

// distribute walks the ranked buckets, assigning as much of the surplus
// as each can absorb, moving on only once a bucket is fully retired for
// the month. Returns the unspent remainder.
func distribute(surplus money.Cents, ranked []*bucketState) money.Cents {
	for _, bs := range ranked {
		if surplus <= 0 {
			break
		}
		pay := surplus.Min(bs.outstanding())
		bs.payment += pay
		surplus -= pay
	}
	return surplus
}
