package engine

import (
	"testing"

	"github.com/finlayjack89/PaydownPilot-sub001/money"
)

func testStates(t *testing.T, accounts []Account) []*accountState {
	t.Helper()
	states := make([]*accountState, len(accounts))
	for i, acct := range accounts {
		as := &accountState{acct: acct}
		for j, cfg := range acct.effectiveBuckets() {
			as.buckets = append(as.buckets, &bucketState{
				acctIdx: i,
				bktIdx:  j,
				cfg:     cfg,
				balance: cfg.BalanceCents,
			})
		}
		states[i] = as
	}
	return states
}

func rankIDs(states []*accountState, prefs Preferences, month int) []AccountID {
	ranked := rankOpenBuckets(states, prefs, month)
	ids := make([]AccountID, len(ranked))
	for i, bs := range ranked {
		ids[i] = states[bs.acctIdx].acct.ID
	}
	return ids
}

func TestRankOpenBuckets_AvalancheDescendingRate(t *testing.T) {
	states := testStates(t, []Account{
		{ID: "mid", StandardRateBps: 1500, BalanceCents: 10000},
		{ID: "high", StandardRateBps: 2999, BalanceCents: 10000},
		{ID: "low", StandardRateBps: 900, BalanceCents: 10000},
	})

	got := rankIDs(states, Preferences{Strategy: StrategyMinimizeTotalInterest}, 0)
	want := []AccountID{"high", "mid", "low"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rank = %v, want %v", got, want)
		}
	}
}

func TestRankOpenBuckets_EqualRates_InsertionOrderTieBreak(t *testing.T) {
	states := testStates(t, []Account{
		{ID: "first", StandardRateBps: 2000, BalanceCents: 50000},
		{ID: "second", StandardRateBps: 2000, BalanceCents: 10000},
	})

	got := rankIDs(states, Preferences{Strategy: StrategyMinimizeTotalInterest}, 0)
	if got[0] != "first" || got[1] != "second" {
		t.Errorf("rank = %v, want insertion order", got)
	}
}

func TestRankOpenBuckets_EqualRates_LowestBalanceTieBreak(t *testing.T) {
	states := testStates(t, []Account{
		{ID: "big", StandardRateBps: 2000, BalanceCents: 50000},
		{ID: "small", StandardRateBps: 2000, BalanceCents: 10000},
	})

	prefs := Preferences{Strategy: StrategyMinimizeTotalInterest, TieBreak: TieBreakLowestBalance}
	got := rankIDs(states, prefs, 0)
	if got[0] != "small" || got[1] != "big" {
		t.Errorf("rank = %v, want smallest balance first", got)
	}
}

func TestRankOpenBuckets_PromoStrategy_SoonestExpiryFirst(t *testing.T) {
	states := testStates(t, []Account{
		{ID: "plain", StandardRateBps: 2999, BalanceCents: 10000},
		{ID: "later", StandardRateBps: 2000, BalanceCents: 10000, PromoExpiryMonth: 12},
		{ID: "soon", StandardRateBps: 2000, BalanceCents: 10000, PromoExpiryMonth: 4},
	})

	got := rankIDs(states, Preferences{Strategy: StrategyPayOffInPromo}, 0)
	want := []AccountID{"soon", "later", "plain"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rank = %v, want %v", got, want)
		}
	}
}

func TestRankOpenBuckets_ExpiredPromoRanksByRate(t *testing.T) {
	states := testStates(t, []Account{
		{ID: "expired", StandardRateBps: 2999, BalanceCents: 10000, PromoExpiryMonth: 2},
		{ID: "active", StandardRateBps: 1000, BalanceCents: 10000, PromoExpiryMonth: 12},
	})

	// Month 5: the first promo has lapsed, so that bucket competes at the
	// standard rate and only the live promo keeps priority.
	got := rankIDs(states, Preferences{Strategy: StrategyPayOffInPromo}, 5)
	if got[0] != "active" || got[1] != "expired" {
		t.Errorf("rank = %v, want active promo first", got)
	}
}

func TestApplyMandatory_HighestRateBucketFirst(t *testing.T) {
	acct := Account{
		ID:              "split",
		StandardRateBps: 2400,
		BalanceCents:    30000,
		Buckets: []Bucket{
			{Kind: BucketBalanceTransfer, BalanceCents: 20000, Promo: true, PromoExpiryMonth: 12},
			{Kind: BucketPurchases, BalanceCents: 10000, AnnualRateBps: 2400},
		},
	}
	states := testStates(t, []Account{acct})

	applyMandatory(states[0], 12000, 0)

	// The standard-rate purchases bucket absorbs its full 10000 before the
	// promo bucket sees anything.
	if got := states[0].buckets[1].payment; got != 10000 {
		t.Errorf("purchases payment = %d, want 10000", got)
	}
	if got := states[0].buckets[0].payment; got != 2000 {
		t.Errorf("balance-transfer payment = %d, want 2000", got)
	}
}

func TestDistribute_ReturnsUnspentRemainder(t *testing.T) {
	states := testStates(t, []Account{
		{ID: "a", StandardRateBps: 2000, BalanceCents: 3000},
		{ID: "b", StandardRateBps: 1000, BalanceCents: 4000},
	})
	ranked := rankOpenBuckets(states, Preferences{Strategy: StrategyMinimizeTotalInterest}, 0)

	unspent := distribute(10000, ranked)

	if unspent != 3000 {
		t.Errorf("unspent = %d, want 3000", unspent)
	}
	var total money.Cents
	for _, as := range states {
		total += as.paymentApplied()
	}
	if total != 7000 {
		t.Errorf("total applied = %d, want 7000", total)
	}
}
