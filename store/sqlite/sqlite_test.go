package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlayjack89/PaydownPilot-sub001/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleAccount(id string) engine.Account {
	return engine.Account{
		ID:              engine.AccountID(id),
		LenderName:      "Big Bank",
		Type:            engine.AccountCreditCard,
		StandardRateBps: 2000,
		PaymentDueDay:   15,
		MinPayment:      engine.MinPaymentRule{FixedCents: 2500, PercentageBps: 200, IncludesInterest: true},
		BalanceCents:    100000,
		Buckets: []engine.Bucket{
			{Kind: engine.BucketBalanceTransfer, Label: "BT offer", BalanceCents: 60000, Promo: true, PromoExpiryMonth: 18},
			{Kind: engine.BucketPurchases, BalanceCents: 40000, AnnualRateBps: 2000},
		},
		Notes: "opened at a branch",
	}
}

func TestStore_AccountRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := sampleAccount("acct-1")
	require.NoError(t, s.SaveAccount(ctx, want))

	got, err := s.GetAccount(ctx, "acct-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, want.LenderName, got.LenderName)
	assert.Equal(t, want.Type, got.Type)
	assert.Equal(t, want.BalanceCents, got.BalanceCents)
	assert.Equal(t, want.StandardRateBps, got.StandardRateBps)
	assert.Equal(t, want.MinPayment, got.MinPayment)
	assert.Equal(t, want.Notes, got.Notes)
	require.Len(t, got.Buckets, 2)
	assert.Equal(t, want.Buckets[0], got.Buckets[0])
	assert.Equal(t, want.Buckets[1], got.Buckets[1])
}

func TestStore_SaveAccountReplacesBuckets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct := sampleAccount("acct-1")
	require.NoError(t, s.SaveAccount(ctx, acct))

	acct.Buckets = []engine.Bucket{
		{Kind: engine.BucketPurchases, BalanceCents: 100000, AnnualRateBps: 2000},
	}
	require.NoError(t, s.SaveAccount(ctx, acct))

	got, err := s.GetAccount(ctx, "acct-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Buckets, 1)
	assert.Equal(t, engine.BucketPurchases, got.Buckets[0].Kind)
}

func TestStore_ListAccountsPreservesInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"zeta", "alpha", "mid"} {
		acct := sampleAccount(id)
		acct.LenderName = id
		require.NoError(t, s.SaveAccount(ctx, acct))
	}

	// Updating an existing account must not move it.
	first := sampleAccount("zeta")
	first.LenderName = "zeta"
	first.BalanceCents = 50000
	first.Buckets = nil
	require.NoError(t, s.SaveAccount(ctx, first))

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, engine.AccountID("zeta"), accounts[0].ID)
	assert.Equal(t, engine.AccountID("alpha"), accounts[1].ID)
	assert.Equal(t, engine.AccountID("mid"), accounts[2].ID)
}

func TestStore_DeleteAccountCascadesBuckets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAccount(ctx, sampleAccount("acct-1")))
	require.NoError(t, s.DeleteAccount(ctx, "acct-1"))

	got, err := s.GetAccount(ctx, "acct-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	buckets, err := s.loadBuckets(ctx, "acct-1")
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestStore_BudgetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := engine.BudgetPlan{
		MonthlyCents: 50000,
		Changes:      []engine.BudgetChange{{Month: 3, AmountCents: 60000}},
		LumpSums:     []engine.LumpSum{{Month: 2, AmountCents: 100000}},
	}
	require.NoError(t, s.SaveBudget(ctx, want))

	got, err := s.GetBudget(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// A second save replaces, not appends.
	want.Changes = nil
	require.NoError(t, s.SaveBudget(ctx, want))
	got, err = s.GetBudget(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Changes)
}

func TestStore_PreferencesDefaultWhenUnset(t *testing.T) {
	s := newTestStore(t)

	prefs, err := s.GetPreferences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.StrategyMinimizeTotalInterest, prefs.Strategy)
	assert.Equal(t, engine.ShapeOptimizedMonthToMonth, prefs.Shape)
}

func TestStore_PreferencesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := engine.Preferences{
		Strategy: engine.StrategyPayOffInPromo,
		Shape:    engine.ShapeLinearPerAccount,
		TieBreak: engine.TieBreakLowestBalance,
	}
	require.NoError(t, s.SavePreferences(ctx, want))

	got, err := s.GetPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_LatestPlan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	latest, err := s.LatestPlan(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	older := PlanRecord{
		ID:        "plan-1",
		Status:    engine.StatusOptimal,
		StartDate: start,
		Result:    &engine.PlanResult{Status: engine.StatusOptimal, StartDate: start},
		CreatedAt: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC),
	}
	newer := older
	newer.ID = "plan-2"
	newer.Status = engine.StatusHorizonExceeded
	newer.Result = &engine.PlanResult{Status: engine.StatusHorizonExceeded, StartDate: start}
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)

	require.NoError(t, s.SavePlan(ctx, older))
	require.NoError(t, s.SavePlan(ctx, newer))

	latest, err = s.LatestPlan(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "plan-2", latest.ID)
	assert.Equal(t, engine.StatusHorizonExceeded, latest.Status)
	require.NotNil(t, latest.Result)
	assert.Equal(t, engine.StatusHorizonExceeded, latest.Result.Status)
}

func TestStore_LatestPlanSameSecondTieBreaksOnInsertion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

	// IDs chosen so lexicographic order disagrees with insertion order.
	first := PlanRecord{
		ID:        "plan-zzz",
		Status:    engine.StatusOptimal,
		StartDate: start,
		Result:    &engine.PlanResult{Status: engine.StatusOptimal, StartDate: start},
		CreatedAt: createdAt,
	}
	second := first
	second.ID = "plan-aaa"
	second.Status = engine.StatusInfeasible
	second.Result = &engine.PlanResult{Status: engine.StatusInfeasible, StartDate: start}

	require.NoError(t, s.SavePlan(ctx, first))
	require.NoError(t, s.SavePlan(ctx, second))

	latest, err := s.LatestPlan(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "plan-aaa", latest.ID)
	assert.Equal(t, engine.StatusInfeasible, latest.Status)
}

func TestStore_ResetClearsEverything(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAccount(ctx, sampleAccount("acct-1")))
	require.NoError(t, s.SaveBudget(ctx, engine.BudgetPlan{MonthlyCents: 50000}))
	require.NoError(t, s.Reset(ctx))

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	budget, err := s.GetBudget(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.BudgetPlan{}, budget)
}
