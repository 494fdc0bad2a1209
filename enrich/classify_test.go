package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_BucketsByKeyword(t *testing.T) {
	c := NewClassifier()

	enriched := c.Classify([]Transaction{
		{ID: "t1", Description: "KLARNA PAYMENT", AmountCents: -4500, Timestamp: "2026-07-03T09:00:00Z"},
		{ID: "t2", Description: "British Gas DD", AmountCents: -8900, Timestamp: "2026-07-05"},
		{ID: "t3", Description: "COFFEE HOUSE", AmountCents: -350, Timestamp: "2026-07-06"},
		{ID: "t4", Description: "ACME LTD SALARY", AmountCents: 250000, Timestamp: "2026-07-28"},
	})

	require.Len(t, enriched, 4)
	assert.Equal(t, CategoryDebt, enriched[0].Category)
	assert.Equal(t, CategoryFixed, enriched[1].Category)
	assert.Equal(t, CategoryDiscretionary, enriched[2].Category)
	assert.Equal(t, CategoryIncome, enriched[3].Category)

	// Amounts come back as absolute values with the direction split out.
	assert.Equal(t, int64(4500), int64(enriched[0].AmountCents))
	assert.Equal(t, EntryOutgoing, enriched[0].EntryType)
	assert.Equal(t, EntryIncoming, enriched[3].EntryType)

	// Timestamps are truncated to dates.
	assert.Equal(t, "2026-07-03", enriched[0].Date)
	assert.Equal(t, "2026-07-05", enriched[1].Date)
}

func TestClassify_DebtBeatsFixed(t *testing.T) {
	c := NewClassifier()

	// "car finance" is a debt keyword even though "insurance"-adjacent
	// wording often appears in the same label set.
	enriched := c.Classify([]Transaction{
		{ID: "t1", Description: "MOTONOVO", AmountCents: -21000,
			Labels: []string{"car finance", "car insurance"}, Timestamp: "2026-07-01"},
	})

	require.Len(t, enriched, 1)
	assert.Equal(t, CategoryDebt, enriched[0].Category)
}

func TestClassify_RecurringOutgoingFallsBackToFixed(t *testing.T) {
	c := NewClassifier()

	enriched := c.Classify([]Transaction{
		{ID: "t1", Description: "WINDOW CLEANER STANDING ORDER", AmountCents: -1500, Timestamp: "2026-07-01"},
	})

	require.Len(t, enriched, 1)
	assert.True(t, enriched[0].IsRecurring)
	assert.Equal(t, CategoryFixed, enriched[0].Category)
}

func TestAnalyze_MonthlyAveragesAndSafeToSpend(t *testing.T) {
	c := NewClassifier()
	enriched := c.Classify([]Transaction{
		{ID: "s1", Description: "SALARY", AmountCents: 200000, Timestamp: "2026-06-28"},
		{ID: "s2", Description: "SALARY", AmountCents: 200000, Timestamp: "2026-07-28"},
		{ID: "r1", Description: "RENT DD", AmountCents: -60000, Timestamp: "2026-06-01"},
		{ID: "r2", Description: "RENT DD", AmountCents: -60000, Timestamp: "2026-07-01"},
		{ID: "d1", Description: "KLARNA", AmountCents: -10000, Timestamp: "2026-06-15"},
		{ID: "d2", Description: "KLARNA", AmountCents: -10000, Timestamp: "2026-07-15"},
		{ID: "x1", Description: "RESTAURANT", AmountCents: -5000, Timestamp: "2026-07-20"},
	})

	a := Analyze(enriched)

	assert.Equal(t, 2, a.Months)
	assert.Equal(t, int64(200000), int64(a.MonthlyIncomeCents))
	assert.Equal(t, int64(60000), int64(a.MonthlyFixedCents))
	assert.Equal(t, int64(10000), int64(a.MonthlyDebtCents))
	assert.Equal(t, int64(2500), int64(a.MonthlyFlexCents))
	// 200000 - 60000 - 10000
	assert.Equal(t, int64(130000), int64(a.SafeToSpendCents))

	require.Len(t, a.DetectedDebts, 1)
	assert.Equal(t, "KLARNA", a.DetectedDebts[0].Description)
	assert.Equal(t, 2, a.DetectedDebts[0].Occurrences)
	assert.Equal(t, "2026-07-15", a.DetectedDebts[0].LastSeen)
}

func TestAnalyze_SafeToSpendNeverNegative(t *testing.T) {
	c := NewClassifier()
	enriched := c.Classify([]Transaction{
		{ID: "s1", Description: "SALARY", AmountCents: 50000, Timestamp: "2026-07-28"},
		{ID: "r1", Description: "RENT DD", AmountCents: -80000, Timestamp: "2026-07-01"},
	})

	a := Analyze(enriched)
	assert.Equal(t, int64(0), int64(a.SafeToSpendCents))
}
