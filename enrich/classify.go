/*
Package enrich classifies raw bank transactions into budget buckets and
resolves lender minimum-payment rules.

PURPOSE:
  Sits upstream of plan generation. Open-banking feeds deliver flat
  transaction rows; this package normalizes them, sorts each into one of
  four budget buckets, flags recurring payments, and aggregates a budget
  analysis (income, fixed costs, safe-to-spend) that a client can turn
  into a monthly repayment budget. Detected debt payments surface as
  candidate accounts for the user to confirm.

BUCKETS:
  - debt:          loan, credit card, BNPL and similar repayments
  - fixed:         bills, subscriptions, recurring outgoings
  - discretionary: everything else outgoing
  - income:        incoming money

CLASSIFICATION ORDER:
  Debt keywords win over fixed keywords; an unmatched recurring outgoing
  falls back to fixed; any other outgoing is discretionary; incoming is
  income. Matching is case-insensitive substring search over the labels
  and the description.

USAGE:
  c := enrich.NewClassifier()
  enriched := c.Classify(transactions)
  analysis := enrich.Analyze(enriched)

SEE ALSO:
  - lenders.go: minimum-payment rule lookup for detected lenders
*/
package enrich

import (
	"sort"
	"strings"

	"github.com/finlayjack89/PaydownPilot-sub001/money"
)

// =============================================================================
// BUDGET CATEGORIES
// =============================================================================

// Category is the budget bucket a transaction lands in.
type Category string

const (
	CategoryDebt          Category = "debt"
	CategoryFixed         Category = "fixed"
	CategoryDiscretionary Category = "discretionary"
	CategoryIncome        Category = "income"
)

// EntryType is the direction of a transaction.
type EntryType string

const (
	EntryIncoming EntryType = "incoming"
	EntryOutgoing EntryType = "outgoing"
)

// =============================================================================
// KEYWORD TABLES
// =============================================================================

// debtKeywords mark repayments on credit products.
var debtKeywords = []string{
	"loan", "mortgage", "finance", "bnpl", "buy now pay later",
	"credit card", "overdraft", "klarna", "clearpay", "afterpay",
	"laybuy", "paypal credit", "very pay", "littlewoods", "studio",
	"car finance", "personal loan", "debt collection", "debt recovery",
}

// fixedKeywords mark bills and committed recurring costs.
var fixedKeywords = []string{
	"utilities", "utility", "gas", "electric", "electricity", "water",
	"council tax", "insurance", "home insurance", "car insurance",
	"life insurance", "health insurance", "subscription", "membership",
	"gym", "streaming", "netflix", "spotify", "amazon prime", "disney+",
	"rent", "mortgage payment", "broadband", "internet", "phone", "mobile",
	"tv license", "childcare", "nursery", "school fees",
}

// recurringKeywords hint that a description is a standing arrangement.
var recurringKeywords = []string{
	"dd ", "direct debit", "standing order", "s/o",
	"subscription", "monthly", "recurring",
}

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// Transaction is one raw open-banking transaction row.
type Transaction struct {
	ID          string   `json:"transaction_id"`
	Description string   `json:"description"`
	AmountCents int64    `json:"amount_cents"` // signed: positive incoming, negative outgoing
	Currency    string   `json:"currency,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Timestamp   string   `json:"timestamp"` // ISO date or datetime
}

// Enriched is a transaction after normalization and classification.
type Enriched struct {
	ID          string      `json:"transaction_id"`
	Description string      `json:"description"`
	AmountCents money.Cents `json:"amount_cents"` // absolute value
	EntryType   EntryType   `json:"entry_type"`
	Category    Category    `json:"budget_category"`
	IsRecurring bool        `json:"is_recurring"`
	Labels      []string    `json:"labels,omitempty"`
	Date        string      `json:"transaction_date"` // YYYY-MM-DD
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classifier buckets transactions by keyword matching.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify normalizes and classifies a batch, preserving input order.
func (c *Classifier) Classify(txs []Transaction) []Enriched {
	out := make([]Enriched, 0, len(txs))
	for _, tx := range txs {
		out = append(out, c.classifyOne(tx))
	}
	return out
}

func (c *Classifier) classifyOne(tx Transaction) Enriched {
	amount := money.Cents(tx.AmountCents)
	entry := EntryIncoming
	if amount < 0 {
		amount = -amount
		entry = EntryOutgoing
	}

	desc := strings.ToLower(tx.Description)
	recurring := containsAny(desc, recurringKeywords)

	haystack := desc
	for _, l := range tx.Labels {
		haystack += " " + strings.ToLower(l)
	}

	return Enriched{
		ID:          tx.ID,
		Description: tx.Description,
		AmountCents: amount,
		EntryType:   entry,
		Category:    categorize(haystack, recurring, entry),
		IsRecurring: recurring,
		Labels:      tx.Labels,
		Date:        truncateToDate(tx.Timestamp),
	}
}

func categorize(haystack string, recurring bool, entry EntryType) Category {
	if containsAny(haystack, debtKeywords) {
		return CategoryDebt
	}
	if containsAny(haystack, fixedKeywords) {
		return CategoryFixed
	}
	if recurring && entry == EntryOutgoing {
		return CategoryFixed
	}
	if entry == EntryOutgoing {
		return CategoryDiscretionary
	}
	return CategoryIncome
}

func containsAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// truncateToDate reduces an ISO timestamp to its date part.
func truncateToDate(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 {
		return ts[:i]
	}
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

// =============================================================================
// BUDGET ANALYSIS
// =============================================================================

// DetectedDebt is a recurring debt payment surfaced for user confirmation.
type DetectedDebt struct {
	Description  string      `json:"description"`
	MonthlyCents money.Cents `json:"monthly_cents"`
	LastSeen     string      `json:"last_seen"`
	Occurrences  int         `json:"occurrences"`
}

// Analysis summarizes a classified batch into budget figures. Monthly
// averages are taken over the number of distinct calendar months present
// in the batch.
type Analysis struct {
	Months             int            `json:"months"`
	MonthlyIncomeCents money.Cents    `json:"monthly_income_cents"`
	MonthlyDebtCents   money.Cents    `json:"monthly_debt_cents"`
	MonthlyFixedCents  money.Cents    `json:"monthly_fixed_cents"`
	MonthlyFlexCents   money.Cents    `json:"monthly_discretionary_cents"`
	SafeToSpendCents   money.Cents    `json:"safe_to_spend_cents"`
	DetectedDebts      []DetectedDebt `json:"detected_debts"`
}

// Analyze aggregates enriched transactions. Safe-to-spend is income minus
// fixed costs and existing debt payments, floored at zero.
func Analyze(enriched []Enriched) Analysis {
	months := map[string]bool{}
	totals := map[Category]money.Cents{}
	debts := map[string]*DetectedDebt{}

	for _, e := range enriched {
		if len(e.Date) >= 7 {
			months[e.Date[:7]] = true
		}
		totals[e.Category] += e.AmountCents

		if e.Category == CategoryDebt && e.EntryType == EntryOutgoing {
			key := strings.ToLower(e.Description)
			d, ok := debts[key]
			if !ok {
				d = &DetectedDebt{Description: e.Description}
				debts[key] = d
			}
			d.Occurrences++
			d.MonthlyCents = e.AmountCents
			if e.Date > d.LastSeen {
				d.LastSeen = e.Date
			}
		}
	}

	n := len(months)
	if n == 0 {
		n = 1
	}

	a := Analysis{
		Months:             n,
		MonthlyIncomeCents: totals[CategoryIncome] / money.Cents(n),
		MonthlyDebtCents:   totals[CategoryDebt] / money.Cents(n),
		MonthlyFixedCents:  totals[CategoryFixed] / money.Cents(n),
		MonthlyFlexCents:   totals[CategoryDiscretionary] / money.Cents(n),
	}
	safe := a.MonthlyIncomeCents - a.MonthlyFixedCents - a.MonthlyDebtCents
	if safe > 0 {
		a.SafeToSpendCents = safe
	}

	for _, d := range debts {
		a.DetectedDebts = append(a.DetectedDebts, *d)
	}
	sortDetected(a.DetectedDebts)
	return a
}

// sortDetected orders by descending monthly amount, then description.
func sortDetected(debts []DetectedDebt) {
	sort.Slice(debts, func(i, j int) bool {
		if debts[i].MonthlyCents != debts[j].MonthlyCents {
			return debts[i].MonthlyCents > debts[j].MonthlyCents
		}
		return debts[i].Description < debts[j].Description
	})
}
