/*
Package factory provides JSON to Go portfolio conversion.

PURPOSE:
  Converts JSON portfolio definitions into engine.Portfolio values. This is
  the only place calendar dates exist: promo end dates, budget change dates
  and lump sum dates are resolved into month offsets from the plan start,
  so the engine itself never consults a calendar.

JSON SCHEMA:
  {
    "plan_start_date": "2026-01-01",
    "accounts": [
      {
        "lender_name": "Big Bank",
        "account_type": "credit_card",
        "current_balance_cents": 100000,
        "apr_standard_bps": 2000,
        "payment_due_day": 15,
        "min_payment_rule": {"fixed_cents": 2500, "percentage_bps": 200},
        "promo_end_date": "2026-07-01"
      }
    ],
    "budget": {
      "monthly_budget_cents": 50000,
      "future_changes": [{"date": "2026-04-01", "amount_cents": 60000}],
      "lump_sum_payments": [{"date": "2026-03-01", "amount_cents": 100000}]
    },
    "preferences": {
      "strategy": "minimize_total_interest",
      "payment_shape": "optimized_month_to_month"
    }
  }

KEY RULES:
  - promo_end_date and promo_duration_months are mutually exclusive, on
    accounts and on buckets alike
  - a promo end date resolves to the month offset of its calendar month
    plus one: the promo rate still covers the month the date falls in
  - a promo end date at or before the plan start month resolves to no
    promo at all (the window has already lapsed)
  - budget changes dated before plan start apply from month zero; lump
    sums dated before plan start are rejected
  - accounts without an explicit id are assigned a random one

USAGE:
  portfolio, err := factory.ParsePortfolio(jsonBytes)
  result, err := engine.GeneratePlan(portfolio, engine.DefaultOptions())

SEE ALSO:
  - engine/types.go: the target types
  - api/dto.go: response-side serialization
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finlayjack89/PaydownPilot-sub001/engine"
	"github.com/finlayjack89/PaydownPilot-sub001/money"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PortfolioJSON is the wire representation of a complete plan request.
type PortfolioJSON struct {
	Accounts      []AccountJSON   `json:"accounts"`
	Budget        BudgetJSON      `json:"budget"`
	Preferences   PreferencesJSON `json:"preferences"`
	PlanStartDate string          `json:"plan_start_date,omitempty"` // YYYY-MM-DD, default today
}

// AccountJSON is the wire representation of one debt account.
type AccountJSON struct {
	ID                  string         `json:"id,omitempty"`
	LenderName          string         `json:"lender_name"`
	AccountType         string         `json:"account_type"`
	CurrentBalanceCents int64          `json:"current_balance_cents"`
	AprStandardBps      int64          `json:"apr_standard_bps"`
	PaymentDueDay       int            `json:"payment_due_day"`
	MinPaymentRule      MinPaymentJSON `json:"min_payment_rule"`

	// Mutually exclusive promo window forms.
	PromoEndDate        string `json:"promo_end_date,omitempty"`
	PromoDurationMonths int    `json:"promo_duration_months,omitempty"`

	Buckets []BucketJSON `json:"buckets,omitempty"`

	AccountOpenDate string `json:"account_open_date,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// MinPaymentJSON is the wire representation of a minimum payment rule.
type MinPaymentJSON struct {
	FixedCents       int64 `json:"fixed_cents"`
	PercentageBps    int64 `json:"percentage_bps"`
	IncludesInterest bool  `json:"includes_interest,omitempty"`
}

// BucketJSON is the wire representation of a rate bucket.
type BucketJSON struct {
	Kind          string `json:"kind"`
	Label         string `json:"label,omitempty"`
	BalanceCents  int64  `json:"balance_cents"`
	AnnualRateBps int64  `json:"annual_rate_bps"`

	Promo               bool   `json:"promo,omitempty"`
	PromoEndDate        string `json:"promo_end_date,omitempty"`
	PromoDurationMonths int    `json:"promo_duration_months,omitempty"`
}

// BudgetJSON is the wire representation of the repayment budget.
type BudgetJSON struct {
	MonthlyBudgetCents int64             `json:"monthly_budget_cents"`
	FutureChanges      []BudgetEventJSON `json:"future_changes,omitempty"`
	LumpSumPayments    []BudgetEventJSON `json:"lump_sum_payments,omitempty"`
}

// BudgetEventJSON is a dated budget change or lump sum.
type BudgetEventJSON struct {
	Date        string `json:"date"` // YYYY-MM-DD
	AmountCents int64  `json:"amount_cents"`
}

// PreferencesJSON is the wire representation of optimization choices.
type PreferencesJSON struct {
	Strategy     string `json:"strategy"`
	PaymentShape string `json:"payment_shape"`
	TieBreak     string `json:"tie_break,omitempty"`
}

const dateLayout = "2006-01-02"

// =============================================================================
// PARSING
// =============================================================================

// ParsePortfolio parses JSON bytes into an engine.Portfolio.
func ParsePortfolio(data []byte) (engine.Portfolio, error) {
	var pj PortfolioJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return engine.Portfolio{}, fmt.Errorf("failed to parse portfolio JSON: %w", err)
	}
	return FromJSON(pj)
}

// FromJSON converts PortfolioJSON to an engine.Portfolio, resolving every
// calendar date into a month offset from the plan start.
func FromJSON(pj PortfolioJSON) (engine.Portfolio, error) {
	start, err := parseStart(pj.PlanStartDate)
	if err != nil {
		return engine.Portfolio{}, err
	}

	p := engine.Portfolio{StartDate: start}

	for i, aj := range pj.Accounts {
		acct, err := ParseAccount(aj, start)
		if err != nil {
			return engine.Portfolio{}, fmt.Errorf("accounts[%d]: %w", i, err)
		}
		p.Accounts = append(p.Accounts, acct)
	}

	p.Budget, err = parseBudget(pj.Budget, start)
	if err != nil {
		return engine.Portfolio{}, err
	}

	p.Preferences, err = ParsePreferences(pj.Preferences)
	if err != nil {
		return engine.Portfolio{}, err
	}

	return p, nil
}

func parseStart(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	start, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid plan_start_date %q: %w", s, err)
	}
	return start, nil
}

// ParseAccount converts one wire account, resolving its promo window
// against the given plan start. Used standalone by the account routes.
func ParseAccount(aj AccountJSON, start time.Time) (engine.Account, error) {
	id := aj.ID
	if id == "" {
		id = uuid.NewString()
	}

	acct := engine.Account{
		ID:              engine.AccountID(id),
		LenderName:      aj.LenderName,
		Type:            parseAccountType(aj.AccountType),
		StandardRateBps: money.BasisPoints(aj.AprStandardBps),
		PaymentDueDay:   aj.PaymentDueDay,
		MinPayment: engine.MinPaymentRule{
			FixedCents:       money.Cents(aj.MinPaymentRule.FixedCents),
			PercentageBps:    money.BasisPoints(aj.MinPaymentRule.PercentageBps),
			IncludesInterest: aj.MinPaymentRule.IncludesInterest,
		},
		BalanceCents: money.Cents(aj.CurrentBalanceCents),
		Notes:        aj.Notes,
	}

	expiry, err := resolvePromoWindow(aj.PromoEndDate, aj.PromoDurationMonths, start)
	if err != nil {
		return engine.Account{}, err
	}
	acct.PromoExpiryMonth = expiry

	if aj.AccountOpenDate != "" {
		opened, err := time.Parse(dateLayout, aj.AccountOpenDate)
		if err != nil {
			return engine.Account{}, fmt.Errorf("invalid account_open_date %q: %w", aj.AccountOpenDate, err)
		}
		acct.OpenedAt = opened
	}

	for i, bj := range aj.Buckets {
		b, err := parseBucket(bj, start)
		if err != nil {
			return engine.Account{}, fmt.Errorf("buckets[%d]: %w", i, err)
		}
		acct.Buckets = append(acct.Buckets, b)
	}

	return acct, nil
}

func parseBucket(bj BucketJSON, start time.Time) (engine.Bucket, error) {
	b := engine.Bucket{
		Kind:          parseBucketKind(bj.Kind),
		Label:         bj.Label,
		BalanceCents:  money.Cents(bj.BalanceCents),
		AnnualRateBps: money.BasisPoints(bj.AnnualRateBps),
	}

	if bj.Promo || bj.PromoEndDate != "" || bj.PromoDurationMonths > 0 {
		expiry, err := resolvePromoWindow(bj.PromoEndDate, bj.PromoDurationMonths, start)
		if err != nil {
			return engine.Bucket{}, err
		}
		if expiry > 0 {
			b.Promo = true
			b.PromoExpiryMonth = expiry
		}
	}

	return b, nil
}

// resolvePromoWindow turns one of the two mutually exclusive promo forms
// into the first month offset at the standard rate. Zero means no promo,
// including end dates at or before the plan start month.
func resolvePromoWindow(endDate string, durationMonths int, start time.Time) (int, error) {
	if endDate != "" && durationMonths > 0 {
		return 0, fmt.Errorf("provide either promo_end_date or promo_duration_months, not both")
	}

	if durationMonths > 0 {
		return durationMonths, nil
	}

	if endDate != "" {
		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return 0, fmt.Errorf("invalid promo_end_date %q: %w", endDate, err)
		}
		// The promo rate still covers the month the end date falls in.
		offset := monthOffset(start, end) + 1
		if offset <= 0 {
			return 0, nil
		}
		return offset, nil
	}

	return 0, nil
}

func parseBudget(bj BudgetJSON, start time.Time) (engine.BudgetPlan, error) {
	bp := engine.BudgetPlan{MonthlyCents: money.Cents(bj.MonthlyBudgetCents)}

	for i, ev := range bj.FutureChanges {
		month, err := eventMonth(ev.Date, start)
		if err != nil {
			return engine.BudgetPlan{}, fmt.Errorf("future_changes[%d]: %w", i, err)
		}
		if month < 0 {
			// Already in effect by plan start.
			month = 0
		}
		bp.Changes = append(bp.Changes, engine.BudgetChange{Month: month, AmountCents: money.Cents(ev.AmountCents)})
	}

	for i, ev := range bj.LumpSumPayments {
		month, err := eventMonth(ev.Date, start)
		if err != nil {
			return engine.BudgetPlan{}, fmt.Errorf("lump_sum_payments[%d]: %w", i, err)
		}
		if month < 0 {
			return engine.BudgetPlan{}, fmt.Errorf("lump_sum_payments[%d]: date %s precedes plan start", i, ev.Date)
		}
		bp.LumpSums = append(bp.LumpSums, engine.LumpSum{Month: month, AmountCents: money.Cents(ev.AmountCents)})
	}

	return bp, nil
}

func eventMonth(s string, start time.Time) (int, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return monthOffset(start, d), nil
}

// monthOffset is the whole-month distance between the calendar months of
// start and d, ignoring the day of month.
func monthOffset(start, d time.Time) int {
	return (d.Year()-start.Year())*12 + int(d.Month()-start.Month())
}

// ParsePreferences converts wire preferences, applying defaults for the
// empty strategy and shape.
func ParsePreferences(pj PreferencesJSON) (engine.Preferences, error) {
	prefs := engine.Preferences{
		Strategy: engine.Strategy(pj.Strategy),
		Shape:    engine.PaymentShape(pj.PaymentShape),
	}
	if prefs.Strategy == "" {
		prefs.Strategy = engine.StrategyMinimizeTotalInterest
	}
	if prefs.Shape == "" {
		prefs.Shape = engine.ShapeOptimizedMonthToMonth
	}

	switch pj.TieBreak {
	case "":
		prefs.TieBreak = engine.TieBreakInsertionOrder
	case string(engine.TieBreakInsertionOrder), string(engine.TieBreakLowestBalance):
		prefs.TieBreak = engine.TieBreak(pj.TieBreak)
	default:
		return engine.Preferences{}, fmt.Errorf("unknown tie_break %q", pj.TieBreak)
	}

	return prefs, nil
}

func parseAccountType(s string) engine.AccountType {
	switch s {
	case string(engine.AccountBNPL):
		return engine.AccountBNPL
	case string(engine.AccountLoan):
		return engine.AccountLoan
	default:
		return engine.AccountCreditCard
	}
}

func parseBucketKind(s string) engine.BucketKind {
	switch s {
	case string(engine.BucketBalanceTransfer),
		string(engine.BucketPurchases),
		string(engine.BucketCashAdvance),
		string(engine.BucketMoneyTransfer):
		return engine.BucketKind(s)
	default:
		return engine.BucketCustom
	}
}
