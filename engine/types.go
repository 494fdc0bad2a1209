/*
Package engine computes month-by-month debt repayment plans.

PURPOSE:
  Given a set of debt accounts (each possibly split into interest-rate
  buckets with independent promotional terms), a monthly budget with
  scheduled changes and one-off lump sums, and an optimization strategy
  plus payment shape, the engine produces a deterministic amortization
  schedule over a bounded horizon.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account / Bucket: the entities being amortized
  - MinPaymentRule: mandatory floor payment per account
  - BudgetPlan: base amount, future changes, lump sums (month offsets)
  - Strategy / PaymentShape: the closed variant sets the resolver switches on
  - MonthlyResult / PlanResult: immutable output rows and their wrapper

DESIGN PRINCIPLES:
  1. Purity: the engine performs no I/O and consults no clock; the plan
     start date is carried through for display labelling only.
  2. Month offsets: all promo windows and budget events are integer month
     offsets from plan start. Calendar resolution happens in the factory.
  3. Working copies: the simulation operates on its own copies of account
     and bucket state, so concurrent invocations need no synchronization.
  4. Integer money: amounts are money.Cents, rates are money.BasisPoints.

USAGE:
  result, err := engine.GeneratePlan(portfolio, engine.DefaultOptions())

SEE ALSO:
  - simulate.go: the monthly simulation loop
  - allocate.go: the allocation strategy resolver
  - factory/portfolio.go: JSON + calendar dates -> these types
*/
package engine

import (
	"time"

	"github.com/finlayjack89/PaydownPilot-sub001/money"
)

// =============================================================================
// IDENTIFIERS AND VARIANT SETS
// =============================================================================

type AccountID string

type AccountType string

const (
	AccountCreditCard AccountType = "credit_card"
	AccountBNPL       AccountType = "bnpl"
	AccountLoan       AccountType = "loan"
)

type BucketKind string

const (
	BucketBalanceTransfer BucketKind = "balance_transfer"
	BucketPurchases       BucketKind = "purchases"
	BucketCashAdvance     BucketKind = "cash_advance"
	BucketMoneyTransfer   BucketKind = "money_transfer"
	BucketCustom          BucketKind = "custom"
)

// Strategy selects the allocation policy for discretionary surplus.
type Strategy string

const (
	// StrategyMinimizeTotalInterest directs surplus at the highest effective
	// rate first (avalanche).
	StrategyMinimizeTotalInterest Strategy = "minimize_total_interest"

	// StrategyTargetMaxBudget spends the entire available budget every month,
	// allocated avalanche-style.
	StrategyTargetMaxBudget Strategy = "target_max_budget"

	// StrategyPayOffInPromo prioritizes buckets nearest their promo expiry.
	StrategyPayOffInPromo Strategy = "pay_off_in_promo"

	// StrategyMinimizeMonthlySpend pays only minimums, never surplus.
	StrategyMinimizeMonthlySpend Strategy = "minimize_monthly_spend"

	// StrategyMinimizeSpendToClearPromos ignores the budget and derives the
	// smallest fixed per-account payment that clears every balance by its
	// promo expiry. Valid only when every account has a promo window.
	StrategyMinimizeSpendToClearPromos Strategy = "minimize_spend_to_clear_promos"
)

// PaymentShape controls how surplus allocation evolves over time.
type PaymentShape string

const (
	// ShapeOptimizedMonthToMonth re-ranks and redistributes every month.
	ShapeOptimizedMonthToMonth PaymentShape = "optimized_month_to_month"

	// ShapeLinearPerAccount fixes one extra-payment amount per account at
	// plan start and holds it until that account closes; freed capacity is
	// redistributed the following month.
	ShapeLinearPerAccount PaymentShape = "linear_per_account"
)

// TieBreak orders buckets that share both effective rate and promo expiry.
type TieBreak string

const (
	// TieBreakInsertionOrder follows account then bucket declaration order.
	TieBreakInsertionOrder TieBreak = "insertion_order"

	// TieBreakLowestBalance retires the smallest sub-balance first.
	TieBreakLowestBalance TieBreak = "lowest_balance"
)

// =============================================================================
// ACCOUNT MODEL
// =============================================================================

// MinPaymentRule is the mandatory floor payment definition for an account:
// the greater of a fixed amount and a percentage of balance. When
// IncludesInterest is set, the percentage base includes the current
// period's accrued interest.
type MinPaymentRule struct {
	FixedCents       money.Cents
	PercentageBps    money.BasisPoints
	IncludesInterest bool
}

// Bucket is a sub-balance within an account carrying its own rate and
// promo state. PromoExpiryMonth is the first month offset at which the
// bucket reverts to the account's standard rate; the promo rate applies
// to every month strictly before it.
type Bucket struct {
	Kind             BucketKind
	Label            string
	BalanceCents     money.Cents
	AnnualRateBps    money.BasisPoints
	Promo            bool
	PromoExpiryMonth int
}

// EffectiveRate returns the rate governing this bucket in the given plan
// month. The bucket's own rate is authoritative only inside an active
// promo window; otherwise the account's standard rate applies.
func (b Bucket) EffectiveRate(standard money.BasisPoints, month int) money.BasisPoints {
	if b.Promo && month < b.PromoExpiryMonth {
		return b.AnnualRateBps
	}
	return standard
}

// InPromo reports whether the bucket's promo window covers the month.
func (b Bucket) InPromo(month int) bool {
	return b.Promo && month < b.PromoExpiryMonth
}

// Account is one debt instrument. If Buckets is empty the engine treats
// the account as a single implicit bucket holding BalanceCents at the
// standard rate (with the account-level promo window, if any).
type Account struct {
	ID              AccountID
	LenderName      string
	Type            AccountType
	StandardRateBps money.BasisPoints
	PaymentDueDay   int
	MinPayment      MinPaymentRule
	BalanceCents    money.Cents
	Buckets         []Bucket

	// Account-level promo window, applied to the implicit bucket when the
	// account has no explicit buckets. First month offset at standard rate;
	// <= 0 means no promo.
	PromoExpiryMonth int

	OpenedAt time.Time
	Notes    string
}

// effectiveBuckets returns the account's buckets, materializing the
// implicit bucket for accounts that declare none.
func (a Account) effectiveBuckets() []Bucket {
	if len(a.Buckets) > 0 {
		return a.Buckets
	}
	implicit := Bucket{
		Kind:         BucketCustom,
		BalanceCents: a.BalanceCents,
	}
	if a.PromoExpiryMonth > 0 {
		// Account-level promos are 0% windows on the whole balance.
		implicit.Promo = true
		implicit.PromoExpiryMonth = a.PromoExpiryMonth
	}
	return []Bucket{implicit}
}

// TotalBalance is the sum of bucket balances (or the account balance for
// bucket-less accounts).
func (a Account) TotalBalance() money.Cents {
	if len(a.Buckets) == 0 {
		return a.BalanceCents
	}
	var sum money.Cents
	for _, b := range a.Buckets {
		sum += b.BalanceCents
	}
	return sum
}

// =============================================================================
// BUDGET
// =============================================================================

// BudgetChange replaces the base monthly amount from Month onward.
type BudgetChange struct {
	Month       int
	AmountCents money.Cents
}

// LumpSum adds a one-off amount to a single month's budget.
type LumpSum struct {
	Month       int
	AmountCents money.Cents
}

// BudgetPlan is the monthly repayment budget: a base amount, an ordered
// sequence of future changes, and one-off lump sums. All months are
// offsets from plan start.
type BudgetPlan struct {
	MonthlyCents money.Cents
	Changes      []BudgetChange
	LumpSums     []LumpSum
}

// ForMonth resolves the budget for a month offset: the base amount after
// the latest change effective at or before the month, plus any lump sums
// landing exactly on it. Changes need not be sorted; the one with the
// greatest effective month wins.
func (bp BudgetPlan) ForMonth(month int) money.Cents {
	amount := bp.MonthlyCents
	effective := -1
	for _, c := range bp.Changes {
		if c.Month <= month && c.Month >= effective {
			effective = c.Month
			amount = c.AmountCents
		}
	}
	for _, ls := range bp.LumpSums {
		if ls.Month == month {
			amount += ls.AmountCents
		}
	}
	return amount
}

// =============================================================================
// REQUEST AND RESULT
// =============================================================================

// Preferences capture the user's optimization choices.
type Preferences struct {
	Strategy Strategy
	Shape    PaymentShape
	TieBreak TieBreak // empty = TieBreakInsertionOrder
}

// Portfolio is the complete input to one plan computation.
type Portfolio struct {
	Accounts    []Account
	Budget      BudgetPlan
	Preferences Preferences
	StartDate   time.Time
}

// Options bound the simulation.
type Options struct {
	// HorizonMonths caps the simulation length. The loop terminates with
	// StatusHorizonExceeded once the cap is reached with debt outstanding.
	HorizonMonths int
}

// DefaultHorizonMonths is ten years.
const DefaultHorizonMonths = 120

func DefaultOptions() Options {
	return Options{HorizonMonths: DefaultHorizonMonths}
}

// PlanStatus is the terminal state of a simulation.
type PlanStatus string

const (
	StatusOptimal         PlanStatus = "optimal"
	StatusInfeasible      PlanStatus = "infeasible"
	StatusHorizonExceeded PlanStatus = "horizon_exceeded"
)

// MonthlyResult is one schedule row: the state of a single account in a
// single month. Rows are appended in month-then-account order and never
// mutated afterwards. Month numbers are 1-based for reporting.
type MonthlyResult struct {
	Month         int
	AccountID     AccountID
	LenderName    string
	StartingCents money.Cents
	PaymentCents  money.Cents
	InterestCents money.Cents
	EndingCents   money.Cents
}

// AccountPayoff records when an account's balance first reached zero.
// Month is 1-based; an account that starts at zero has Month 0 and
// Reached true. Reached is false when the plan terminated infeasible or
// horizon-exceeded before the account closed.
type AccountPayoff struct {
	AccountID  AccountID
	LenderName string
	Month      int
	Reached    bool
}

// PlanResult wraps the simulation's terminal state and schedule.
type PlanResult struct {
	Status             PlanStatus
	Schedule           []MonthlyResult
	Payoffs            []AccountPayoff
	OverallPayoffMonth int
	TotalInterestCents money.Cents
	TotalPaidCents     money.Cents
	StartDate          time.Time
}

// MonthDate translates a 1-based schedule month to its calendar month,
// for display only.
func (r PlanResult) MonthDate(month int) time.Time {
	return r.StartDate.AddDate(0, month-1, 0)
}
