/*
simulate.go - Monthly simulation loop

PURPOSE:
  Drives the minimum-payment calculator, interest accrual, and allocation
  resolver across a bounded horizon, assembling the schedule and detecting
  termination.

STATE MACHINE:
  running -> optimal           all balances reached zero (final row emitted)
  running -> infeasible        minimums exceed the month's budget; no
                               schedule is returned, only the status
  running -> horizon_exceeded  debt outlives the horizon; the partial
                               schedule is returned

PER-MONTH TRANSITION:
  a. accrue interest per bucket (needed before minimums when a rule's
     percentage base includes interest)
  b. compute per-account minimums against pre-interest balances
  c. feasibility check against the month's budget
  d. mandatory pass, then surplus distribution per strategy and shape
  e. settle bucket balances, emit one row per open account
  f. check termination, advance the month

DETERMINISM:
  No randomness, no wall clock. Identical inputs produce byte-identical
  schedules; the start date is carried through untouched for labelling.
*/
package engine

import (
	"sort"

	"github.com/finlayjack89/PaydownPilot-sub001/money"
)

// GeneratePlan validates the portfolio and runs the simulation to a
// terminal status. Validation failures are the only error path;
// infeasibility and horizon exhaustion are statuses, not errors.
func GeneratePlan(p Portfolio, opts Options) (*PlanResult, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	if opts.HorizonMonths <= 0 {
		opts.HorizonMonths = DefaultHorizonMonths
	}

	sim := newSimulation(p, opts)
	return sim.run(), nil
}

// simulation owns the working copies for one invocation. Nothing here is
// shared across invocations, so concurrent plan generation needs no
// locking.
type simulation struct {
	p    Portfolio
	opts Options

	accounts []*accountState
	rows     []MonthlyResult

	// payoffMonth[i] is the 1-based month account i first reached zero,
	// or 0 while still open.
	payoffMonth []int

	// linear_per_account shape: fixed extra per account, recomputed the
	// month after an account retires.
	linearExtras []money.Cents
	needExtras   bool

	// minimize_spend_to_clear_promos: fixed per-account payment targets
	// derived once from initial balances and promo horizons.
	promoTargets []money.Cents
}

func newSimulation(p Portfolio, opts Options) *simulation {
	sim := &simulation{
		p:            p,
		opts:         opts,
		accounts:     make([]*accountState, len(p.Accounts)),
		payoffMonth:  make([]int, len(p.Accounts)),
		linearExtras: make([]money.Cents, len(p.Accounts)),
		needExtras:   true,
	}

	for i, acct := range p.Accounts {
		as := &accountState{acct: acct}
		for j, b := range acct.effectiveBuckets() {
			as.buckets = append(as.buckets, &bucketState{
				acctIdx: i,
				bktIdx:  j,
				cfg:     b,
				balance: b.BalanceCents,
			})
		}
		sim.accounts[i] = as
	}

	if p.Preferences.Strategy == StrategyMinimizeSpendToClearPromos {
		sim.promoTargets = make([]money.Cents, len(p.Accounts))
		for i, as := range sim.accounts {
			sim.promoTargets[i] = money.CeilDiv(as.startingBalance(), promoHorizon(as.acct))
		}
	}

	return sim
}

// promoHorizon is the number of months an account has to clear its
// balance before its last promo window expires.
func promoHorizon(a Account) int {
	horizon := 0
	if len(a.Buckets) == 0 {
		horizon = a.PromoExpiryMonth
	}
	for _, b := range a.Buckets {
		if b.Promo && b.PromoExpiryMonth > horizon {
			horizon = b.PromoExpiryMonth
		}
	}
	if horizon <= 0 {
		horizon = 1
	}
	return horizon
}

func (sim *simulation) run() *PlanResult {
	if sim.totalBalance() == 0 {
		// Nothing to plan.
		return sim.assemble(StatusOptimal)
	}

	clearPromos := sim.p.Preferences.Strategy == StrategyMinimizeSpendToClearPromos

	for month := 0; month < sim.opts.HorizonMonths; month++ {
		budget := sim.p.Budget.ForMonth(month)

		// a. Interest accrual per bucket, before minimums: rules with an
		// interest-inclusive percentage base need this month's charge.
		for _, as := range sim.accounts {
			if !as.open() {
				continue
			}
			std := as.acct.StandardRateBps
			for _, bs := range as.buckets {
				bs.interest = BucketInterest(bs.cfg, bs.balance, std, month)
				bs.payment = 0
			}
		}

		// b. Per-account minimums against prior-month ending balances.
		minimums := make([]money.Cents, len(sim.accounts))
		var totalMin money.Cents
		for i, as := range sim.accounts {
			if !as.open() {
				continue
			}
			minimums[i] = MinimumPayment(as.acct.MinPayment, as.startingBalance(), as.interestAccrued())
			totalMin += minimums[i]
		}

		// c. Feasibility. The clear-promos strategy deliberately ignores
		// the budget: its output IS the required spend.
		if !clearPromos && totalMin > budget {
			sim.rows = nil
			return sim.assemble(StatusInfeasible)
		}

		// d. Mandatory pass, highest-rate buckets first within an account.
		for i, as := range sim.accounts {
			if minimums[i] > 0 {
				applyMandatory(as, minimums[i], month)
			}
		}

		// Surplus distribution.
		if clearPromos {
			sim.applyPromoTargets(minimums, month)
		} else {
			surplus := budget - totalMin
			if surplus < 0 || sim.p.Preferences.Strategy == StrategyMinimizeMonthlySpend {
				surplus = 0
			}
			switch sim.p.Preferences.Shape {
			case ShapeLinearPerAccount:
				sim.applyLinear(surplus, month)
			default:
				distribute(surplus, rankOpenBuckets(sim.accounts, sim.p.Preferences, month))
			}
		}

		// e. Settle balances and emit rows.
		anyClosed := sim.settle(month)
		if anyClosed {
			sim.needExtras = true
		}

		// f. Termination.
		if sim.totalBalance() == 0 {
			return sim.assemble(StatusOptimal)
		}
	}

	return sim.assemble(StatusHorizonExceeded)
}

// applyLinear applies the fixed per-account extras, recomputing them on
// the first month and the month after any account retires. The
// recomputation is one run of the ranking/distribution logic against the
// balances current at that point; the resulting per-account amounts are
// then held constant.
func (sim *simulation) applyLinear(surplus money.Cents, month int) {
	if sim.needExtras {
		before := make([]money.Cents, len(sim.accounts))
		for i, as := range sim.accounts {
			before[i] = as.paymentApplied()
		}
		distribute(surplus, rankOpenBuckets(sim.accounts, sim.p.Preferences, month))
		for i, as := range sim.accounts {
			sim.linearExtras[i] = as.paymentApplied() - before[i]
		}
		sim.needExtras = false
		return
	}

	for i, as := range sim.accounts {
		if surplus <= 0 {
			break
		}
		if !as.open() || sim.linearExtras[i] <= 0 {
			continue
		}
		extra := sim.linearExtras[i].Min(surplus).Min(as.outstanding())
		surplus -= sim.applyToAccount(as, extra, month)
	}
}

// applyPromoTargets tops each account up from its minimum to its fixed
// clear-by-expiry payment.
func (sim *simulation) applyPromoTargets(minimums []money.Cents, month int) {
	for i, as := range sim.accounts {
		if !as.open() {
			continue
		}
		target := sim.promoTargets[i].Max(minimums[i])
		extra := target - minimums[i]
		if extra > 0 {
			sim.applyToAccount(as, extra.Min(as.outstanding()), month)
		}
	}
}

// applyToAccount distributes an extra amount across one account's buckets
// in the active strategy's order. Returns the amount actually applied.
func (sim *simulation) applyToAccount(as *accountState, amount money.Cents, month int) money.Cents {
	if amount <= 0 {
		return 0
	}
	var open []*bucketState
	for _, bs := range as.buckets {
		if bs.outstanding() > 0 {
			open = append(open, bs)
		}
	}
	less := bucketComparator(sim.accounts, sim.p.Preferences, month)
	sort.SliceStable(open, less(open))
	return amount - distribute(amount, open)
}

// settle finalizes the month: clamps ending balances, emits one row per
// open account, and records first-zero payoff months. Reports whether any
// account closed this month.
func (sim *simulation) settle(month int) bool {
	anyClosed := false
	for i, as := range sim.accounts {
		if !as.open() {
			continue
		}

		starting := as.startingBalance()
		payment := as.paymentApplied()
		interest := as.interestAccrued()

		var ending money.Cents
		for _, bs := range as.buckets {
			e := bs.balance + bs.interest - bs.payment
			if e < 0 {
				e = 0
			}
			bs.balance = e
			ending += e
		}

		sim.rows = append(sim.rows, MonthlyResult{
			Month:         month + 1,
			AccountID:     as.acct.ID,
			LenderName:    as.acct.LenderName,
			StartingCents: starting,
			PaymentCents:  payment,
			InterestCents: interest,
			EndingCents:   ending,
		})

		if ending == 0 && sim.payoffMonth[i] == 0 {
			sim.payoffMonth[i] = month + 1
			anyClosed = true
		}
	}
	return anyClosed
}

func (sim *simulation) totalBalance() money.Cents {
	var sum money.Cents
	for _, as := range sim.accounts {
		sum += as.startingBalance()
	}
	return sum
}
