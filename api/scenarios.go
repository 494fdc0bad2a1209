/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates debt accounts, a
	budget, and preferences that demonstrate specific planner features.

AVAILABLE SCENARIOS:

	single-card:     One credit card, avalanche repayment
	promo-juggler:   Three balance-transfer cards with staggered 0% windows
	windfall:        Pay rise and bonus lump sum accelerating payoff
	bnpl-stack:      Short-term BNPL plans alongside a credit card

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save accounts, budget, and preferences
 3. Generate and store an initial plan

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "promo-juggler"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
  - factory/portfolio.go: Wire-format definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/finlayjack89/PaydownPilot-sub001/engine"
	"github.com/finlayjack89/PaydownPilot-sub001/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "single-card",
		Name:        "Single Card",
		Description: "One credit card paid down with the full budget",
	},
	{
		ID:          "promo-juggler",
		Name:        "Promo Juggler",
		Description: "Three balance-transfer cards with staggered 0% windows",
	},
	{
		ID:          "windfall",
		Name:        "Windfall",
		Description: "Pay rise and bonus lump sum accelerating payoff",
	},
	{
		ID:          "bnpl-stack",
		Name:        "BNPL Stack",
		Description: "Short-term buy-now-pay-later plans alongside a credit card",
	},
}

// ListScenarios returns available scenarios, flagging the loaded one.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioDTO, len(scenarios))
	copy(out, scenarios)
	for i := range out {
		out[i].Loaded = out[i].ID == h.currentScenario
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			s.Loaded = true
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:     h.currentScenario,
		Name:   h.currentScenario,
		Loaded: true,
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "single-card":
		err = h.loadSingleCardScenario(ctx)
	case "promo-juggler":
		err = h.loadPromoJugglerScenario(ctx)
	case "windfall":
		err = h.loadWindfallScenario(ctx)
	case "bnpl-stack":
		err = h.loadBNPLStackScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all stored data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSingleCardScenario(ctx context.Context) error {
	card := engine.Account{
		ID:              "card-main",
		LenderName:      "Barclaycard",
		Type:            engine.AccountCreditCard,
		BalanceCents:    320000, // 3,200.00
		StandardRateBps: 2290,   // 22.9% APR
		PaymentDueDay:   15,
		MinPayment: engine.MinPaymentRule{
			FixedCents:       500,
			PercentageBps:    225,
			IncludesInterest: true,
		},
	}
	if err := h.Store.SaveAccount(ctx, card); err != nil {
		return err
	}

	budget := engine.BudgetPlan{MonthlyCents: 30000} // 300/month
	if err := h.Store.SaveBudget(ctx, budget); err != nil {
		return err
	}

	prefs := engine.Preferences{
		Strategy: engine.StrategyMinimizeTotalInterest,
		Shape:    engine.ShapeOptimizedMonthToMonth,
	}
	if err := h.Store.SavePreferences(ctx, prefs); err != nil {
		return err
	}

	return h.generateStoredPlan(ctx, []engine.Account{card}, budget, prefs)
}

func (h *Handler) loadPromoJugglerScenario(ctx context.Context) error {
	accounts := []engine.Account{
		{
			ID:               "bt-virgin",
			LenderName:       "Virgin Money",
			Type:             engine.AccountCreditCard,
			BalanceCents:     180000,
			StandardRateBps:  2490,
			PaymentDueDay:    1,
			MinPayment:       engine.MinPaymentRule{FixedCents: 2500, PercentageBps: 100, IncludesInterest: true},
			PromoExpiryMonth: 6, // 0% ends after month 6
		},
		{
			ID:               "bt-mbna",
			LenderName:       "MBNA",
			Type:             engine.AccountCreditCard,
			BalanceCents:     240000,
			StandardRateBps:  2790,
			PaymentDueDay:    10,
			MinPayment:       engine.MinPaymentRule{FixedCents: 2500, PercentageBps: 100, IncludesInterest: true},
			PromoExpiryMonth: 12,
		},
		{
			ID:              "card-halifax",
			LenderName:      "Halifax",
			Type:            engine.AccountCreditCard,
			BalanceCents:    95000,
			StandardRateBps: 2190,
			PaymentDueDay:   20,
			MinPayment:      engine.MinPaymentRule{FixedCents: 500, PercentageBps: 250, IncludesInterest: true},
		},
	}
	for _, a := range accounts {
		if err := h.Store.SaveAccount(ctx, a); err != nil {
			return err
		}
	}

	budget := engine.BudgetPlan{MonthlyCents: 60000}
	if err := h.Store.SaveBudget(ctx, budget); err != nil {
		return err
	}

	prefs := engine.Preferences{
		Strategy: engine.StrategyPayOffInPromo,
		Shape:    engine.ShapeOptimizedMonthToMonth,
	}
	if err := h.Store.SavePreferences(ctx, prefs); err != nil {
		return err
	}

	return h.generateStoredPlan(ctx, accounts, budget, prefs)
}

func (h *Handler) loadWindfallScenario(ctx context.Context) error {
	accounts := []engine.Account{
		{
			ID:              "loan-santander",
			LenderName:      "Santander",
			Type:            engine.AccountLoan,
			BalanceCents:    550000,
			StandardRateBps: 890,
			PaymentDueDay:   28,
			MinPayment:      engine.MinPaymentRule{FixedCents: 15000},
		},
		{
			ID:              "card-tesco",
			LenderName:      "Tesco Bank",
			Type:            engine.AccountCreditCard,
			BalanceCents:    130000,
			StandardRateBps: 2490,
			PaymentDueDay:   5,
			MinPayment:      engine.MinPaymentRule{FixedCents: 500, PercentageBps: 225, IncludesInterest: true},
		},
	}
	for _, a := range accounts {
		if err := h.Store.SaveAccount(ctx, a); err != nil {
			return err
		}
	}

	budget := engine.BudgetPlan{
		MonthlyCents: 45000,
		// Pay rise from month 4, annual bonus in month 7
		Changes:  []engine.BudgetChange{{Month: 4, AmountCents: 60000}},
		LumpSums: []engine.LumpSum{{Month: 7, AmountCents: 200000}},
	}
	if err := h.Store.SaveBudget(ctx, budget); err != nil {
		return err
	}

	prefs := engine.Preferences{
		Strategy: engine.StrategyMinimizeTotalInterest,
		Shape:    engine.ShapeOptimizedMonthToMonth,
	}
	if err := h.Store.SavePreferences(ctx, prefs); err != nil {
		return err
	}

	return h.generateStoredPlan(ctx, accounts, budget, prefs)
}

func (h *Handler) loadBNPLStackScenario(ctx context.Context) error {
	accounts := []engine.Account{
		{
			ID:               "bnpl-klarna",
			LenderName:       "Klarna",
			Type:             engine.AccountBNPL,
			BalanceCents:     36000,
			StandardRateBps:  0,
			PaymentDueDay:    1,
			MinPayment:       engine.MinPaymentRule{PercentageBps: 3334},
			PromoExpiryMonth: 3,
		},
		{
			ID:               "bnpl-clearpay",
			LenderName:       "Clearpay",
			Type:             engine.AccountBNPL,
			BalanceCents:     24000,
			StandardRateBps:  0,
			PaymentDueDay:    1,
			MinPayment:       engine.MinPaymentRule{PercentageBps: 2500},
			PromoExpiryMonth: 4,
		},
		{
			ID:              "card-capone",
			LenderName:      "Capital One",
			Type:            engine.AccountCreditCard,
			BalanceCents:    78000,
			StandardRateBps: 3490,
			PaymentDueDay:   12,
			MinPayment:      engine.MinPaymentRule{FixedCents: 500, PercentageBps: 300, IncludesInterest: true},
		},
	}
	for _, a := range accounts {
		if err := h.Store.SaveAccount(ctx, a); err != nil {
			return err
		}
	}

	budget := engine.BudgetPlan{MonthlyCents: 40000}
	if err := h.Store.SaveBudget(ctx, budget); err != nil {
		return err
	}

	prefs := engine.Preferences{
		Strategy: engine.StrategyMinimizeTotalInterest,
		Shape:    engine.ShapeOptimizedMonthToMonth,
	}
	if err := h.Store.SavePreferences(ctx, prefs); err != nil {
		return err
	}

	return h.generateStoredPlan(ctx, accounts, budget, prefs)
}

// generateStoredPlan computes a plan over the scenario data and stores it
// so /api/plan/latest has something to show immediately after loading.
func (h *Handler) generateStoredPlan(ctx context.Context, accounts []engine.Account, budget engine.BudgetPlan, prefs engine.Preferences) error {
	start := today()
	result, err := engine.GeneratePlan(engine.Portfolio{
		Accounts:    accounts,
		Budget:      budget,
		Preferences: prefs,
		StartDate:   start,
	}, h.Options)
	if err != nil {
		return err
	}
	return h.Store.SavePlan(ctx, sqlite.PlanRecord{
		ID:        uuid.NewString(),
		Status:    result.Status,
		StartDate: result.StartDate,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	})
}
