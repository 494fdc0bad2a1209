/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario correctly sets up the expected state:
	- Accounts are created with the right balances and promo windows
	- Budget and preferences are stored
	- An initial plan is generated and retrievable

These tests ensure scenarios work correctly and can be used as integration tests.
*/
package api

import (
	"context"
	"testing"

	"github.com/finlayjack89/PaydownPilot-sub001/engine"
	"github.com/finlayjack89/PaydownPilot-sub001/enrich"
	"github.com/finlayjack89/PaydownPilot-sub001/store/sqlite"
)

func setupTestHandler(t *testing.T) *Handler {
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewHandler(store, enrich.NewMemoryCache())
}

func TestScenario_SingleCard(t *testing.T) {
	// GIVEN: The single-card scenario
	// WHEN: Loading it
	// THEN: The account, budget, preferences, and an initial plan exist

	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.loadSingleCardScenario(ctx); err != nil {
		t.Fatalf("Failed to load single-card scenario: %v", err)
	}

	accounts, err := handler.Store.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("Failed to list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("Expected 1 account, got %d", len(accounts))
	}
	if accounts[0].LenderName != "Barclaycard" {
		t.Errorf("Expected Barclaycard, got %q", accounts[0].LenderName)
	}

	budget, err := handler.Store.GetBudget(ctx)
	if err != nil {
		t.Fatalf("Failed to get budget: %v", err)
	}
	if budget.MonthlyCents != 30000 {
		t.Errorf("Expected budget 30000, got %d", budget.MonthlyCents)
	}

	rec, err := handler.Store.LatestPlan(ctx)
	if err != nil {
		t.Fatalf("Failed to get latest plan: %v", err)
	}
	if rec == nil || rec.Result == nil {
		t.Fatal("Expected a stored plan")
	}
	if rec.Result.Status != engine.StatusOptimal {
		t.Errorf("Expected optimal plan, got %q", rec.Result.Status)
	}
}

func TestScenario_PromoJuggler(t *testing.T) {
	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.loadPromoJugglerScenario(ctx); err != nil {
		t.Fatalf("Failed to load promo-juggler scenario: %v", err)
	}

	accounts, err := handler.Store.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("Failed to list accounts: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("Expected 3 accounts, got %d", len(accounts))
	}

	// The two balance-transfer cards carry promo windows
	promos := 0
	for _, a := range accounts {
		if a.PromoExpiryMonth > 0 {
			promos++
		}
	}
	if promos != 2 {
		t.Errorf("Expected 2 promo accounts, got %d", promos)
	}

	prefs, err := handler.Store.GetPreferences(ctx)
	if err != nil {
		t.Fatalf("Failed to get preferences: %v", err)
	}
	if prefs.Strategy != engine.StrategyPayOffInPromo {
		t.Errorf("Expected pay_off_in_promo, got %q", prefs.Strategy)
	}
}

func TestScenario_Windfall(t *testing.T) {
	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.loadWindfallScenario(ctx); err != nil {
		t.Fatalf("Failed to load windfall scenario: %v", err)
	}

	budget, err := handler.Store.GetBudget(ctx)
	if err != nil {
		t.Fatalf("Failed to get budget: %v", err)
	}
	if len(budget.Changes) != 1 || budget.Changes[0].Month != 4 {
		t.Errorf("Expected a budget change at month 4, got %+v", budget.Changes)
	}
	if len(budget.LumpSums) != 1 || budget.LumpSums[0].AmountCents != 200000 {
		t.Errorf("Expected a 200000 lump sum, got %+v", budget.LumpSums)
	}

	rec, err := handler.Store.LatestPlan(ctx)
	if err != nil {
		t.Fatalf("Failed to get latest plan: %v", err)
	}
	if rec == nil || rec.Result == nil {
		t.Fatal("Expected a stored plan")
	}
}

func TestScenario_BNPLStack(t *testing.T) {
	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.loadBNPLStackScenario(ctx); err != nil {
		t.Fatalf("Failed to load bnpl-stack scenario: %v", err)
	}

	accounts, err := handler.Store.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("Failed to list accounts: %v", err)
	}

	bnpl := 0
	for _, a := range accounts {
		if a.Type == engine.AccountBNPL {
			bnpl++
		}
	}
	if bnpl != 2 {
		t.Errorf("Expected 2 BNPL accounts, got %d", bnpl)
	}

	rec, err := handler.Store.LatestPlan(ctx)
	if err != nil {
		t.Fatalf("Failed to get latest plan: %v", err)
	}
	if rec == nil || rec.Result == nil {
		t.Fatal("Expected a stored plan")
	}
	// BNPL plans clear quickly against a 400/month budget
	if rec.Result.Status != engine.StatusOptimal {
		t.Errorf("Expected optimal plan, got %q", rec.Result.Status)
	}
}

func TestAllScenariosListed(t *testing.T) {
	known := map[string]bool{
		"single-card":   true,
		"promo-juggler": true,
		"windfall":      true,
		"bnpl-stack":    true,
	}
	if len(scenarios) != len(known) {
		t.Fatalf("Expected %d scenarios, got %d", len(known), len(scenarios))
	}
	for _, s := range scenarios {
		if !known[s.ID] {
			t.Errorf("Unexpected scenario %q", s.ID)
		}
		if s.Name == "" || s.Description == "" {
			t.Errorf("Scenario %q missing name or description", s.ID)
		}
	}
}
