/*
handlers.go - HTTP API handlers for the repayment planning service

PURPOSE:
  Exposes the planning engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Plans:
    POST   /api/plan/generate             Compute and persist a plan
    GET    /api/plan/latest               Most recent stored plan
    GET    /api/plan/latest/accounts/{id} Schedule rows for one account

  Portfolio:
    GET    /api/accounts                  List stored accounts
    POST   /api/accounts                  Create account
    GET    /api/accounts/{id}             Get account
    PUT    /api/accounts/{id}             Update account
    DELETE /api/accounts/{id}             Delete account
    GET    /api/budget                    Budget snapshot
    PUT    /api/budget                    Replace budget
    GET    /api/preferences               Preferences snapshot
    PUT    /api/preferences               Replace preferences

  Enrichment:
    POST   /api/transactions/classify     Classify raw bank transactions
    GET    /api/lenders/{name}/rule       Lender minimum-payment rule

  Scenarios:
    GET    /api/scenarios                 List demo scenarios
    POST   /api/scenarios/load            Load a demo scenario
    POST   /api/scenarios/reset           Clear the database

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Classifier / Rules: transaction and lender enrichment
  - Options: simulation bounds

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (engine, enrich, store)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors
  An infeasible plan is a 200 with status "infeasible": a budget below
  the minimums is a legitimate answer, not a failure.

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/finlayjack89/PaydownPilot-sub001/engine"
	"github.com/finlayjack89/PaydownPilot-sub001/enrich"
	"github.com/finlayjack89/PaydownPilot-sub001/factory"
	"github.com/finlayjack89/PaydownPilot-sub001/money"
	"github.com/finlayjack89/PaydownPilot-sub001/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Classifier *enrich.Classifier
	Rules      *enrich.RuleProvider
	Options    engine.Options

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a handler with the given store and lender-rule cache.
func NewHandler(store *sqlite.Store, cache enrich.Cache) *Handler {
	return &Handler{
		Store:      store,
		Classifier: enrich.NewClassifier(),
		Rules:      enrich.NewRuleProvider(cache),
		Options:    engine.DefaultOptions(),
	}
}

// Health reports service liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// PLAN ENDPOINTS
// =============================================================================

// GeneratePlan computes a plan from the request portfolio and persists it.
// POST /api/plan/generate
func (h *Handler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req factory.PortfolioJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	portfolio, err := factory.FromJSON(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid portfolio", err)
		return
	}

	result, err := engine.GeneratePlan(portfolio, h.Options)
	if err != nil {
		if engine.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Invalid portfolio", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to generate plan", err)
		return
	}

	rec := sqlite.PlanRecord{
		ID:        uuid.NewString(),
		Status:    result.Status,
		StartDate: result.StartDate,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.SavePlan(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store plan", err)
		return
	}

	writeJSON(w, http.StatusOK, toPlanDTO(rec))
}

// LatestPlan returns the most recently generated plan.
// GET /api/plan/latest
func (h *Handler) LatestPlan(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.LatestPlan(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load plan", err)
		return
	}
	if rec == nil || rec.Result == nil {
		writeError(w, http.StatusNotFound, "No plan has been generated yet", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(*rec))
}

// LatestPlanForAccount returns the latest plan narrowed to one account's
// schedule rows and payoff.
// GET /api/plan/latest/accounts/{id}
func (h *Handler) LatestPlanForAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	rec, err := h.Store.LatestPlan(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load plan", err)
		return
	}
	if rec == nil || rec.Result == nil {
		writeError(w, http.StatusNotFound, "No plan has been generated yet", nil)
		return
	}

	dto := toPlanDTO(*rec)
	var rows []MonthlyRowDTO
	for _, row := range dto.Schedule {
		if row.AccountID == accountID {
			rows = append(rows, row)
		}
	}

	var payoffs []PayoffDTO
	for _, p := range dto.Payoffs {
		if p.AccountID == accountID {
			payoffs = append(payoffs, p)
		}
	}
	if rows == nil && payoffs == nil {
		writeError(w, http.StatusNotFound, "Account does not appear in the latest plan", nil)
		return
	}
	dto.Schedule = rows
	dto.Payoffs = payoffs

	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// ACCOUNT ENDPOINTS
// =============================================================================

// ListAccounts returns all stored accounts in insertion order.
// GET /api/accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.ListAccounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, 0, len(accounts))
	for _, acct := range accounts {
		dtos = append(dtos, toAccountDTO(acct))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAccount stores a new account from the wire format. Calendar
// promo fields are resolved against today.
// POST /api/accounts
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req factory.AccountJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	acct, err := factory.ParseAccount(req, today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account", err)
		return
	}
	if err := validateAccount(acct); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account", err)
		return
	}

	if err := h.Store.SaveAccount(r.Context(), acct); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save account", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(acct))
}

// GetAccount returns one stored account.
// GET /api/accounts/{id}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := engine.AccountID(chi.URLParam(r, "id"))

	acct, err := h.Store.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get account", err)
		return
	}
	if acct == nil {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(*acct))
}

// UpdateAccount replaces a stored account. The path ID is authoritative.
// PUT /api/accounts/{id}
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := engine.AccountID(chi.URLParam(r, "id"))

	existing, err := h.Store.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get account", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}

	var req factory.AccountJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = string(id)

	acct, err := factory.ParseAccount(req, today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account", err)
		return
	}
	if err := validateAccount(acct); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account", err)
		return
	}

	if err := h.Store.SaveAccount(r.Context(), acct); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save account", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(acct))
}

// DeleteAccount removes a stored account and its buckets.
// DELETE /api/accounts/{id}
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := engine.AccountID(chi.URLParam(r, "id"))

	if err := h.Store.DeleteAccount(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete account", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// BUDGET AND PREFERENCES ENDPOINTS
// =============================================================================

// GetBudget returns the stored budget snapshot.
// GET /api/budget
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	bp, err := h.Store.GetBudget(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load budget", err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetDTO(bp))
}

// PutBudget replaces the stored budget. Months are offsets from plan
// start, matching the stored representation.
// PUT /api/budget
func (h *Handler) PutBudget(w http.ResponseWriter, r *http.Request) {
	var req BudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.MonthlyBudgetCents < 0 {
		writeError(w, http.StatusBadRequest, "Budget must not be negative", nil)
		return
	}

	bp := engine.BudgetPlan{MonthlyCents: money.Cents(req.MonthlyBudgetCents)}
	for _, ev := range req.FutureChanges {
		if ev.Month < 0 || ev.AmountCents < 0 {
			writeError(w, http.StatusBadRequest, "Budget changes need a non-negative month and amount", nil)
			return
		}
		bp.Changes = append(bp.Changes, engine.BudgetChange{
			Month:       ev.Month,
			AmountCents: money.Cents(ev.AmountCents),
		})
	}
	for _, ev := range req.LumpSumPayments {
		if ev.Month < 0 || ev.AmountCents < 0 {
			writeError(w, http.StatusBadRequest, "Lump sums need a non-negative month and amount", nil)
			return
		}
		bp.LumpSums = append(bp.LumpSums, engine.LumpSum{
			Month:       ev.Month,
			AmountCents: money.Cents(ev.AmountCents),
		})
	}

	if err := h.Store.SaveBudget(r.Context(), bp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save budget", err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetDTO(bp))
}

// GetPreferences returns the stored preferences.
// GET /api/preferences
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.Store.GetPreferences(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, toPreferencesDTO(prefs))
}

// PutPreferences replaces the stored preferences.
// PUT /api/preferences
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	prefs, err := factory.ParsePreferences(factory.PreferencesJSON{
		Strategy:     req.Strategy,
		PaymentShape: req.PaymentShape,
		TieBreak:     req.TieBreak,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid preferences", err)
		return
	}
	if err := validatePreferences(prefs); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid preferences", err)
		return
	}

	if err := h.Store.SavePreferences(r.Context(), prefs); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, toPreferencesDTO(prefs))
}

// =============================================================================
// ENRICHMENT ENDPOINTS
// =============================================================================

// ClassifyTransactions buckets raw bank transactions and aggregates a
// budget analysis over them.
// POST /api/transactions/classify
func (h *Handler) ClassifyTransactions(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Transactions) == 0 {
		writeError(w, http.StatusBadRequest, "At least one transaction is required", nil)
		return
	}

	enriched := h.Classifier.Classify(req.Transactions)
	writeJSON(w, http.StatusOK, ClassifyResponseDTO{
		Transactions: enriched,
		Analysis:     enrich.Analyze(enriched),
	})
}

// GetLenderRule looks up a lender's minimum-payment rule.
// GET /api/lenders/{name}/rule
func (h *Handler) GetLenderRule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rule, err := h.Rules.Lookup(r.Context(), name)
	if err != nil {
		if errors.Is(err, enrich.ErrLenderUnknown) {
			writeError(w, http.StatusNotFound, "Lender not recognized", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to look up lender", err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// =============================================================================
// DTO CONVERSION
// =============================================================================

func toPlanDTO(rec sqlite.PlanRecord) PlanResponseDTO {
	result := rec.Result
	dto := PlanResponseDTO{
		PlanID:             rec.ID,
		Status:             string(result.Status),
		StartDate:          result.StartDate.Format("2006-01-02"),
		Schedule:           make([]MonthlyRowDTO, 0, len(result.Schedule)),
		Payoffs:            make([]PayoffDTO, 0, len(result.Payoffs)),
		OverallPayoffMonth: result.OverallPayoffMonth,
		TotalInterestCents: int64(result.TotalInterestCents),
		TotalPaidCents:     int64(result.TotalPaidCents),
	}
	if !rec.CreatedAt.IsZero() {
		dto.GeneratedAt = rec.CreatedAt.Format(time.RFC3339)
	}

	switch result.Status {
	case engine.StatusInfeasible:
		dto.Message = "The monthly budget cannot cover the required minimum payments."
	case engine.StatusHorizonExceeded:
		dto.Message = "Debt remains at the end of the planning horizon."
	}

	for _, row := range result.Schedule {
		dto.Schedule = append(dto.Schedule, MonthlyRowDTO{
			Month:         row.Month,
			MonthDate:     result.MonthDate(row.Month).Format("2006-01"),
			AccountID:     string(row.AccountID),
			LenderName:    row.LenderName,
			StartingCents: int64(row.StartingCents),
			PaymentCents:  int64(row.PaymentCents),
			InterestCents: int64(row.InterestCents),
			EndingCents:   int64(row.EndingCents),
		})
	}
	for _, p := range result.Payoffs {
		pd := PayoffDTO{
			AccountID:  string(p.AccountID),
			LenderName: p.LenderName,
			Month:      p.Month,
			Reached:    p.Reached,
		}
		if p.Reached && p.Month > 0 {
			pd.MonthDate = result.MonthDate(p.Month).Format("2006-01")
		}
		dto.Payoffs = append(dto.Payoffs, pd)
	}
	return dto
}

func toAccountDTO(acct engine.Account) AccountDTO {
	dto := AccountDTO{
		ID:             string(acct.ID),
		LenderName:     acct.LenderName,
		AccountType:    string(acct.Type),
		BalanceCents:   int64(acct.BalanceCents),
		AprStandardBps: int64(acct.StandardRateBps),
		PaymentDueDay:  acct.PaymentDueDay,
		MinPaymentRule: factory.MinPaymentJSON{
			FixedCents:       int64(acct.MinPayment.FixedCents),
			PercentageBps:    int64(acct.MinPayment.PercentageBps),
			IncludesInterest: acct.MinPayment.IncludesInterest,
		},
		PromoExpiryMonth: acct.PromoExpiryMonth,
		Notes:            acct.Notes,
	}
	for _, b := range acct.Buckets {
		dto.Buckets = append(dto.Buckets, BucketDTO{
			Kind:             string(b.Kind),
			Label:            b.Label,
			BalanceCents:     int64(b.BalanceCents),
			AnnualRateBps:    int64(b.AnnualRateBps),
			Promo:            b.Promo,
			PromoExpiryMonth: b.PromoExpiryMonth,
		})
	}
	return dto
}

func toBudgetDTO(bp engine.BudgetPlan) BudgetDTO {
	dto := BudgetDTO{MonthlyBudgetCents: int64(bp.MonthlyCents)}
	for _, c := range bp.Changes {
		dto.FutureChanges = append(dto.FutureChanges, BudgetEventDTO{
			Month:       c.Month,
			AmountCents: int64(c.AmountCents),
		})
	}
	for _, ls := range bp.LumpSums {
		dto.LumpSumPayments = append(dto.LumpSumPayments, BudgetEventDTO{
			Month:       ls.Month,
			AmountCents: int64(ls.AmountCents),
		})
	}
	return dto
}

func toPreferencesDTO(prefs engine.Preferences) PreferencesDTO {
	return PreferencesDTO{
		Strategy:     string(prefs.Strategy),
		PaymentShape: string(prefs.Shape),
		TieBreak:     string(prefs.TieBreak),
	}
}

// =============================================================================
// VALIDATION HELPERS
// =============================================================================

// validateAccount runs the engine's per-account checks by validating a
// one-account portfolio around it.
func validateAccount(acct engine.Account) error {
	return engine.Validate(engine.Portfolio{
		Accounts: []engine.Account{acct},
		Preferences: engine.Preferences{
			Strategy: engine.StrategyMinimizeTotalInterest,
			Shape:    engine.ShapeOptimizedMonthToMonth,
		},
	})
}

// validatePreferences checks the strategy and shape against the closed
// sets without requiring any real accounts. The probe carries a promo
// window so every strategy, including the promo-clearing one, passes
// its portfolio requirements.
func validatePreferences(prefs engine.Preferences) error {
	return engine.Validate(engine.Portfolio{
		Accounts: []engine.Account{{
			ID:               "probe",
			LenderName:       "probe",
			PaymentDueDay:    1,
			PromoExpiryMonth: 1,
		}},
		Preferences: prefs,
	})
}

// today is the reference date for calendar promo resolution on account
// routes, where no plan start date exists.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
