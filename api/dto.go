/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Plan:     PlanResponseDTO, MonthlyRowDTO, PayoffDTO
  Accounts: AccountDTO (wraps factory.AccountJSON)
  Budget:   BudgetDTO, BudgetEventDTO
  Enrich:   ClassifyRequest, ClassifyResponseDTO
  Scenario: ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/portfolio.go: wire-format portfolio types
*/
package api

import (
	"github.com/finlayjack89/PaydownPilot-sub001/enrich"
	"github.com/finlayjack89/PaydownPilot-sub001/factory"
)

// =============================================================================
// PLAN TYPES
// =============================================================================

// MonthlyRowDTO is one schedule row in API responses.
type MonthlyRowDTO struct {
	Month         int    `json:"month"`
	MonthDate     string `json:"month_date"` // YYYY-MM
	AccountID     string `json:"account_id"`
	LenderName    string `json:"lender_name"`
	StartingCents int64  `json:"starting_balance_cents"`
	PaymentCents  int64  `json:"payment_cents"`
	InterestCents int64  `json:"interest_charged_cents"`
	EndingCents   int64  `json:"ending_balance_cents"`
}

// PayoffDTO reports when an account clears.
type PayoffDTO struct {
	AccountID  string `json:"account_id"`
	LenderName string `json:"lender_name"`
	Month      int    `json:"month"`
	MonthDate  string `json:"month_date,omitempty"`
	Reached    bool   `json:"reached"`
}

// PlanResponseDTO is the full plan computation result.
type PlanResponseDTO struct {
	PlanID             string          `json:"plan_id,omitempty"`
	Status             string          `json:"status"`
	Message            string          `json:"message,omitempty"`
	StartDate          string          `json:"plan_start_date"`
	Schedule           []MonthlyRowDTO `json:"schedule"`
	Payoffs            []PayoffDTO     `json:"payoffs"`
	OverallPayoffMonth int             `json:"overall_payoff_month,omitempty"`
	TotalInterestCents int64           `json:"total_interest_cents"`
	TotalPaidCents     int64           `json:"total_paid_cents"`
	GeneratedAt        string          `json:"generated_at,omitempty"`
}

// =============================================================================
// PORTFOLIO TYPES
// =============================================================================

// AccountDTO represents a stored account in API responses. Requests reuse
// factory.AccountJSON, the canonical wire format; responses carry the
// resolved month offset instead of the calendar promo fields.
type AccountDTO struct {
	ID               string                 `json:"id"`
	LenderName       string                 `json:"lender_name"`
	AccountType      string                 `json:"account_type"`
	BalanceCents     int64                  `json:"current_balance_cents"`
	AprStandardBps   int64                  `json:"apr_standard_bps"`
	PaymentDueDay    int                    `json:"payment_due_day"`
	MinPaymentRule   factory.MinPaymentJSON `json:"min_payment_rule"`
	PromoExpiryMonth int                    `json:"promo_expiry_month,omitempty"`
	Buckets          []BucketDTO            `json:"buckets,omitempty"`
	Notes            string                 `json:"notes,omitempty"`
}

// BucketDTO represents a rate bucket in API responses.
type BucketDTO struct {
	Kind             string `json:"kind"`
	Label            string `json:"label,omitempty"`
	BalanceCents     int64  `json:"balance_cents"`
	AnnualRateBps    int64  `json:"annual_rate_bps"`
	Promo            bool   `json:"promo,omitempty"`
	PromoExpiryMonth int    `json:"promo_expiry_month,omitempty"`
}

// PreferencesDTO mirrors the stored optimization preferences.
type PreferencesDTO struct {
	Strategy     string `json:"strategy"`
	PaymentShape string `json:"payment_shape"`
	TieBreak     string `json:"tie_break,omitempty"`
}

// BudgetDTO is the stored budget with months resolved to offsets.
type BudgetDTO struct {
	MonthlyBudgetCents int64            `json:"monthly_budget_cents"`
	FutureChanges      []BudgetEventDTO `json:"future_changes,omitempty"`
	LumpSumPayments    []BudgetEventDTO `json:"lump_sum_payments,omitempty"`
}

// BudgetEventDTO is a budget change or lump sum by month offset.
type BudgetEventDTO struct {
	Month       int   `json:"month"`
	AmountCents int64 `json:"amount_cents"`
}

// =============================================================================
// ENRICHMENT TYPES
// =============================================================================

// ClassifyRequest is a batch of raw transactions to classify.
type ClassifyRequest struct {
	Transactions []enrich.Transaction `json:"transactions"`
}

// ClassifyResponseDTO returns the classified batch plus its aggregates.
type ClassifyResponseDTO struct {
	Transactions []enrich.Enriched `json:"transactions"`
	Analysis     enrich.Analysis   `json:"analysis"`
}

// =============================================================================
// SCENARIO TYPES
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Loaded      bool   `json:"loaded"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// COMMON TYPES
// =============================================================================

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
