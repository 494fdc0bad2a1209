/*
errors.go - Centralized error types for the planning engine

PURPOSE:
  All validation error types in one place. Validation happens once at plan
  construction; the simulation itself has no failure mode other than its
  terminal statuses (infeasible and horizon-exceeded are results, not
  errors).

USAGE:
  if errors.Is(err, engine.ErrInvalidPortfolio) {
      // 400, not 500
  }
*/
package engine

import (
	"errors"
	"fmt"

	"github.com/finlayjack89/PaydownPilot-sub001/money"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPortfolio is the root of every validation failure.
	ErrInvalidPortfolio = errors.New("invalid portfolio")

	// ErrNoAccounts is returned for a portfolio with no accounts at all.
	ErrNoAccounts = errors.New("portfolio has no accounts")

	// ErrUnknownStrategy is returned for a strategy outside the closed set.
	ErrUnknownStrategy = errors.New("unknown optimization strategy")

	// ErrUnknownShape is returned for a payment shape outside the closed set.
	ErrUnknownShape = errors.New("unknown payment shape")

	// ErrPromoRequired is returned when minimize_spend_to_clear_promos is
	// requested and some account has no promo window.
	ErrPromoRequired = errors.New("strategy requires a promo window on every account")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// AccountValidationError pins a validation failure to one account.
type AccountValidationError struct {
	AccountID  AccountID
	LenderName string
	Field      string
	Message    string
}

func (e *AccountValidationError) Error() string {
	return fmt.Sprintf("account %q: %s: %s", e.LenderName, e.Field, e.Message)
}

func (e *AccountValidationError) Unwrap() error { return ErrInvalidPortfolio }

// BucketSumError reports bucket balances that do not sum to the account
// balance at plan start.
type BucketSumError struct {
	AccountID  AccountID
	LenderName string
	Account    money.Cents
	Buckets    money.Cents
}

func (e *BucketSumError) Error() string {
	return fmt.Sprintf("account %q: bucket balances sum to %v, account balance is %v",
		e.LenderName, e.Buckets, e.Account)
}

func (e *BucketSumError) Unwrap() error { return ErrInvalidPortfolio }

// IsClientError reports whether the error is due to invalid input rather
// than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPortfolio) ||
		errors.Is(err, ErrNoAccounts) ||
		errors.Is(err, ErrUnknownStrategy) ||
		errors.Is(err, ErrUnknownShape) ||
		errors.Is(err, ErrPromoRequired)
}
