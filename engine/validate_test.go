package engine_test

import (
	"errors"
	"testing"

	"github.com/finlayjack89/PaydownPilot-sub001/engine"
)

func validPortfolio() engine.Portfolio {
	return portfolio(
		[]engine.Account{card("visa", 100000, 2000, engine.MinPaymentRule{FixedCents: 2500})},
		50000,
		engine.StrategyMinimizeTotalInterest,
		engine.ShapeOptimizedMonthToMonth,
	)
}

func TestValidate_AcceptsWellFormedPortfolio(t *testing.T) {
	if err := engine.Validate(validPortfolio()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_NoAccounts(t *testing.T) {
	p := validPortfolio()
	p.Accounts = nil

	err := engine.Validate(p)
	if !errors.Is(err, engine.ErrNoAccounts) {
		t.Errorf("error = %v, want ErrNoAccounts", err)
	}
}

func TestValidate_UnknownStrategy(t *testing.T) {
	p := validPortfolio()
	p.Preferences.Strategy = "snowball_plus"

	err := engine.Validate(p)
	if !errors.Is(err, engine.ErrUnknownStrategy) {
		t.Errorf("error = %v, want ErrUnknownStrategy", err)
	}
	if !engine.IsClientError(err) {
		t.Errorf("unknown strategy should be a client error")
	}
}

func TestValidate_UnknownShape(t *testing.T) {
	p := validPortfolio()
	p.Preferences.Shape = "exponential"

	if err := engine.Validate(p); !errors.Is(err, engine.ErrUnknownShape) {
		t.Errorf("error = %v, want ErrUnknownShape", err)
	}
}

func TestValidate_AccountFieldErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*engine.Account)
	}{
		{"empty lender name", func(a *engine.Account) { a.LenderName = "" }},
		{"negative balance", func(a *engine.Account) { a.BalanceCents = -1 }},
		{"negative rate", func(a *engine.Account) { a.StandardRateBps = -100 }},
		{"due day zero", func(a *engine.Account) { a.PaymentDueDay = 0 }},
		{"due day past 28", func(a *engine.Account) { a.PaymentDueDay = 29 }},
		{"negative fixed minimum", func(a *engine.Account) { a.MinPayment.FixedCents = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPortfolio()
			tc.mutate(&p.Accounts[0])

			err := engine.Validate(p)
			if !errors.Is(err, engine.ErrInvalidPortfolio) {
				t.Fatalf("error = %v, want ErrInvalidPortfolio", err)
			}
			var ve *engine.AccountValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error %T is not an AccountValidationError", err)
			}
		})
	}
}

func TestValidate_BucketSumMismatch(t *testing.T) {
	p := validPortfolio()
	p.Accounts[0].Buckets = []engine.Bucket{
		{Kind: engine.BucketBalanceTransfer, BalanceCents: 40000, Promo: true, PromoExpiryMonth: 12},
		{Kind: engine.BucketPurchases, BalanceCents: 40000, AnnualRateBps: 2000},
	}

	err := engine.Validate(p)
	var se *engine.BucketSumError
	if !errors.As(err, &se) {
		t.Fatalf("error %T is not a BucketSumError", err)
	}
	if !errors.Is(err, engine.ErrInvalidPortfolio) {
		t.Error("BucketSumError should unwrap to ErrInvalidPortfolio")
	}
	if se.Account != 100000 || se.Buckets != 80000 {
		t.Errorf("amounts = {%d %d}, want {100000 80000}", se.Account, se.Buckets)
	}
}

func TestValidate_PromoBucketWithoutExpiry(t *testing.T) {
	p := validPortfolio()
	p.Accounts[0].Buckets = []engine.Bucket{
		{Kind: engine.BucketBalanceTransfer, BalanceCents: 100000, Promo: true},
	}

	if err := engine.Validate(p); !errors.Is(err, engine.ErrInvalidPortfolio) {
		t.Errorf("error = %v, want ErrInvalidPortfolio", err)
	}
}

func TestValidate_ClearPromosNeedsPromoOnEveryAccount(t *testing.T) {
	p := validPortfolio()
	p.Preferences.Strategy = engine.StrategyMinimizeSpendToClearPromos

	if err := engine.Validate(p); !errors.Is(err, engine.ErrPromoRequired) {
		t.Errorf("error = %v, want ErrPromoRequired", err)
	}
}

func TestValidate_NegativeBudgetAmounts(t *testing.T) {
	p := validPortfolio()
	p.Budget.Changes = []engine.BudgetChange{{Month: 3, AmountCents: -1}}

	if err := engine.Validate(p); !errors.Is(err, engine.ErrInvalidPortfolio) {
		t.Errorf("error = %v, want ErrInvalidPortfolio", err)
	}
}
