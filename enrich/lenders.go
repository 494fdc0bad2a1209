/*
lenders.go - Lender minimum-payment rule lookup

PURPOSE:
  Resolves a lender name to its published minimum-payment rule, so a
  detected debt can be turned into an account without the user typing the
  rule in. Lookups are normalized (case, punctuation) and matched against
  a built-in table of known lenders; results go through the Cache so
  repeated lookups for the same lender stay cheap.

  The table holds typical UK card and BNPL terms. Rules are advisory
  defaults: the user can always override them on the account.
*/
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/finlayjack89/PaydownPilot-sub001/engine"
	"github.com/finlayjack89/PaydownPilot-sub001/money"
)

// ErrLenderUnknown is returned when no rule is on file for a lender.
var ErrLenderUnknown = errors.New("no minimum payment rule on file for lender")

// LenderRule is a lender's published minimum-payment terms.
type LenderRule struct {
	LenderName string           `json:"lender_name"`
	Rule       lenderRuleFields `json:"rule"`
	Source     string           `json:"source,omitempty"`
}

type lenderRuleFields struct {
	FixedCents       money.Cents       `json:"fixed_cents"`
	PercentageBps    money.BasisPoints `json:"percentage_bps"`
	IncludesInterest bool              `json:"includes_interest"`
}

// MinPaymentRule converts the wire fields to the engine's rule type.
func (lr LenderRule) MinPaymentRule() engine.MinPaymentRule {
	return engine.MinPaymentRule{
		FixedCents:       lr.Rule.FixedCents,
		PercentageBps:    lr.Rule.PercentageBps,
		IncludesInterest: lr.Rule.IncludesInterest,
	}
}

// knownLenders maps normalized lender names to their rules. Percentage
// terms are of statement balance; includes_interest marks lenders whose
// floor is "interest plus N% of balance".
var knownLenders = map[string]LenderRule{
	"barclaycard": {
		LenderName: "Barclaycard",
		Rule:       lenderRuleFields{FixedCents: 500, PercentageBps: 225, IncludesInterest: true},
	},
	"halifax": {
		LenderName: "Halifax",
		Rule:       lenderRuleFields{FixedCents: 500, PercentageBps: 100, IncludesInterest: true},
	},
	"lloyds": {
		LenderName: "Lloyds",
		Rule:       lenderRuleFields{FixedCents: 500, PercentageBps: 100, IncludesInterest: true},
	},
	"mbna": {
		LenderName: "MBNA",
		Rule:       lenderRuleFields{FixedCents: 2500, PercentageBps: 100, IncludesInterest: true},
	},
	"virgin money": {
		LenderName: "Virgin Money",
		Rule:       lenderRuleFields{FixedCents: 2500, PercentageBps: 100, IncludesInterest: true},
	},
	"american express": {
		LenderName: "American Express",
		Rule:       lenderRuleFields{FixedCents: 500, PercentageBps: 200},
	},
	"amex": {
		LenderName: "American Express",
		Rule:       lenderRuleFields{FixedCents: 500, PercentageBps: 200},
	},
	"capital one": {
		LenderName: "Capital One",
		Rule:       lenderRuleFields{FixedCents: 500, PercentageBps: 300},
	},
	"santander": {
		LenderName: "Santander",
		Rule:       lenderRuleFields{FixedCents: 500, PercentageBps: 100, IncludesInterest: true},
	},
	"tesco bank": {
		LenderName: "Tesco Bank",
		Rule:       lenderRuleFields{FixedCents: 2500, PercentageBps: 100, IncludesInterest: true},
	},
	"klarna": {
		LenderName: "Klarna",
		Rule:       lenderRuleFields{PercentageBps: 3334}, // pay-in-3 installments
	},
	"clearpay": {
		LenderName: "Clearpay",
		Rule:       lenderRuleFields{PercentageBps: 2500}, // pay-in-4 installments
	},
	"paypal credit": {
		LenderName: "PayPal Credit",
		Rule:       lenderRuleFields{FixedCents: 2000, PercentageBps: 200},
	},
}

// =============================================================================
// RULE PROVIDER
// =============================================================================

// RuleProvider resolves lender rules through a cache.
type RuleProvider struct {
	cache Cache
}

func NewRuleProvider(cache Cache) *RuleProvider {
	return &RuleProvider{cache: cache}
}

// Lookup resolves the rule for a lender name. Names are matched after
// normalization, and by substring against the known table, so "Halifax
// Clarity Card" resolves to the Halifax rule.
func (p *RuleProvider) Lookup(ctx context.Context, lenderName string) (LenderRule, error) {
	key := "lender_rule:" + normalizeLender(lenderName)

	if cached, ok := p.cache.Get(ctx, key); ok {
		var rule LenderRule
		if err := json.Unmarshal([]byte(cached), &rule); err == nil {
			return rule, nil
		}
		// A corrupt cache entry falls through to a fresh lookup.
	}

	rule, ok := matchLender(lenderName)
	if !ok {
		return LenderRule{}, fmt.Errorf("%w: %q", ErrLenderUnknown, lenderName)
	}

	if encoded, err := json.Marshal(rule); err == nil {
		// Cache failures never fail the lookup.
		_ = p.cache.Set(ctx, key, string(encoded))
	}
	return rule, nil
}

// lenderKeys is the substring-match order, longest key first so "paypal
// credit" wins over any shorter overlapping key.
var lenderKeys = func() []string {
	keys := make([]string, 0, len(knownLenders))
	for k := range knownLenders {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

func matchLender(name string) (LenderRule, bool) {
	normalized := normalizeLender(name)
	if rule, ok := knownLenders[normalized]; ok {
		return rule, true
	}
	for _, key := range lenderKeys {
		if strings.Contains(normalized, key) {
			return knownLenders[key], true
		}
	}
	return LenderRule{}, false
}

// normalizeLender lowercases, maps punctuation to spaces, and collapses
// whitespace, so "Virgin-Money!" and "virgin money" compare equal.
func normalizeLender(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
