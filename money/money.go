/*
Package money provides integer minor-unit monetary arithmetic.

PURPOSE:
  All balances, payments, and interest in the planning engine are integer
  minor currency units (pence/cents). Rates are basis points (1 bps = 0.01%).
  Keeping everything integral makes the simulation exactly reproducible:
  the same portfolio always produces the same schedule, byte for byte.

KEY CONCEPTS IN THIS FILE:
  - Cents: an amount in minor units (int64)
  - BasisPoints: an annual or percentage rate in hundredths of a percent
  - MonthlyInterest / Percentage: the only two places rounding happens

ROUNDING:
  Both helpers round half-up to the nearest minor unit. The intermediate
  products are computed with decimal.Decimal so the division never passes
  through a float. decimal.DivRound rounds half away from zero, which is
  half-up for the non-negative amounts this engine works with.

USAGE:
  interest := money.MonthlyInterest(100000, 2000) // => 1667
  pct := money.Percentage(100000, 250)            // => 2500

SEE ALSO:
  - engine/interest.go: per-bucket accrual built on MonthlyInterest
  - engine/minimum.go: minimum payment rules built on Percentage
*/
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNTS AND RATES
// =============================================================================

// Cents is a monetary amount in integer minor currency units.
type Cents int64

// BasisPoints is a rate in hundredths of a percent (250 = 2.5%).
type BasisPoints int64

func (c Cents) IsNegative() bool { return c < 0 }
func (c Cents) IsZero() bool     { return c == 0 }
func (c Cents) IsPositive() bool { return c > 0 }

func (c Cents) Min(other Cents) Cents {
	if c < other {
		return c
	}
	return other
}

func (c Cents) Max(other Cents) Cents {
	if c > other {
		return c
	}
	return other
}

// String formats the amount with two decimal places, e.g. "1234.50".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Float64 returns the amount in major units, for display only.
func (c Cents) Float64() float64 { return float64(c) / 100 }

// =============================================================================
// ROUNDED ARITHMETIC
// =============================================================================

var (
	monthlyDivisor = decimal.NewFromInt(120000) // 12 months x 10000 bps
	bpsDivisor     = decimal.NewFromInt(10000)
)

// MonthlyInterest computes one month of interest on balance at an annual
// rate, rounding half-up: round(balance * rateBps / 12 / 10000).
// A zero balance accrues nothing regardless of rate.
func MonthlyInterest(balance Cents, rate BasisPoints) Cents {
	if balance <= 0 || rate <= 0 {
		return 0
	}
	n := decimal.NewFromInt(int64(balance)).Mul(decimal.NewFromInt(int64(rate)))
	return Cents(n.DivRound(monthlyDivisor, 0).IntPart())
}

// Percentage computes round(base * rateBps / 10000), half-up.
func Percentage(base Cents, rate BasisPoints) Cents {
	if base <= 0 || rate <= 0 {
		return 0
	}
	n := decimal.NewFromInt(int64(base)).Mul(decimal.NewFromInt(int64(rate)))
	return Cents(n.DivRound(bpsDivisor, 0).IntPart())
}

// CeilDiv divides amount evenly across n parts, rounding up, so that
// n parts of the result always cover the full amount.
func CeilDiv(amount Cents, n int) Cents {
	if n <= 0 || amount <= 0 {
		return 0
	}
	return Cents((int64(amount) + int64(n) - 1) / int64(n))
}
