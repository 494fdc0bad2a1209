package money_test

import (
	"testing"

	"github.com/finlayjack89/PaydownPilot-sub001/money"
)

func TestMonthlyInterest_RoundsHalfUp(t *testing.T) {
	cases := []struct {
		name    string
		balance money.Cents
		rate    money.BasisPoints
		want    money.Cents
	}{
		{"twenty percent APR", 100000, 2000, 1667},   // 1666.67 rounds up
		{"exact division", 120000, 1000, 1000},       // 120000*1000/120000
		{"half rounds up", 90000, 2000, 1500},        // exactly 1500
		{"small balance", 100, 2999, 2},              // 2.49 rounds down
		{"zero balance", 0, 2999, 0},
		{"zero rate", 100000, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := money.MonthlyInterest(tc.balance, tc.rate)
			if got != tc.want {
				t.Errorf("MonthlyInterest(%d, %d) = %d, want %d", tc.balance, tc.rate, got, tc.want)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	// 2% of 8374.23 is 167.48 (837423 * 200 / 10000 = 16748.46 -> 16748)
	if got := money.Percentage(837423, 200); got != 16748 {
		t.Errorf("Percentage(837423, 200) = %d, want 16748", got)
	}
	// half-up at the boundary: 25 * 200 / 10000 = 0.5 -> 1
	if got := money.Percentage(25, 200); got != 1 {
		t.Errorf("Percentage(25, 200) = %d, want 1", got)
	}
	if got := money.Percentage(0, 200); got != 0 {
		t.Errorf("Percentage(0, 200) = %d, want 0", got)
	}
}

func TestCeilDiv(t *testing.T) {
	if got := money.CeilDiv(90000, 3); got != 30000 {
		t.Errorf("CeilDiv(90000, 3) = %d, want 30000", got)
	}
	if got := money.CeilDiv(100, 3); got != 34 {
		t.Errorf("CeilDiv(100, 3) = %d, want 34", got)
	}
	if got := money.CeilDiv(100, 0); got != 0 {
		t.Errorf("CeilDiv(100, 0) = %d, want 0", got)
	}
}

func TestCents_String(t *testing.T) {
	cases := map[money.Cents]string{
		123450: "1234.50",
		5:      "0.05",
		-250:   "-2.50",
		0:      "0.00",
	}
	for c, want := range cases {
		if got := c.String(); got != want {
			t.Errorf("Cents(%d).String() = %q, want %q", int64(c), got, want)
		}
	}
}
