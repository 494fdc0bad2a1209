/*
plan.go - Plan assembler

PURPOSE:
  Pure aggregation of the simulation's terminal state and row sequence
  into a PlanResult: per-account payoff months, overall payoff month,
  and interest/payment totals.
*/
package engine

// assemble wraps the terminal status and accumulated rows.
func (sim *simulation) assemble(status PlanStatus) *PlanResult {
	result := &PlanResult{
		Status:    status,
		Schedule:  sim.rows,
		StartDate: sim.p.StartDate,
	}

	allReached := true
	for i, as := range sim.accounts {
		payoff := AccountPayoff{
			AccountID:  as.acct.ID,
			LenderName: as.acct.LenderName,
		}
		switch {
		case as.acct.TotalBalance() == 0:
			// Opened with no balance: contributes no rows, payoff month 0.
			payoff.Month = 0
			payoff.Reached = true
		case sim.payoffMonth[i] > 0:
			payoff.Month = sim.payoffMonth[i]
			payoff.Reached = true
		default:
			allReached = false
		}
		result.Payoffs = append(result.Payoffs, payoff)

		if payoff.Reached && payoff.Month > result.OverallPayoffMonth {
			result.OverallPayoffMonth = payoff.Month
		}
	}
	if !allReached {
		result.OverallPayoffMonth = 0
	}

	for _, row := range sim.rows {
		result.TotalInterestCents += row.InterestCents
		result.TotalPaidCents += row.PaymentCents
	}

	return result
}
