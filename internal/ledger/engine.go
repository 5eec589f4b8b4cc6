// Package ledger implements the proration engine and the mutating operations
// on the monthly rent ledger.
package ledger

import "rentbot/internal/core"

// AmountsOwed prorates one month's total charge among that month's unpaid
// tenants, linearly in occupancy weight.
//
// Paid tenants owe nothing and are absent from the result. Unpaid tenants
// with zero weight appear with exactly 0.0. When no unpaid weight has been
// logged the whole roster owes zero rather than dividing by zero. No
// rounding happens here; replies round to cents at render time only.
func AmountsOwed(l core.MonthLedger) map[string]float64 {
	owed := make(map[string]float64)

	var totalWeight float64
	for _, t := range l.Tenants {
		if !t.Paid {
			totalWeight += t.Weight
		}
	}

	for name, t := range l.Tenants {
		if t.Paid {
			continue
		}
		if totalWeight == 0 {
			owed[name] = 0
			continue
		}
		owed[name] = l.TotalCharge() * t.Weight / totalWeight
	}
	return owed
}

// SumOwed prorates each month independently and sums the per-tenant results.
// The bot itself scopes replies to a single billing month, but the rule for
// multiple months is summation of independent prorations.
func SumOwed(ledgers ...core.MonthLedger) map[string]float64 {
	total := make(map[string]float64)
	for _, l := range ledgers {
		for name, amt := range AmountsOwed(l) {
			total[name] += amt
		}
	}
	return total
}
