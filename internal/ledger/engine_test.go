package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentbot/internal/core"
)

func monthWith(key core.MonthKey, rent, utility float64, tenants ...core.Tenant) core.MonthLedger {
	l := core.NewMonthLedger(key)
	l.TotalRent = rent
	l.TotalUtility = utility
	for _, t := range tenants {
		l.Tenants[t.Name] = t
	}
	return l
}

func TestAmountsOwedZeroChargeMonth(t *testing.T) {
	// Mirrors the September ledger before any bill was posted: everyone is
	// unpaid, some logged their stay, nothing is owed yet.
	l := monthWith(core.MonthKey{Year: 2021, Month: 9}, 0, 0,
		core.Tenant{Name: "Mac Mathis", Weight: 4},
		core.Tenant{Name: "Jake Deerin", Weight: 4},
		core.Tenant{Name: "Taylor Daniel", Weight: 0},
		core.Tenant{Name: "Andrew Dallas", Weight: 0},
		core.Tenant{Name: "Andrew Wittenmyer", Weight: 0},
		core.Tenant{Name: "Josh Minter", Weight: 4},
		core.Tenant{Name: "David Deerin", Weight: 0},
		core.Tenant{Name: "Manny Jonson", Weight: 4},
	)

	owed := AmountsOwed(l)

	require.Len(t, owed, 8)
	for name, amt := range owed {
		assert.Equal(t, 0.0, amt, "tenant %s", name)
	}
}

func TestAmountsOwedPartiallyPaidMonth(t *testing.T) {
	// The August ledger: five tenants already paid, three still owe in a
	// 2:1:2 weight ratio.
	l := monthWith(core.MonthKey{Year: 2021, Month: 8}, 1697.0, 413.18,
		core.Tenant{Name: "Mac Mathis", Weight: 4, Paid: true},
		core.Tenant{Name: "Jake Deerin", Weight: 4, Paid: true},
		core.Tenant{Name: "Taylor Daniel", Weight: 2, Paid: true},
		core.Tenant{Name: "Andrew Dallas", Weight: 4, Paid: true},
		core.Tenant{Name: "Andrew Wittenmyer", Weight: 2},
		core.Tenant{Name: "Josh Minter", Weight: 4, Paid: true},
		core.Tenant{Name: "David Deerin", Weight: 1},
		core.Tenant{Name: "Manny Jonson", Weight: 2},
	)

	owed := AmountsOwed(l)

	charge := 1697.0 + 413.18
	require.Len(t, owed, 3)
	assert.Equal(t, charge*2/5, owed["Andrew Wittenmyer"])
	assert.Equal(t, charge*1/5, owed["David Deerin"])
	assert.Equal(t, charge*2/5, owed["Manny Jonson"])
	assert.InDelta(t, 844.072, owed["Andrew Wittenmyer"], 1e-9)
	assert.InDelta(t, 422.036, owed["David Deerin"], 1e-9)
}

func TestAmountsOwedSumsToTotalCharge(t *testing.T) {
	l := monthWith(core.MonthKey{Year: 2023, Month: 3}, 1200, 145.67,
		core.Tenant{Name: "a", Weight: 3.5},
		core.Tenant{Name: "b", Weight: 1},
		core.Tenant{Name: "c", Weight: 2, Paid: true},
		core.Tenant{Name: "d", Weight: 4},
	)

	owed := AmountsOwed(l)

	var sum float64
	for _, amt := range owed {
		sum += amt
	}
	assert.InDelta(t, l.TotalCharge(), sum, 1e-9)
}

func TestAmountsOwedExcludesPaidTenants(t *testing.T) {
	l := monthWith(core.MonthKey{Year: 2023, Month: 3}, 1000, 0,
		core.Tenant{Name: "paid", Weight: 4, Paid: true},
		core.Tenant{Name: "unpaid", Weight: 4},
	)

	owed := AmountsOwed(l)

	assert.NotContains(t, owed, "paid")
	assert.Equal(t, 1000.0, owed["unpaid"])
}

func TestAmountsOwedZeroWeightUnpaidTenant(t *testing.T) {
	l := monthWith(core.MonthKey{Year: 2023, Month: 3}, 1000, 0,
		core.Tenant{Name: "stayed", Weight: 4},
		core.Tenant{Name: "away", Weight: 0},
	)

	owed := AmountsOwed(l)

	// Zero weight contributes to neither side of the split: present, owes
	// exactly zero, and the full charge lands on the others.
	assert.Equal(t, 0.0, owed["away"])
	assert.Equal(t, 1000.0, owed["stayed"])
}

func TestAmountsOwedNoUnpaidWeightAvoidsDivisionByZero(t *testing.T) {
	l := monthWith(core.MonthKey{Year: 2023, Month: 3}, 1000, 0,
		core.Tenant{Name: "a", Weight: 0},
		core.Tenant{Name: "b", Weight: 0},
		core.Tenant{Name: "c", Weight: 4, Paid: true},
	)

	owed := AmountsOwed(l)

	require.Len(t, owed, 2)
	assert.Equal(t, 0.0, owed["a"])
	assert.Equal(t, 0.0, owed["b"])
}

func TestAmountsOwedEmptyCases(t *testing.T) {
	t.Run("empty roster", func(t *testing.T) {
		owed := AmountsOwed(monthWith(core.MonthKey{Year: 2023, Month: 3}, 1000, 0))
		assert.Empty(t, owed)
	})
	t.Run("everyone paid", func(t *testing.T) {
		owed := AmountsOwed(monthWith(core.MonthKey{Year: 2023, Month: 3}, 1000, 0,
			core.Tenant{Name: "a", Weight: 4, Paid: true},
			core.Tenant{Name: "b", Weight: 2, Paid: true},
		))
		assert.Empty(t, owed)
	})
}

func TestSumOwedAggregatesAcrossMonths(t *testing.T) {
	aug := monthWith(core.MonthKey{Year: 2021, Month: 8}, 1000, 0,
		core.Tenant{Name: "a", Weight: 1},
		core.Tenant{Name: "b", Weight: 1},
	)
	sep := monthWith(core.MonthKey{Year: 2021, Month: 9}, 500, 100,
		core.Tenant{Name: "a", Weight: 3},
		core.Tenant{Name: "b", Weight: 1, Paid: true},
	)

	total := SumOwed(aug, sep)

	// Each month prorated independently, then summed per tenant.
	assert.InDelta(t, 500+600, total["a"], 1e-9)
	assert.InDelta(t, 500, total["b"], 1e-9)
}
