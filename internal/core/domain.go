package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultWeight is the occupancy weight assigned to a tenant when none is
	// given: a full four-week billing period. Historically the column is
	// called "Weeks Stayed" but it is just a proration weight.
	DefaultWeight = 4.0

	// BillingLagDays is subtracted from "now" when deriving the month a
	// command targets. Bills for a month are posted and paid a couple of
	// weeks into the next one, so mid-month commands still address the
	// period people are actually paying for.
	BillingLagDays = 14
)

var (
	ErrMonthNotFound  = errors.New("month not found")
	ErrTenantNotFound = errors.New("tenant not found")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidWeight  = errors.New("invalid weight")
)

type (
	// MonthKey identifies one calendar month of the ledger.
	MonthKey struct {
		Year  int
		Month int
	}

	// Tenant is one roster entry inside a month. Name is the unique key
	// within that month.
	Tenant struct {
		Name   string
		Weight float64
		Paid   bool
	}

	// MonthLedger is a full snapshot of one month: the two charge sub-totals
	// and the roster. Amounts are decimal dollars; the integer-cents
	// representation only exists at the billing-source boundary.
	MonthLedger struct {
		Month        MonthKey
		TotalRent    float64
		TotalUtility float64
		Tenants      map[string]Tenant
	}

	// Money carries an amount as integer cents, used where values cross the
	// billing-source boundary.
	Money struct {
		Cents int64
	}
)

// NewMonthLedger returns an empty ledger for the given month.
func NewMonthLedger(key MonthKey) MonthLedger {
	return MonthLedger{Month: key, Tenants: make(map[string]Tenant)}
}

// TotalCharge is the aggregate amount prorated among unpaid tenants.
func (l MonthLedger) TotalCharge() float64 {
	return l.TotalRent + l.TotalUtility
}

// Clone returns a deep copy so callers can mutate snapshots freely.
func (l MonthLedger) Clone() MonthLedger {
	out := l
	out.Tenants = make(map[string]Tenant, len(l.Tenants))
	for name, t := range l.Tenants {
		out.Tenants[name] = t
	}
	return out
}

func (k MonthKey) Validate() error {
	if k.Month < 1 || k.Month > 12 {
		return fmt.Errorf("invalid month: %d", k.Month)
	}
	if k.Year < 1 {
		return fmt.Errorf("invalid year: %d", k.Year)
	}
	return nil
}

// Prev returns the previous calendar month.
func (k MonthKey) Prev() MonthKey {
	if k.Month == 1 {
		return MonthKey{Year: k.Year - 1, Month: 12}
	}
	return MonthKey{Year: k.Year, Month: k.Month - 1}
}

// Before reports whether k is strictly earlier than other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// String renders the key the way the ledger sheet labels month blocks,
// e.g. "8/2021".
func (k MonthKey) String() string {
	return strconv.Itoa(k.Month) + "/" + strconv.Itoa(k.Year)
}

// Label renders a human-readable month name for replies, e.g. "August 2021".
func (k MonthKey) Label() string {
	return time.Month(k.Month).String() + " " + strconv.Itoa(k.Year)
}

// ParseMonthKey parses a "month/year" label such as "8/2021".
func ParseMonthKey(s string) (MonthKey, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return MonthKey{}, fmt.Errorf("invalid month label %q", s)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month label %q", s)
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month label %q", s)
	}
	key := MonthKey{Year: year, Month: month}
	if err := key.Validate(); err != nil {
		return MonthKey{}, err
	}
	return key, nil
}

// MonthKeyFor truncates a point in time to its calendar month.
func MonthKeyFor(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: int(t.Month())}
}

// BillingMonth returns the month a command issued at "now" should target:
// now minus the billing lag buffer, truncated to a month.
func BillingMonth(now time.Time) MonthKey {
	return MonthKeyFor(now.AddDate(0, 0, -BillingLagDays))
}

// Dollars converts integer cents to the decimal-dollar representation the
// ledger stores.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}
