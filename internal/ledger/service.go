package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"rentbot/internal/core"
)

// Service applies the mutating ledger operations on top of a Store. It holds
// no state between calls; every operation is a read-modify-write against the
// store's month snapshots.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateMonth ensures a record exists for the given month. When absent it is
// created from the latest prior month's roster with payment flags reset and
// weights carried as the full-period default; with no prior month it starts
// empty. Idempotent: an existing month is returned untouched.
func (s *Service) CreateMonth(ctx context.Context, key core.MonthKey) (core.MonthLedger, error) {
	if err := key.Validate(); err != nil {
		return core.MonthLedger{}, err
	}

	existing, err := s.store.GetMonth(ctx, key)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, core.ErrMonthNotFound) {
		return core.MonthLedger{}, fmt.Errorf("get month %s: %w", key, err)
	}

	fresh := core.NewMonthLedger(key)
	prior, err := s.store.LatestMonthBefore(ctx, key)
	switch {
	case err == nil:
		for name := range prior.Tenants {
			fresh.Tenants[name] = core.Tenant{Name: name, Weight: core.DefaultWeight}
		}
		slog.InfoContext(ctx, "Created month from rollover",
			"month", key.String(),
			"rolled_from", prior.Month.String(),
			"tenants", len(fresh.Tenants))
	case errors.Is(err, core.ErrMonthNotFound):
		slog.InfoContext(ctx, "Created first month with empty roster", "month", key.String())
	default:
		return core.MonthLedger{}, fmt.Errorf("find prior month for %s: %w", key, err)
	}

	if err := s.store.PutMonth(ctx, fresh); err != nil {
		return core.MonthLedger{}, fmt.Errorf("put month %s: %w", key, err)
	}
	return fresh, nil
}

// AddTenant inserts (or overwrites) a roster entry with the default weight
// and an unpaid flag, creating the month first when needed.
func (s *Service) AddTenant(ctx context.Context, name string, key core.MonthKey) error {
	l, err := s.CreateMonth(ctx, key)
	if err != nil {
		return err
	}
	l = l.Clone()
	l.Tenants[name] = core.Tenant{Name: name, Weight: core.DefaultWeight}
	if err := s.store.PutMonth(ctx, l); err != nil {
		return fmt.Errorf("put month %s: %w", key, err)
	}
	slog.InfoContext(ctx, "Tenant added", "tenant", name, "month", key.String())
	return nil
}

// RemoveTenant deletes the roster entry if present. A missing tenant or a
// missing month is not an error.
func (s *Service) RemoveTenant(ctx context.Context, name string, key core.MonthKey) error {
	l, err := s.store.GetMonth(ctx, key)
	if errors.Is(err, core.ErrMonthNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get month %s: %w", key, err)
	}
	if _, ok := l.Tenants[name]; !ok {
		return nil
	}
	l = l.Clone()
	delete(l.Tenants, name)
	if err := s.store.PutMonth(ctx, l); err != nil {
		return fmt.Errorf("put month %s: %w", key, err)
	}
	slog.InfoContext(ctx, "Tenant removed", "tenant", name, "month", key.String())
	return nil
}

// SetWeight records a tenant's occupancy weight for the month. The month is
// created (with rollover) when absent; the tenant must already be on the
// roster.
func (s *Service) SetWeight(ctx context.Context, name string, weight float64, key core.MonthKey) error {
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return core.ErrInvalidWeight
	}
	l, err := s.CreateMonth(ctx, key)
	if err != nil {
		return err
	}
	t, ok := l.Tenants[name]
	if !ok {
		return fmt.Errorf("set weight for %q in %s: %w", name, key, core.ErrTenantNotFound)
	}
	l = l.Clone()
	t.Weight = weight
	l.Tenants[name] = t
	if err := s.store.PutMonth(ctx, l); err != nil {
		return fmt.Errorf("put month %s: %w", key, err)
	}
	slog.InfoContext(ctx, "Tenant weight set", "tenant", name, "month", key.String(), "weight", weight)
	return nil
}

// SetTotalRent sets the month's rent sub-total. The month must exist.
func (s *Service) SetTotalRent(ctx context.Context, amount float64, key core.MonthKey) error {
	return s.setCharge(ctx, key, func(l *core.MonthLedger) { l.TotalRent = amount }, amount)
}

// SetTotalUtility sets the month's utility sub-total. The month must exist.
func (s *Service) SetTotalUtility(ctx context.Context, amount float64, key core.MonthKey) error {
	return s.setCharge(ctx, key, func(l *core.MonthLedger) { l.TotalUtility = amount }, amount)
}

func (s *Service) setCharge(ctx context.Context, key core.MonthKey, apply func(*core.MonthLedger), amount float64) error {
	if amount < 0 {
		return core.ErrInvalidAmount
	}
	l, err := s.store.GetMonth(ctx, key)
	if err != nil {
		if errors.Is(err, core.ErrMonthNotFound) {
			return fmt.Errorf("set charge for %s: %w", key, core.ErrMonthNotFound)
		}
		return fmt.Errorf("get month %s: %w", key, err)
	}
	l = l.Clone()
	apply(&l)
	if err := s.store.PutMonth(ctx, l); err != nil {
		return fmt.Errorf("put month %s: %w", key, err)
	}
	slog.InfoContext(ctx, "Month charge set",
		"month", key.String(),
		"total_rent", l.TotalRent,
		"total_utility", l.TotalUtility)
	return nil
}

// MarkPaid flags a tenant as having paid for the month. Both the month
// record and the roster entry must exist; callers that want the
// previous-month fallback retry explicitly on ErrMonthNotFound.
func (s *Service) MarkPaid(ctx context.Context, name string, key core.MonthKey) error {
	l, err := s.store.GetMonth(ctx, key)
	if err != nil {
		if errors.Is(err, core.ErrMonthNotFound) {
			return fmt.Errorf("mark paid for %s: %w", key, core.ErrMonthNotFound)
		}
		return fmt.Errorf("get month %s: %w", key, err)
	}
	t, ok := l.Tenants[name]
	if !ok {
		return fmt.Errorf("mark paid for %q in %s: %w", name, key, core.ErrTenantNotFound)
	}
	l = l.Clone()
	t.Paid = true
	l.Tenants[name] = t
	if err := s.store.PutMonth(ctx, l); err != nil {
		return fmt.Errorf("put month %s: %w", key, err)
	}
	slog.InfoContext(ctx, "Tenant marked paid", "tenant", name, "month", key.String())
	return nil
}

// AmountsOwed returns the prorated amounts owed for the given month. A month
// with no record yet means nobody owes anything: the result is empty rather
// than an error, so "show" stays usable before the first bill is posted.
func (s *Service) AmountsOwed(ctx context.Context, key core.MonthKey) (map[string]float64, error) {
	l, err := s.store.GetMonth(ctx, key)
	if errors.Is(err, core.ErrMonthNotFound) {
		return map[string]float64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get month %s: %w", key, err)
	}
	return AmountsOwed(l), nil
}
