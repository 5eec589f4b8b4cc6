package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"rentbot/internal/core"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "rentbot.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	key := core.MonthKey{Year: 2024, Month: 3}
	l := core.NewMonthLedger(key)
	l.TotalRent = 1697
	l.TotalUtility = 413.18
	l.Tenants["Wittenmyer"] = core.Tenant{Name: "Wittenmyer", Weight: 2}
	l.Tenants["David"] = core.Tenant{Name: "David", Weight: 1, Paid: true}

	if err := repo.PutMonth(ctx, l); err != nil {
		t.Fatalf("PutMonth() error = %v", err)
	}

	got, err := repo.GetMonth(ctx, key)
	if err != nil {
		t.Fatalf("GetMonth() error = %v", err)
	}
	if got.TotalRent != 1697 || got.TotalUtility != 413.18 {
		t.Errorf("charges = %v/%v, want 1697/413.18", got.TotalRent, got.TotalUtility)
	}
	if len(got.Tenants) != 2 {
		t.Fatalf("len(Tenants) = %d, want 2", len(got.Tenants))
	}
	if !got.Tenants["David"].Paid {
		t.Error("David should be marked paid")
	}
	if got.Tenants["Wittenmyer"].Weight != 2 {
		t.Errorf("Wittenmyer weight = %v, want 2", got.Tenants["Wittenmyer"].Weight)
	}
}

func TestRepositoryGetMonthNotFound(t *testing.T) {
	repo := openTestRepo(t)

	_, err := repo.GetMonth(context.Background(), core.MonthKey{Year: 2024, Month: 1})
	if !errors.Is(err, core.ErrMonthNotFound) {
		t.Errorf("GetMonth() error = %v, want ErrMonthNotFound", err)
	}
}

func TestRepositoryPutMonthReplacesRoster(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	key := core.MonthKey{Year: 2024, Month: 5}
	l := core.NewMonthLedger(key)
	l.Tenants["Alice"] = core.Tenant{Name: "Alice", Weight: 4}
	l.Tenants["Bob"] = core.Tenant{Name: "Bob", Weight: 4}
	if err := repo.PutMonth(ctx, l); err != nil {
		t.Fatalf("PutMonth() error = %v", err)
	}

	delete(l.Tenants, "Bob")
	l.TotalRent = 900
	if err := repo.PutMonth(ctx, l); err != nil {
		t.Fatalf("PutMonth() second write error = %v", err)
	}

	got, err := repo.GetMonth(ctx, key)
	if err != nil {
		t.Fatalf("GetMonth() error = %v", err)
	}
	if len(got.Tenants) != 1 {
		t.Errorf("len(Tenants) = %d, want 1 after roster shrink", len(got.Tenants))
	}
	if _, ok := got.Tenants["Bob"]; ok {
		t.Error("Bob should be gone after roster replace")
	}
	if got.TotalRent != 900 {
		t.Errorf("TotalRent = %v, want 900", got.TotalRent)
	}
}

func TestRepositoryLatestMonthBefore(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	for _, key := range []core.MonthKey{
		{Year: 2023, Month: 11},
		{Year: 2024, Month: 2},
		{Year: 2024, Month: 6},
	} {
		l := core.NewMonthLedger(key)
		l.Tenants["Alice"] = core.Tenant{Name: "Alice", Weight: 4}
		if err := repo.PutMonth(ctx, l); err != nil {
			t.Fatalf("PutMonth(%s) error = %v", key, err)
		}
	}

	tests := []struct {
		name string
		key  core.MonthKey
		want core.MonthKey
		err  error
	}{
		{name: "skips gap", key: core.MonthKey{Year: 2024, Month: 6}, want: core.MonthKey{Year: 2024, Month: 2}},
		{name: "crosses year", key: core.MonthKey{Year: 2024, Month: 1}, want: core.MonthKey{Year: 2023, Month: 11}},
		{name: "nothing before", key: core.MonthKey{Year: 2023, Month: 1}, err: core.ErrMonthNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.LatestMonthBefore(ctx, tt.key)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("LatestMonthBefore() error = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LatestMonthBefore() error = %v", err)
			}
			if got.Month != tt.want {
				t.Errorf("LatestMonthBefore() month = %s, want %s", got.Month, tt.want)
			}
		})
	}
}

func TestRepositoryPutMonthInvalidKey(t *testing.T) {
	repo := openTestRepo(t)

	l := core.NewMonthLedger(core.MonthKey{Year: 2024, Month: 13})
	if err := repo.PutMonth(context.Background(), l); err == nil {
		t.Error("PutMonth() with invalid key should fail")
	}
}
