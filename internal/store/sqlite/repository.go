// Package sqlite implements the ledger store on a local SQLite database, for
// deployments that want durable state without a Google spreadsheet.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"rentbot/internal/core"
	"rentbot/internal/ledger"
)

type Repository struct {
	db *sql.DB
}

var _ ledger.Store = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetMonth implements ledger.Store.
func (r *Repository) GetMonth(ctx context.Context, key core.MonthKey) (core.MonthLedger, error) {
	l := core.NewMonthLedger(key)

	row := r.db.QueryRowContext(ctx,
		`SELECT total_rent, total_utility FROM months WHERE year = ? AND month = ?`,
		key.Year, key.Month)
	if err := row.Scan(&l.TotalRent, &l.TotalUtility); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.MonthLedger{}, core.ErrMonthNotFound
		}
		return core.MonthLedger{}, fmt.Errorf("select month %s: %w", key, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name, weight, paid FROM month_tenants WHERE year = ? AND month = ?`,
		key.Year, key.Month)
	if err != nil {
		return core.MonthLedger{}, fmt.Errorf("select tenants for %s: %w", key, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t core.Tenant
		if err := rows.Scan(&t.Name, &t.Weight, &t.Paid); err != nil {
			return core.MonthLedger{}, fmt.Errorf("scan tenant for %s: %w", key, err)
		}
		l.Tenants[t.Name] = t
	}
	if err := rows.Err(); err != nil {
		return core.MonthLedger{}, fmt.Errorf("iterate tenants for %s: %w", key, err)
	}
	return l, nil
}

// PutMonth implements ledger.Store with a full snapshot replace inside one
// transaction.
func (r *Repository) PutMonth(ctx context.Context, l core.MonthLedger) error {
	if err := l.Month.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO months (year, month, total_rent, total_utility)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (year, month) DO UPDATE SET
		   total_rent = excluded.total_rent,
		   total_utility = excluded.total_utility,
		   updated_at = CURRENT_TIMESTAMP`,
		l.Month.Year, l.Month.Month, l.TotalRent, l.TotalUtility)
	if err != nil {
		return fmt.Errorf("upsert month %s: %w", l.Month, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM month_tenants WHERE year = ? AND month = ?`,
		l.Month.Year, l.Month.Month); err != nil {
		return fmt.Errorf("clear roster for %s: %w", l.Month, err)
	}
	for _, t := range l.Tenants {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO month_tenants (year, month, name, weight, paid) VALUES (?, ?, ?, ?, ?)`,
			l.Month.Year, l.Month.Month, t.Name, t.Weight, t.Paid); err != nil {
			return fmt.Errorf("insert tenant %q for %s: %w", t.Name, l.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit month %s: %w", l.Month, err)
	}

	slog.InfoContext(ctx, "Month saved to SQLite",
		"month", l.Month.String(),
		"tenants", len(l.Tenants),
		"total_rent", l.TotalRent,
		"total_utility", l.TotalUtility)
	return nil
}

// LatestMonthBefore implements ledger.Store.
func (r *Repository) LatestMonthBefore(ctx context.Context, key core.MonthKey) (core.MonthLedger, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT year, month FROM months
		 WHERE (year < ?) OR (year = ? AND month < ?)
		 ORDER BY year DESC, month DESC
		 LIMIT 1`,
		key.Year, key.Year, key.Month)

	var prior core.MonthKey
	if err := row.Scan(&prior.Year, &prior.Month); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.MonthLedger{}, core.ErrMonthNotFound
		}
		return core.MonthLedger{}, fmt.Errorf("select latest month before %s: %w", key, err)
	}
	return r.GetMonth(ctx, prior)
}
