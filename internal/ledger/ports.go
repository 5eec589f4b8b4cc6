package ledger

import (
	"context"

	"rentbot/internal/core"
)

// Store is the outbound port to the durable ledger table.
//
// Implementations return core.ErrMonthNotFound (possibly wrapped) when a
// month has no record, and are expected to serialize writers; the mutator
// does plain read-modify-write on top of this contract.
type Store interface {
	// GetMonth returns the full snapshot for one month.
	GetMonth(ctx context.Context, key core.MonthKey) (core.MonthLedger, error)

	// PutMonth replaces the stored snapshot for the ledger's month.
	PutMonth(ctx context.Context, ledger core.MonthLedger) error

	// LatestMonthBefore returns the most recent month strictly earlier than
	// key that has a record, for roster rollover.
	LatestMonthBefore(ctx context.Context, key core.MonthKey) (core.MonthLedger, error)
}
