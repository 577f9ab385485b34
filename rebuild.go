package networth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"networth/date"
)

// ErrRebuildInProgress reports that another rebuild holds the exclusive
// lock. Fatal for the new invocation only; the in-flight rebuild is
// unaffected.
var ErrRebuildInProgress = errors.New("a rebuild is already in progress")

// LedgerStore loads the replay inputs.
type LedgerStore interface {
	Accounts() ([]Account, error)
	Assets() ([]Asset, error)
	Transactions() ([]Transaction, error)
}

// SnapshotStore persists the valued series. ReplaceSnapshots must be
// atomic: delete every row in span and insert rows all-or-nothing, so a
// failed rebuild never leaves a half-overwritten series.
type SnapshotStore interface {
	ReplaceSnapshots(span date.Range, rows []SnapshotRow) error
	LastSnapshotDay() (date.Date, bool, error)
}

// Locker grants the exclusive rebuild lock. Acquire returns
// ErrRebuildInProgress when another holder is active; the returned
// release func must be called exactly once.
type Locker interface {
	AcquireRebuildLock() (release func(), err error)
}

// PriceSource is what a rebuild needs from the price cache: per-day
// resolution plus bulk backfill.
type PriceSource interface {
	PriceResolver
	Backfill(symbol string, span date.Range) (int, error)
}

// RebuildSummary reports what a rebuild did. Gaps and Warnings are
// accumulated, never thrown: a rebuild fails hard only on persistence
// or lock conflicts.
type RebuildSummary struct {
	Span     date.Range
	Days     int
	Gaps     int
	Warnings []Warning
	Elapsed  time.Duration
}

func (s RebuildSummary) String() string {
	return fmt.Sprintf("rebuilt %s: %d days, %d gaps, %d warnings in %s",
		s.Span, s.Days, s.Gaps, len(s.Warnings), s.Elapsed.Round(time.Millisecond))
}

// Rebuilder reconstructs the daily portfolio series: replay the ledger
// day by day, value each day through the price cache, and atomically
// replace the snapshot rows in the rebuilt range.
type Rebuilder struct {
	Ledger     LedgerStore
	Snapshots  SnapshotStore
	Lock       Locker
	Prices     PriceSource
	Rates      RateTable
	Settlement string

	// Today is the rebuild horizon; nil means date.Today.
	Today func() date.Date
}

func (r *Rebuilder) today() date.Date {
	if r.Today != nil {
		return r.Today()
	}
	return date.Today()
}

// Rebuild reconstructs snapshots from the given day through today. A
// zero from falls back to the earliest account inception, then to the
// oldest transaction. Replaying the same ledger twice produces the same
// rows: the whole operation is idempotent.
func (r *Rebuilder) Rebuild(from date.Date) (RebuildSummary, error) {
	release, err := r.Lock.AcquireRebuildLock()
	if err != nil {
		return RebuildSummary{}, err
	}
	defer release()

	start := time.Now()

	accounts, err := r.Ledger.Accounts()
	if err != nil {
		return RebuildSummary{}, fmt.Errorf("loading accounts: %w", err)
	}
	assets, err := r.Ledger.Assets()
	if err != nil {
		return RebuildSummary{}, fmt.Errorf("loading assets: %w", err)
	}
	transactions, err := r.Ledger.Transactions()
	if err != nil {
		return RebuildSummary{}, fmt.Errorf("loading transactions: %w", err)
	}
	ledger := NewLedger(accounts, assets, transactions)

	if from.IsZero() {
		from = r.defaultStart(ledger)
	}
	// No snapshot may predate the earliest account: an explicit start
	// before every inception is clamped up to it.
	if inception, ok := ledger.EarliestInception(); ok && from.Before(inception) {
		from = inception
	}
	today := r.today()
	if from.IsZero() || from.After(today) {
		// Nothing to rebuild: empty books, or a start in the future.
		return RebuildSummary{Elapsed: time.Since(start)}, nil
	}
	span := date.NewRange(from, today)

	// Bulk-load prices for every known asset up front so replay days
	// resolve from the store instead of one provider call per day.
	for asset := range ledger.Assets() {
		if _, err := r.Prices.Backfill(asset.Symbol, span); err != nil {
			return RebuildSummary{}, fmt.Errorf("backfilling %s: %w", asset.Symbol, err)
		}
	}

	replay := NewReplay(ledger)
	valuator := NewValuator(ledger, r.Prices, r.Rates, r.Settlement)

	rows := make([]SnapshotRow, 0, span.Len())
	gaps := 0
	for state := range replay.Days(span) {
		row, dayGaps, err := valuator.ValueDay(state)
		if err != nil {
			return RebuildSummary{}, fmt.Errorf("valuing %s: %w", state.Day, err)
		}
		gaps += len(dayGaps)
		rows = append(rows, row)
	}

	if err := r.Snapshots.ReplaceSnapshots(span, rows); err != nil {
		return RebuildSummary{}, fmt.Errorf("writing snapshots: %w", err)
	}

	summary := RebuildSummary{
		Span:     span,
		Days:     len(rows),
		Gaps:     gaps,
		Warnings: replay.Warnings(),
		Elapsed:  time.Since(start),
	}
	for _, w := range summary.Warnings {
		log.Printf("warning: %s", w)
	}
	return summary, nil
}

// Advance rebuilds incrementally: from the day after the last snapshot
// through today, or the full history when no snapshot exists yet. This
// is the entry point the daily scheduler calls.
func (r *Rebuilder) Advance() (RebuildSummary, error) {
	last, ok, err := r.Snapshots.LastSnapshotDay()
	if err != nil {
		return RebuildSummary{}, fmt.Errorf("reading last snapshot: %w", err)
	}
	if !ok {
		return r.Rebuild(date.Date{})
	}
	// Re-do the last snapshotted day too: it may have been valued on a
	// carried-forward price that the provider has since published.
	return r.Rebuild(last)
}

// defaultStart picks the first day of the series: the earliest account
// inception, or failing that the oldest transaction.
func (r *Rebuilder) defaultStart(ledger *Ledger) date.Date {
	if d, ok := ledger.EarliestInception(); ok {
		return d
	}
	if d, ok := ledger.OldestTransactionDate(); ok {
		return d
	}
	return date.Date{}
}
