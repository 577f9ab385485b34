package networth

import (
	"errors"
	"reflect"
	"testing"

	"networth/date"
)

// memLedgerStore serves fixed slices.
type memLedgerStore struct {
	accounts []Account
	assets   []Asset
	txs      []Transaction
}

func (s *memLedgerStore) Accounts() ([]Account, error)         { return s.accounts, nil }
func (s *memLedgerStore) Assets() ([]Asset, error)             { return s.assets, nil }
func (s *memLedgerStore) Transactions() ([]Transaction, error) { return s.txs, nil }

// memSnapshotStore keeps rows keyed by day and mimics the atomic
// delete-then-insert.
type memSnapshotStore struct {
	rows     map[date.Date]SnapshotRow
	replaces int
}

func newMemSnapshotStore() *memSnapshotStore {
	return &memSnapshotStore{rows: make(map[date.Date]SnapshotRow)}
}

func (s *memSnapshotStore) ReplaceSnapshots(span date.Range, rows []SnapshotRow) error {
	s.replaces++
	for day := range span.Days() {
		delete(s.rows, day)
	}
	for _, row := range rows {
		s.rows[row.Day] = row
	}
	return nil
}

func (s *memSnapshotStore) LastSnapshotDay() (date.Date, bool, error) {
	var last date.Date
	for day := range s.rows {
		if day.After(last) {
			last = day
		}
	}
	return last, !last.IsZero(), nil
}

// memLocker is an in-process Locker.
type memLocker struct{ held bool }

func (l *memLocker) AcquireRebuildLock() (func(), error) {
	if l.held {
		return nil, ErrRebuildInProgress
	}
	l.held = true
	return func() { l.held = false }, nil
}

func testRebuilder(txs []Transaction, snapshots *memSnapshotStore, today date.Date) *Rebuilder {
	store := newMemPriceStore()
	var series date.History[float64]
	for day := range date.NewRange(date.New(2024, 1, 1), today).Days() {
		series.Append(day, 100)
	}
	store.SaveCloses("X", series)

	return &Rebuilder{
		Ledger:     &memLedgerStore{accounts: []Account{testAccount}, assets: []Asset{testAsset}, txs: txs},
		Snapshots:  snapshots,
		Lock:       &memLocker{},
		Prices:     NewPriceCache(store, &scriptedProvider{}),
		Settlement: "USD",
		Today:      func() date.Date { return today },
	}
}

func TestRebuildScenario(t *testing.T) {
	txs := []Transaction{
		deposit(t, "01", date.New(2024, 1, 1), 10000),
		trade(t, "02", TxBuy, date.New(2024, 1, 5), 10, 100, 0),
	}
	snapshots := newMemSnapshotStore()
	rebuilder := testRebuilder(txs, snapshots, date.New(2024, 1, 10))

	summary, err := rebuilder.Rebuild(date.New(2024, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if summary.Days != 10 {
		t.Errorf("days = %d, want 10", summary.Days)
	}
	if summary.Gaps != 0 {
		t.Errorf("gaps = %d, want 0", summary.Gaps)
	}

	for day, row := range snapshots.rows {
		if !row.TotalEquity.Equal(M(10000, "USD")) {
			t.Errorf("%s: equity = %s, want $10,000.00", day, row.TotalEquity)
		}
	}
	if got := snapshots.rows[date.New(2024, 1, 7)]; !got.TotalCash.Equal(M(9000, "USD")) || !got.TotalMarket.Equal(M(1000, "USD")) {
		t.Errorf("jan 7: cash/market = %s/%s, want $9,000.00/$1,000.00", got.TotalCash, got.TotalMarket)
	}
}

func TestRebuildIdempotence(t *testing.T) {
	txs := []Transaction{
		deposit(t, "01", date.New(2024, 1, 1), 10000),
		trade(t, "02", TxBuy, date.New(2024, 1, 5), 10, 100, 0),
		trade(t, "03", TxSell, date.New(2024, 1, 8), 10, 110, 0),
	}
	snapshots := newMemSnapshotStore()
	rebuilder := testRebuilder(txs, snapshots, date.New(2024, 1, 10))

	if _, err := rebuilder.Rebuild(date.New(2024, 1, 1)); err != nil {
		t.Fatal(err)
	}
	first := make(map[date.Date]SnapshotRow, len(snapshots.rows))
	for day, row := range snapshots.rows {
		first[day] = row
	}

	if _, err := rebuilder.Rebuild(date.New(2024, 1, 1)); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, snapshots.rows) {
		t.Error("two identical rebuilds produced different rows")
	}
	if snapshots.replaces != 2 {
		t.Errorf("replaces = %d, want 2", snapshots.replaces)
	}
}

func TestRebuildAfterDeletingTrade(t *testing.T) {
	// With the buy deleted, a full rebuild must reproduce the cash-only
	// series exactly, as if the trade never happened.
	cashOnly := []Transaction{deposit(t, "01", date.New(2024, 1, 1), 10000)}
	withTrade := append(cashOnly[:1:1], trade(t, "02", TxBuy, date.New(2024, 1, 5), 10, 100, 0))

	wantStore := newMemSnapshotStore()
	if _, err := testRebuilder(cashOnly, wantStore, date.New(2024, 1, 10)).Rebuild(date.New(2024, 1, 1)); err != nil {
		t.Fatal(err)
	}

	gotStore := newMemSnapshotStore()
	rb := testRebuilder(withTrade, gotStore, date.New(2024, 1, 10))
	if _, err := rb.Rebuild(date.New(2024, 1, 1)); err != nil {
		t.Fatal(err)
	}
	// Delete the buy and rebuild the full range over the same rows.
	rb.Ledger = &memLedgerStore{accounts: []Account{testAccount}, assets: []Asset{testAsset}, txs: cashOnly}
	if _, err := rb.Rebuild(date.New(2024, 1, 1)); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(wantStore.rows, gotStore.rows) {
		t.Error("rebuild after deleting the trade differs from the never-traded series")
	}
}

func TestRebuildConcurrentConflict(t *testing.T) {
	snapshots := newMemSnapshotStore()
	rebuilder := testRebuilder(nil, snapshots, date.New(2024, 1, 10))

	locker := rebuilder.Lock.(*memLocker)
	release, err := locker.AcquireRebuildLock()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := rebuilder.Rebuild(date.New(2024, 1, 1)); !errors.Is(err, ErrRebuildInProgress) {
		t.Fatalf("err = %v, want ErrRebuildInProgress", err)
	}
	if snapshots.replaces != 0 {
		t.Error("conflicting rebuild touched the snapshots")
	}

	// The holder finishes; the next rebuild proceeds.
	release()
	txs := []Transaction{deposit(t, "01", date.New(2024, 1, 1), 10000)}
	rebuilder.Ledger = &memLedgerStore{accounts: []Account{testAccount}, txs: txs}
	if _, err := rebuilder.Rebuild(date.New(2024, 1, 1)); err != nil {
		t.Fatal(err)
	}
}

func TestRebuildDefaultsToInception(t *testing.T) {
	txs := []Transaction{deposit(t, "01", date.New(2024, 1, 3), 500)}
	snapshots := newMemSnapshotStore()
	rebuilder := testRebuilder(txs, snapshots, date.New(2024, 1, 6))

	summary, err := rebuilder.Rebuild(date.Date{})
	if err != nil {
		t.Fatal(err)
	}
	// Inception is 2024-01-01, today 2024-01-06.
	if summary.Days != 6 {
		t.Errorf("days = %d, want 6", summary.Days)
	}
	if _, ok := snapshots.rows[date.New(2024, 1, 1)]; !ok {
		t.Error("series does not start at the account inception")
	}
}

func TestRebuildClampsToInception(t *testing.T) {
	// An explicit start before any account existed must not grow the
	// series: the earliest inception is the first valid snapshot day.
	txs := []Transaction{deposit(t, "01", date.New(2024, 1, 1), 10000)}
	snapshots := newMemSnapshotStore()
	rebuilder := testRebuilder(txs, snapshots, date.New(2024, 1, 3))

	summary, err := rebuilder.Rebuild(date.New(2023, 12, 25))
	if err != nil {
		t.Fatal(err)
	}
	if summary.Days != 3 {
		t.Errorf("days = %d, want 3 (inception through today)", summary.Days)
	}
	if summary.Span.From != (date.New(2024, 1, 1)) {
		t.Errorf("span starts %s, want the 2024-01-01 inception", summary.Span.From)
	}
	if _, ok := snapshots.rows[date.New(2023, 12, 28)]; ok {
		t.Error("snapshot exists for a day before the earliest account inception")
	}
}

func TestAdvance(t *testing.T) {
	txs := []Transaction{deposit(t, "01", date.New(2024, 1, 1), 10000)}
	snapshots := newMemSnapshotStore()
	rebuilder := testRebuilder(txs, snapshots, date.New(2024, 1, 5))

	// First advance: no snapshots yet, full history.
	summary, err := rebuilder.Advance()
	if err != nil {
		t.Fatal(err)
	}
	if summary.Days != 5 {
		t.Errorf("first advance days = %d, want 5", summary.Days)
	}

	// Time passes; the next advance re-does the last day and the new ones.
	rebuilder.Today = func() date.Date { return date.New(2024, 1, 8) }
	summary, err = rebuilder.Advance()
	if err != nil {
		t.Fatal(err)
	}
	if summary.Days != 4 {
		t.Errorf("second advance days = %d, want 4 (jan 5 through jan 8)", summary.Days)
	}
	if len(snapshots.rows) != 8 {
		t.Errorf("series has %d rows, want 8", len(snapshots.rows))
	}
}

func TestRebuildCountsWarnings(t *testing.T) {
	// A transaction before the account inception is flagged, and the
	// rebuild still succeeds.
	txs := []Transaction{deposit(t, "01", date.New(2023, 12, 20), 100)}
	snapshots := newMemSnapshotStore()
	rebuilder := testRebuilder(txs, snapshots, date.New(2024, 1, 3))

	summary, err := rebuilder.Rebuild(date.New(2024, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(summary.Warnings), summary.Warnings)
	}
	// The pre-inception deposit still seeds the opening cash.
	if got := snapshots.rows[date.New(2024, 1, 1)]; !got.TotalCash.Equal(M(100, "USD")) {
		t.Errorf("opening cash = %s, want $100.00", got.TotalCash)
	}
}
