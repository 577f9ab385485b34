package networth

import (
	"context"
	"testing"
	"time"

	"networth/date"
)

func TestDaemonAdvancesUntilCancelled(t *testing.T) {
	txs := []Transaction{deposit(t, "01", date.New(2024, 1, 1), 1000)}
	snapshots := newMemSnapshotStore()
	rebuilder := testRebuilder(txs, snapshots, date.New(2024, 1, 5))

	daemon := &Daemon{Rebuilder: rebuilder, Interval: 5 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := daemon.Run(ctx)
	if err != context.DeadlineExceeded {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
	// The immediate first advance alone guarantees a full series.
	if len(snapshots.rows) != 5 {
		t.Errorf("series has %d rows, want 5", len(snapshots.rows))
	}
	if snapshots.replaces < 2 {
		t.Errorf("daemon replaced %d times, want at least the first advance plus one tick", snapshots.replaces)
	}
}
