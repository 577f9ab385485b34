package store

import (
	"fmt"
	"time"

	"networth"
)

// staleLockAge is how old a held lock must be before a new rebuild may
// take it over. Rebuilds finish in seconds; an hour-old lock belongs to
// a crashed process.
const staleLockAge = time.Hour

// AcquireRebuildLock takes the exclusive rebuild lock. A second caller
// gets networth.ErrRebuildInProgress and must not rebuild; the holder
// releases by calling the returned func exactly once.
//
// The lock is a single flag row flipped with a guarded UPDATE, so the
// compare-and-set is atomic even across processes sharing the database
// file.
func (s *Store) AcquireRebuildLock() (release func(), err error) {
	now := time.Now().UTC()
	stale := now.Add(-staleLockAge)
	res, err := s.db.Exec(`
		UPDATE rebuild_lock SET locked = 1, locked_at = ?
		WHERE id = 1 AND (locked = 0 OR locked_at < ?)`,
		now.Format(time.RFC3339), stale.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("acquire rebuild lock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("acquire rebuild lock: %w", err)
	}
	if n == 0 {
		return nil, networth.ErrRebuildInProgress
	}
	return func() {
		s.db.Exec(`UPDATE rebuild_lock SET locked = 0, locked_at = '' WHERE id = 1`)
	}, nil
}
