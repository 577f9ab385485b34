package networth

import (
	"context"
	"errors"
	"log"
	"time"
)

// Daemon advances the snapshot series on a fixed interval: the same
// incremental rebuild a manual trigger would run, just on a clock.
type Daemon struct {
	Rebuilder *Rebuilder
	Interval  time.Duration
}

// Run advances once immediately, then on every interval tick until the
// context is cancelled. Rebuild failures are logged and the daemon
// keeps ticking, except a concurrent manual rebuild which is simply
// yielded to.
func (d *Daemon) Run(ctx context.Context) error {
	d.advance()
	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.advance()
		}
	}
}

func (d *Daemon) advance() {
	summary, err := d.Rebuilder.Advance()
	if errors.Is(err, ErrRebuildInProgress) {
		log.Printf("skipping scheduled rebuild: %v", err)
		return
	}
	if err != nil {
		log.Printf("scheduled rebuild failed: %v", err)
		return
	}
	log.Printf("%s", summary)
}
