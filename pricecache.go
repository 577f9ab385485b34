package networth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"networth/date"
)

// walkbackDays bounds how far before a requested day the cache looks
// for a close, covering weekends and holiday bridges.
const walkbackDays = 7

// fetchAttempts and fetchBackoff bound the retry budget for transient
// provider failures; after the budget the failure demotes to a missing
// price.
const (
	fetchAttempts = 3
	fetchBackoff  = 2 * time.Second
)

// PriceStore is the persistent side of the price cache: an append-only
// (symbol, day) → close table.
type PriceStore interface {
	// CloseOn returns the stored close for symbol on exactly day.
	CloseOn(symbol string, day date.Date) (float64, bool, error)

	// LatestCloseOn returns the most recent stored close for symbol on
	// or before day, with its actual day.
	LatestCloseOn(symbol string, day date.Date) (float64, date.Date, bool, error)

	// SaveCloses upserts a series of closes for symbol.
	SaveCloses(symbol string, series date.History[float64]) error
}

// PriceCache resolves daily closes read-through: the persistent store
// first, then the provider, writing fetched closes back so the same
// (symbol, day) is never fetched twice across rebuilds.
//
// A cache instance is scoped to one run and is not safe for concurrent
// use; the rebuild lock guarantees a single writer anyway.
type PriceCache struct {
	store    PriceStore
	provider Provider

	unknown map[string]bool      // symbols the provider rejected this run
	covered map[string]date.Date // symbols fetched this run, through that day

	sleep func(time.Duration) // swapped out in tests
}

// NewPriceCache creates a cache over the given store and provider.
func NewPriceCache(store PriceStore, provider Provider) *PriceCache {
	return &PriceCache{
		store:    store,
		provider: provider,
		unknown:  make(map[string]bool),
		covered:  make(map[string]date.Date),
		sleep:    time.Sleep,
	}
}

// ResolveClose implements PriceResolver.
//
// Resolution order: exact stored close, then a provider fetch covering
// the walkback window, then the last stored close carried forward
// (exact=false, a valuation gap). When nothing at all is available the
// error is ErrPriceUnavailable and the caller falls back to cost basis.
func (c *PriceCache) ResolveClose(symbol string, day date.Date) (float64, bool, error) {
	if close, ok, err := c.store.CloseOn(symbol, day); err != nil {
		return 0, false, fmt.Errorf("reading cached close: %w", err)
	} else if ok {
		return close, true, nil
	}

	if c.shouldFetch(symbol, day) {
		if err := c.fetchWindow(symbol, day); err != nil {
			return 0, false, err
		}
		// The fetch may have landed an exact close.
		if close, ok, err := c.store.CloseOn(symbol, day); err != nil {
			return 0, false, fmt.Errorf("reading cached close: %w", err)
		} else if ok {
			return close, true, nil
		}
	}

	// Carry the last known close forward, bounded by the walkback.
	close, on, ok, err := c.store.LatestCloseOn(symbol, day)
	if err != nil {
		return 0, false, fmt.Errorf("reading cached close: %w", err)
	}
	if ok && day.Sub(on) <= walkbackDays {
		// Pin the carried close under the requested day so the next
		// rebuild resolves it without asking the provider again.
		var pin date.History[float64]
		pin.Append(day, close)
		if err := c.store.SaveCloses(symbol, pin); err != nil {
			return 0, false, fmt.Errorf("writing back close: %w", err)
		}
		return close, false, nil
	}
	if ok {
		return close, false, nil
	}
	return 0, false, fmt.Errorf("%s on %s: %w", symbol, day, ErrPriceUnavailable)
}

// shouldFetch reports whether the provider is worth asking for symbol
// around day: not if it already rejected the symbol this run, and not
// if a fetch this run already covered the day.
func (c *PriceCache) shouldFetch(symbol string, day date.Date) bool {
	if c.unknown[symbol] {
		return false
	}
	if through, ok := c.covered[symbol]; ok && !through.Before(day) {
		return false
	}
	return true
}

// fetchWindow asks the provider for the walkback window ending at day
// and writes whatever comes back to the store. Unknown symbols are
// negative-cached for the run; transient failures exhaust the retry
// budget and then demote to a missing price.
func (c *PriceCache) fetchWindow(symbol string, day date.Date) error {
	span := date.NewRange(day.Add(-walkbackDays), day)
	series, err := c.fetchWithRetry(symbol, span)
	if err != nil {
		switch {
		case errors.Is(err, ErrSymbolUnknown):
			log.Printf("provider does not know %s, skipping it for this run", symbol)
			c.unknown[symbol] = true
			return nil
		case errors.Is(err, ErrProviderTransient):
			log.Printf("giving up on %s after %d attempts: %v", symbol, fetchAttempts, err)
			c.covered[symbol] = day
			return nil
		default:
			return err
		}
	}
	c.covered[symbol] = day
	if series.Len() == 0 {
		return nil
	}
	if err := c.store.SaveCloses(symbol, series); err != nil {
		return fmt.Errorf("writing back closes for %s: %w", symbol, err)
	}
	return nil
}

// fetchWithRetry calls the provider, retrying transient failures with a
// doubling backoff.
func (c *PriceCache) fetchWithRetry(symbol string, span date.Range) (date.History[float64], error) {
	var series date.History[float64]
	var err error
	backoff := fetchBackoff
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		series, err = c.provider.DailySeries(symbol, span)
		if err == nil || !errors.Is(err, ErrProviderTransient) {
			return series, err
		}
		if attempt < fetchAttempts {
			log.Printf("transient failure fetching %s (attempt %d/%d), retrying in %s", symbol, attempt, fetchAttempts, backoff)
			c.sleep(backoff)
			backoff *= 2
		}
	}
	return series, err
}

// Backfill fetches the full series for symbol across span in one
// provider call and bulk-inserts it, so reconstructing years of history
// does not cost one call per day. Returns the number of closes stored.
func (c *PriceCache) Backfill(symbol string, span date.Range) (int, error) {
	if c.unknown[symbol] {
		return 0, nil
	}
	series, err := c.fetchWithRetry(symbol, span)
	if err != nil {
		if errors.Is(err, ErrSymbolUnknown) {
			log.Printf("provider does not know %s, skipping it for this run", symbol)
			c.unknown[symbol] = true
			return 0, nil
		}
		if errors.Is(err, ErrProviderTransient) {
			log.Printf("giving up on %s after %d attempts: %v", symbol, fetchAttempts, err)
			return 0, nil
		}
		return 0, err
	}
	c.covered[symbol] = span.To
	if series.Len() == 0 {
		return 0, nil
	}
	if err := c.store.SaveCloses(symbol, series); err != nil {
		return 0, fmt.Errorf("writing back closes for %s: %w", symbol, err)
	}
	return series.Len(), nil
}
