package networth

import (
	"errors"

	"networth/date"
)

// ErrSymbolUnknown reports that the market data source does not know
// the requested symbol at all. Callers should stop asking for it: the
// condition is permanent within a run.
var ErrSymbolUnknown = errors.New("symbol unknown to provider")

// ErrProviderTransient reports a provider failure worth retrying:
// rate limiting, timeouts, upstream 5xx. Wrapped errors carry the
// detail; match with errors.Is.
var ErrProviderTransient = errors.New("transient provider failure")

// Provider fetches daily closing prices from a market data source, in
// the symbol's native quote currency.
type Provider interface {
	// DailyClose returns the close for symbol on day. Days without a
	// quote (weekends, holidays) return ErrPriceUnavailable.
	DailyClose(symbol string, day date.Date) (float64, error)

	// DailySeries returns all available closes for symbol across span.
	// Missing days are simply absent from the history.
	DailySeries(symbol string, span date.Range) (date.History[float64], error)
}
