package networth

import (
	"errors"
	"fmt"

	"networth/date"
)

// ErrPriceUnavailable reports that no usable close exists for a symbol
// on or before a given day, even after carrying earlier closes forward.
var ErrPriceUnavailable = errors.New("price unavailable")

// PriceResolver resolves a daily close for a symbol, in the symbol's
// native quote currency. Implementations carry the most recent earlier
// close forward when the exact day has no quote; exact reports whether
// the returned close is the day's own.
type PriceResolver interface {
	ResolveClose(symbol string, day date.Date) (close float64, exact bool, err error)
}

// RateTable converts between currencies through fixed USD-relative
// rates: the value of each entry is units of that currency per USD.
type RateTable map[string]float64

// DefaultRates is the built-in conversion table used when the
// configuration does not override it.
var DefaultRates = RateTable{
	"USD": 1.0,
	"HKD": 7.8,
	"MOP": 8.03,
	"CNY": 7.2,
}

// Convert converts m into the target currency. Zero-currency money
// (the weak zero value) converts at par; a currency missing from the
// table is an error.
func (r RateTable) Convert(m Money, target string) (Money, error) {
	from := m.Currency()
	if from == "" || from == target {
		return M(m.InexactFloat(), target), nil
	}
	fromRate, ok := r[from]
	if !ok || fromRate == 0 {
		return M(m.InexactFloat(), target), fmt.Errorf("no conversion rate for %s", from)
	}
	toRate, ok := r[target]
	if !ok || toRate == 0 {
		return M(m.InexactFloat(), target), fmt.Errorf("no conversion rate for %s", target)
	}
	return M(m.InexactFloat()/fromRate*toRate, target), nil
}

// Gap marks a day where a held symbol had no exact close and the
// valuation fell back to a carried-forward or zero price.
type Gap struct {
	Day    date.Date
	Symbol string
}

func (g Gap) String() string { return fmt.Sprintf("%s: no close for %s", g.Day, g.Symbol) }

// SnapshotRow is one valued day of the portfolio, every total in the
// settlement currency.
type SnapshotRow struct {
	Day           date.Date
	Currency      string // settlement currency of all the totals
	TotalEquity   Money  // cash + market
	TotalCash     Money
	TotalMarket   Money
	TotalInvested Money // net external deposits minus withdrawals
	HoldingsCount int   // distinct (account, asset) pairs with non-zero quantity
}

// Valuator prices a replayed day state and sums it into a single
// settlement-currency row.
type Valuator struct {
	ledger     *Ledger
	prices     PriceResolver
	rates      RateTable
	settlement string
}

// NewValuator builds a Valuator. A nil rates table falls back to
// DefaultRates.
func NewValuator(ledger *Ledger, prices PriceResolver, rates RateTable, settlement string) *Valuator {
	if rates == nil {
		rates = DefaultRates
	}
	return &Valuator{ledger: ledger, prices: prices, rates: rates, settlement: settlement}
}

// ValueDay prices every open position of state at its day's close and
// returns the day's snapshot row plus the pricing gaps hit on the way.
// A symbol with no price history at all values at its cost basis and
// gaps the day; the row is still produced.
func (v *Valuator) ValueDay(state *DayState) (SnapshotRow, []Gap, error) {
	row := SnapshotRow{
		Day:           state.Day,
		Currency:      v.settlement,
		TotalCash:     M(0, v.settlement),
		TotalMarket:   M(0, v.settlement),
		TotalInvested: M(0, v.settlement),
	}
	var gaps []Gap

	for id, balance := range state.Cash {
		acc, ok := v.ledger.Account(id)
		if !ok {
			continue
		}
		converted, err := v.rates.Convert(balance, v.settlement)
		if err != nil {
			return SnapshotRow{}, nil, fmt.Errorf("cash of account %q: %w", acc.Name, err)
		}
		row.TotalCash = row.TotalCash.Add(converted)
	}

	for key, pos := range state.Holdings {
		if pos.Quantity.IsZero() || pos.Quantity.IsNegative() {
			continue
		}
		row.HoldingsCount++
		asset, ok := v.ledger.Asset(key.AssetID)
		if !ok {
			continue
		}
		close, exact, err := v.prices.ResolveClose(asset.Symbol, state.Day)
		var value Money
		switch {
		case errors.Is(err, ErrPriceUnavailable):
			// No close at all, not even carried forward: value the
			// position at what it cost. The basis keeps the currency it
			// accrued in, the account's, so it converts correctly.
			gaps = append(gaps, Gap{Day: state.Day, Symbol: asset.Symbol})
			value = pos.CostBasis
		case err != nil:
			return SnapshotRow{}, nil, fmt.Errorf("pricing %s on %s: %w", asset.Symbol, state.Day, err)
		default:
			if !exact {
				gaps = append(gaps, Gap{Day: state.Day, Symbol: asset.Symbol})
			}
			value = M(close, asset.Currency).Mul(pos.Quantity)
		}
		converted, err := v.rates.Convert(value, v.settlement)
		if err != nil {
			return SnapshotRow{}, nil, fmt.Errorf("valuing %s: %w", asset.Symbol, err)
		}
		row.TotalMarket = row.TotalMarket.Add(converted)
	}

	for currency, invested := range state.Invested {
		converted, err := v.rates.Convert(invested, v.settlement)
		if err != nil {
			return SnapshotRow{}, nil, fmt.Errorf("invested total in %s: %w", currency, err)
		}
		row.TotalInvested = row.TotalInvested.Add(converted)
	}

	row.TotalEquity = row.TotalCash.Add(row.TotalMarket)
	return row, gaps, nil
}
