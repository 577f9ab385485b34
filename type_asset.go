package networth

import "strings"

// Asset is a tradable instrument identified by its ticker symbol.
// Assets are created lazily on the first buy of an unseen symbol and
// survive the deletion of any account that traded them.
type Asset struct {
	ID       string
	Symbol   string // unique ticker, e.g. "0700.HK", "AAPL", "BTC-USD"
	Name     string
	Currency string // derived from the symbol suffix at creation, immutable
	Tags     []string
}

// suffixCurrencies maps ticker suffixes to the currency the venue
// quotes in. Symbols without a recognized suffix are quoted in USD.
var suffixCurrencies = map[string]string{
	".HK": "HKD",
	".SS": "CNY",
	".SZ": "CNY",
	".MO": "MOP",
}

// CurrencyOfSymbol derives the quote currency from a ticker symbol.
// The asset's native currency is authoritative for trade valuation; the
// settlement currency only enters when totals are summed.
func CurrencyOfSymbol(symbol string) string {
	if i := strings.LastIndex(symbol, "."); i >= 0 {
		if cur, ok := suffixCurrencies[symbol[i:]]; ok {
			return cur
		}
	}
	// Crypto pairs like "BTC-USD" spell the quote currency out.
	if i := strings.LastIndex(symbol, "-"); i >= 0 && len(symbol)-i == 4 {
		return symbol[i+1:]
	}
	return "USD"
}

// NewAsset builds an Asset with its currency derived from the symbol.
func NewAsset(id, symbol, name string) Asset {
	return Asset{
		ID:       id,
		Symbol:   symbol,
		Name:     name,
		Currency: CurrencyOfSymbol(symbol),
	}
}
