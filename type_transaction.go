package networth

import (
	"fmt"
	"time"

	"networth/date"
)

// TxKind identifies the kind of a ledger transaction. The set is closed.
type TxKind string

const (
	TxBuy      TxKind = "BUY"
	TxSell     TxKind = "SELL"
	TxDeposit  TxKind = "DEPOSIT"
	TxWithdraw TxKind = "WITHDRAW"
	TxInterest TxKind = "INTEREST"
	TxDividend TxKind = "DIVIDEND"
	TxFee      TxKind = "FEE"
)

// ParseTxKind parses a string into a TxKind.
func ParseTxKind(s string) (TxKind, error) {
	switch TxKind(s) {
	case TxBuy, TxSell, TxDeposit, TxWithdraw, TxInterest, TxDividend, TxFee:
		return TxKind(s), nil
	default:
		return "", fmt.Errorf("unknown transaction kind: %q", s)
	}
}

// IsTrade reports whether the kind moves an asset position.
func (k TxKind) IsTrade() bool { return k == TxBuy || k == TxSell }

// credits reports whether the kind increases the account's cash.
func (k TxKind) credits() bool {
	switch k {
	case TxSell, TxDeposit, TxInterest, TxDividend:
		return true
	default:
		return false
	}
}

// Transaction is one dated entry of the append-only ledger. Total is a
// positive magnitude; its sign on the account's cash is a function of
// the kind (see CashEffect).
//
// IDs are ULIDs: lexicographic order is creation order, which gives the
// same-day replay tie-break without a separate sequence column.
type Transaction struct {
	ID        string
	Date      date.Date
	Kind      TxKind
	AccountID string
	AssetID   string   // required for trades, empty otherwise
	Quantity  Quantity // trades only
	Price     Money    // unit price, trades only
	Fee       Money
	Total     Money // total cash-flow magnitude
	Note      string
	CreatedAt time.Time
}

// NewTrade builds a BUY or SELL with its total derived from the
// quantity, unit price and fee: a buyer pays the fee on top, a seller
// surrenders it from the proceeds.
func NewTrade(kind TxKind, on date.Date, accountID, assetID string, quantity Quantity, price, fee Money) (Transaction, error) {
	if !kind.IsTrade() {
		return Transaction{}, fmt.Errorf("%s is not a trade kind", kind)
	}
	gross := price.Mul(quantity)
	total := gross.Add(fee)
	if kind == TxSell {
		total = gross.Sub(fee)
	}
	t := Transaction{
		Date:      on,
		Kind:      kind,
		AccountID: accountID,
		AssetID:   assetID,
		Quantity:  quantity,
		Price:     price,
		Fee:       fee,
		Total:     total,
	}
	return t, t.Validate()
}

// NewCashFlow builds a DEPOSIT, WITHDRAW, INTEREST, DIVIDEND or FEE
// whose total is specified directly.
func NewCashFlow(kind TxKind, on date.Date, accountID string, total Money) (Transaction, error) {
	if kind.IsTrade() {
		return Transaction{}, fmt.Errorf("%s requires quantity and price, use NewTrade", kind)
	}
	t := Transaction{
		Date:      on,
		Kind:      kind,
		AccountID: accountID,
		Total:     total,
	}
	return t, t.Validate()
}

// Validate checks the transaction's internal consistency: trades need
// an asset, a positive quantity and a total consistent with
// quantity*price and fee; cash kinds need a positive total and no asset.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date is missing")
	}
	if t.AccountID == "" {
		return fmt.Errorf("transaction account is missing")
	}
	if t.Total.IsNegative() {
		return fmt.Errorf("transaction total must not be negative, got %s", t.Total)
	}
	if !t.Kind.IsTrade() {
		if t.AssetID != "" {
			return fmt.Errorf("%s transaction must not reference an asset", t.Kind)
		}
		return nil
	}
	if t.AssetID == "" {
		return fmt.Errorf("%s transaction requires an asset", t.Kind)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("%s quantity must be positive, got %s", t.Kind, t.Quantity)
	}
	gross := t.Price.Mul(t.Quantity)
	want := gross.Add(t.Fee)
	if t.Kind == TxSell {
		want = gross.Sub(t.Fee)
	}
	if !t.Total.Equal(want) {
		return fmt.Errorf("%s total %s is inconsistent with quantity*price and fee (want %s)", t.Kind, t.Total, want)
	}
	return nil
}

// CashEffect returns the signed effect of the transaction on the owning
// account's cash balance.
func (t Transaction) CashEffect() Money {
	if t.Kind.credits() {
		return t.Total
	}
	return t.Total.Neg()
}
