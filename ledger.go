package networth

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"sort"

	"networth/date"
)

// Warning flags a data-integrity issue found while reading or replaying
// the ledger. Warnings never abort a rebuild: the engine favors a
// best-effort series over refusing to produce one.
type Warning struct {
	Date          date.Date
	TransactionID string
	Message       string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: tx %s: %s", w.Date, w.TransactionID, w.Message)
}

// Ledger is the replay-ready view of all recorded transactions: sorted
// chronologically with a stable same-day tie-break on the transaction
// ID (ULIDs, so ties resolve in insertion order), together with the
// account and asset catalogs the transactions reference.
type Ledger struct {
	transactions []Transaction
	accounts     map[string]Account
	assets       map[string]Asset
	warnings     []Warning
}

// NewLedger assembles a Ledger from its parts and sorts the
// transactions into replay order. Transactions dated before their
// account's inception are flagged, not dropped.
func NewLedger(accounts []Account, assets []Asset, transactions []Transaction) *Ledger {
	l := &Ledger{
		transactions: slices.Clone(transactions),
		accounts:     make(map[string]Account, len(accounts)),
		assets:       make(map[string]Asset, len(assets)),
	}
	for _, a := range accounts {
		l.accounts[a.ID] = a
	}
	for _, a := range assets {
		l.assets[a.ID] = a
	}
	l.stableSort()

	for _, tx := range l.transactions {
		acc, ok := l.accounts[tx.AccountID]
		if !ok {
			l.warnings = append(l.warnings, Warning{
				Date:          tx.Date,
				TransactionID: tx.ID,
				Message:       fmt.Sprintf("unknown account %q", tx.AccountID),
			})
			continue
		}
		if !acc.Inception.IsZero() && tx.Date.Before(acc.Inception) {
			l.warnings = append(l.warnings, Warning{
				Date:          tx.Date,
				TransactionID: tx.ID,
				Message:       fmt.Sprintf("dated before account %q inception %s", acc.Name, acc.Inception),
			})
		}
	}
	return l
}

// stableSort sorts by date, then by ID. The sort is stable so equal
// (date, id) pairs keep their original relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		a, b := l.transactions[i], l.transactions[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
}

// Transactions returns an iterator over all transactions in replay order.
func (l *Ledger) Transactions() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if !yield(tx) {
				return
			}
		}
	}
}

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int { return len(l.transactions) }

// Account returns the account with the given id.
func (l *Ledger) Account(id string) (Account, bool) {
	a, ok := l.accounts[id]
	return a, ok
}

// Asset returns the asset with the given id.
func (l *Ledger) Asset(id string) (Asset, bool) {
	a, ok := l.assets[id]
	return a, ok
}

// Accounts iterates over all accounts, ordered by id for determinism.
func (l *Ledger) Accounts() iter.Seq[Account] {
	return func(yield func(Account) bool) {
		for _, id := range slices.Sorted(maps.Keys(l.accounts)) {
			if !yield(l.accounts[id]) {
				return
			}
		}
	}
}

// Assets iterates over all assets, ordered by id for determinism.
func (l *Ledger) Assets() iter.Seq[Asset] {
	return func(yield func(Asset) bool) {
		for _, id := range slices.Sorted(maps.Keys(l.assets)) {
			if !yield(l.assets[id]) {
				return
			}
		}
	}
}

// EarliestInception returns the earliest account inception date, the
// first day a snapshot may exist. False when there are no accounts.
func (l *Ledger) EarliestInception() (date.Date, bool) {
	var earliest date.Date
	for _, a := range l.accounts {
		if a.Inception.IsZero() {
			continue
		}
		if earliest.IsZero() || a.Inception.Before(earliest) {
			earliest = a.Inception
		}
	}
	return earliest, !earliest.IsZero()
}

// OldestTransactionDate returns the date of the earliest transaction,
// or false when the ledger is empty.
func (l *Ledger) OldestTransactionDate() (date.Date, bool) {
	if len(l.transactions) == 0 {
		return date.Date{}, false
	}
	return l.transactions[0].Date, true
}

// Warnings returns the data-integrity warnings collected while
// assembling the ledger.
func (l *Ledger) Warnings() []Warning { return l.warnings }
