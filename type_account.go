package networth

import (
	"fmt"
	"time"

	"networth/date"
)

// AccountKind classifies an account. The set is closed: replay rules do
// not depend on the kind, but reporting and validation do.
type AccountKind int

const (
	Bank AccountKind = iota
	Brokerage
	Crypto
)

func (k AccountKind) String() string {
	switch k {
	case Bank:
		return "bank"
	case Brokerage:
		return "brokerage"
	case Crypto:
		return "crypto"
	default:
		return "unknown"
	}
}

// ParseAccountKind parses a string into an AccountKind.
func ParseAccountKind(s string) (AccountKind, error) {
	switch s {
	case "bank":
		return Bank, nil
	case "brokerage":
		return Brokerage, nil
	case "crypto":
		return Crypto, nil
	default:
		return 0, fmt.Errorf("unknown account kind: %q", s)
	}
}

// Account is a cash container in a single native currency. Balance is a
// denormalized running total maintained by the store on every
// transaction mutation; the replay engine never reads it, it recomputes
// cash from the ledger.
type Account struct {
	ID        string
	Name      string
	Kind      AccountKind
	Currency  string // ISO code, native currency of the account
	Balance   Money  // denormalized, in the account's currency
	Inception date.Date
	CreatedAt time.Time
	UpdatedAt time.Time
}
