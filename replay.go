package networth

import (
	"fmt"
	"iter"

	"networth/date"
)

// HoldingKey identifies a position: one asset held inside one account.
type HoldingKey struct {
	AccountID string
	AssetID   string
}

// Position is the running state of a holding: quantity held, cumulative
// average-cost basis, and the realized profit locked in by sells.
type Position struct {
	Quantity  Quantity
	CostBasis Money // in the asset's currency
	Realized  Money
}

// AverageCost returns the average cost per unit, or zero money when the
// position is empty.
func (p Position) AverageCost() Money {
	if p.Quantity.IsZero() {
		return Money{}
	}
	return p.CostBasis.Div(p.Quantity)
}

// DayState is the end-of-day state of the whole portfolio: cash per
// account, one Position per (account, asset) pair, and the cumulative
// net external cash flow per currency ("invested").
//
// The maps are owned by the replay and reused between days; a consumer
// that needs to keep a day's state must copy it before advancing.
type DayState struct {
	Day      date.Date
	Cash     map[string]Money // account id → balance in the account's currency
	Holdings map[HoldingKey]Position
	Invested map[string]Money // currency → net deposits minus withdrawals
}

// Replay folds the ordered ledger over calendar days. It is a pure
// function of the ledger: replaying the same ledger over the same span
// always produces the same day states, which is what makes snapshot
// rebuilds idempotent and lets transaction edits simply invalidate and
// recompute.
type Replay struct {
	ledger   *Ledger
	warnings []Warning
}

// NewReplay creates a replay over the given ledger.
func NewReplay(ledger *Ledger) *Replay {
	return &Replay{ledger: ledger}
}

// Days iterates the end-of-day portfolio state for every calendar day
// in span, in ascending order. Transactions dated before span.From are
// pre-applied so a partial-range replay starts from the correct carried
// state. Days without transactions carry the prior state forward
// unchanged; state is day-indexed, so weekends need no special casing.
func (r *Replay) Days(span date.Range) iter.Seq[*DayState] {
	return func(yield func(*DayState) bool) {
		// Each pass re-discovers the same data issues; starting clean
		// keeps Warnings from repeating them.
		r.warnings = nil
		state := &DayState{
			Cash:     make(map[string]Money),
			Holdings: make(map[HoldingKey]Position),
			Invested: make(map[string]Money),
		}

		txs := make([]Transaction, 0, r.ledger.Len())
		for tx := range r.ledger.Transactions() {
			txs = append(txs, tx)
		}

		// Seed: everything strictly before the span establishes the
		// opening state.
		i := 0
		for ; i < len(txs) && txs[i].Date.Before(span.From); i++ {
			r.apply(state, txs[i])
		}

		for day := range span.Days() {
			for ; i < len(txs) && !txs[i].Date.After(day); i++ {
				// The cursor can only be on this exact day here: earlier
				// dates were consumed by previous iterations.
				r.apply(state, txs[i])
			}
			state.Day = day
			if !yield(state) {
				return
			}
		}
	}
}

// Warnings returns the data-integrity warnings accumulated so far,
// including the ledger's own.
func (r *Replay) Warnings() []Warning {
	return append(r.ledger.Warnings(), r.warnings...)
}

// apply folds one transaction into the running state.
func (r *Replay) apply(state *DayState, tx Transaction) {
	acc, ok := r.ledger.Account(tx.AccountID)
	if !ok {
		// Already flagged by the ledger; nothing sensible to apply to.
		return
	}

	balance, ok := state.Cash[acc.ID]
	if !ok {
		balance = M(0, acc.Currency)
	}
	state.Cash[acc.ID] = balance.Add(tx.CashEffect())

	switch tx.Kind {
	case TxDeposit:
		state.Invested[acc.Currency] = state.Invested[acc.Currency].Add(tx.Total)
	case TxWithdraw:
		state.Invested[acc.Currency] = state.Invested[acc.Currency].Sub(tx.Total)
	case TxBuy, TxSell:
		r.applyTrade(state, tx)
	}
}

// applyTrade moves the (account, asset) position using the average-cost
// method. Overselling leaves a negative quantity and a warning: replay
// continues, historical data entry is not guaranteed perfect.
func (r *Replay) applyTrade(state *DayState, tx Transaction) {
	if _, ok := r.ledger.Asset(tx.AssetID); !ok {
		r.warnings = append(r.warnings, Warning{
			Date:          tx.Date,
			TransactionID: tx.ID,
			Message:       fmt.Sprintf("trade references unknown asset %q", tx.AssetID),
		})
		return
	}
	key := HoldingKey{AccountID: tx.AccountID, AssetID: tx.AssetID}
	pos := state.Holdings[key]

	switch tx.Kind {
	case TxBuy:
		pos.Quantity = pos.Quantity.Add(tx.Quantity)
		pos.CostBasis = pos.CostBasis.Add(tx.Total)
	case TxSell:
		if tx.Quantity.GreaterThan(pos.Quantity) {
			r.warnings = append(r.warnings, Warning{
				Date:          tx.Date,
				TransactionID: tx.ID,
				Message:       fmt.Sprintf("sell of %s exceeds held quantity %s", tx.Quantity, pos.Quantity),
			})
		}
		// Average cost: the cost of the sale is proportional to the
		// fraction of the position sold.
		var costOfSale Money
		if pos.Quantity.IsPositive() {
			costOfSale = pos.CostBasis.Mul(tx.Quantity).Div(pos.Quantity)
		}
		pos.Realized = pos.Realized.Add(tx.Total.Sub(costOfSale))
		pos.CostBasis = pos.CostBasis.Sub(costOfSale)
		pos.Quantity = pos.Quantity.Sub(tx.Quantity)
	}
	state.Holdings[key] = pos
}
