package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"networth"
	"networth/date"
)

// AddTransaction validates and inserts a transaction, assigning it a
// fresh ULID, and refreshes the owning account's denormalized balance.
// ULIDs are monotonic within a process, so same-day entries replay in
// insertion order.
func (s *Store) AddTransaction(tx networth.Transaction) (networth.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return networth.Transaction{}, err
	}
	if _, err := s.Account(tx.AccountID); err != nil {
		return networth.Transaction{}, err
	}
	tx.ID = ulid.Make().String()
	tx.CreatedAt = time.Now().UTC()

	var assetID any // NULL for cash-only kinds
	if tx.AssetID != "" {
		assetID = tx.AssetID
	}
	_, err := s.db.Exec(`
		INSERT INTO transactions (id, day, kind, account_id, asset_id, quantity, price, fee, total, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Date.String(), string(tx.Kind), tx.AccountID, assetID,
		tx.Quantity.String(), tx.Price.Amount().String(), tx.Fee.Amount().String(),
		tx.Total.Amount().String(), tx.Note, tx.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return networth.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	if err := s.refreshBalance(tx.AccountID); err != nil {
		return networth.Transaction{}, err
	}
	return tx, nil
}

// DeleteTransaction removes a transaction and refreshes its account's
// balance. Snapshots covering its date become stale until the next
// rebuild.
func (s *Store) DeleteTransaction(id string) error {
	var accountID string
	err := s.db.QueryRow(`SELECT account_id FROM transactions WHERE id = ?`, id).Scan(&accountID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("transaction %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return s.refreshBalance(accountID)
}

// Transactions returns every transaction in replay order. The account
// currency is joined in so the monetary fields carry it.
func (s *Store) Transactions() ([]networth.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.day, t.kind, t.account_id, COALESCE(t.asset_id, ''),
		       t.quantity, t.price, t.fee, t.total, t.note, t.created_at,
		       COALESCE(a.currency, '')
		FROM transactions t
		LEFT JOIN accounts a ON a.id = t.account_id
		ORDER BY t.day, t.id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []networth.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// refreshBalance recomputes the denormalized cash balance of an account
// from its transactions. The replay engine never reads this value, it
// exists for fast current-state reads.
func (s *Store) refreshBalance(accountID string) error {
	acc, err := s.Account(accountID)
	if err != nil {
		return err
	}
	rows, err := s.db.Query(`
		SELECT t.id, t.day, t.kind, t.account_id, COALESCE(t.asset_id, ''),
		       t.quantity, t.price, t.fee, t.total, t.note, t.created_at, ?
		FROM transactions t WHERE t.account_id = ?`, acc.Currency, accountID)
	if err != nil {
		return fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	balance := networth.M(0, acc.Currency)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return err
		}
		balance = balance.Add(tx.CashEffect())
	}
	if err := rows.Err(); err != nil {
		return err
	}
	_, err = s.db.Exec(`UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ?`,
		balance.Amount().String(), time.Now().UTC().Format(time.RFC3339), accountID)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}

func scanTransaction(sc scanner) (networth.Transaction, error) {
	var tx networth.Transaction
	var day, kind, quantity, price, fee, total, createdAt, currency string
	if err := sc.Scan(&tx.ID, &day, &kind, &tx.AccountID, &tx.AssetID,
		&quantity, &price, &fee, &total, &tx.Note, &createdAt, &currency); err != nil {
		return networth.Transaction{}, err
	}
	var err error
	if tx.Date, err = date.Parse(day); err != nil {
		return networth.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	if tx.Kind, err = networth.ParseTxKind(kind); err != nil {
		return networth.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	if tx.Quantity, err = networth.ParseQuantity(quantity); err != nil {
		return networth.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	if tx.Price, err = networth.ParseMoney(price, currency); err != nil {
		return networth.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	if tx.Fee, err = networth.ParseMoney(fee, currency); err != nil {
		return networth.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	if tx.Total, err = networth.ParseMoney(total, currency); err != nil {
		return networth.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	if tx.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return networth.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	return tx, nil
}
