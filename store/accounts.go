package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"networth"
	"networth/date"
)

// ErrNotFound reports a lookup of an id that does not exist.
var ErrNotFound = errors.New("not found")

// AddAccount inserts a new account, assigning it a fresh ULID. The
// balance starts at zero in the account's currency.
func (s *Store) AddAccount(a networth.Account) (networth.Account, error) {
	a.ID = ulid.Make().String()
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	a.Balance = networth.M(0, a.Currency)

	_, err := s.db.Exec(`
		INSERT INTO accounts (id, name, kind, currency, balance, inception, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Kind.String(), a.Currency, a.Balance.Amount().String(),
		a.Inception.String(), a.CreatedAt.Format(time.RFC3339), a.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return networth.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

// Account returns the account with the given id.
func (s *Store) Account(id string) (networth.Account, error) {
	row := s.db.QueryRow(`
		SELECT id, name, kind, currency, balance, inception, created_at, updated_at
		FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return networth.Account{}, fmt.Errorf("account %q: %w", id, ErrNotFound)
	}
	return a, err
}

// Accounts returns every account, ordered by creation (ULIDs sort that
// way).
func (s *Store) Accounts() ([]networth.Account, error) {
	rows, err := s.db.Query(`
		SELECT id, name, kind, currency, balance, inception, created_at, updated_at
		FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []networth.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// DeleteAccount removes an account; the foreign key cascades to its
// transactions. The assets it traded survive.
func (s *Store) DeleteAccount(id string) error {
	res, err := s.db.Exec(`DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %q: %w", id, ErrNotFound)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(sc scanner) (networth.Account, error) {
	var a networth.Account
	var kind, balance, inception, createdAt, updatedAt string
	if err := sc.Scan(&a.ID, &a.Name, &kind, &a.Currency, &balance, &inception, &createdAt, &updatedAt); err != nil {
		return networth.Account{}, err
	}
	var err error
	if a.Kind, err = networth.ParseAccountKind(kind); err != nil {
		return networth.Account{}, fmt.Errorf("account %s: %w", a.ID, err)
	}
	if a.Balance, err = networth.ParseMoney(balance, a.Currency); err != nil {
		return networth.Account{}, fmt.Errorf("account %s: %w", a.ID, err)
	}
	if a.Inception, err = date.Parse(inception); err != nil {
		return networth.Account{}, fmt.Errorf("account %s: %w", a.ID, err)
	}
	if a.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return networth.Account{}, fmt.Errorf("account %s: %w", a.ID, err)
	}
	if a.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return networth.Account{}, fmt.Errorf("account %s: %w", a.ID, err)
	}
	return a, nil
}
