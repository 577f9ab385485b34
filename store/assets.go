package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"networth"
)

// EnsureAsset returns the asset for symbol, creating it lazily on
// first sight with its currency derived from the symbol.
func (s *Store) EnsureAsset(symbol, name string) (networth.Asset, error) {
	a, err := s.assetBySymbol(symbol)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return networth.Asset{}, err
	}

	a = networth.NewAsset(ulid.Make().String(), symbol, name)
	_, err = s.db.Exec(`
		INSERT INTO assets (id, symbol, name, currency, tags) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Symbol, a.Name, a.Currency, "",
	)
	if err != nil {
		return networth.Asset{}, fmt.Errorf("insert asset: %w", err)
	}
	return a, nil
}

// Asset returns the asset with the given id.
func (s *Store) Asset(id string) (networth.Asset, error) {
	row := s.db.QueryRow(`SELECT id, symbol, name, currency, tags FROM assets WHERE id = ?`, id)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return networth.Asset{}, fmt.Errorf("asset %q: %w", id, ErrNotFound)
	}
	return a, err
}

func (s *Store) assetBySymbol(symbol string) (networth.Asset, error) {
	row := s.db.QueryRow(`SELECT id, symbol, name, currency, tags FROM assets WHERE symbol = ?`, symbol)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return networth.Asset{}, fmt.Errorf("asset %q: %w", symbol, ErrNotFound)
	}
	return a, err
}

// Assets returns every asset, ordered by symbol.
func (s *Store) Assets() ([]networth.Asset, error) {
	rows, err := s.db.Query(`SELECT id, symbol, name, currency, tags FROM assets ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	var assets []networth.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// TagAsset replaces the free-form tags of an asset.
func (s *Store) TagAsset(id string, tags []string) error {
	res, err := s.db.Exec(`UPDATE assets SET tags = ? WHERE id = ?`, strings.Join(tags, ","), id)
	if err != nil {
		return fmt.Errorf("tag asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("asset %q: %w", id, ErrNotFound)
	}
	return nil
}

func scanAsset(sc scanner) (networth.Asset, error) {
	var a networth.Asset
	var tags string
	if err := sc.Scan(&a.ID, &a.Symbol, &a.Name, &a.Currency, &tags); err != nil {
		return networth.Asset{}, err
	}
	if tags != "" {
		a.Tags = strings.Split(tags, ",")
	}
	return a, nil
}
