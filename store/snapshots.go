package store

import (
	"database/sql"
	"errors"
	"fmt"

	"networth"
	"networth/date"
)

// ReplaceSnapshots deletes every snapshot row in span and inserts rows,
// all inside one transaction. A failed rebuild rolls back entirely and
// the prior series stays visible; this is what makes rebuilds safe to
// repeat from any start date.
func (s *Store) ReplaceSnapshots(span date.Range, rows []networth.SnapshotRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("replace snapshots: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM portfolio_snapshots WHERE day BETWEEN ? AND ?`,
		span.From.String(), span.To.String()); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO portfolio_snapshots (day, currency, total_equity, total_cash, total_market, total_invested, holdings_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("replace snapshots: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if !span.Contains(row.Day) {
			return fmt.Errorf("snapshot %s falls outside rebuilt range %s", row.Day, span)
		}
		_, err := stmt.Exec(row.Day.String(), row.Currency,
			row.TotalEquity.Amount().String(), row.TotalCash.Amount().String(),
			row.TotalMarket.Amount().String(), row.TotalInvested.Amount().String(),
			row.HoldingsCount)
		if err != nil {
			return fmt.Errorf("insert snapshot %s: %w", row.Day, err)
		}
	}
	return tx.Commit()
}

// LastSnapshotDay returns the most recent snapshotted day.
func (s *Store) LastSnapshotDay() (date.Date, bool, error) {
	var day string
	err := s.db.QueryRow(`SELECT day FROM portfolio_snapshots ORDER BY day DESC LIMIT 1`).Scan(&day)
	if errors.Is(err, sql.ErrNoRows) {
		return date.Date{}, false, nil
	}
	if err != nil {
		return date.Date{}, false, fmt.Errorf("query last snapshot: %w", err)
	}
	d, err := date.Parse(day)
	if err != nil {
		return date.Date{}, false, fmt.Errorf("portfolio_snapshots day %q: %w", day, err)
	}
	return d, true, nil
}

// Snapshots returns the snapshot rows in span, oldest first. This is
// the read path of the history charts.
func (s *Store) Snapshots(span date.Range) ([]networth.SnapshotRow, error) {
	rows, err := s.db.Query(`
		SELECT day, currency, total_equity, total_cash, total_market, total_invested, holdings_count
		FROM portfolio_snapshots
		WHERE day BETWEEN ? AND ?
		ORDER BY day`,
		span.From.String(), span.To.String())
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var result []networth.SnapshotRow
	for rows.Next() {
		var row networth.SnapshotRow
		var day, equity, cash, market, invested string
		if err := rows.Scan(&day, &row.Currency, &equity, &cash, &market, &invested, &row.HoldingsCount); err != nil {
			return nil, err
		}
		if row.Day, err = date.Parse(day); err != nil {
			return nil, fmt.Errorf("portfolio_snapshots day %q: %w", day, err)
		}
		if row.TotalEquity, err = networth.ParseMoney(equity, row.Currency); err != nil {
			return nil, err
		}
		if row.TotalCash, err = networth.ParseMoney(cash, row.Currency); err != nil {
			return nil, err
		}
		if row.TotalMarket, err = networth.ParseMoney(market, row.Currency); err != nil {
			return nil, err
		}
		if row.TotalInvested, err = networth.ParseMoney(invested, row.Currency); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
