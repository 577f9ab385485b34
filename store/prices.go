package store

import (
	"database/sql"
	"errors"
	"fmt"

	"networth/date"
)

// CloseOn returns the stored close for symbol on exactly day.
func (s *Store) CloseOn(symbol string, day date.Date) (float64, bool, error) {
	var close float64
	err := s.db.QueryRow(`
		SELECT close FROM price_history WHERE symbol = ? AND day = ?`,
		symbol, day.String()).Scan(&close)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query close: %w", err)
	}
	return close, true, nil
}

// LatestCloseOn returns the most recent stored close for symbol on or
// before day, with the day it was quoted. ISO day strings sort
// chronologically, so MAX over text is enough.
func (s *Store) LatestCloseOn(symbol string, day date.Date) (float64, date.Date, bool, error) {
	var close float64
	var on string
	err := s.db.QueryRow(`
		SELECT close, day FROM price_history
		WHERE symbol = ? AND day <= ?
		ORDER BY day DESC LIMIT 1`,
		symbol, day.String()).Scan(&close, &on)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, date.Date{}, false, nil
	}
	if err != nil {
		return 0, date.Date{}, false, fmt.Errorf("query latest close: %w", err)
	}
	quoted, err := date.Parse(on)
	if err != nil {
		return 0, date.Date{}, false, fmt.Errorf("price_history day %q: %w", on, err)
	}
	return close, quoted, true, nil
}

// SaveCloses upserts a series of closes for symbol in one transaction.
func (s *Store) SaveCloses(symbol string, series date.History[float64]) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save closes: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO price_history (symbol, day, close) VALUES (?, ?, ?)
		ON CONFLICT (symbol, day) DO UPDATE SET close = excluded.close`)
	if err != nil {
		return fmt.Errorf("save closes: %w", err)
	}
	defer stmt.Close()

	for day, close := range series.Values() {
		if _, err := stmt.Exec(symbol, day.String(), close); err != nil {
			return fmt.Errorf("save close %s %s: %w", symbol, day, err)
		}
	}
	return tx.Commit()
}

// PriceSeries returns the stored closes for symbol across span.
func (s *Store) PriceSeries(symbol string, span date.Range) (date.History[float64], error) {
	var series date.History[float64]
	rows, err := s.db.Query(`
		SELECT day, close FROM price_history
		WHERE symbol = ? AND day BETWEEN ? AND ?
		ORDER BY day`,
		symbol, span.From.String(), span.To.String())
	if err != nil {
		return series, fmt.Errorf("query price series: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day string
		var close float64
		if err := rows.Scan(&day, &close); err != nil {
			return series, err
		}
		d, err := date.Parse(day)
		if err != nil {
			return series, fmt.Errorf("price_history day %q: %w", day, err)
		}
		series.Append(d, close)
	}
	return series, rows.Err()
}
