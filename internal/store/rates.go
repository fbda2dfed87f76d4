package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RateSnapshot is the cached exchange-rate table.
type RateSnapshot struct {
	Source    string
	FetchedAt time.Time
	// PerUSD maps currency codes to units per 1 USD.
	PerUSD map[string]decimal.Decimal
}

type rateRow struct {
	Code      string `db:"code"`
	PerUSD    string `db:"per_usd"`
	Source    string `db:"source"`
	FetchedAt string `db:"fetched_at"`
}

// SaveRates replaces the cached rate table.
func (s *Store) SaveRates(snap RateSnapshot) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM rates`); err != nil {
		return err
	}
	fetched := snap.FetchedAt.UTC().Format(time.RFC3339)
	for code, rate := range snap.PerUSD {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO rates (code, per_usd, source, fetched_at) VALUES (?, ?, ?, ?)`,
			code, rate.String(), snap.Source, fetched); err != nil {
			return fmt.Errorf("saving rate %s: %w", code, err)
		}
	}
	return tx.Commit()
}

// LoadRates returns the cached table, or ErrNotFound when nothing has been
// fetched yet.
func (s *Store) LoadRates() (RateSnapshot, error) {
	var rows []rateRow
	if err := s.db.Select(&rows, `SELECT code, per_usd, source, fetched_at FROM rates ORDER BY code`); err != nil {
		return RateSnapshot{}, fmt.Errorf("loading rates: %w", err)
	}
	if len(rows) == 0 {
		return RateSnapshot{}, ErrNotFound
	}

	snap := RateSnapshot{PerUSD: make(map[string]decimal.Decimal, len(rows))}
	for _, r := range rows {
		d, err := decimal.NewFromString(r.PerUSD)
		if err != nil {
			return RateSnapshot{}, fmt.Errorf("parsing cached rate %s: %w", r.Code, err)
		}
		snap.PerUSD[r.Code] = d
		snap.Source = r.Source
		if t, err := time.Parse(time.RFC3339, r.FetchedAt); err == nil {
			snap.FetchedAt = t
		}
	}
	return snap, nil
}
