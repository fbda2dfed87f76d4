package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/abroad/internal/model"
	"github.com/theirongolddev/abroad/internal/selection"
)

type profileRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	HomeCountry string `db:"home_country"`
	Currency    string `db:"currency"`
	Manual      bool   `db:"currency_manual"`
	Unit        string `db:"unit"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (r profileRow) toModel() *model.Profile {
	p := model.NewProfile(r.Name, r.Currency, r.Unit)
	p.ID = r.ID
	p.HomeCountry = r.HomeCountry
	p.CurrencyManual = r.Manual
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, r.CreatedAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, r.UpdatedAt)
	return p
}

// SaveProfile upserts p with its budget lines and preferences. A profile
// without an ID takes over the row of an existing profile with the same
// name, or gets a fresh UUID.
func (s *Store) SaveProfile(p *model.Profile) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	if p.ID == "" {
		var existing profileRow
		err := tx.Get(&existing, `SELECT * FROM profiles WHERE name = ?`, p.Name)
		switch {
		case err == nil:
			p.ID = existing.ID
			p.CreatedAt, _ = time.Parse(time.RFC3339Nano, existing.CreatedAt)
		case errors.Is(err, sql.ErrNoRows):
			p.ID = uuid.NewString()
		default:
			return fmt.Errorf("looking up profile %q: %w", p.Name, err)
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	row := profileRow{
		ID:          p.ID,
		Name:        p.Name,
		HomeCountry: p.HomeCountry,
		Currency:    p.Currency,
		Manual:      p.CurrencyManual,
		Unit:        p.Unit,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339Nano),
	}
	_, err = tx.NamedExec(`INSERT INTO profiles
		(id, name, home_country, currency, currency_manual, unit, created_at, updated_at)
		VALUES (:id, :name, :home_country, :currency, :currency_manual, :unit, :created_at, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			home_country = excluded.home_country,
			currency = excluded.currency,
			currency_manual = excluded.currency_manual,
			unit = excluded.unit,
			updated_at = excluded.updated_at`, row)
	if err != nil {
		return fmt.Errorf("saving profile %q: %w", p.Name, err)
	}

	if _, err := tx.Exec(`DELETE FROM budget_lines WHERE profile_id = ?`, p.ID); err != nil {
		return err
	}
	for cat, amount := range p.Budget {
		if amount == "" {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO budget_lines (profile_id, category, amount) VALUES (?, ?, ?)`,
			p.ID, cat, amount); err != nil {
			return fmt.Errorf("saving budget line %s: %w", cat, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM preferences WHERE profile_id = ?`, p.ID); err != nil {
		return err
	}
	for field, sel := range p.Preferences {
		items, err := json.Marshal(sel.Dedupe())
		if err != nil {
			return fmt.Errorf("encoding %s: %w", field, err)
		}
		if _, err := tx.Exec(`INSERT INTO preferences (profile_id, field, items) VALUES (?, ?, ?)`,
			p.ID, field, string(items)); err != nil {
			return fmt.Errorf("saving preference %s: %w", field, err)
		}
	}

	return tx.Commit()
}

// LoadProfile returns the named profile with its budget and preferences.
func (s *Store) LoadProfile(name string) (*model.Profile, error) {
	var row profileRow
	if err := s.db.Get(&row, `SELECT * FROM profiles WHERE name = ?`, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("loading profile %q: %w", name, err)
	}
	p := row.toModel()

	var lines []struct {
		Category string `db:"category"`
		Amount   string `db:"amount"`
	}
	if err := s.db.Select(&lines, `SELECT category, amount FROM budget_lines WHERE profile_id = ?`, p.ID); err != nil {
		return nil, fmt.Errorf("loading budget for %q: %w", name, err)
	}
	for _, l := range lines {
		p.Budget[l.Category] = l.Amount
	}

	var prefs []struct {
		Field string `db:"field"`
		Items string `db:"items"`
	}
	if err := s.db.Select(&prefs, `SELECT field, items FROM preferences WHERE profile_id = ?`, p.ID); err != nil {
		return nil, fmt.Errorf("loading preferences for %q: %w", name, err)
	}
	for _, pr := range prefs {
		var sel selection.Selection
		if err := json.Unmarshal([]byte(pr.Items), &sel); err != nil {
			return nil, fmt.Errorf("decoding %s for %q: %w", pr.Field, name, err)
		}
		p.Preferences[pr.Field] = sel.Dedupe()
	}

	return p, nil
}

// ListProfiles returns every profile without budget or preferences, sorted
// by name.
func (s *Store) ListProfiles() ([]model.Profile, error) {
	var rows []profileRow
	if err := s.db.Select(&rows, `SELECT * FROM profiles ORDER BY name`); err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	out := make([]model.Profile, len(rows))
	for i, r := range rows {
		out[i] = *r.toModel()
	}
	return out, nil
}

// DeleteProfile removes the named profile and everything attached to it.
func (s *Store) DeleteProfile(name string) error {
	res, err := s.db.Exec(`DELETE FROM profiles WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting profile %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile %q: %w", name, ErrNotFound)
	}
	return nil
}
