// Package model defines the persisted study-plan types.
package model

import (
	"time"

	"github.com/theirongolddev/abroad/internal/budget"
	"github.com/theirongolddev/abroad/internal/selection"
)

// Profile is one named study plan: preference selections plus a budget.
type Profile struct {
	ID          string
	Name        string
	HomeCountry string
	Currency    string
	Unit        string
	// CurrencyManual is set once the currency was picked by hand.
	CurrencyManual bool
	// Budget holds annual 2-decimal amounts keyed by category name.
	Budget      map[string]string
	Preferences map[string]selection.Selection
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProfile returns an empty profile.
func NewProfile(name, currency, unit string) *Profile {
	return &Profile{
		Name:        name,
		Currency:    currency,
		Unit:        unit,
		Budget:      make(map[string]string),
		Preferences: make(map[string]selection.Selection),
	}
}

// BudgetFields converts the stored budget into calculator input.
func (p *Profile) BudgetFields() map[budget.Category]string {
	out := make(map[budget.Category]string, len(p.Budget))
	for k, v := range p.Budget {
		out[budget.Category(k)] = v
	}
	return out
}

// ApplyBudget copies a calculator snapshot into the profile. Blank lines
// are dropped.
func (p *Profile) ApplyBudget(v budget.Values) {
	p.Currency = v.Currency
	p.Budget = make(map[string]string, len(v.Fields))
	for cat, amount := range v.Fields {
		if amount != "" {
			p.Budget[string(cat)] = amount
		}
	}
}

// Preference returns the selection stored for a field key.
func (p *Profile) Preference(key string) selection.Selection {
	if p.Preferences == nil {
		return selection.Selection{}
	}
	return p.Preferences[key].Clone()
}

// SetPreference stores a selection for a field key.
func (p *Profile) SetPreference(key string, s selection.Selection) {
	if p.Preferences == nil {
		p.Preferences = make(map[string]selection.Selection)
	}
	p.Preferences[key] = s.Dedupe()
}
