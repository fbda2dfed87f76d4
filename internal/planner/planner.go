// Package planner binds a stored profile to the budget calculator, the
// currency selector and the preference pickers. Both the CLI and the TUI
// drive a Planner and call Save when they are done.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/abroad/internal/budget"
	"github.com/theirongolddev/abroad/internal/config"
	"github.com/theirongolddev/abroad/internal/currency"
	"github.com/theirongolddev/abroad/internal/model"
	"github.com/theirongolddev/abroad/internal/prefs"
	"github.com/theirongolddev/abroad/internal/rates"
	"github.com/theirongolddev/abroad/internal/refdata"
	"github.com/theirongolddev/abroad/internal/selection"
	"github.com/theirongolddev/abroad/internal/store"
)

// Store is the persistence the planner needs.
type Store interface {
	LoadProfile(name string) (*model.Profile, error)
	SaveProfile(p *model.Profile) error
	LoadRates() (store.RateSnapshot, error)
	SaveRates(snap store.RateSnapshot) error
}

// Fetcher retrieves a fresh rate table.
type Fetcher interface {
	FetchLatest(ctx context.Context, base string) (*rates.Snapshot, error)
}

// RatesInfo describes the rate table in use.
type RatesInfo struct {
	Source    string
	FetchedAt time.Time
	Count     int
}

// Planner is one open profile. It is not safe for concurrent use.
type Planner struct {
	profile  *model.Profile
	budget   *budget.Calculator
	currency *currency.Selector
	conv     *currency.Converter
	rates    RatesInfo
	store    Store
	log      *zap.Logger
	dirty    bool
	isNew    bool
}

// Open loads the configured profile, creating an unsaved one when it does
// not exist yet. Cached rates are used when present, otherwise the built-in
// offline table.
func Open(st Store, cfg config.Config, log *zap.Logger) (*Planner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Planner{store: st, log: log}

	p.conv = currency.NewConverter(nil)
	p.rates = RatesInfo{Source: "offline", Count: len(p.conv.Codes())}
	snap, err := st.LoadRates()
	switch {
	case err == nil:
		p.useRates(snap)
	case errors.Is(err, store.ErrNotFound):
	default:
		log.Warn("loading cached rates", zap.Error(err))
	}

	name := cfg.General.Profile
	prof, err := st.LoadProfile(name)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		prof = model.NewProfile(name, cfg.Budget.Currency, cfg.Budget.Unit)
		prof.HomeCountry = cfg.General.HomeCountry
		p.isNew = true
	default:
		return nil, fmt.Errorf("loading profile %q: %w", name, err)
	}
	p.profile = prof

	unit, err := budget.ParseUnit(prof.Unit)
	if err != nil {
		unit = budget.Annual
	}
	p.budget = budget.New(budget.Options{
		Currency:  prof.Currency,
		Unit:      unit,
		Fields:    prof.BudgetFields(),
		Converter: p.conv,
		Logger:    log.Named("budget"),
		OnChange: func(v budget.Values) {
			p.profile.ApplyBudget(v)
			p.dirty = true
		},
	})
	p.currency = currency.NewSelector(p.budget.Currency(), cfg.Currency.RespectManual, p.currencyChanged)
	p.currency.SetManual(prof.CurrencyManual)
	return p, nil
}

// Profile returns the underlying profile.
func (p *Planner) Profile() *model.Profile { return p.profile }

// Budget returns the budget calculator.
func (p *Planner) Budget() *budget.Calculator { return p.budget }

// Converter returns the converter in use.
func (p *Planner) Converter() *currency.Converter { return p.conv }

// Rates describes the rate table in use.
func (p *Planner) Rates() RatesInfo { return p.rates }

// Currency is the active budget currency.
func (p *Planner) Currency() string { return p.budget.Currency() }

// Dirty reports unsaved changes.
func (p *Planner) Dirty() bool { return p.dirty || p.isNew }

// ChooseCurrency switches the budget currency by hand.
func (p *Planner) ChooseCurrency(code string) error {
	if err := p.currency.Choose(code); err != nil {
		return err
	}
	if p.currency.Value() != p.budget.Currency() {
		p.currency.Reset(p.budget.Currency())
		p.currency.SetManual(p.profile.CurrencyManual)
		return fmt.Errorf("budget stayed in %s", p.budget.Currency())
	}
	if !p.profile.CurrencyManual {
		p.profile.CurrencyManual = true
		p.dirty = true
	}
	return nil
}

func (p *Planner) currencyChanged(code string) {
	if err := p.budget.ChangeCurrency(code); err != nil {
		p.log.Warn("budget kept its currency", zap.String("wanted", code), zap.Error(err))
		p.currency.Reset(p.budget.Currency())
	}
}

// SetUnit switches the display unit.
func (p *Planner) SetUnit(u budget.Unit) {
	p.budget.SetUnit(u)
	p.profile.Unit = string(u)
	p.dirty = true
}

// SetHomeCountry records where the student lives.
func (p *Planner) SetHomeCountry(name string) {
	if c, ok := refdata.LookupCountry(name); ok {
		name = c.Name
	}
	p.profile.HomeCountry = strings.TrimSpace(name)
	p.dirty = true
}

// PlanningCountry is the country that drives currency and budget
// suggestions: the first destination, or the home country when no
// destination is picked.
func (p *Planner) PlanningCountry() string {
	dest := p.profile.Preference("countries")
	if len(dest) > 0 {
		if c, ok := refdata.LookupCountry(dest[0].Value); ok {
			return c.Name
		}
		return dest[0].Label
	}
	return p.profile.HomeCountry
}

// Preference returns the selection for a field.
func (p *Planner) Preference(key string) selection.Selection {
	return p.profile.Preference(key)
}

// SetPreference replaces the selection of a field and, for destination
// countries, lets the currency and the blank budget follow.
func (p *Planner) SetPreference(key string, s selection.Selection) error {
	f, err := prefs.Lookup(key)
	if err != nil {
		return err
	}
	if !f.Multiple && len(s) > 1 {
		s = s[len(s)-1:]
	}
	p.profile.SetPreference(f.Key, s)
	p.dirty = true
	if f.Key == "countries" {
		p.CountryChanged()
	}
	return nil
}

// Engine builds a picker for a field bound to the profile.
func (p *Planner) Engine(key string, reg selection.Registrar) (*selection.Engine, error) {
	f, err := prefs.Lookup(key)
	if err != nil {
		return nil, err
	}
	return prefs.NewEngine(f, p.profile.Preference(f.Key), reg, func(s selection.Selection) {
		if err := p.SetPreference(f.Key, s); err != nil {
			p.log.Warn("storing preference", zap.String("field", f.Key), zap.Error(err))
		}
	}), nil
}

// CountryChanged re-runs the country driven suggestions.
func (p *Planner) CountryChanged() {
	country := p.PlanningCountry()
	if country == "" {
		return
	}
	p.currency.CountryChanged(country)
	if _, err := p.budget.AutoFillFromCountry(country); err != nil {
		p.log.Warn("auto-filling budget", zap.String("country", country), zap.Error(err))
	}
}

// RefreshRates fetches a new table, caches it and swaps the converter.
func (p *Planner) RefreshRates(ctx context.Context, f Fetcher) (RatesInfo, error) {
	snap, err := f.FetchLatest(ctx, "USD")
	if err != nil {
		return p.rates, fmt.Errorf("refreshing rates: %w", err)
	}
	return p.ApplySnapshot(snap)
}

// ApplySnapshot caches a fetched table and swaps the converter.
func (p *Planner) ApplySnapshot(snap *rates.Snapshot) (RatesInfo, error) {
	perUSD := snap.PerUSD()
	if perUSD == nil {
		return p.rates, fmt.Errorf("refreshing rates: %w: no USD rate", rates.ErrUnavailable)
	}
	cached := store.RateSnapshot{Source: snap.Source, FetchedAt: snap.FetchedAt, PerUSD: perUSD}
	if err := p.store.SaveRates(cached); err != nil {
		return p.rates, fmt.Errorf("caching rates: %w", err)
	}
	p.useRates(cached)
	p.budget.SetConverter(p.conv)
	p.log.Info("rates refreshed", zap.String("source", snap.Source), zap.Int("currencies", len(perUSD)))
	return p.rates, nil
}

func (p *Planner) useRates(snap store.RateSnapshot) {
	p.conv = currency.NewConverter(currency.Rates(snap.PerUSD))
	p.rates = RatesInfo{Source: snap.Source, FetchedAt: snap.FetchedAt, Count: len(p.conv.Codes())}
}

// Save writes the profile.
func (p *Planner) Save() error {
	if err := p.store.SaveProfile(p.profile); err != nil {
		return fmt.Errorf("saving profile %q: %w", p.profile.Name, err)
	}
	p.dirty = false
	p.isNew = false
	return nil
}
