package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/abroad/internal/budget"
	"github.com/theirongolddev/abroad/internal/config"
	"github.com/theirongolddev/abroad/internal/planner"
	"github.com/theirongolddev/abroad/internal/prefs"
	"github.com/theirongolddev/abroad/internal/refdata"
	"github.com/theirongolddev/abroad/internal/selection"
	"github.com/theirongolddev/abroad/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// setupValues holds the answers of the first-run form.
type setupValues struct {
	homeCountry string
	destination string
	currency    string
	unit        string
	theme       string

	initialCurrency string
}

func newSetupValues(cfg config.Config, p *planner.Planner) *setupValues {
	v := &setupValues{
		homeCountry: p.Profile().HomeCountry,
		currency:    p.Currency(),
		unit:        string(p.Budget().Unit()),
		theme:       cfg.Appearance.Theme,
	}
	v.initialCurrency = v.currency
	if v.homeCountry == "" {
		v.homeCountry = cfg.General.HomeCountry
	}
	if dest := p.Preference("countries"); len(dest) > 0 {
		v.destination = dest[0].Value
	}
	return v
}

// NewSetupForm builds the first-run form over the current config and
// profile. Call the returned apply func once the form completes.
func NewSetupForm(cfg config.Config, p *planner.Planner) (*huh.Form, func() (config.Config, error)) {
	v := newSetupValues(cfg, p)
	return newSetupForm(v), func() (config.Config, error) { return v.apply(cfg, p) }
}

func newSetupForm(v *setupValues) *huh.Form {
	countries := refdata.Countries()
	destOpts := make([]huh.Option[string], 0, len(countries)+1)
	destOpts = append(destOpts, huh.NewOption("Not decided yet", ""))
	for _, c := range countries {
		destOpts = append(destOpts, huh.NewOption(c.Flag()+" "+c.Name, c.Code))
	}

	currencies := refdata.Currencies()
	curOpts := make([]huh.Option[string], len(currencies))
	for i, c := range currencies {
		curOpts[i] = huh.NewOption(fmt.Sprintf("%s - %s", c.Code, c.Name), c.Code)
	}

	themeOpts := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		themeOpts[i] = huh.NewOption(t.Name, t.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to abroad").
				Description("A few questions to set up your study-abroad plan.\nYou can change everything later with `abroad config`."),
			huh.NewInput().
				Title("Where do you live now?").
				Placeholder("Country name, e.g. Canada").
				Value(&v.homeCountry).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, ok := refdata.LookupCountry(s); !ok {
						return fmt.Errorf("unknown country %q", s)
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Where would you like to study?").
				Options(destOpts...).
				Height(8).
				Value(&v.destination),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Budget currency").
				Description("Amounts are converted when you change it later.").
				Options(curOpts...).
				Height(8).
				Value(&v.currency),
			huh.NewSelect[string]().
				Title("Show amounts").
				Options(
					huh.NewOption("Per year", string(budget.Annual)),
					huh.NewOption("Per month", string(budget.Monthly)),
				).
				Value(&v.unit),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.theme),
		),
	).WithShowHelp(true)
}

// apply writes the answers to the config file and the profile.
func (v *setupValues) apply(cfg config.Config, p *planner.Planner) (config.Config, error) {
	home := strings.TrimSpace(v.homeCountry)
	if c, ok := refdata.LookupCountry(home); ok {
		home = c.Name
	}
	cfg.General.HomeCountry = home
	cfg.Budget.Currency = v.currency
	cfg.Budget.Unit = v.unit
	cfg.Appearance.Theme = v.theme
	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}

	var errs []error
	p.SetHomeCountry(home)
	if unit, err := budget.ParseUnit(v.unit); err == nil {
		p.SetUnit(unit)
	}
	if v.destination != "" {
		f, _ := prefs.Lookup("countries")
		if opt, err := prefs.Resolve(f, v.destination); err == nil {
			if err := p.SetPreference(f.Key, selection.Selection{opt}); err != nil {
				errs = append(errs, err)
			}
		}
	}
	// A currency the user actually changed wins over the destination
	// suggestion.
	if v.currency != v.initialCurrency && v.currency != p.Currency() {
		if err := p.ChooseCurrency(v.currency); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.Save(); err != nil {
		errs = append(errs, err)
	}

	cfg.Budget.Currency = p.Currency()
	if err := config.Save(cfg); err != nil {
		errs = append(errs, err)
	}
	return cfg, errors.Join(errs...)
}
