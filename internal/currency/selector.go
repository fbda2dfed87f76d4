package currency

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/abroad/internal/refdata"
	"github.com/theirongolddev/abroad/internal/selection"
)

// SuggestForCountry returns the currency used in the named country.
// Matching ignores case and accents and accepts ISO alpha-2 codes.
func SuggestForCountry(country string) (string, bool) {
	return refdata.CurrencyForCountry(country)
}

// Options lists the currency metadata table as picker options.
func Options() []selection.Option {
	table := refdata.Currencies()
	out := make([]selection.Option, len(table))
	for i, c := range table {
		out[i] = selection.Option{
			Value: c.Code,
			Label: c.Code + " - " + c.Name,
			Flag:  c.Flag(),
			Meta:  map[string]string{"symbol": c.Symbol},
		}
	}
	return out
}

// Selector tracks the active currency and follows the user's country.
type Selector struct {
	value         string
	lastCountry   string
	manual        bool
	respectManual bool
	onChange      func(code string)
}

// NewSelector starts from initial. With respectManual set, a currency
// picked through Choose is never overwritten by a country change.
func NewSelector(initial string, respectManual bool, onChange func(code string)) *Selector {
	return &Selector{
		value:         strings.ToUpper(strings.TrimSpace(initial)),
		respectManual: respectManual,
		onChange:      onChange,
	}
}

// Value is the active currency code.
func (s *Selector) Value() string { return s.value }

// Manual reports whether the current value was picked by hand.
func (s *Selector) Manual() bool { return s.manual }

// SetManual restores the hand-picked flag of a previous session.
func (s *Selector) SetManual(manual bool) { s.manual = manual }

// CountryChanged applies the suggestion for country when the country is new
// and the suggestion differs from the active currency. It reports whether
// the currency changed.
func (s *Selector) CountryChanged(country string) bool {
	key := refdata.Fold(country)
	if key == s.lastCountry {
		return false
	}
	s.lastCountry = key

	code, ok := SuggestForCountry(country)
	if !ok || code == s.value {
		return false
	}
	if s.respectManual && s.manual {
		return false
	}
	s.set(code)
	return true
}

// Choose sets the currency by hand.
func (s *Selector) Choose(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, ok := refdata.LookupCurrency(code); !ok {
		return fmt.Errorf("choosing currency: %w: %q", ErrUnknownCurrency, code)
	}
	s.manual = true
	if code == s.value {
		return nil
	}
	s.set(code)
	return nil
}

func (s *Selector) set(code string) {
	s.value = code
	if s.onChange != nil {
		s.onChange(code)
	}
}

// Reset puts the selector back on code without notifying, used when the
// owner could not follow a change.
func (s *Selector) Reset(code string) {
	s.value = strings.ToUpper(strings.TrimSpace(code))
}
