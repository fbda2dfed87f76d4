// Package currency converts and formats amounts against a USD-based rate
// table and suggests a currency for a country.
package currency

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/theirongolddev/abroad/internal/refdata"
)

// ErrUnknownCurrency is returned when a code has no rate.
var ErrUnknownCurrency = errors.New("unknown currency")

// Rates maps ISO 4217 codes to units per 1 USD.
type Rates map[string]decimal.Decimal

// DefaultRates returns the offline rate table.
func DefaultRates() Rates {
	r := make(Rates, len(refdata.DefaultRatesPerUSD))
	for code, s := range refdata.DefaultRatesPerUSD {
		r[code] = decimal.RequireFromString(s)
	}
	return r
}

// Merge returns a copy of r overlaid with every positive rate in other.
func (r Rates) Merge(other Rates) Rates {
	out := make(Rates, len(r)+len(other))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range other {
		if v.IsPositive() {
			out[strings.ToUpper(k)] = v
		}
	}
	return out
}

// Converter implements conversion and formatting over a fixed rate table.
// It is immutable and safe for concurrent use.
type Converter struct {
	rates Rates
}

// NewConverter builds a Converter. A nil table means DefaultRates.
func NewConverter(rates Rates) *Converter {
	if rates == nil {
		rates = DefaultRates()
	}
	return &Converter{rates: DefaultRates().Merge(rates)}
}

// Rate returns the units-per-USD rate for code.
func (c *Converter) Rate(code string) (decimal.Decimal, bool) {
	r, ok := c.rates[strings.ToUpper(strings.TrimSpace(code))]
	if !ok || !r.IsPositive() {
		return decimal.Zero, false
	}
	return r, true
}

// Codes lists every currency with a rate, sorted.
func (c *Converter) Codes() []string {
	out := make([]string, 0, len(c.rates))
	for code := range c.rates {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Rates returns a copy of the table.
func (c *Converter) Rates() Rates {
	return Rates{}.Merge(c.rates)
}

// Convert re-expresses amount from one currency in another.
func (c *Converter) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return amount, nil
	}
	rf, ok := c.Rate(from)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, from)
	}
	rt, ok := c.Rate(to)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, to)
	}
	return amount.Div(rf).Mul(rt), nil
}

// FormatAmount renders amount with the currency symbol, two decimals and
// thousands grouping, e.g. "€1,234.50" or "CHF 980.00".
func (c *Converter) FormatAmount(amount decimal.Decimal, code string) string {
	return FormatAmount(amount, code)
}

var printer = message.NewPrinter(language.English)

// FormatAmount is the stateless form of Converter.FormatAmount.
func FormatAmount(amount decimal.Decimal, code string) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	whole, frac, _ := strings.Cut(amount.StringFixed(2), ".")
	num := groupThousands(whole) + "." + frac

	sym := refdata.Symbol(code)
	if isWordSymbol(sym) {
		return sign + sym + " " + num
	}
	return sign + sym + num
}

// groupThousands inserts commas into a run of digits.
func groupThousands(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return printer.Sprintf("%d", n)
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isWordSymbol(sym string) bool {
	if sym == "" {
		return false
	}
	for _, r := range sym {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
