// Package budget holds the per-category cost budget of a study plan and
// re-projects it across time units and currencies.
package budget

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/theirongolddev/abroad/internal/refdata"
)

// Converter is the currency collaborator the calculator relies on.
type Converter interface {
	Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error)
	FormatAmount(amount decimal.Decimal, currency string) string
}

// ErrNoConverter is returned when a currency operation runs without a
// converter.
var ErrNoConverter = errors.New("budget: no currency converter configured")

// ErrAmountTooLarge is returned when a conversion would push a line past
// MaxAmount.
var ErrAmountTooLarge = errors.New("budget: amount too large")

var twelve = decimal.NewFromInt(12)

// Amount limits. Exponents are checked before any comparison so that input
// like "1e400000000" is refused without expanding the coefficient.
const (
	maxExponent = 15
	minExponent = -64
)

// MaxAmount is the largest magnitude a budget line may hold.
var MaxAmount = decimal.New(1, maxExponent)

func tooLarge(d decimal.Decimal) bool { return d.Abs().GreaterThan(MaxAmount) }

// leadingNumber mirrors a lenient float parse: it takes the longest numeric
// prefix and ignores whatever follows ("12abc" -> 12).
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount extracts the leading number of raw. ok is false when raw has
// no numeric prefix or its magnitude is above MaxAmount.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(raw))
	if m == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(m, "+"))
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxExponent || exp < minExponent || tooLarge(d) {
		return decimal.Zero, false
	}
	return d, true
}

// Values is the snapshot handed to OnChange: annual 2-decimal strings keyed
// by category plus the shared currency.
type Values struct {
	Fields   map[Category]string
	Currency string
}

// Totals is the derived sum of all non-blank lines.
type Totals struct {
	Annual      decimal.Decimal
	Monthly     decimal.Decimal
	AnnualText  string
	MonthlyText string
}

// Options configures a new Calculator.
type Options struct {
	Currency  string
	Unit      Unit
	Fields    map[Category]string
	Converter Converter
	Logger    *zap.Logger
	OnChange  func(Values)
}

// Calculator owns the budget lines. It is not safe for concurrent use.
type Calculator struct {
	fields     map[Category]string
	currency   string
	unit       Unit
	conv       Converter
	log        *zap.Logger
	onChange   func(Values)
	converting bool
	autoFilled bool
}

// New builds a calculator from caller-supplied values. Unparsable initial
// amounts are blanked.
func New(opts Options) *Calculator {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	unit := opts.Unit
	if unit != Monthly {
		unit = Annual
	}
	cur := strings.ToUpper(strings.TrimSpace(opts.Currency))
	if cur == "" {
		cur = "USD"
	}
	c := &Calculator{
		fields:   make(map[Category]string, len(categoryOrder)),
		currency: cur,
		unit:     unit,
		conv:     opts.Converter,
		log:      log,
		onChange: opts.OnChange,
	}
	for _, cat := range categoryOrder {
		c.fields[cat] = normalizeStored(opts.Fields[cat])
	}
	return c
}

func normalizeStored(s string) string {
	d, ok := ParseAmount(s)
	if !ok {
		return ""
	}
	return d.StringFixed(2)
}

func (c *Calculator) Currency() string { return c.currency }
func (c *Calculator) Unit() Unit       { return c.unit }
func (c *Calculator) Converting() bool { return c.converting }

// SetConverter swaps the currency collaborator, e.g. after a rates refresh.
func (c *Calculator) SetConverter(conv Converter) { c.conv = conv }

// Stored returns the annual 2-decimal amount for cat, or "".
func (c *Calculator) Stored(cat Category) string { return c.fields[cat] }

// Values snapshots the current state.
func (c *Calculator) Values() Values {
	fields := make(map[Category]string, len(c.fields))
	for k, v := range c.fields {
		fields[k] = v
	}
	return Values{Fields: fields, Currency: c.currency}
}

// IsEmpty reports whether every line is blank.
func (c *Calculator) IsEmpty() bool {
	for _, v := range c.fields {
		if v != "" {
			return false
		}
	}
	return true
}

// SetField stores raw for cat. Input is read in the active unit; anything
// without a numeric prefix, or past MaxAmount once annualized, blanks the
// line.
func (c *Calculator) SetField(cat Category, raw string) {
	if !cat.Valid() {
		return
	}
	d, ok := ParseAmount(raw)
	if !ok {
		c.fields[cat] = ""
		c.emit()
		return
	}
	if c.unit == Monthly {
		d = d.Mul(twelve)
	}
	if tooLarge(d) {
		c.fields[cat] = ""
		c.emit()
		return
	}
	c.fields[cat] = d.StringFixed(2)
	c.emit()
}

// Display returns the amount for cat in the active unit.
func (c *Calculator) Display(cat Category) string {
	s := c.fields[cat]
	if s == "" {
		return ""
	}
	if c.unit == Annual {
		return s
	}
	d, ok := ParseAmount(s)
	if !ok {
		return ""
	}
	return d.Div(twelve).StringFixed(2)
}

// SetUnit switches the display unit. Stored amounts are unchanged.
func (c *Calculator) SetUnit(u Unit) {
	if u != Monthly {
		u = Annual
	}
	c.unit = u
}

// Total sums every non-blank line.
func (c *Calculator) Total() Totals {
	sum := decimal.Zero
	for _, v := range c.fields {
		if d, ok := ParseAmount(v); ok {
			sum = sum.Add(d)
		}
	}
	annual := sum.Round(2)
	monthly := sum.Div(twelve).Round(2)
	return Totals{
		Annual:      annual,
		Monthly:     monthly,
		AnnualText:  c.format(annual),
		MonthlyText: c.format(monthly),
	}
}

// Share is the fraction of the annual total taken by cat.
func (c *Calculator) Share(cat Category) float64 {
	total := c.Total().Annual
	d, ok := ParseAmount(c.fields[cat])
	if !ok || !total.IsPositive() {
		return 0
	}
	f, _ := d.Div(total).Float64()
	return f
}

func (c *Calculator) format(d decimal.Decimal) string {
	if c.conv == nil {
		return d.StringFixed(2) + " " + c.currency
	}
	return c.conv.FormatAmount(d, c.currency)
}

// ChangeCurrency converts every non-blank line into code. Either every line
// converts or nothing changes.
func (c *Calculator) ChangeCurrency(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || code == c.currency {
		return nil
	}
	if c.conv == nil {
		return ErrNoConverter
	}

	c.converting = true
	defer func() { c.converting = false }()

	next := make(map[Category]string, len(c.fields))
	for cat, v := range c.fields {
		if v == "" {
			next[cat] = ""
			continue
		}
		d, _ := ParseAmount(v)
		out, err := c.conv.Convert(d, c.currency, code)
		if err != nil {
			c.log.Warn("currency conversion failed",
				zap.String("category", string(cat)),
				zap.String("from", c.currency),
				zap.String("to", code),
				zap.Error(err))
			return fmt.Errorf("converting %s from %s to %s: %w", cat, c.currency, code, err)
		}
		if tooLarge(out) {
			return fmt.Errorf("converting %s from %s to %s: %w", cat, c.currency, code, ErrAmountTooLarge)
		}
		next[cat] = out.StringFixed(2)
	}

	c.fields = next
	c.currency = code
	c.emit()
	return nil
}

// ApplyPreset overwrites every line with the average of the country's
// preset, converted from USD into the active currency. Unknown countries use
// the default preset.
func (c *Calculator) ApplyPreset(countryCode string) error {
	preset, _ := refdata.PresetFor(countryCode)

	next := make(map[Category]string, len(categoryOrder))
	for _, cat := range categoryOrder {
		avg := decimal.NewFromFloat(preset[string(cat)].Avg)
		if c.currency != "USD" {
			if c.conv == nil {
				return ErrNoConverter
			}
			out, err := c.conv.Convert(avg, "USD", c.currency)
			if err != nil {
				c.log.Warn("preset conversion failed",
					zap.String("country", countryCode),
					zap.String("currency", c.currency),
					zap.Error(err))
				return fmt.Errorf("applying %s preset: %w", countryCode, err)
			}
			avg = out
		}
		next[cat] = avg.StringFixed(2)
	}

	c.fields = next
	c.emit()
	return nil
}

// Clear blanks every line. The currency is kept.
func (c *Calculator) Clear() {
	for cat := range c.fields {
		c.fields[cat] = ""
	}
	c.emit()
}

// AutoFillFromCountry applies the preset for the named country the first
// time it is called on a blank budget. It reports whether anything was
// applied.
func (c *Calculator) AutoFillFromCountry(name string) (bool, error) {
	if c.autoFilled || !c.IsEmpty() || strings.TrimSpace(name) == "" {
		return false, nil
	}
	code := refdata.CountryCode(name)
	if err := c.ApplyPreset(code); err != nil {
		return false, err
	}
	c.autoFilled = true
	c.log.Debug("budget auto-filled from country",
		zap.String("country", name),
		zap.String("preset", code))
	return true, nil
}

func (c *Calculator) emit() {
	if c.onChange != nil {
		c.onChange(c.Values())
	}
}
