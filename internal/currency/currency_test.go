package currency

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func testRates() Rates {
	return Rates{
		"USD": decimal.NewFromInt(1),
		"EUR": decimal.RequireFromString("0.5"),
		"GBP": decimal.RequireFromString("0.8"),
	}
}

func TestConvert(t *testing.T) {
	c := NewConverter(testRates())

	tests := []struct {
		amount, from, to, want string
	}{
		{"500", "USD", "USD", "500"},
		{"100", "USD", "EUR", "50"},
		{"50", "EUR", "USD", "100"},
		{"40", "GBP", "EUR", "25"},
		{"100", "usd", " eur ", "50"},
	}
	for _, tt := range tests {
		got, err := c.Convert(decimal.RequireFromString(tt.amount), tt.from, tt.to)
		if err != nil {
			t.Fatalf("Convert(%s %s->%s): %v", tt.amount, tt.from, tt.to, err)
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Convert(%s %s->%s) = %s, want %s", tt.amount, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestConvertUnknown(t *testing.T) {
	c := NewConverter(testRates())
	_, err := c.Convert(decimal.NewFromInt(1), "USD", "XYZ")
	if !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("err = %v, want ErrUnknownCurrency", err)
	}
}

func TestConverterKeepsDefaults(t *testing.T) {
	c := NewConverter(Rates{"EUR": decimal.RequireFromString("0.9")})
	if _, ok := c.Rate("JPY"); !ok {
		t.Fatal("expected default JPY rate to survive a partial table")
	}
	if r, _ := c.Rate("EUR"); !r.Equal(decimal.RequireFromString("0.9")) {
		t.Fatalf("EUR = %s, want override 0.9", r)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount, code, want string
	}{
		{"250", "USD", "$250.00"},
		{"1234.5", "EUR", "€1,234.50"},
		{"1234567.891", "GBP", "£1,234,567.89"},
		{"980", "CHF", "CHF 980.00"},
		{"-12.5", "USD", "-$12.50"},
		{"10", "QQQ", "QQQ 10.00"},
		{"0.005", "USD", "$0.01"},
		{"9007199254740993.17", "USD", "$9,007,199,254,740,993.17"},
		{"123456789012345678901.5", "USD", "$123,456,789,012,345,678,901.50"},
	}
	for _, tt := range tests {
		got := FormatAmount(decimal.RequireFromString(tt.amount), tt.code)
		if got != tt.want {
			t.Errorf("FormatAmount(%s, %s) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}
}

func TestSuggestForCountry(t *testing.T) {
	tests := map[string]string{
		"France":         "EUR",
		"  japan ":       "JPY",
		"Royaume-Uni":    "GBP",
		"Sénégal":        "XOF",
		"senegal":        "XOF",
		"CH":             "CHF",
		"United Kingdom": "GBP",
	}
	for in, want := range tests {
		if got, ok := SuggestForCountry(in); !ok || got != want {
			t.Errorf("SuggestForCountry(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
}

func TestSelectorFollowsCountry(t *testing.T) {
	var changes []string
	s := NewSelector("USD", false, func(code string) { changes = append(changes, code) })

	if !s.CountryChanged("Germany") || s.Value() != "EUR" {
		t.Fatalf("Germany -> %q", s.Value())
	}
	if s.CountryChanged("Germany") {
		t.Fatal("same country must not fire again")
	}
	if s.CountryChanged("France") {
		t.Fatal("France suggests the current currency; nothing should change")
	}
	if s.CountryChanged("Atlantis") {
		t.Fatal("unknown country must not change the currency")
	}
	if len(changes) != 1 || changes[0] != "EUR" {
		t.Fatalf("changes = %v, want [EUR]", changes)
	}
}

func TestSelectorOverwritesManualByDefault(t *testing.T) {
	s := NewSelector("USD", false, nil)
	if err := s.Choose("GBP"); err != nil {
		t.Fatal(err)
	}
	if !s.CountryChanged("Japan") || s.Value() != "JPY" {
		t.Fatalf("value = %q, want JPY overwrite", s.Value())
	}
}

func TestSelectorRespectManual(t *testing.T) {
	s := NewSelector("USD", true, nil)
	if !s.CountryChanged("Japan") {
		t.Fatal("automatic suggestion should apply before a manual pick")
	}
	if err := s.Choose("gbp"); err != nil {
		t.Fatal(err)
	}
	if s.CountryChanged("Germany") || s.Value() != "GBP" {
		t.Fatalf("value = %q, want manual GBP kept", s.Value())
	}
}

func TestSelectorChooseUnknown(t *testing.T) {
	s := NewSelector("USD", false, nil)
	if err := s.Choose("ZZZ"); !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("err = %v, want ErrUnknownCurrency", err)
	}
	if s.Value() != "USD" {
		t.Fatal("failed choose must not change the value")
	}
}

func TestOptions(t *testing.T) {
	opts := Options()
	if len(opts) == 0 {
		t.Fatal("no currency options")
	}
	for _, o := range opts {
		if o.Value == "EUR" {
			if o.Label != "EUR - Euro" || o.Flag == "" {
				t.Fatalf("EUR option = %+v", o)
			}
			return
		}
	}
	t.Fatal("EUR missing from options")
}
