// Package refdata holds the static lookup tables the planner works against:
// countries, currencies, catalog lists and per-country budget presets.
package refdata

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Country is one destination or home country.
type Country struct {
	Code     string // ISO 3166-1 alpha-2
	Name     string
	Currency string // ISO 4217
	Aliases  []string
}

// Flag returns the emoji flag for the country.
func (c Country) Flag() string { return Flag(c.Code) }

var countries = []Country{
	{"US", "United States", "USD", []string{"usa", "united states of america", "america", "états-unis"}},
	{"GB", "United Kingdom", "GBP", []string{"uk", "great britain", "england", "scotland", "wales", "royaume-uni"}},
	{"CA", "Canada", "CAD", nil},
	{"AU", "Australia", "AUD", []string{"australie"}},
	{"NZ", "New Zealand", "NZD", []string{"nouvelle-zélande"}},
	{"IE", "Ireland", "EUR", []string{"irlande", "éire"}},
	{"FR", "France", "EUR", nil},
	{"DE", "Germany", "EUR", []string{"allemagne", "deutschland"}},
	{"ES", "Spain", "EUR", []string{"espagne", "españa"}},
	{"IT", "Italy", "EUR", []string{"italie", "italia"}},
	{"NL", "Netherlands", "EUR", []string{"pays-bas", "holland", "the netherlands"}},
	{"BE", "Belgium", "EUR", []string{"belgique", "belgië"}},
	{"PT", "Portugal", "EUR", nil},
	{"AT", "Austria", "EUR", []string{"autriche", "österreich"}},
	{"FI", "Finland", "EUR", []string{"finlande", "suomi"}},
	{"CH", "Switzerland", "CHF", []string{"suisse", "schweiz", "svizzera"}},
	{"SE", "Sweden", "SEK", []string{"suède", "sverige"}},
	{"NO", "Norway", "NOK", []string{"norvège", "norge"}},
	{"DK", "Denmark", "DKK", []string{"danemark", "danmark"}},
	{"PL", "Poland", "PLN", []string{"pologne", "polska"}},
	{"CZ", "Czech Republic", "CZK", []string{"czechia", "république tchèque"}},
	{"HU", "Hungary", "HUF", []string{"hongrie"}},
	{"JP", "Japan", "JPY", []string{"japon"}},
	{"KR", "South Korea", "KRW", []string{"korea", "republic of korea", "corée du sud"}},
	{"CN", "China", "CNY", []string{"chine"}},
	{"SG", "Singapore", "SGD", []string{"singapour"}},
	{"HK", "Hong Kong", "HKD", nil},
	{"IN", "India", "INR", []string{"inde"}},
	{"MY", "Malaysia", "MYR", []string{"malaisie"}},
	{"AE", "United Arab Emirates", "AED", []string{"uae", "émirats arabes unis"}},
	{"TR", "Turkey", "TRY", []string{"turquie", "türkiye"}},
	{"MA", "Morocco", "MAD", []string{"maroc"}},
	{"TN", "Tunisia", "TND", []string{"tunisie"}},
	{"DZ", "Algeria", "DZD", []string{"algérie"}},
	{"EG", "Egypt", "EGP", []string{"égypte"}},
	{"SN", "Senegal", "XOF", []string{"sénégal"}},
	{"CI", "Côte d'Ivoire", "XOF", []string{"ivory coast"}},
	{"CM", "Cameroon", "XAF", []string{"cameroun"}},
	{"NG", "Nigeria", "NGN", nil},
	{"ZA", "South Africa", "ZAR", []string{"afrique du sud"}},
	{"BR", "Brazil", "BRL", []string{"brésil", "brasil"}},
	{"MX", "Mexico", "MXN", []string{"mexique", "méxico"}},
	{"AR", "Argentina", "ARS", []string{"argentine"}},
	{"RU", "Russia", "RUB", []string{"russie", "russian federation"}},
}

var countryIndex = buildCountryIndex()

func buildCountryIndex() map[string]int {
	idx := make(map[string]int, len(countries)*3)
	for i, c := range countries {
		idx[Fold(c.Code)] = i
		idx[Fold(c.Name)] = i
		for _, a := range c.Aliases {
			idx[Fold(a)] = i
		}
	}
	return idx
}

// Fold lowercases s, strips diacritics and collapses inner whitespace so
// "  Côte  d'Ivoire" and "cote d'ivoire" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// LookupCountry resolves a free-text country name, alias or ISO alpha-2 code.
func LookupCountry(nameOrCode string) (Country, bool) {
	key := Fold(nameOrCode)
	if key == "" {
		return Country{}, false
	}
	i, ok := countryIndex[key]
	if !ok {
		return Country{}, false
	}
	return countries[i], true
}

// CountryCode maps a country name to its ISO code. Unknown names map to "".
func CountryCode(name string) string {
	c, ok := LookupCountry(name)
	if !ok {
		return ""
	}
	return c.Code
}

// CurrencyForCountry suggests the currency used in the named country.
func CurrencyForCountry(nameOrCode string) (string, bool) {
	c, ok := LookupCountry(nameOrCode)
	if !ok {
		return "", false
	}
	return c.Currency, true
}

// Countries returns every known country sorted by name.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Flag converts an ISO alpha-2 code into its regional-indicator emoji.
func Flag(code string) string {
	if len(code) != 2 {
		return ""
	}
	code = strings.ToUpper(code)
	var b strings.Builder
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + r - 'A')
	}
	return b.String()
}
