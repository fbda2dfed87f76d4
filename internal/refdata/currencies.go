package refdata

import (
	"sort"
	"strings"
)

// Currency is one entry of the currency metadata table.
type Currency struct {
	Code   string
	Name   string
	Symbol string
	// Region is the ISO alpha-2 code used for the flag ("EU" for the euro).
	Region string
}

// Flag returns the emoji flag of the currency's issuing region.
func (c Currency) Flag() string { return Flag(c.Region) }

var currencies = map[string]Currency{
	"USD": {"USD", "US Dollar", "$", "US"},
	"EUR": {"EUR", "Euro", "€", "EU"},
	"GBP": {"GBP", "British Pound", "£", "GB"},
	"CAD": {"CAD", "Canadian Dollar", "CA$", "CA"},
	"AUD": {"AUD", "Australian Dollar", "A$", "AU"},
	"NZD": {"NZD", "New Zealand Dollar", "NZ$", "NZ"},
	"CHF": {"CHF", "Swiss Franc", "CHF", "CH"},
	"SEK": {"SEK", "Swedish Krona", "kr", "SE"},
	"NOK": {"NOK", "Norwegian Krone", "kr", "NO"},
	"DKK": {"DKK", "Danish Krone", "kr", "DK"},
	"PLN": {"PLN", "Polish Złoty", "zł", "PL"},
	"CZK": {"CZK", "Czech Koruna", "Kč", "CZ"},
	"HUF": {"HUF", "Hungarian Forint", "Ft", "HU"},
	"JPY": {"JPY", "Japanese Yen", "¥", "JP"},
	"KRW": {"KRW", "South Korean Won", "₩", "KR"},
	"CNY": {"CNY", "Chinese Yuan", "CN¥", "CN"},
	"SGD": {"SGD", "Singapore Dollar", "S$", "SG"},
	"HKD": {"HKD", "Hong Kong Dollar", "HK$", "HK"},
	"INR": {"INR", "Indian Rupee", "₹", "IN"},
	"MYR": {"MYR", "Malaysian Ringgit", "RM", "MY"},
	"AED": {"AED", "UAE Dirham", "AED", "AE"},
	"TRY": {"TRY", "Turkish Lira", "₺", "TR"},
	"MAD": {"MAD", "Moroccan Dirham", "MAD", "MA"},
	"TND": {"TND", "Tunisian Dinar", "TND", "TN"},
	"DZD": {"DZD", "Algerian Dinar", "DA", "DZ"},
	"EGP": {"EGP", "Egyptian Pound", "E£", "EG"},
	"XOF": {"XOF", "West African CFA Franc", "CFA", "SN"},
	"XAF": {"XAF", "Central African CFA Franc", "FCFA", "CM"},
	"NGN": {"NGN", "Nigerian Naira", "₦", "NG"},
	"ZAR": {"ZAR", "South African Rand", "R", "ZA"},
	"BRL": {"BRL", "Brazilian Real", "R$", "BR"},
	"MXN": {"MXN", "Mexican Peso", "MX$", "MX"},
	"ARS": {"ARS", "Argentine Peso", "AR$", "AR"},
	"RUB": {"RUB", "Russian Ruble", "₽", "RU"},
}

// DefaultRatesPerUSD is the offline rate table (units of currency per 1 USD)
// used until a live snapshot has been fetched.
var DefaultRatesPerUSD = map[string]string{
	"USD": "1",
	"EUR": "0.92",
	"GBP": "0.79",
	"CAD": "1.36",
	"AUD": "1.52",
	"NZD": "1.66",
	"CHF": "0.88",
	"SEK": "10.50",
	"NOK": "10.70",
	"DKK": "6.87",
	"PLN": "3.95",
	"CZK": "23.10",
	"HUF": "360",
	"JPY": "150",
	"KRW": "1350",
	"CNY": "7.20",
	"SGD": "1.34",
	"HKD": "7.80",
	"INR": "83.50",
	"MYR": "4.70",
	"AED": "3.6725",
	"TRY": "32.50",
	"MAD": "10.00",
	"TND": "3.10",
	"DZD": "134.50",
	"EGP": "48.50",
	"XOF": "603.50",
	"XAF": "603.50",
	"NGN": "1500",
	"ZAR": "18.60",
	"BRL": "5.20",
	"MXN": "17.50",
	"ARS": "900",
	"RUB": "92",
}

// LookupCurrency returns the metadata for an ISO 4217 code.
func LookupCurrency(code string) (Currency, bool) {
	c, ok := currencies[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// Symbol returns the display symbol for code, falling back to the code itself.
func Symbol(code string) string {
	if c, ok := LookupCurrency(code); ok {
		return c.Symbol
	}
	return strings.ToUpper(code)
}

// Currencies returns the metadata table sorted by code.
func Currencies() []Currency {
	out := make([]Currency, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
