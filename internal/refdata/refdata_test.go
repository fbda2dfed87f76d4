package refdata

import "testing"

func TestLookupCountry(t *testing.T) {
	tests := []struct {
		in       string
		wantCode string
		wantOK   bool
	}{
		{"France", "FR", true},
		{"france", "FR", true},
		{"  FRANCE ", "FR", true},
		{"fr", "FR", true},
		{"Allemagne", "DE", true},
		{"Etats-Unis", "US", true},
		{"États-Unis", "US", true},
		{"cote d'ivoire", "CI", true},
		{"Côte  d'Ivoire", "CI", true},
		{"Atlantis", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		c, ok := LookupCountry(tt.in)
		if ok != tt.wantOK || c.Code != tt.wantCode {
			t.Errorf("LookupCountry(%q) = %q, %v; want %q, %v", tt.in, c.Code, ok, tt.wantCode, tt.wantOK)
		}
	}
}

func TestCurrencyForCountry(t *testing.T) {
	if got, ok := CurrencyForCountry("Germany"); !ok || got != "EUR" {
		t.Fatalf("Germany = %q, %v; want EUR", got, ok)
	}
	if got, ok := CurrencyForCountry("Suisse"); !ok || got != "CHF" {
		t.Fatalf("Suisse = %q, %v; want CHF", got, ok)
	}
	if _, ok := CurrencyForCountry("Narnia"); ok {
		t.Fatal("expected unknown country to have no suggestion")
	}
}

func TestFlag(t *testing.T) {
	if got := Flag("fr"); got != "🇫🇷" {
		t.Fatalf("Flag(fr) = %q", got)
	}
	if got := Flag("F1"); got != "" {
		t.Fatalf("Flag(F1) = %q, want empty", got)
	}
}

func TestPresetFor(t *testing.T) {
	de, ok := PresetFor("DE")
	if !ok {
		t.Fatal("expected a dedicated DE preset")
	}
	if de["tuition"].Avg != 500 {
		t.Fatalf("DE tuition avg = %v, want 500", de["tuition"].Avg)
	}

	fallback, ok := PresetFor("XX")
	if ok {
		t.Fatal("expected fallback for unknown code")
	}
	if fallback["tuition"].Avg != presets[DefaultPresetKey]["tuition"].Avg {
		t.Fatal("fallback did not return the default preset")
	}
}

func TestPresetsCoverEveryCategory(t *testing.T) {
	cats := []string{"tuition", "accommodation", "transport", "insurance", "travel", "living", "books", "other"}
	for code, p := range presets {
		for _, c := range cats {
			r, ok := p[c]
			if !ok {
				t.Errorf("%s: missing %s", code, c)
				continue
			}
			if r.Min > r.Avg || r.Avg > r.Max {
				t.Errorf("%s/%s: avg %v outside [%v, %v]", code, c, r.Avg, r.Min, r.Max)
			}
		}
	}
}

func TestEveryCountryCurrencyIsKnown(t *testing.T) {
	for _, c := range countries {
		if _, ok := LookupCurrency(c.Currency); !ok {
			t.Errorf("%s uses unknown currency %s", c.Code, c.Currency)
		}
		if _, ok := DefaultRatesPerUSD[c.Currency]; !ok {
			t.Errorf("%s currency %s has no default rate", c.Code, c.Currency)
		}
	}
}
