package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/abroad/internal/model"
	"github.com/theirongolddev/abroad/internal/selection"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "abroad.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenTwiceIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abroad.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_ = s.Close()
}

func TestProfileRoundTrip(t *testing.T) {
	s := openTemp(t)

	p := model.NewProfile("spring-2027", "EUR", "monthly")
	p.HomeCountry = "Morocco"
	p.CurrencyManual = true
	p.Budget["tuition"] = "3500.00"
	p.Budget["living"] = "4200.00"
	p.Budget["books"] = ""
	p.SetPreference("countries", selection.Selection{
		{Value: "FR", Label: "France", Flag: "🇫🇷"},
		{Value: "DE", Label: "Germany"},
	})
	p.SetPreference("languages", selection.FromValues("Esperanto"))

	if err := s.SaveProfile(p); err != nil {
		t.Fatal(err)
	}
	if p.ID == "" {
		t.Fatal("SaveProfile did not assign an ID")
	}

	got, err := s.LoadProfile("spring-2027")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != p.ID || got.HomeCountry != "Morocco" || got.Currency != "EUR" || got.Unit != "monthly" || !got.CurrencyManual {
		t.Fatalf("profile = %+v", got)
	}
	if len(got.Budget) != 2 || got.Budget["tuition"] != "3500.00" {
		t.Fatalf("budget = %v", got.Budget)
	}
	countries := got.Preference("countries")
	if len(countries) != 2 || countries[0].Label != "France" || countries[0].Flag != "🇫🇷" {
		t.Fatalf("countries = %+v", countries)
	}
	if langs := got.Preference("languages"); len(langs) != 1 || langs[0].Value != "Esperanto" {
		t.Fatalf("languages = %+v", langs)
	}
}

func TestSaveProfileUpdatesByName(t *testing.T) {
	s := openTemp(t)

	first := model.NewProfile("default", "USD", "annual")
	first.Budget["tuition"] = "100.00"
	if err := s.SaveProfile(first); err != nil {
		t.Fatal(err)
	}

	second := model.NewProfile("default", "GBP", "annual")
	second.Budget["travel"] = "50.00"
	if err := s.SaveProfile(second); err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Fatalf("ID changed: %s -> %s", first.ID, second.ID)
	}

	got, err := s.LoadProfile("default")
	if err != nil {
		t.Fatal(err)
	}
	if got.Currency != "GBP" || len(got.Budget) != 1 || got.Budget["travel"] != "50.00" {
		t.Fatalf("profile = %+v budget=%v", got, got.Budget)
	}
}

func TestListAndDeleteProfiles(t *testing.T) {
	s := openTemp(t)
	for _, name := range []string{"b-plan", "a-plan"} {
		if err := s.SaveProfile(model.NewProfile(name, "USD", "annual")); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListProfiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "a-plan" {
		t.Fatalf("ListProfiles = %+v", list)
	}

	if err := s.DeleteProfile("a-plan"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadProfile("a-plan"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadProfile after delete err = %v", err)
	}
	if err := s.DeleteProfile("a-plan"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestRatesCache(t *testing.T) {
	s := openTemp(t)
	if _, err := s.LoadRates(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty LoadRates err = %v", err)
	}

	fetched := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	snap := RateSnapshot{
		Source:    "test",
		FetchedAt: fetched,
		PerUSD: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"EUR": decimal.RequireFromString("0.9215"),
		},
	}
	if err := s.SaveRates(snap); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadRates()
	if err != nil {
		t.Fatal(err)
	}
	if got.Source != "test" || !got.FetchedAt.Equal(fetched) {
		t.Fatalf("snapshot meta = %s %s", got.Source, got.FetchedAt)
	}
	if !got.PerUSD["EUR"].Equal(decimal.RequireFromString("0.9215")) {
		t.Fatalf("EUR = %s", got.PerUSD["EUR"])
	}

	snap.PerUSD = map[string]decimal.Decimal{"GBP": decimal.RequireFromString("0.8")}
	if err := s.SaveRates(snap); err != nil {
		t.Fatal(err)
	}
	got, _ = s.LoadRates()
	if len(got.PerUSD) != 1 {
		t.Fatalf("SaveRates should replace the table, got %v", got.PerUSD)
	}
}
