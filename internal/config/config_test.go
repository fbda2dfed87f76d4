package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("ABROAD_CONFIG", "")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("Load() = %+v, want defaults", cfg)
	}
	if Exists() {
		t.Fatal("Exists() = true with no file")
	}
}

func TestSaveThenLoad(t *testing.T) {
	dir := isolate(t)
	cfg := DefaultConfig()
	cfg.General.HomeCountry = "Morocco"
	cfg.Budget.Currency = "MAD"
	cfg.Budget.Unit = "monthly"
	cfg.Currency.RespectManual = true

	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "abroad", "config.toml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Fatalf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ABROAD_BUDGET_CURRENCY", "eur")
	t.Setenv("ABROAD_CURRENCY_REFRESH_MINUTES", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Budget.Currency != "EUR" {
		t.Fatalf("currency = %q, want EUR", cfg.Budget.Currency)
	}
	if cfg.Currency.RefreshMinutes != 15 {
		t.Fatalf("refresh = %d, want 15", cfg.Currency.RefreshMinutes)
	}
}

func TestDotEnvIsRead(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ABROAD_GENERAL_HOME_COUNTRY=Japan\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("ABROAD_GENERAL_HOME_COUNTRY") })

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.HomeCountry != "Japan" {
		t.Fatalf("home country = %q, want Japan", cfg.General.HomeCountry)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Budget.Currency = "DOLLARS"
	cfg.Budget.Unit = "weekly"
	cfg.Currency.RatesURL = "not a url"

	err := Validate(cfg)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	for _, key := range []string{"budget.currency", "budget.unit", "currency.rates_url"} {
		if _, ok := verr.Fields[key]; !ok {
			t.Errorf("missing error for %s in %v", key, verr.Fields)
		}
	}
	if !strings.Contains(err.Error(), "budget.unit") {
		t.Fatalf("message %q does not name the key", err.Error())
	}
}

func TestSetAndGet(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Set("budget.currency", "gbp"); err != nil {
		t.Fatal(err)
	}
	if v, _ := cfg.Get("budget.currency"); v != "GBP" {
		t.Fatalf("currency = %q", v)
	}
	if err := cfg.Set("currency.respect_manual", "true"); err != nil || !cfg.Currency.RespectManual {
		t.Fatalf("respect_manual: %v", err)
	}

	before := cfg
	if err := cfg.Set("budget.unit", "fortnightly"); err == nil {
		t.Fatal("expected validation error")
	}
	if cfg != before {
		t.Fatal("failed Set mutated the config")
	}
	if err := cfg.Set("nope.key", "x"); err == nil {
		t.Fatal("expected unknown key error")
	}
}
