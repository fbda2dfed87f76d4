package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type keyAccessor struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringKey(field func(*Config) *string) keyAccessor {
	return keyAccessor{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

var keys = map[string]keyAccessor{
	"general.profile":      stringKey(func(c *Config) *string { return &c.General.Profile }),
	"general.home_country": stringKey(func(c *Config) *string { return &c.General.HomeCountry }),
	"general.db_path":      stringKey(func(c *Config) *string { return &c.General.DBPath }),
	"budget.currency": {
		get: func(c *Config) string { return c.Budget.Currency },
		set: func(c *Config, v string) error { c.Budget.Currency = strings.ToUpper(v); return nil },
	},
	"budget.unit":        stringKey(func(c *Config) *string { return &c.Budget.Unit }),
	"currency.rates_url": stringKey(func(c *Config) *string { return &c.Currency.RatesURL }),
	"currency.refresh_minutes": {
		get: func(c *Config) string { return strconv.Itoa(c.Currency.RefreshMinutes) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("refresh_minutes must be a whole number: %w", err)
			}
			c.Currency.RefreshMinutes = n
			return nil
		},
	},
	"currency.respect_manual": {
		get: func(c *Config) string { return strconv.FormatBool(c.Currency.RespectManual) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("respect_manual must be true or false: %w", err)
			}
			c.Currency.RespectManual = b
			return nil
		},
	},
	"appearance.theme": stringKey(func(c *Config) *string { return &c.Appearance.Theme }),
	"logging.level":    stringKey(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":   stringKey(func(c *Config) *string { return &c.Logging.Format }),
	"logging.file":     stringKey(func(c *Config) *string { return &c.Logging.File }),
	"daemon.addr":      stringKey(func(c *Config) *string { return &c.Daemon.Addr }),
}

// Keys lists every settable dotted key.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get reads a dotted key such as "budget.currency".
func (c *Config) Get(key string) (string, error) {
	acc, ok := keys[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return acc.get(c), nil
}

// Set writes a dotted key and re-validates the result. On error c is left
// unchanged.
func (c *Config) Set(key, value string) error {
	acc, ok := keys[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	next := *c
	if err := acc.set(&next, strings.TrimSpace(value)); err != nil {
		return err
	}
	if err := Validate(next); err != nil {
		return err
	}
	*c = next
	return nil
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
