package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ABROAD_BUDGET_CURRENCY.
const EnvPrefix = "ABROAD"

// DefaultRatesURL serves open.er-api.com compatible payloads.
const DefaultRatesURL = "https://open.er-api.com/v6/latest"

// Config holds all abroad configuration.
type Config struct {
	General    GeneralConfig    `toml:"general" mapstructure:"general"`
	Budget     BudgetConfig     `toml:"budget" mapstructure:"budget"`
	Currency   CurrencyConfig   `toml:"currency" mapstructure:"currency"`
	Appearance AppearanceConfig `toml:"appearance" mapstructure:"appearance"`
	Logging    LoggingConfig    `toml:"logging" mapstructure:"logging"`
	Daemon     DaemonConfig     `toml:"daemon" mapstructure:"daemon"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Profile     string `toml:"profile" mapstructure:"profile" validate:"required"`
	HomeCountry string `toml:"home_country" mapstructure:"home_country"`
	DBPath      string `toml:"db_path,omitempty" mapstructure:"db_path"`
}

// BudgetConfig holds the defaults for new budgets.
type BudgetConfig struct {
	Currency string `toml:"currency" mapstructure:"currency" validate:"required,iso4217"`
	Unit     string `toml:"unit" mapstructure:"unit" validate:"required,oneof=annual monthly"`
}

// CurrencyConfig holds exchange-rate settings.
type CurrencyConfig struct {
	RatesURL       string `toml:"rates_url" mapstructure:"rates_url" validate:"required,url"`
	RefreshMinutes int    `toml:"refresh_minutes" mapstructure:"refresh_minutes" validate:"gte=1"`
	// RespectManual keeps a hand-picked currency when the country changes.
	RespectManual bool `toml:"respect_manual" mapstructure:"respect_manual"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" mapstructure:"theme" validate:"required"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `toml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `toml:"format" mapstructure:"format" validate:"omitempty,oneof=json console"`
	File   string `toml:"file,omitempty" mapstructure:"file"`
}

// DaemonConfig holds the rates daemon listen address.
type DaemonConfig struct {
	Addr string `toml:"addr" mapstructure:"addr" validate:"required,hostname_port"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Profile: "default",
		},
		Budget: BudgetConfig{
			Currency: "USD",
			Unit:     "annual",
		},
		Currency: CurrencyConfig{
			RatesURL:       DefaultRatesURL,
			RefreshMinutes: 360,
		},
		Appearance: AppearanceConfig{
			Theme: "harbor",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Daemon: DaemonConfig{
			Addr: "127.0.0.1:8731",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "abroad")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "abroad")
}

// CacheDir returns the XDG-compliant data directory for the database and logs.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "abroad")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "abroad")
}

// ConfigPath returns the full path to the config file. ABROAD_CONFIG wins.
func ConfigPath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), "config.toml")
}

// DBPath resolves the database location.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return c.General.DBPath
	}
	return filepath.Join(CacheDir(), "abroad.db")
}

// Load layers defaults, the config file, a local .env and ABROAD_* env vars.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("decoding config: %w", err)
	}
	cfg.Budget.Currency = strings.ToUpper(cfg.Budget.Currency)
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("general.profile", d.General.Profile)
	v.SetDefault("general.home_country", d.General.HomeCountry)
	v.SetDefault("general.db_path", d.General.DBPath)
	v.SetDefault("budget.currency", d.Budget.Currency)
	v.SetDefault("budget.unit", d.Budget.Unit)
	v.SetDefault("currency.rates_url", d.Currency.RatesURL)
	v.SetDefault("currency.refresh_minutes", d.Currency.RefreshMinutes)
	v.SetDefault("currency.respect_manual", d.Currency.RespectManual)
	v.SetDefault("appearance.theme", d.Appearance.Theme)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("daemon.addr", d.Daemon.Addr)
}

// Save writes the config to disk.
func Save(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
