// Package cmd implements the abroad CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/abroad/internal/config"
	"github.com/theirongolddev/abroad/internal/logging"
	"github.com/theirongolddev/abroad/internal/planner"
	"github.com/theirongolddev/abroad/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagProfile  string
	flagDB       string
	flagLogLevel string
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:   "abroad",
	Short: "Study-abroad budget planner",
	Long:  "Plan a study-abroad budget: destinations, preferences, costs and currencies.",
	RunE:  runBudgetShow,

	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagProfile, "profile", "p", "", "Profile name (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database path (default in the cache directory)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfig reads the config file and applies the global flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagProfile != "" {
		cfg.General.Profile = flagProfile
	}
	if flagDB != "" {
		cfg.General.DBPath = flagDB
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func logLevel() string {
	if flagLogLevel == "" && flagQuiet {
		return "error"
	}
	return flagLogLevel
}

// session is the shared state opened by every profile command.
type session struct {
	cfg     config.Config
	log     *zap.Logger
	store   *store.Store
	planner *planner.Planner
}

// openSession is the shared loading path used by the profile commands.
func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Logging, logLevel())
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, err
	}
	p, err := planner.Open(st, cfg, log)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return &session{cfg: cfg, log: log, store: st, planner: p}, nil
}

// save writes the profile when anything changed.
func (s *session) save() error {
	if !s.planner.Dirty() {
		return nil
	}
	return s.planner.Save()
}

func (s *session) Close() {
	_ = s.store.Close()
	_ = s.log.Sync()
}

func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
