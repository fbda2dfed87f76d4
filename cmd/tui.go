package cmd

import (
	"fmt"

	"github.com/theirongolddev/abroad/internal/config"
	"github.com/theirongolddev/abroad/internal/logging"
	"github.com/theirongolddev/abroad/internal/planner"
	"github.com/theirongolddev/abroad/internal/rates"
	"github.com/theirongolddev/abroad/internal/store"
	"github.com/theirongolddev/abroad/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive planner",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	needSetup := !config.Exists()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Log to a file so nothing lands on the alt-screen.
	log, err := logging.ForTUI(cfg.Logging, flagLogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	p, err := planner.Open(st, cfg, log)
	if err != nil {
		return err
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app, err := tui.NewApp(p, cfg, rates.NewClient(cfg.Currency.RatesURL), log, needSetup)
	if err != nil {
		return err
	}
	prog := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
