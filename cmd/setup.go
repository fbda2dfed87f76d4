package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/abroad/internal/config"
	"github.com/theirongolddev/abroad/internal/tui"
	"github.com/theirongolddev/abroad/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	theme.SetActive(s.cfg.Appearance.Theme)
	form, apply := tui.NewSetupForm(s.cfg, s.planner)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	cfg, err := apply()
	if err != nil {
		return fmt.Errorf("saving setup: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Printf("  Profile %q, budget in %s\n", cfg.General.Profile, cfg.Budget.Currency)
	fmt.Println("  Run `abroad setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
