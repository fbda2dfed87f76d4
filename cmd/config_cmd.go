package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/abroad/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the settable keys",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		for _, k := range config.Keys() {
			fmt.Println(k)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd, configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Database:    %s\n", cfg.DBPath())
	fmt.Println()

	section := ""
	for _, k := range config.Keys() {
		sec, name := splitKey(k)
		if sec != section {
			if section != "" {
				fmt.Println()
			}
			fmt.Printf("  [%s]\n", sec)
			section = sec
		}
		v, _ := cfg.Get(k)
		if v == "" {
			v = "not set"
		}
		fmt.Printf("    %-16s %s\n", name+":", v)
	}
	fmt.Println()

	fmt.Println("  Run `abroad setup` to reconfigure, or `abroad config set <key> <value>`.")
	return nil
}

func splitKey(k string) (section, name string) {
	section, name, ok := strings.Cut(k, ".")
	if !ok {
		return "", k
	}
	return section, name
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	v, _ := cfg.Get(args[0])
	fmt.Printf("  %s = %s\n", args[0], v)
	return nil
}
