package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/abroad/internal/cli"
	"github.com/theirongolddev/abroad/internal/prefs"
	"github.com/theirongolddev/abroad/internal/selection"

	"github.com/spf13/cobra"
)

var flagSearchLimit int

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or edit study preferences",
	RunE:  runPrefsList,
}

var prefsListCmd = &cobra.Command{
	Use:   "list [field]",
	Short: "List the selected items of every field",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPrefsList,
}

var prefsAddCmd = &cobra.Command{
	Use:   "add <field> <item>...",
	Short: "Add items to a preference field",
	Long:  "Add items to a preference field. Fields: " + fieldKeys() + ".",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPrefsAdd,
}

var prefsRemoveCmd = &cobra.Command{
	Use:   "remove <field> <item>...",
	Short: "Remove items from a preference field",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPrefsRemove,
}

var prefsClearCmd = &cobra.Command{
	Use:   "clear <field>",
	Short: "Remove every item from a preference field",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrefsClear,
}

var prefsSearchCmd = &cobra.Command{
	Use:   "search <field> [query]",
	Short: "Search the options of a preference field",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runPrefsSearch,
}

func init() {
	prefsSearchCmd.Flags().IntVarP(&flagSearchLimit, "limit", "l", 20, "Max options to show")
	prefsCmd.AddCommand(prefsListCmd, prefsAddCmd, prefsRemoveCmd, prefsClearCmd, prefsSearchCmd)
	rootCmd.AddCommand(prefsCmd)
}

func fieldKeys() string {
	fs := prefs.Fields()
	keys := make([]string, len(fs))
	for i, f := range fs {
		keys[i] = f.Key
	}
	return strings.Join(keys, ", ")
}

func runPrefsList(_ *cobra.Command, args []string) error {
	fields := prefs.Fields()
	if len(args) == 1 {
		f, err := prefs.Lookup(args[0])
		if err != nil {
			return err
		}
		fields = []prefs.Field{f}
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PREFERENCES  %s", s.planner.Profile().Name)))
	fmt.Println()

	pairs := make([][2]string, len(fields))
	for i, f := range fields {
		pairs[i] = [2]string{f.Title, describeSelection(f, s.planner.Preference(f.Key))}
	}
	fmt.Print(cli.RenderKV(pairs))
	fmt.Println()
	return nil
}

// describeSelection renders the selected items with labels resolved
// against the field's options.
func describeSelection(f prefs.Field, sel selection.Selection) string {
	if len(sel) == 0 {
		return "—"
	}
	e := prefs.NewEngine(f, sel, nil, nil)
	items := e.Display()
	parts := make([]string, len(items))
	for i, o := range items {
		parts[i] = o.DisplayLabel()
	}
	return strings.Join(parts, " · ")
}

func runPrefsAdd(_ *cobra.Command, args []string) error {
	f, err := prefs.Lookup(args[0])
	if err != nil {
		return err
	}
	picked := make([]selection.Option, 0, len(args)-1)
	for _, raw := range args[1:] {
		opt, err := prefs.Resolve(f, raw)
		if err != nil {
			return err
		}
		picked = append(picked, opt)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	sel := s.planner.Preference(f.Key)
	if !f.Multiple {
		sel = selection.Selection{picked[len(picked)-1]}
	} else {
		for _, o := range picked {
			if !sel.Contains(o.Value) {
				sel = append(sel, o)
			}
		}
	}
	return applyPreference(s, f, sel)
}

func runPrefsRemove(_ *cobra.Command, args []string) error {
	f, err := prefs.Lookup(args[0])
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	sel := s.planner.Preference(f.Key)
	for _, raw := range args[1:] {
		value := raw
		if opt, err := prefs.Resolve(f, raw); err == nil {
			value = opt.Value
		}
		if !sel.Contains(value) {
			return fmt.Errorf("%s: %q is not selected", f.Key, raw)
		}
		sel = sel.Without(value)
	}
	return applyPreference(s, f, sel)
}

func runPrefsClear(_ *cobra.Command, args []string) error {
	f, err := prefs.Lookup(args[0])
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	return applyPreference(s, f, nil)
}

// applyPreference stores sel, reports any currency switch it caused and
// saves the profile.
func applyPreference(s *session, f prefs.Field, sel selection.Selection) error {
	before := s.planner.Currency()
	if err := s.planner.SetPreference(f.Key, sel); err != nil {
		return err
	}
	if err := s.save(); err != nil {
		return err
	}

	fmt.Printf("  %s: %s\n", f.Title, describeSelection(f, s.planner.Preference(f.Key)))
	if after := s.planner.Currency(); after != before {
		fmt.Printf("  Budget converted %s → %s\n", before, after)
	}
	return nil
}

func runPrefsSearch(_ *cobra.Command, args []string) error {
	f, err := prefs.Lookup(args[0])
	if err != nil {
		return err
	}
	query := ""
	if len(args) == 2 {
		query = args[1]
	}

	e := prefs.NewEngine(f, nil, nil, nil)
	e.SetQuery(query)
	matches := e.Filtered()

	if len(matches) == 0 {
		fmt.Printf("  No %s match %q.\n", f.Key, query)
		if s, ok := e.Suggest(); ok {
			fmt.Printf("  Did you mean %s?\n", s.DisplayLabel())
		}
		if e.CanCreate() {
			fmt.Printf("  Add it anyway with `abroad prefs add %s %q`.\n", f.Key, query)
		}
		return nil
	}

	rows := make([][]string, 0, len(matches))
	for i, o := range matches {
		if flagSearchLimit > 0 && i >= flagSearchLimit {
			break
		}
		rows = append(rows, []string{o.Value, o.DisplayLabel()})
	}

	title := fmt.Sprintf("%s (%d of %d)", f.Title, len(rows), len(matches))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Value", "Label"},
		Rows:    rows,
	}))
	return nil
}
