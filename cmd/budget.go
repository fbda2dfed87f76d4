package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/abroad/internal/budget"
	"github.com/theirongolddev/abroad/internal/cli"
	"github.com/theirongolddev/abroad/internal/refdata"

	"github.com/spf13/cobra"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show or edit the study budget",
	RunE:  runBudgetShow,
}

var budgetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show every budget line with totals",
	Args:  cobra.NoArgs,
	RunE:  runBudgetShow,
}

var budgetSetCmd = &cobra.Command{
	Use:   "set <category> <amount>",
	Short: "Set one budget line (in the current unit)",
	Long: "Set one budget line. Categories: " + categoryNames() + ".\n" +
		"The amount is read in the current unit; anything that is not a number clears the line.",
	Args: cobra.ExactArgs(2),
	RunE: runBudgetSet,
}

var budgetPresetCmd = &cobra.Command{
	Use:   "preset [country]",
	Short: "Fill every line from a country's typical costs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBudgetPreset,
}

var budgetClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Blank every budget line",
	Args:  cobra.NoArgs,
	RunE:  runBudgetClear,
}

var budgetCurrencyCmd = &cobra.Command{
	Use:   "currency <code>",
	Short: "Convert the budget into another currency",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetCurrency,
}

var budgetUnitCmd = &cobra.Command{
	Use:   "unit <annual|monthly>",
	Short: "Choose whether amounts are shown per year or per month",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetUnit,
}

func init() {
	budgetCmd.AddCommand(budgetShowCmd, budgetSetCmd, budgetPresetCmd, budgetClearCmd, budgetCurrencyCmd, budgetUnitCmd)
	rootCmd.AddCommand(budgetCmd)
}

func categoryNames() string {
	cats := budget.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func runBudgetShow(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	printBudget(s)
	return nil
}

func printBudget(s *session) {
	p := s.planner
	calc := p.Budget()
	conv := p.Converter()
	cur := calc.Currency()
	unit := calc.Unit()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("STUDY BUDGET  %s", p.Profile().Name)))
	fmt.Println()

	if calc.IsEmpty() {
		fmt.Println("  No budget lines yet.")
		fmt.Println("  Try `abroad budget preset` or `abroad budget set tuition 12000`.")
		fmt.Println()
		return
	}

	rows := make([][]string, 0, len(budget.Categories())+2)
	for _, cat := range budget.Categories() {
		amount := "—"
		if d, ok := budget.ParseAmount(calc.Display(cat)); ok {
			amount = conv.FormatAmount(d, cur)
		}
		share := calc.Share(cat)
		rows = append(rows, []string{
			cat.Label(),
			amount,
			cli.RenderShareBar(share, 16) + " " + cli.FormatPercent(share),
		})
	}
	totals := calc.Total()
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"Per year", totals.AnnualText, ""})
	rows = append(rows, []string{"Per month", totals.MonthlyText, ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Lines (%s, %s)", cur, unit),
		Headers: []string{"Category", "Amount", "Share"},
		Rows:    rows,
	}))
	fmt.Println()

	info := p.Rates()
	dest := p.PlanningCountry()
	if dest == "" {
		dest = "not set"
	}
	rateAge := cli.FormatAge(info.FetchedAt, time.Now())
	if info.Source == "offline" {
		rateAge = "offline table"
	}
	fmt.Print(cli.RenderKV([][2]string{
		{"Destination", dest},
		{"Currency", cur},
		{"Rates", rateAge},
	}))
	fmt.Println()
}

func runBudgetSet(_ *cobra.Command, args []string) error {
	cat, err := budget.ParseCategory(args[0])
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	calc := s.planner.Budget()
	calc.SetField(cat, args[1])
	if _, ok := budget.ParseAmount(args[1]); !ok {
		progress("  %q is not an amount; %s cleared\n", args[1], cat.Label())
	}
	if err := s.save(); err != nil {
		return err
	}

	totals := calc.Total()
	fmt.Printf("  %s set. Total: %s per year, %s per month\n", cat.Label(), totals.AnnualText, totals.MonthlyText)
	return nil
}

func runBudgetPreset(_ *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	country := s.planner.PlanningCountry()
	if len(args) == 1 {
		country = args[0]
	}
	code := ""
	label := "default"
	if c, ok := refdata.LookupCountry(country); ok {
		code = c.Code
		label = c.Name
	} else if country != "" {
		progress("  Unknown country %q, using the default preset\n", country)
	}
	if _, ok := refdata.PresetFor(code); !ok && code != "" {
		label = label + " (default costs)"
	}

	if err := s.planner.Budget().ApplyPreset(code); err != nil {
		return err
	}
	if err := s.save(); err != nil {
		return err
	}
	fmt.Printf("  Applied %s preset\n", label)
	printBudget(s)
	return nil
}

func runBudgetClear(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	s.planner.Budget().Clear()
	if err := s.save(); err != nil {
		return err
	}
	fmt.Println("  Budget cleared")
	return nil
}

func runBudgetCurrency(_ *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	before := s.planner.Currency()
	if err := s.planner.ChooseCurrency(args[0]); err != nil {
		return err
	}
	if err := s.save(); err != nil {
		return err
	}
	after := s.planner.Currency()
	if after == before {
		fmt.Printf("  Budget already in %s\n", after)
		return nil
	}
	fmt.Printf("  Budget converted %s → %s\n", before, after)
	printBudget(s)
	return nil
}

func runBudgetUnit(_ *cobra.Command, args []string) error {
	unit, err := budget.ParseUnit(args[0])
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	s.planner.SetUnit(unit)
	if err := s.save(); err != nil {
		return err
	}
	fmt.Printf("  Showing %s amounts\n", unit)
	return nil
}
