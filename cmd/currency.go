package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/abroad/internal/budget"
	"github.com/theirongolddev/abroad/internal/cli"
	"github.com/theirongolddev/abroad/internal/currency"
	"github.com/theirongolddev/abroad/internal/rates"
	"github.com/theirongolddev/abroad/internal/refdata"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var currencyCmd = &cobra.Command{
	Use:   "currency",
	Short: "Convert amounts and manage exchange rates",
}

var currencyConvertCmd = &cobra.Command{
	Use:   "convert <amount> <from> [to]",
	Short: "Convert an amount between currencies (default: into the budget currency)",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runCurrencyConvert,
}

var currencySuggestCmd = &cobra.Command{
	Use:   "suggest <country>",
	Short: "Show the currency used in a country",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCurrencySuggest,
}

var currencyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known currencies with their rate against USD",
	Args:  cobra.NoArgs,
	RunE:  runCurrencyList,
}

var currencyRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch the latest exchange rates",
	Args:  cobra.NoArgs,
	RunE:  runCurrencyRefresh,
}

func init() {
	currencyCmd.AddCommand(currencyConvertCmd, currencySuggestCmd, currencyListCmd, currencyRefreshCmd)
	rootCmd.AddCommand(currencyCmd)
}

func runCurrencyConvert(_ *cobra.Command, args []string) error {
	amount, ok := budget.ParseAmount(args[0])
	if !ok {
		return fmt.Errorf("%q is not an amount", args[0])
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	from := strings.ToUpper(args[1])
	to := s.planner.Currency()
	if len(args) == 3 {
		to = strings.ToUpper(args[2])
	}

	conv := s.planner.Converter()
	out, err := conv.Convert(amount, from, to)
	if err != nil {
		return err
	}
	rate, _ := conv.Convert(decimal.NewFromInt(1), from, to)
	fmt.Printf("  %s = %s\n", conv.FormatAmount(amount, from), conv.FormatAmount(out, to))
	progress("  1 %s = %s %s (%s)\n", from, cli.FormatRate(rate), to, ratesLabel(s))
	return nil
}

func ratesLabel(s *session) string {
	info := s.planner.Rates()
	if info.Source == "offline" {
		return "offline rates"
	}
	return "rates " + cli.FormatAge(info.FetchedAt, time.Now())
}

func runCurrencySuggest(_ *cobra.Command, args []string) error {
	country := strings.Join(args, " ")
	code, ok := currency.SuggestForCountry(country)
	if !ok {
		return fmt.Errorf("unknown country %q", country)
	}
	c, _ := refdata.LookupCountry(country)
	name := code
	if cur, ok := refdata.LookupCurrency(code); ok {
		name = fmt.Sprintf("%s (%s, %s)", code, cur.Name, cur.Symbol)
	}
	fmt.Printf("  %s %s: %s\n", c.Flag(), c.Name, name)
	return nil
}

func runCurrencyList(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	conv := s.planner.Converter()
	cur := s.planner.Currency()
	rows := make([][]string, 0, len(refdata.Currencies()))
	for _, c := range refdata.Currencies() {
		rate := "—"
		if r, ok := conv.Rate(c.Code); ok {
			rate = cli.FormatRate(r)
		}
		code := c.Code
		if code == cur {
			code += " *"
		}
		rows = append(rows, []string{c.Flag() + " " + code, c.Name, c.Symbol, rate})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Currencies (%s)", ratesLabel(s)),
		Headers: []string{"Code", "Name", "Symbol", "Per USD"},
		Rows:    rows,
	}))
	fmt.Println("  * budget currency")
	return nil
}

func runCurrencyRefresh(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	client := rates.NewClient(s.cfg.Currency.RatesURL)
	progress("  Fetching rates from %s...\n", client.BaseURL())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	info, err := s.planner.RefreshRates(ctx, client)
	if errors.Is(err, rates.ErrRateLimited) {
		return fmt.Errorf("%w; the cached table stays in use, try again later", err)
	}
	if err != nil {
		return err
	}
	fmt.Printf("  Updated %d currencies from %s\n", info.Count, info.Source)
	return nil
}
