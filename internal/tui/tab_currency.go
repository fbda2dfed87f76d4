package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/abroad/internal/cli"
	"github.com/theirongolddev/abroad/internal/currency"
	"github.com/theirongolddev/abroad/internal/refdata"
	"github.com/theirongolddev/abroad/internal/selection"
	"github.com/theirongolddev/abroad/internal/tui/components"
	"github.com/theirongolddev/abroad/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var decimalOne = decimal.NewFromInt(1)

// compareCodes are always listed in the comparison card.
var compareCodes = []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CHF"}

type currencyState struct {
	picker *selection.Engine
}

func newCurrencyState() currencyState { return currencyState{} }

func newCurrencyPicker(code string, reg selection.Registrar) *selection.Engine {
	return selection.New(selection.Config{
		Options:           currency.Options(),
		Value:             selection.FromValues(code),
		Placeholder:       "Choose a currency",
		SearchPlaceholder: "Search by code or name...",
		Registrar:         reg,
	})
}

func (a App) updateCurrencyKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter", "down", "up", " ":
		a.currency.picker.Open()
		return a, nil
	}
	a.currency.picker.HandleKey(key)
	return a, nil
}

func (a App) updateCurrencyPicker(key string) (tea.Model, tea.Cmd) {
	if a.currency.picker.HandleKey(key) == selection.ActionToggled {
		return a.applyPickedCurrency()
	}
	return a, nil
}

// applyPickedCurrency converts the budget into the picker's value, rolling
// the picker back when the conversion is refused.
func (a App) applyPickedCurrency() (tea.Model, tea.Cmd) {
	v := a.currency.picker.Value()
	before := a.planner.Currency()
	if len(v) == 0 || v[0].Value == before {
		return a, nil
	}
	if err := a.planner.ChooseCurrency(v[0].Value); err != nil {
		a.currency.picker.SetValue(selection.FromValues(before))
		cmd := a.flash(components.StatusWarn, err.Error())
		return a, cmd
	}
	cmd := a.flash(components.StatusOK, fmt.Sprintf("Budget converted %s → %s", before, a.planner.Currency()))
	return a, cmd
}

func (a App) renderCurrencyTab(cw int) string {
	t := theme.Active
	conv := a.planner.Converter()
	cur := a.planner.Currency()
	total := a.planner.Budget().Total().Annual

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	picker := components.RenderSelectBox(a.currency.picker, "Budget currency", true, cw, pickerRows)
	a.currency.picker.SetBounds(selection.Bounds{
		X:      a.contentOffsetX(),
		Y:      headerHeight,
		Width:  cw,
		Height: lipgloss.Height(picker),
	})

	codes := compareCodes
	if s, ok := currency.SuggestForCountry(a.planner.PlanningCountry()); ok {
		codes = append([]string{s}, codes...)
	}
	seen := map[string]bool{cur: true}

	var cmp strings.Builder
	cmp.WriteString(labelStyle.Render("Annual budget ") + accentStyle.Render(conv.FormatAmount(total, cur)) + labelStyle.Render(" is"))
	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true
		out, err := conv.Convert(total, cur, code)
		if err != nil {
			continue
		}
		rate, _ := conv.Convert(decimalOne, cur, code)
		name := code
		if c, ok := refdata.LookupCurrency(code); ok {
			name = c.Name
		}
		cmp.WriteString("\n")
		cmp.WriteString(valueStyle.Render(fmt.Sprintf("  %-22s %18s", cli.Truncate(name, 22), conv.FormatAmount(out, code))))
		cmp.WriteString(dimStyle.Render(fmt.Sprintf("   1 %s = %s %s", cur, cli.FormatRate(rate), code)))
	}

	info := a.planner.Rates()
	var src strings.Builder
	src.WriteString(labelStyle.Render("Source:     ") + valueStyle.Render(info.Source) + "\n")
	src.WriteString(labelStyle.Render("Updated:    ") + valueStyle.Render(cli.FormatAge(info.FetchedAt, time.Now())) + "\n")
	src.WriteString(labelStyle.Render("Currencies: ") + valueStyle.Render(fmt.Sprintf("%d", info.Count)) + "\n\n")
	src.WriteString(dimStyle.Render("[enter] change currency  [r] refresh rates"))

	widths := components.LayoutRow(cw, 2)
	row := components.CardRow([]string{
		components.ContentCard("Compared", cmp.String(), widths[0]),
		components.ContentCard("Rates", src.String(), widths[1]),
	})
	if cw < 110 {
		row = components.ContentCard("Compared", cmp.String(), cw) + "\n" +
			components.ContentCard("Rates", src.String(), cw)
	}
	return picker + "\n" + row
}
