package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/abroad/internal/budget"
	"github.com/theirongolddev/abroad/internal/refdata"
	"github.com/theirongolddev/abroad/internal/tui/components"
	"github.com/theirongolddev/abroad/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// budgetRowsTop is the content line of the first budget row: the metric
// row (5 lines) plus the lines card border and title.
const budgetRowsTop = 7

const budgetLabelWidth = 18

type budgetState struct {
	categories []budget.Category
	cursor     int
	editing    bool
	input      textinput.Model
}

func newBudgetState() budgetState {
	return budgetState{categories: budget.Categories()}
}

func (s *budgetState) move(delta int) {
	n := len(s.categories)
	if n == 0 {
		return
	}
	s.cursor = max(0, min(n-1, s.cursor+delta))
}

func (s budgetState) selected() budget.Category {
	return s.categories[s.cursor]
}

func (a App) updateBudgetKeys(key string) (tea.Model, tea.Cmd) {
	calc := a.planner.Budget()

	switch key {
	case "j", "down":
		a.budget.move(1)
	case "k", "up":
		a.budget.move(-1)
	case "g":
		a.budget.cursor = 0
	case "G":
		a.budget.cursor = len(a.budget.categories) - 1
	case "enter", "e":
		ti := textinput.New()
		ti.CharLimit = 20
		ti.Width = 20
		ti.Prompt = ""
		ti.Placeholder = "amount " + string(calc.Unit())
		ti.SetValue(calc.Display(a.budget.selected()))
		ti.Focus()
		a.budget.input = ti
		a.budget.editing = true
		return a, textinput.Blink
	case "u":
		next := budget.Monthly
		if calc.Unit() == budget.Monthly {
			next = budget.Annual
		}
		a.planner.SetUnit(next)
		cmd := a.flash(components.StatusInfo, "Showing "+string(next)+" amounts")
		return a, cmd
	case "P":
		country := a.planner.PlanningCountry()
		code := refdata.CountryCode(country)
		if err := calc.ApplyPreset(code); err != nil {
			cmd := a.flash(components.StatusWarn, err.Error())
			return a, cmd
		}
		label := country
		if label == "" {
			label = "default"
		}
		cmd := a.flash(components.StatusOK, "Applied "+label+" preset")
		return a, cmd
	case "D":
		calc.Clear()
		cmd := a.flash(components.StatusInfo, "Budget cleared")
		return a, cmd
	}
	return a, nil
}

func (a App) updateBudgetInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		raw := strings.TrimSpace(a.budget.input.Value())
		a.planner.Budget().SetField(a.budget.selected(), raw)
		a.budget.editing = false
		if _, ok := budget.ParseAmount(raw); raw != "" && !ok {
			cmd := a.flash(components.StatusWarn, fmt.Sprintf("%q is not an amount; line cleared", raw))
			return a, cmd
		}
		a.budget.move(1)
		return a, nil
	case "esc":
		a.budget.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.budget.input, cmd = a.budget.input.Update(msg)
	return a, cmd
}

// forwardToInput passes non-key messages (cursor blink) to the active input.
func (a App) forwardToInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case a.budget.editing:
		a.budget.input, cmd = a.budget.input.Update(msg)
	case a.settings.editing:
		a.settings.input, cmd = a.settings.input.Update(msg)
	}
	return a, cmd
}

func (a App) renderBudgetTab(cw int) string {
	t := theme.Active
	calc := a.planner.Budget()
	conv := a.planner.Converter()
	cur := calc.Currency()

	totals := calc.Total()
	filled := 0
	for _, cat := range a.budget.categories {
		if calc.Stored(cat) != "" {
			filled++
		}
	}
	country := a.planner.PlanningCountry()
	countryLabel := "not set"
	if c, ok := refdata.LookupCountry(country); ok {
		countryLabel = c.Flag() + " " + c.Name
	} else if country != "" {
		countryLabel = country
	}

	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Per year", Value: totals.AnnualText, Delta: cur},
		{Label: "Per month", Value: totals.MonthlyText, Delta: cur},
		{Label: "Lines filled", Value: fmt.Sprintf("%d / %d", filled, len(a.budget.categories)), Delta: "showing " + string(calc.Unit())},
		{Label: "Destination", Value: countryLabel, Delta: "[P] apply preset"},
	}, cw)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	selLabel := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	selValue := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	bg := lipgloss.NewStyle().Background(t.Surface)

	inner := components.CardInnerWidth(cw)
	amountW := 18
	barW := max(inner-2-budgetLabelWidth-1-amountW-1-6, 4)

	var body strings.Builder
	for i, cat := range a.budget.categories {
		if i > 0 {
			body.WriteString("\n")
		}
		selected := i == a.budget.cursor

		amount := dimStyle.Render(fmt.Sprintf("%*s", amountW, "—"))
		if d, ok := budget.ParseAmount(calc.Display(cat)); ok {
			amount = valueStyle.Render(fmt.Sprintf("%*s", amountW, conv.FormatAmount(d, cur)))
		}
		if selected && a.budget.editing {
			body.WriteString(markerStyle.Render("▸ "))
			body.WriteString(selLabel.Render(fmt.Sprintf("%-*s", budgetLabelWidth, cat.Label())))
			body.WriteString(bg.Render(" "))
			body.WriteString(a.budget.input.View())
			continue
		}

		if selected {
			body.WriteString(markerStyle.Render("▸ "))
			body.WriteString(selLabel.Render(fmt.Sprintf("%-*s", budgetLabelWidth, cat.Label())))
			if d, ok := budget.ParseAmount(calc.Display(cat)); ok {
				amount = selValue.Render(fmt.Sprintf("%*s", amountW, conv.FormatAmount(d, cur)))
			}
		} else {
			body.WriteString(bg.Render("  "))
			body.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", budgetLabelWidth, cat.Label())))
		}
		body.WriteString(bg.Render(" "))
		body.WriteString(amount)
		body.WriteString(bg.Render(" "))
		body.WriteString(components.ShareBar("", calc.Share(cat), 0, barW))
	}

	body.WriteString("\n\n")
	body.WriteString(dimStyle.Render("[j/k] move  [enter] edit  [u] annual/monthly  [P] preset  [D] clear"))

	title := fmt.Sprintf("Budget lines (%s, %s)", cur, calc.Unit())
	return metrics + "\n" + components.ContentCard(title, body.String(), cw)
}
