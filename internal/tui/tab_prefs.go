package tui

import (
	"strings"

	"github.com/theirongolddev/abroad/internal/prefs"
	"github.com/theirongolddev/abroad/internal/selection"
	"github.com/theirongolddev/abroad/internal/tui/components"
	"github.com/theirongolddev/abroad/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pickerRows is how many dropdown rows an open picker shows.
const pickerRows = 8

type prefsState struct {
	fields  []prefs.Field
	engines []*selection.Engine
	cursor  int
}

func (s prefsState) focused() *selection.Engine {
	return s.engines[s.cursor]
}

func (a App) updatePrefsKeys(key string) (tea.Model, tea.Cmd) {
	e := a.prefs.focused()

	switch key {
	case "j", "tab":
		a.prefs.cursor = (a.prefs.cursor + 1) % len(a.prefs.engines)
		return a, nil
	case "k", "shift+tab":
		a.prefs.cursor = (a.prefs.cursor - 1 + len(a.prefs.engines)) % len(a.prefs.engines)
		return a, nil
	case "backspace":
		before := a.planner.Currency()
		e.RemoveLast()
		cmd := a.currencyNotice(before)
		return a, cmd
	case "X":
		before := a.planner.Currency()
		e.ClearAll()
		cmd := a.currencyNotice(before)
		return a, cmd
	case " ":
		e.Open()
		return a, nil
	}

	// Anything else (enter, arrows, printable keys) opens the picker, and a
	// printable key starts a search.
	e.HandleKey(key)
	return a, nil
}

func (a App) updatePrefsPicker(key string) (tea.Model, tea.Cmd) {
	e := a.prefs.focused()
	before := a.planner.Currency()

	switch key {
	case "tab", "shift+tab":
		e.Close()
		return a.updatePrefsKeys(key)
	case "backspace":
		if e.Query() == "" {
			e.RemoveLast()
			cmd := a.currencyNotice(before)
			return a, cmd
		}
	}

	if e.HandleKey(key) == selection.ActionNone && key == "enter" {
		if s, ok := e.Suggest(); ok {
			cmd := a.flash(components.StatusInfo, "No match. Did you mean "+s.DisplayLabel()+"?")
			return a, cmd
		}
	}
	cmd := a.currencyNotice(before)
	return a, cmd
}

func (a App) renderPrefsTab(cw int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background)

	var b strings.Builder
	b.WriteString(dim.Render(" [j/k] pick field  [enter] open  [type] search  [backspace] remove last  [X] clear"))

	y := headerHeight + 1
	x := a.contentOffsetX()
	for i, e := range a.prefs.engines {
		box := components.RenderSelectBox(e, a.prefs.fields[i].Title, i == a.prefs.cursor, cw, pickerRows)
		h := lipgloss.Height(box)
		// Hit areas follow the layout that was last drawn.
		e.SetBounds(selection.Bounds{X: x, Y: y, Width: cw, Height: h})
		y += h

		b.WriteString("\n")
		b.WriteString(box)
	}
	return b.String()
}
