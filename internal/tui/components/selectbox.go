package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/abroad/internal/cli"
	"github.com/theirongolddev/abroad/internal/selection"
	"github.com/theirongolddev/abroad/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// OptionRowOffset is the line of the first option row inside a rendered
// select box: top border, title, selected items, search line.
const OptionRowOffset = 4

// SelectWindow returns the slice [start, start+count) of n rows to show so
// that focus stays visible.
func SelectWindow(focus, n, maxRows int) (start, count int) {
	if n <= 0 || maxRows <= 0 {
		return 0, 0
	}
	if n <= maxRows {
		return 0, n
	}
	start = focus - maxRows/2
	start = max(0, min(start, n-maxRows))
	return start, maxRows
}

// RenderSelectBox renders a picker card for e. The dropdown rows are only
// drawn while the engine is open.
func RenderSelectBox(e *selection.Engine, title string, focused bool, outerWidth, maxRows int) string {
	t := theme.Active
	inner := CardInnerWidth(outerWidth)

	bg := lipgloss.NewStyle().Background(t.Surface)
	valueStyle := bg.Foreground(t.TextPrimary)
	dimStyle := bg.Foreground(t.TextDim)
	mutedStyle := bg.Foreground(t.TextMuted)
	accentStyle := bg.Foreground(t.Accent).Bold(true)
	rowFocus := lipgloss.NewStyle().Background(t.SurfaceBright).Foreground(t.TextPrimary).Bold(true)

	var b strings.Builder

	chosen := e.Display()
	if len(chosen) == 0 {
		b.WriteString(dimStyle.Render(cli.Truncate(e.Placeholder(), inner)))
	} else {
		labels := make([]string, len(chosen))
		for i, o := range chosen {
			labels[i] = optionText(o)
		}
		sep := " · "
		if !e.Multiple() {
			sep = ""
		}
		b.WriteString(valueStyle.Render(cli.Truncate(strings.Join(labels, sep), inner)))
	}

	if !e.IsOpen() {
		return card(title, b.String(), outerWidth, focused)
	}

	b.WriteString("\n")
	if q := e.Query(); q != "" {
		b.WriteString(accentStyle.Render("› ") + valueStyle.Render(q) + accentStyle.Render("▏"))
	} else {
		b.WriteString(accentStyle.Render("› ") + dimStyle.Render(e.SearchPlaceholder()))
	}

	filtered := e.Filtered()
	start, count := SelectWindow(e.Focus(), len(filtered), maxRows)
	for i := start; i < start+count; i++ {
		o := filtered[i]
		marker := "[ ] "
		if !e.Multiple() {
			marker = "( ) "
		}
		if e.IsSelected(o.Value) {
			marker = "[x] "
			if !e.Multiple() {
				marker = "(•) "
			}
		}
		line := padTo(marker+cli.Truncate(optionText(o), inner-4), inner)
		b.WriteString("\n")
		if i == e.Focus() {
			b.WriteString(rowFocus.Render(line))
		} else {
			b.WriteString(valueStyle.Render(line))
		}
	}

	switch {
	case e.CanCreate():
		b.WriteString("\n")
		b.WriteString(accentStyle.Render(fmt.Sprintf("+ Add %q", strings.TrimSpace(e.Query()))))
		b.WriteString(mutedStyle.Render("  [enter]"))
	case len(filtered) == 0:
		b.WriteString("\n")
		if s, ok := e.Suggest(); ok {
			b.WriteString(mutedStyle.Render("No matches. Did you mean ") + accentStyle.Render(s.DisplayLabel()) + mutedStyle.Render("?"))
		} else {
			b.WriteString(mutedStyle.Render("No matches"))
		}
	case count < len(filtered):
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d of %d", count, len(filtered))))
	}

	return card(title, b.String(), outerWidth, focused)
}

func optionText(o selection.Option) string { return o.DisplayLabel() }

func padTo(s string, w int) string {
	if n := lipgloss.Width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
