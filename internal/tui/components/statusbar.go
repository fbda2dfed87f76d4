package components

import (
	"strings"

	"github.com/theirongolddev/abroad/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusLevel colors the status bar message.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusOK
	StatusWarn
)

// RenderStatusBar renders the bottom status bar: key hints on the left, a
// transient message in the middle and rate info on the right.
func RenderStatusBar(width int, message string, level StatusLevel, right string) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgStyle := base
	switch level {
	case StatusOK:
		msgStyle = msgStyle.Foreground(t.Green)
	case StatusWarn:
		msgStyle = msgStyle.Foreground(t.Orange)
	}

	left := base.Render(" [?]help  [ctrl+s]save  [q]uit")
	if message != "" {
		left += base.Render("  ") + msgStyle.Render(message)
	}
	if right != "" {
		right = base.Render(right + " ")
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + base.Render(strings.Repeat(" ", padding)) + right
}
