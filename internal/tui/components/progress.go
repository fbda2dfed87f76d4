package components

import (
	"fmt"

	"github.com/theirongolddev/abroad/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForShare returns the bar color for a budget line's share of the
// total: larger shares get warmer colors.
func ColorForShare(share float64) string {
	t := theme.Active
	switch {
	case share >= 0.5:
		return string(t.Red)
	case share >= 0.3:
		return string(t.Orange)
	case share >= 0.15:
		return string(t.Yellow)
	default:
		return string(t.Accent)
	}
}

// ShareBar renders a labeled bar with the percentage of the total.
func ShareBar(label string, share float64, labelW, barWidth int) string {
	t := theme.Active

	share = max(0, min(1, share))

	bar := progress.New(
		progress.WithSolidFill(ColorForShare(share)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForShare(share))).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(share) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", share*100))
}
