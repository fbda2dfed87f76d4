// Package theme defines color themes for the abroad TUI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Highlighted surface (active tab, focused row)
	SurfaceBright lipgloss.Color // Selected row
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // Focused picker
	TextDim       lipgloss.Color
	TextMuted     lipgloss.Color
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color
	Green         lipgloss.Color
	Orange        lipgloss.Color
	Red           lipgloss.Color
	Yellow        lipgloss.Color
	Cyan          lipgloss.Color
}

// Active is the currently selected theme.
var Active = Harbor

// Harbor is the default theme: deep navy with sea-glass accents.
var Harbor = Theme{
	Name:          "harbor",
	Background:    lipgloss.Color("#0F1419"),
	Surface:       lipgloss.Color("#161D25"),
	SurfaceHover:  lipgloss.Color("#1F2933"),
	SurfaceBright: lipgloss.Color("#2A3642"),
	Border:        lipgloss.Color("#2A3440"),
	BorderAccent:  lipgloss.Color("#4FB3BF"),
	TextDim:       lipgloss.Color("#56616E"),
	TextMuted:     lipgloss.Color("#8A96A3"),
	TextPrimary:   lipgloss.Color("#ECEFF4"),
	Accent:        lipgloss.Color("#4FB3BF"),
	AccentBright:  lipgloss.Color("#7FD4DE"),
	Green:         lipgloss.Color("#8FBF6A"),
	Orange:        lipgloss.Color("#E39B52"),
	Red:           lipgloss.Color("#E06C75"),
	Yellow:        lipgloss.Color("#E5C07B"),
	Cyan:          lipgloss.Color("#56B6C2"),
}

// Campus is a warm brick-and-ivy theme.
var Campus = Theme{
	Name:          "campus",
	Background:    lipgloss.Color("#1A1613"),
	Surface:       lipgloss.Color("#241F1B"),
	SurfaceHover:  lipgloss.Color("#2F2823"),
	SurfaceBright: lipgloss.Color("#3B322B"),
	Border:        lipgloss.Color("#4A3F36"),
	BorderAccent:  lipgloss.Color("#C9764F"),
	TextDim:       lipgloss.Color("#6E6258"),
	TextMuted:     lipgloss.Color("#A3958A"),
	TextPrimary:   lipgloss.Color("#F4EDE4"),
	Accent:        lipgloss.Color("#C9764F"),
	AccentBright:  lipgloss.Color("#E59A74"),
	Green:         lipgloss.Color("#8DAA5B"),
	Orange:        lipgloss.Color("#D9893B"),
	Red:           lipgloss.Color("#C8553D"),
	Yellow:        lipgloss.Color("#D8B45A"),
	Cyan:          lipgloss.Color("#6FA8A0"),
}

// Atlas is a light, paper-map theme.
var Atlas = Theme{
	Name:          "atlas",
	Background:    lipgloss.Color("#F7F3E8"),
	Surface:       lipgloss.Color("#EFE9DA"),
	SurfaceHover:  lipgloss.Color("#E5DDC9"),
	SurfaceBright: lipgloss.Color("#D9CFB7"),
	Border:        lipgloss.Color("#C8BEA6"),
	BorderAccent:  lipgloss.Color("#2F6F8F"),
	TextDim:       lipgloss.Color("#A39A86"),
	TextMuted:     lipgloss.Color("#6B6455"),
	TextPrimary:   lipgloss.Color("#2B2822"),
	Accent:        lipgloss.Color("#2F6F8F"),
	AccentBright:  lipgloss.Color("#1F5673"),
	Green:         lipgloss.Color("#4E7A2E"),
	Orange:        lipgloss.Color("#B5651D"),
	Red:           lipgloss.Color("#A23B2C"),
	Yellow:        lipgloss.Color("#9C7A12"),
	Cyan:          lipgloss.Color("#2A7B7B"),
}

// Terminal uses ANSI 16 colors only - maximum compatibility.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	Green:         lipgloss.Color("2"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Yellow:        lipgloss.Color("3"),
	Cyan:          lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{Harbor, Campus, Atlas, Terminal}

// Names lists the theme names in All order.
func Names() []string {
	out := make([]string, len(All))
	for i, t := range All {
		out[i] = t.Name
	}
	return out
}

// ByName returns a theme by its name, defaulting to Harbor.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return Harbor
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
