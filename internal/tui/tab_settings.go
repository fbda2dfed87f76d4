package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/theirongolddev/abroad/internal/config"
	"github.com/theirongolddev/abroad/internal/tui/components"
	"github.com/theirongolddev/abroad/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// settingsField maps a row of the settings form to a config key.
type settingsField struct {
	label       string
	key         string
	placeholder string
}

var settingsFields = []settingsField{
	{"Home country", "general.home_country", "e.g. Canada"},
	{"Default currency", "budget.currency", "ISO 4217 code, e.g. EUR"},
	{"Default unit", "budget.unit", "annual or monthly"},
	{"Theme", "appearance.theme", strings.Join(theme.Names(), ", ")},
	{"Keep manual currency", "currency.respect_manual", "true or false"},
	{"Rates URL", "currency.rates_url", "https://open.er-api.com/v6/latest/"},
	{"Refresh minutes", "currency.refresh_minutes", "360"},
	{"Log level", "logging.level", "debug, info, warn, error"},
}

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func (a App) updateSettingsKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		a.settings.cursor = min(a.settings.cursor+1, len(settingsFields)-1)
	case "k", "up":
		a.settings.cursor = max(a.settings.cursor-1, 0)
	case "enter":
		return a.settingsStartEdit()
	}
	return a, nil
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	f := settingsFields[a.settings.cursor]
	a.settings.editing = true
	a.settings.saved = false

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	ti.Placeholder = f.placeholder
	if v, err := a.cfg.Get(f.key); err == nil {
		ti.SetValue(v)
	}
	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

func (a *App) settingsSave() {
	f := settingsFields[a.settings.cursor]
	val := strings.TrimSpace(a.settings.input.Value())

	if f.key == "appearance.theme" && !slices.Contains(theme.Names(), val) {
		a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
		return
	}

	cfg := a.cfg
	if err := cfg.Set(f.key, val); err != nil {
		a.settings.saveErr = err
		return
	}
	if err := config.Save(cfg); err != nil {
		a.log.Warn("saving config", zap.Error(err))
		a.settings.saveErr = err
		return
	}
	a.cfg = cfg
	a.settings.saveErr = nil

	switch f.key {
	case "appearance.theme":
		theme.SetActive(val)
	case "general.home_country":
		a.planner.SetHomeCountry(val)
		a.planner.CountryChanged()
	}
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	var formBody strings.Builder
	for i, f := range settingsFields {
		value, _ := a.cfg.Get(f.key)
		if value == "" {
			value = "(not set)"
		}

		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-22s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-22s ", f.label+":"))
			val := selectedStyle.Render(value)
			formBody.WriteString(marker + label + val)
			padLen := components.CardInnerWidth(cw) - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(val)
			if padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-22s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	prof := a.planner.Profile()
	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Profile:      ") + valueStyle.Render(prof.Name) + "\n")
	infoBody.WriteString(labelStyle.Render("Home country: ") + valueStyle.Render(orNotSet(prof.HomeCountry)) + "\n")
	infoBody.WriteString(labelStyle.Render("Database:     ") + valueStyle.Render(a.cfg.DBPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.ConfigPath()))

	return components.ContentCard("Settings", formBody.String(), cw) + "\n" +
		components.ContentCard("Profile", infoBody.String(), cw)
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
