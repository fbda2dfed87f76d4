// Package tui provides the interactive Bubble Tea planner for abroad.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/abroad/internal/cli"
	"github.com/theirongolddev/abroad/internal/config"
	"github.com/theirongolddev/abroad/internal/planner"
	"github.com/theirongolddev/abroad/internal/prefs"
	"github.com/theirongolddev/abroad/internal/rates"
	"github.com/theirongolddev/abroad/internal/selection"
	"github.com/theirongolddev/abroad/internal/tui/components"
	"github.com/theirongolddev/abroad/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// RatesFetchedMsg is sent when a background rate fetch completes.
type RatesFetchedMsg struct {
	Snapshot *rates.Snapshot
	Err      error
}

type clearStatusMsg struct{ seq int }

const (
	tabBudget = iota
	tabPrefs
	tabCurrency
	tabSettings
)

const (
	minTerminalWidth = 70
	maxContentWidth  = 140
	minContentHeight = 5
	headerHeight     = 1

	statusTTL = 4 * time.Second
)

// App is the root Bubble Tea model.
type App struct {
	planner   *planner.Planner
	cfg       config.Config
	fetcher   planner.Fetcher
	log       *zap.Logger
	listeners *selection.Listeners

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	budget   budgetState
	prefs    prefsState
	currency currencyState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool

	spinner    spinner.Model
	refreshing bool

	status      string
	statusLevel components.StatusLevel
	statusSeq   int
}

// NewApp creates the TUI model over an open planner. With needSetup the
// first-run form is shown before anything else.
func NewApp(p *planner.Planner, cfg config.Config, fetcher planner.Fetcher, log *zap.Logger, needSetup bool) (App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	theme.SetActive(cfg.Appearance.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		planner:   p,
		cfg:       cfg,
		fetcher:   fetcher,
		log:       log,
		listeners: selection.NewListeners(),
		spinner:   sp,
		needSetup: needSetup,
		budget:    newBudgetState(),
		currency:  newCurrencyState(),
	}

	for _, f := range prefs.Fields() {
		e, err := p.Engine(f.Key, a.listeners)
		if err != nil {
			return App{}, err
		}
		a.prefs.fields = append(a.prefs.fields, f)
		a.prefs.engines = append(a.prefs.engines, e)
	}
	a.currency.picker = newCurrencyPicker(p.Currency(), a.listeners)

	// Stale tables are refreshed in the background on start.
	maxAge := time.Duration(cfg.Currency.RefreshMinutes) * time.Minute
	if fetcher != nil && time.Since(p.Rates().FetchedAt) > maxAge {
		a.refreshing = true
	}

	if needSetup {
		a.setupVals = newSetupValues(cfg, p)
		a.setupForm = newSetupForm(a.setupVals)
	}
	return a, nil
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion}
	if a.refreshing {
		cmds = append(cmds, a.spinner.Tick, fetchRatesCmd(a.fetcher))
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.setupForm != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a.quit()
		}

		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		// Text inputs and open pickers intercept all keys.
		switch {
		case a.activeTab == tabBudget && a.budget.editing:
			return a.updateBudgetInput(msg)
		case a.activeTab == tabSettings && a.settings.editing:
			return a.updateSettingsInput(msg)
		case a.activeTab == tabPrefs && a.prefs.focused().IsOpen():
			return a.updatePrefsPicker(key)
		case a.activeTab == tabCurrency && a.currency.picker.IsOpen():
			return a.updateCurrencyPicker(key)
		}

		if a.showHelp {
			if key == "?" || key == "esc" || key == "q" {
				a.showHelp = false
			}
			return a, nil
		}

		switch key {
		case "q":
			return a.quit()
		case "?":
			a.showHelp = true
			return a, nil
		case "ctrl+s":
			cmd := a.save()
			return a, cmd
		case "r":
			return a.startRefresh()
		case "left":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
			return a, nil
		case "right":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		}

		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
				return a, nil
			}
		}

		switch a.activeTab {
		case tabBudget:
			return a.updateBudgetKeys(key)
		case tabPrefs:
			return a.updatePrefsKeys(key)
		case tabCurrency:
			return a.updateCurrencyKeys(key)
		case tabSettings:
			return a.updateSettingsKeys(key)
		}
		return a, nil

	case RatesFetchedMsg:
		a.refreshing = false
		err := msg.Err
		var info planner.RatesInfo
		if err == nil {
			info, err = a.planner.ApplySnapshot(msg.Snapshot)
		}
		if err != nil {
			a.log.Warn("rate refresh failed", zap.Error(err))
			cmd := a.flash(components.StatusWarn, "Rate refresh failed: "+err.Error())
			return a, cmd
		}
		cmd := a.flash(components.StatusOK, fmt.Sprintf("Rates updated from %s (%d currencies)", info.Source, info.Count))
		return a, cmd

	case clearStatusMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
		}
		return a, nil

	case spinner.TickMsg:
		if a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.budget.editing || a.settings.editing {
		return a.forwardToInput(msg)
	}
	return a, nil
}

func (a App) quit() (tea.Model, tea.Cmd) {
	a.disposePickers()
	if a.planner.Dirty() {
		if err := a.planner.Save(); err != nil {
			a.log.Error("saving on exit", zap.Error(err))
		}
	}
	return a, tea.Quit
}

// syncPickers reloads picker values after the profile changed underneath.
func (a App) syncPickers() {
	for i, e := range a.prefs.engines {
		e.SetValue(a.planner.Preference(a.prefs.fields[i].Key))
	}
	a.currency.picker.SetValue(selection.FromValues(a.planner.Currency()))
}

func (a App) disposePickers() {
	for _, e := range a.prefs.engines {
		e.Dispose()
	}
	a.currency.picker.Dispose()
}

func (a *App) save() tea.Cmd {
	if err := a.planner.Save(); err != nil {
		a.log.Error("saving profile", zap.Error(err))
		return a.flash(components.StatusWarn, "Save failed: "+err.Error())
	}
	return a.flash(components.StatusOK, "Saved profile "+a.planner.Profile().Name)
}

func (a App) startRefresh() (tea.Model, tea.Cmd) {
	if a.refreshing || a.fetcher == nil {
		return a, nil
	}
	a.refreshing = true
	return a, tea.Batch(a.spinner.Tick, fetchRatesCmd(a.fetcher))
}

// flash shows a transient status message.
func (a *App) flash(level components.StatusLevel, msg string) tea.Cmd {
	a.statusSeq++
	a.status = msg
	a.statusLevel = level
	seq := a.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

// currencyNotice reports an automatic currency switch caused by an edit.
func (a *App) currencyNotice(before string) tea.Cmd {
	after := a.planner.Currency()
	if after == before {
		return nil
	}
	a.currency.picker.SetValue(selection.FromValues(after))
	return a.flash(components.StatusInfo, fmt.Sprintf("Budget converted %s → %s", before, after))
}

// fetchRatesCmd fetches rates in a background goroutine. The table is
// applied to the planner back in Update.
func fetchRatesCmd(f planner.Fetcher) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		snap, err := f.FetchLatest(ctx, "USD")
		return RatesFetchedMsg{Snapshot: snap, Err: err}
	}
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		before := a.planner.Currency()
		cfg, err := a.setupVals.apply(a.cfg, a.planner)
		a.cfg = cfg
		a.needSetup = false
		a.setupForm = nil
		a.syncPickers()
		if err != nil {
			a.log.Warn("saving setup", zap.Error(err))
			cmd := a.flash(components.StatusWarn, "Setup not saved: "+err.Error())
			return a, cmd
		}
		theme.SetActive(cfg.Appearance.Theme)
		notice := a.currencyNotice(before)
		saved := a.flash(components.StatusOK, "Saved to "+config.ConfigPath())
		return a, tea.Batch(notice, saved)
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// contentOffsetX is the screen column where centered content starts.
func (a App) contentOffsetX() int {
	return (a.width - a.contentWidth()) / 2
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  abroad needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"b p c x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move between rows and pickers"},
		}},
		{"Budget", [][2]string{
			{"enter", "Edit the selected line"},
			{"u", "Toggle annual / monthly"},
			{"P", "Apply the destination preset"},
			{"D", "Clear every line"},
		}},
		{"Pickers", [][2]string{
			{"enter ↓", "Open, then toggle the highlighted item"},
			{"type", "Filter; enter adds a new item where allowed"},
			{"backspace", "Remove the last item when the search is empty"},
			{"esc", "Close"},
		}},
		{"General", [][2]string{
			{"r", "Refresh exchange rates"},
			{"ctrl+s", "Save profile"},
			{"? q", "Help / Quit (saves)"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	for _, s := range sections {
		b.WriteString("\n\n")
		b.WriteString(sectionStyle.Render(s.title))
		for _, kv := range s.bindings {
			b.WriteString("\n")
			b.WriteString(keyStyle.Render(fmt.Sprintf("  %-10s", kv[0])))
			b.WriteString(descStyle.Render(kv[1]))
		}
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	info := a.planner.Rates()
	right := fmt.Sprintf("%s · %s · rates %s", a.planner.Profile().Name, a.planner.Currency(), cli.FormatAge(info.FetchedAt, time.Now()))
	if info.Source == "offline" {
		right = fmt.Sprintf("%s · %s · offline rates", a.planner.Profile().Name, a.planner.Currency())
	}
	msg := a.status
	if a.refreshing {
		msg = a.spinner.View() + " Refreshing rates..."
	}
	statusBar := components.RenderStatusBar(w, msg, a.statusLevel, right)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabBudget:
		content = a.renderBudgetTab(cw)
	case tabPrefs:
		content = a.renderPrefsTab(cw)
	case tabCurrency:
		content = a.renderCurrencyTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Mouse Support ──────────────────────────────────────────────

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return a.scroll(-1)
	case tea.MouseButtonWheelDown:
		return a.scroll(1)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
	default:
		return a, nil
	}

	if msg.Y < headerHeight {
		if tab := a.tabAtX(msg.X); tab >= 0 {
			a.activeTab = tab
		}
		// Clicking the tab bar is outside every picker.
		a.listeners.Dispatch(selection.PointerEvent{X: msg.X, Y: msg.Y})
		return a, nil
	}

	// Open pickers close themselves when the press lands outside them.
	a.listeners.Dispatch(selection.PointerEvent{X: msg.X, Y: msg.Y})

	switch a.activeTab {
	case tabPrefs:
		for i, e := range a.prefs.engines {
			if e.Bounds().Contains(msg.X, msg.Y) {
				a.prefs.cursor = i
				before := a.planner.Currency()
				clickPicker(e, msg.Y)
				cmd := a.currencyNotice(before)
				return a, cmd
			}
		}
	case tabCurrency:
		e := a.currency.picker
		if e.Bounds().Contains(msg.X, msg.Y) {
			clickPicker(e, msg.Y)
			return a.applyPickedCurrency()
		}
	case tabBudget:
		if row := msg.Y - headerHeight - budgetRowsTop; row >= 0 && row < len(a.budget.categories) {
			a.budget.cursor = row
		}
	}
	return a, nil
}

// clickPicker opens a closed picker, or toggles the option row under y.
func clickPicker(e *selection.Engine, y int) {
	if !e.IsOpen() {
		e.Open()
		return
	}
	row := y - e.Bounds().Y - components.OptionRowOffset
	filtered := e.Filtered()
	start, count := components.SelectWindow(e.Focus(), len(filtered), pickerRows)
	if row < 0 || row >= count {
		return
	}
	e.Select(filtered[start+row])
}

func (a App) scroll(delta int) (tea.Model, tea.Cmd) {
	switch a.activeTab {
	case tabPrefs:
		if e := a.prefs.focused(); e.IsOpen() {
			e.MoveFocus(delta)
		}
	case tabCurrency:
		if a.currency.picker.IsOpen() {
			a.currency.picker.MoveFocus(delta)
		}
	case tabBudget:
		a.budget.move(delta)
	}
	return a, nil
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
