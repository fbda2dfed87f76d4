package tui

import (
	"testing"

	"github.com/theirongolddev/abroad/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0

		for i := 0; i < n; i++ {
			w := tabWidthForTest(i, active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w
			if i < n-1 {
				pos++ // separator
			}
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Fatalf("active=%d x past last tab -> %d, want -1", active, got)
		}
	}
}

func tabWidthForTest(tabIdx, activeIdx int) int {
	nameWidths := []int{
		len("Budget"),
		len("Preferences"),
		len("Currency"),
		len("Settings"),
	}

	w := nameWidths[tabIdx] + 2 // horizontal padding in tab renderer
	if tabIdx != activeIdx && tabIdx == 3 {
		w += 3 // inactive Settings adds "[x]"
	}
	return w
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
}

func TestClickTabBarSwitchesTab(t *testing.T) {
	a := newTestApp(t)
	// "Budget" is active (8 cols) followed by a separator.
	a = update(t, a, click(10, 0))
	if a.activeTab != tabPrefs {
		t.Fatalf("activeTab = %d, want %d", a.activeTab, tabPrefs)
	}
}

func TestClickOpensPickerAndOutsideClickCloses(t *testing.T) {
	a := newTestApp(t)
	a.activeTab = tabPrefs
	_ = a.View()

	e := a.prefs.engines[0]
	b := e.Bounds()
	if b.Height == 0 {
		t.Fatal("picker bounds not set by View")
	}

	a = update(t, a, click(b.X+2, b.Y+1))
	if !e.IsOpen() {
		t.Fatal("click inside the box should open the picker")
	}
	if a.listeners.Len() != 1 {
		t.Fatalf("listeners = %d, want 1", a.listeners.Len())
	}

	// A click on the tab bar lands outside every picker.
	a = update(t, a, click(2, 0))
	if e.IsOpen() {
		t.Fatal("outside click should close the picker")
	}
	if a.listeners.Len() != 0 {
		t.Fatalf("listeners = %d after close, want 0", a.listeners.Len())
	}
	if a.activeTab != tabBudget {
		t.Fatalf("activeTab = %d, want budget", a.activeTab)
	}
}

func TestClickOptionRowSelects(t *testing.T) {
	a := newTestApp(t)
	a.activeTab = tabPrefs
	_ = a.View()

	e := a.prefs.engines[0]
	a = update(t, a, click(e.Bounds().X+2, e.Bounds().Y+1))
	_ = a.View() // open box is taller

	want := e.Filtered()[0]
	a = update(t, a, click(e.Bounds().X+4, e.Bounds().Y+components.OptionRowOffset))
	if !e.IsSelected(want.Value) {
		t.Fatalf("value = %v, want %s selected", e.Value(), want.Value)
	}
	if !a.planner.Preference("countries").Contains(want.Value) {
		t.Fatal("selection not written through to the profile")
	}
}

func TestWheelMovesBudgetCursor(t *testing.T) {
	a := newTestApp(t)
	a = update(t, a, tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	a = update(t, a, tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if a.budget.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", a.budget.cursor)
	}
	a = update(t, a, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	if a.budget.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", a.budget.cursor)
	}
}
