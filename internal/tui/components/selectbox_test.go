package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/abroad/internal/selection"
	"github.com/theirongolddev/abroad/internal/tui/theme"
)

func testEngine(multiple, allowCreate bool) *selection.Engine {
	return selection.New(selection.Config{
		Options: []selection.Option{
			{Value: "FR", Label: "France"},
			{Value: "DE", Label: "Germany"},
			{Value: "JP", Label: "Japan"},
		},
		Placeholder:       "Pick countries",
		SearchPlaceholder: "Search...",
		Multiple:          multiple,
		AllowCreate:       allowCreate,
	})
}

func TestSelectWindow(t *testing.T) {
	tests := []struct {
		focus, n, rows int
		start, count   int
	}{
		{0, 3, 5, 0, 3},
		{0, 10, 4, 0, 4},
		{5, 10, 4, 3, 4},
		{9, 10, 4, 6, 4},
		{0, 0, 4, 0, 0},
	}
	for _, tt := range tests {
		s, c := SelectWindow(tt.focus, tt.n, tt.rows)
		if s != tt.start || c != tt.count {
			t.Errorf("SelectWindow(%d,%d,%d) = %d,%d want %d,%d", tt.focus, tt.n, tt.rows, s, c, tt.start, tt.count)
		}
	}
}

func TestRenderSelectBoxClosed(t *testing.T) {
	theme.SetActive("harbor")
	e := testEngine(true, false)

	out := RenderSelectBox(e, "Countries", false, 40, 5)
	if !strings.Contains(out, "Pick countries") {
		t.Fatalf("placeholder missing:\n%s", out)
	}
	if lipgloss.Height(out) != 4 {
		t.Fatalf("closed box height = %d, want 4", lipgloss.Height(out))
	}

	e.Toggle("DE")
	e.Toggle("FR")
	out = RenderSelectBox(e, "Countries", false, 40, 5)
	if !strings.Contains(out, "Germany · France") {
		t.Fatalf("selected labels missing:\n%s", out)
	}
}

func TestRenderSelectBoxOpenRowsLineUp(t *testing.T) {
	theme.SetActive("harbor")
	e := testEngine(true, false)
	e.Open()
	e.Toggle("JP")

	out := RenderSelectBox(e, "Countries", true, 40, 5)
	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[OptionRowOffset], "France") {
		t.Fatalf("first option row = %q", lines[OptionRowOffset])
	}
	if !strings.Contains(lines[OptionRowOffset+2], "[x]") {
		t.Fatalf("selected marker missing in %q", lines[OptionRowOffset+2])
	}
}

func TestRenderSelectBoxCreateAndSuggest(t *testing.T) {
	theme.SetActive("harbor")
	e := testEngine(true, true)
	e.Open()
	e.SetQuery("Portugal")
	if out := RenderSelectBox(e, "Countries", true, 50, 5); !strings.Contains(out, `+ Add "Portugal"`) {
		t.Fatalf("create row missing:\n%s", out)
	}

	e2 := testEngine(false, false)
	e2.Open()
	e2.SetQuery("Japn")
	if out := RenderSelectBox(e2, "Country", true, 60, 5); !strings.Contains(out, "Did you mean") {
		t.Fatalf("suggestion missing:\n%s", out)
	}
}
