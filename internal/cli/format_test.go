package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-42000, "-42,000"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatChange(t *testing.T) {
	if got := FormatChange(1.234); got != "+1.23%" {
		t.Errorf("got %q", got)
	}
	if got := FormatChange(-0.5); got != "-0.50%" {
		t.Errorf("got %q", got)
	}
}

func TestFormatRate(t *testing.T) {
	tests := map[string]string{
		"149.8712": "149.87",
		"1.35":     "1.3500",
		"0.0067":   "0.006700",
	}
	for in, want := range tests {
		if got := FormatRate(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatRate(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "never"},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-15 * time.Minute), "15m ago"},
		{now.Add(-5 * time.Hour), "5h ago"},
		{now.Add(-72 * time.Hour), "3d ago"},
	}
	for _, tt := range tests {
		if got := FormatAge(tt.t, now); got != tt.want {
			t.Errorf("FormatAge(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Computer Science", 8); got != "Compute…" {
		t.Errorf("got %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
}

func TestRenderTableAlignsWideCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Country", "Currency"},
		Rows: [][]string{
			{"🇫🇷 France", "EUR"},
			{"---"},
			{"Japan", "JPY"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	w := lipgloss.Width(lines[0])
	for i, l := range lines {
		if lipgloss.Width(l) != w {
			t.Errorf("line %d width %d, want %d: %q", i, lipgloss.Width(l), w, l)
		}
	}
}

func TestRenderShareBar(t *testing.T) {
	bar := RenderShareBar(0.5, 10)
	if got := strings.Count(bar, "█"); got != 5 {
		t.Errorf("filled = %d, want 5", got)
	}
	if got := strings.Count(RenderShareBar(2, 4), "█"); got != 4 {
		t.Errorf("share > 1 should clamp, filled = %d", got)
	}
	if RenderShareBar(0.5, 0) != "" {
		t.Error("zero width should render nothing")
	}
}
