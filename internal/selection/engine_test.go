package selection

import (
	"encoding/json"
	"slices"
	"testing"
)

func countries() []Option {
	return []Option{
		{Value: "FR", Label: "France", Flag: "🇫🇷"},
		{Value: "DE", Label: "Germany", Flag: "🇩🇪"},
		{Value: "ES", Label: "Spain", Flag: "🇪🇸"},
	}
}

type recorder struct {
	calls []Selection
}

func (r *recorder) onChange(s Selection) { r.calls = append(r.calls, s) }

func (r *recorder) last() Selection {
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func typeText(e *Engine, text string) {
	for _, r := range text {
		e.HandleKey(string(r))
	}
}

func TestFilterIsCaseInsensitiveSubstring(t *testing.T) {
	e := New(Config{Options: countries(), Multiple: true})
	e.SetQuery("fra")
	got := e.Filtered()
	if len(got) != 1 || got[0].Value != "FR" {
		t.Fatalf("Filtered() = %+v, want [FR]", got)
	}

	e.SetQuery("de")
	got = e.Filtered()
	if len(got) != 1 || got[0].Value != "DE" {
		t.Fatalf("value match: Filtered() = %+v, want [DE]", got)
	}

	e.SetQuery("AN")
	if n := len(e.Filtered()); n != 2 {
		t.Fatalf("uppercase query matched %d options, want 2 (France, Germany)", n)
	}

	e.SetQuery("")
	if n := len(e.Filtered()); n != 3 {
		t.Fatalf("empty query matched %d options, want 3", n)
	}
}

func TestSearchThenEnterSelects(t *testing.T) {
	rec := &recorder{}
	e := New(Config{Options: countries(), Multiple: true, OnChange: rec.onChange})

	typeText(e, "fra")
	if !e.IsOpen() {
		t.Fatal("typing should open the dropdown")
	}
	if act := e.HandleKey("enter"); act != ActionToggled {
		t.Fatalf("enter action = %v, want ActionToggled", act)
	}

	got := rec.last()
	if len(got) != 1 || got[0].Value != "FR" || got[0].Label != "France" {
		t.Fatalf("onChange = %+v, want [France]", got)
	}
	if !e.IsOpen() {
		t.Fatal("multi-select should stay open after a toggle")
	}
}

func TestToggleMultiple(t *testing.T) {
	rec := &recorder{}
	e := New(Config{Options: countries(), Multiple: true, OnChange: rec.onChange})

	e.Toggle("FR")
	e.Toggle("DE")
	if got := rec.last().Values(); len(got) != 2 || got[0] != "FR" || got[1] != "DE" {
		t.Fatalf("after two toggles = %v, want [FR DE]", got)
	}

	e.Toggle("FR")
	if got := rec.last().Values(); len(got) != 1 || got[0] != "DE" {
		t.Fatalf("after untoggle = %v, want [DE]", got)
	}

	e.Toggle("FR")
	got := rec.last().Values()
	if len(got) != 2 {
		t.Fatalf("after re-toggle = %v, want two entries", got)
	}
	if n := countValue(got, "FR"); n != 1 {
		t.Fatalf("FR present %d times after re-toggle, want 1", n)
	}
}

func countValue(values []string, v string) int {
	n := 0
	for _, x := range values {
		if x == v {
			n++
		}
	}
	return n
}

func TestToggleSingle(t *testing.T) {
	rec := &recorder{}
	e := New(Config{Options: countries(), OnChange: rec.onChange})

	e.Open()
	e.Toggle("FR")
	if e.IsOpen() {
		t.Fatal("single-select should close after committing")
	}
	if got := rec.last().Values(); len(got) != 1 || got[0] != "FR" {
		t.Fatalf("value = %v, want [FR]", got)
	}

	e.Open()
	e.Toggle("FR")
	if len(rec.calls) != 1 {
		t.Fatalf("reselecting the current item fired onChange %d times, want 1", len(rec.calls))
	}
	if e.IsOpen() {
		t.Fatal("reselecting should still close")
	}

	e.Toggle("DE")
	if got := rec.last().Values(); len(got) != 1 || got[0] != "DE" {
		t.Fatalf("value = %v, want [DE]", got)
	}
}

func TestCreate(t *testing.T) {
	rec := &recorder{}
	opts := []Option{{Value: "fr", Label: "French"}, {Value: "de", Label: "German"}}
	e := New(Config{Options: opts, Multiple: true, AllowCreate: true, OnChange: rec.onChange})

	typeText(e, "  Esperanto ")
	if !e.CanCreate() {
		t.Fatal("expected create to be offered")
	}
	if act := e.HandleKey("enter"); act != ActionCreated {
		t.Fatalf("enter action = %v, want ActionCreated", act)
	}
	got := rec.last()
	if len(got) != 1 || got[0].Value != "Esperanto" || got[0].Label != "Esperanto" {
		t.Fatalf("created = %+v", got)
	}
	if e.Query() != "" {
		t.Fatalf("query = %q, want cleared", e.Query())
	}
	if len(e.Options()) != 2 {
		t.Fatal("create must not modify the option list")
	}

	e.SetQuery("esperanto")
	if e.CanCreate() {
		t.Fatal("already selected text must not be creatable")
	}
	e.SetQuery("FRENCH")
	if e.CanCreate() {
		t.Fatal("exact label match must not be creatable")
	}
	e.SetQuery("   ")
	if e.CanCreate() {
		t.Fatal("blank query must not be creatable")
	}
}

func TestCreateDisabled(t *testing.T) {
	e := New(Config{Options: countries(), Multiple: true})
	e.SetQuery("Narnia")
	if e.CanCreate() || e.Create() {
		t.Fatal("create should be disabled without AllowCreate")
	}
}

func TestCreateSingleReplaces(t *testing.T) {
	rec := &recorder{}
	e := New(Config{Value: FromValues("master"), AllowCreate: true, OnChange: rec.onChange})
	e.Open()
	e.SetQuery("Postdoc")
	e.Create()
	if got := rec.last().Values(); len(got) != 1 || got[0] != "Postdoc" {
		t.Fatalf("value = %v, want [Postdoc]", got)
	}
	if e.IsOpen() {
		t.Fatal("single-mode create should close")
	}
}

func TestRemoveRawValue(t *testing.T) {
	var stored []any
	if err := json.Unmarshal([]byte(`["FR", {"value":"DE","label":"Germany"}]`), &stored); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	e := New(Config{Options: countries(), Value: Normalize(stored...), Multiple: true, OnChange: rec.onChange})

	e.Remove("FR")
	if got := rec.last().Values(); len(got) != 1 || got[0] != "DE" {
		t.Fatalf("after remove = %v, want [DE]", got)
	}
	e.Remove("DE")
	if got := rec.last(); len(got) != 0 {
		t.Fatalf("after remove = %v, want empty", got)
	}
	calls := len(rec.calls)
	e.Remove("XX")
	if len(rec.calls) != calls {
		t.Fatal("removing an absent value should not fire onChange")
	}
}

func TestRemoveThenReAddRestoresSelection(t *testing.T) {
	rec := &recorder{}
	e := New(Config{Options: countries(), Value: FromValues("FR", "DE", "ES"), Multiple: true, OnChange: rec.onChange})
	before := e.Value().Values()

	e.Remove("DE")
	e.Toggle("DE")

	after := rec.last().Values()
	slices.Sort(before)
	slices.Sort(after)
	if !slices.Equal(before, after) {
		t.Fatalf("after remove and re-add = %v, want %v", after, before)
	}
}

func TestClearAll(t *testing.T) {
	rec := &recorder{}
	e := New(Config{Options: countries(), Value: FromValues("FR", "DE"), Multiple: true, OnChange: rec.onChange})
	e.ClearAll()
	if got := rec.last(); got == nil || len(got) != 0 {
		t.Fatalf("ClearAll = %v, want empty non-nil", got)
	}
}

func TestNoDuplicateValues(t *testing.T) {
	e := New(Config{Options: countries(), Value: FromValues("FR", "FR", "DE"), Multiple: true})
	if got := e.Value().Values(); len(got) != 2 {
		t.Fatalf("Value() = %v, want deduplicated", got)
	}
	e.Select(Option{Value: "FR", Label: "France"})
	e.Select(Option{Value: "FR", Label: "France"})
	if got := e.Value().Values(); len(got) != 2 {
		t.Fatalf("Value() = %v after re-select", got)
	}
}

func TestDisplayFallsBackToRawValue(t *testing.T) {
	e := New(Config{Options: countries(), Value: FromValues("FR", "Atlantis"), Multiple: true})
	d := e.Display()
	if d[0].Label != "France" || d[0].Flag == "" {
		t.Fatalf("known value = %+v", d[0])
	}
	if d[1].Label != "Atlantis" {
		t.Fatalf("unknown value label = %q, want raw value", d[1].Label)
	}
}

func TestKeyboardFocusWraps(t *testing.T) {
	e := New(Config{Options: countries(), Multiple: true})
	e.HandleKey("down")
	if !e.IsOpen() || e.Focus() != 0 {
		t.Fatalf("first down should open with focus 0, got open=%v focus=%d", e.IsOpen(), e.Focus())
	}
	e.HandleKey("up")
	if e.Focus() != 2 {
		t.Fatalf("up from first = %d, want 2", e.Focus())
	}
	e.HandleKey("down")
	if e.Focus() != 0 {
		t.Fatalf("down from last = %d, want 0", e.Focus())
	}
	e.HandleKey("down")
	e.HandleKey("enter")
	if got := e.Value().Values(); len(got) != 1 || got[0] != "DE" {
		t.Fatalf("enter on focus 1 = %v, want [DE]", got)
	}
}

func TestEscapeAndBackspace(t *testing.T) {
	e := New(Config{Options: countries(), Multiple: true})
	typeText(e, "spx")
	e.HandleKey("backspace")
	if e.Query() != "sp" {
		t.Fatalf("query = %q, want sp", e.Query())
	}
	if act := e.HandleKey("esc"); act != ActionClosed {
		t.Fatalf("esc = %v, want ActionClosed", act)
	}
	if e.IsOpen() || e.Query() != "" {
		t.Fatal("esc should close and clear the query")
	}
	if act := e.HandleKey("ctrl+a"); act != ActionNone {
		t.Fatalf("non-printable key = %v, want ActionNone", act)
	}
}

func TestEmptyOptions(t *testing.T) {
	e := New(Config{Multiple: true})
	e.HandleKey("down")
	e.HandleKey("down")
	if e.Focus() != 0 {
		t.Fatalf("focus with no options = %d", e.Focus())
	}
	if act := e.HandleKey("enter"); act != ActionNone {
		t.Fatalf("enter with no options = %v", act)
	}
}

func TestOutsideClickClosesAndReleases(t *testing.T) {
	reg := NewListeners()
	e := New(Config{Options: countries(), Multiple: true, Registrar: reg})
	e.SetBounds(Bounds{X: 0, Y: 5, Width: 40, Height: 6})

	typeText(e, "ger")
	if reg.Len() != 1 {
		t.Fatalf("listeners while open = %d, want 1", reg.Len())
	}

	reg.Dispatch(PointerEvent{X: 10, Y: 7})
	if !e.IsOpen() {
		t.Fatal("click inside bounds should keep the dropdown open")
	}

	reg.Dispatch(PointerEvent{X: 10, Y: 20})
	if e.IsOpen() || e.Query() != "" {
		t.Fatal("outside click should close and clear the query")
	}
	if reg.Len() != 0 {
		t.Fatalf("listeners after close = %d, want 0", reg.Len())
	}
}

func TestEveryClosePathReleases(t *testing.T) {
	reg := NewListeners()
	single := New(Config{Options: countries(), Registrar: reg})
	multi := New(Config{Options: countries(), Multiple: true, Registrar: reg})

	single.Open()
	single.Toggle("ES")
	multi.Open()
	multi.HandleKey("esc")
	multi.Open()
	multi.Dispose()
	multi.Dispose()

	if reg.Len() != 0 {
		t.Fatalf("leaked %d listeners", reg.Len())
	}
}

func TestSuggest(t *testing.T) {
	e := New(Config{Options: countries(), Multiple: true})
	e.SetQuery("Grmany")
	opt, ok := e.Suggest()
	if !ok || opt.Value != "DE" {
		t.Fatalf("Suggest() = %+v, %v; want Germany", opt, ok)
	}

	e.SetQuery("fra")
	if _, ok := e.Suggest(); ok {
		t.Fatal("no suggestion expected while the query has matches")
	}
	e.SetQuery("zzzzzzzzzz")
	if _, ok := e.Suggest(); ok {
		t.Fatal("no suggestion expected for a distant query")
	}
}

func TestOptionUnmarshal(t *testing.T) {
	var sel Selection
	if err := json.Unmarshal([]byte(`["fr", {"value":"de"}, {"value":"es","label":"Spanish","flag":"x"}]`), &sel); err != nil {
		t.Fatal(err)
	}
	if sel[0].Label != "fr" || sel[1].Label != "de" || sel[2].Label != "Spanish" || sel[2].Flag != "x" {
		t.Fatalf("decoded = %+v", sel)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Option
		ok   bool
	}{
		{"string", " FR ", Option{Value: "FR", Label: "FR"}, true},
		{"empty string", "  ", Option{}, false},
		{"option", Option{Value: "DE", Label: "Germany"}, Option{Value: "DE", Label: "Germany"}, true},
		{"nil pointer", (*Option)(nil), Option{}, false},
		{"map", map[string]any{"value": "ES", "label": "Spain", "flag": "🇪🇸"}, Option{Value: "ES", Label: "Spain", Flag: "🇪🇸"}, true},
		{"map without label", map[string]any{"value": "ES"}, Option{Value: "ES", Label: "ES"}, true},
		{"map without value", map[string]any{"label": "Spain"}, Option{}, false},
		{"option padded", Option{Value: " FR "}, Option{Value: "FR", Label: "FR"}, true},
		{"map padded", map[string]any{"value": " FR", "label": " France "}, Option{Value: "FR", Label: "France"}, true},
		{"map blank value", map[string]any{"value": "  "}, Option{}, false},
		{"number", 42, Option{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.raw)
			if ok != tt.ok || got.Value != tt.want.Value || got.Label != tt.want.Label || got.Flag != tt.want.Flag {
				t.Fatalf("Resolve(%v) = %+v, %v; want %+v, %v", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}

	withMeta, ok := Resolve(map[string]any{"value": "JPY", "meta": map[string]any{"symbol": "¥", "rank": 3.0}})
	if !ok || withMeta.Meta["symbol"] != "¥" || withMeta.Meta["rank"] != "3" {
		t.Fatalf("meta = %+v", withMeta.Meta)
	}

	if mixed := Normalize(map[string]any{"value": " FR"}, "FR", Option{Value: "FR "}); len(mixed) != 1 || mixed[0].Value != "FR" {
		t.Fatalf("padded forms should collapse to one FR, got %+v", mixed)
	}

	sel := Normalize("FR", Option{Value: "FR", Label: "France"}, map[string]any{"value": "DE"}, "", 3)
	if len(sel) != 2 || sel[0].Value != "FR" || sel[1].Value != "DE" {
		t.Fatalf("Normalize = %+v", sel)
	}
}
