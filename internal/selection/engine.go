package selection

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Config configures a new Engine.
type Config struct {
	Options           []Option
	Value             Selection
	OnChange          func(Selection)
	Placeholder       string
	SearchPlaceholder string
	Multiple          bool
	AllowCreate       bool
	// Registrar supplies the outside-click listener while the dropdown is open.
	Registrar Registrar
}

// Action reports what a key press did.
type Action int

const (
	ActionNone Action = iota
	ActionOpened
	ActionMoved
	ActionQuery
	ActionToggled
	ActionCreated
	ActionClosed
)

// Engine is the state machine behind a searchable picker. It is not safe
// for concurrent use.
type Engine struct {
	options           []Option
	value             Selection
	onChange          func(Selection)
	placeholder       string
	searchPlaceholder string
	multiple          bool
	allowCreate       bool
	registrar         Registrar

	query   string
	open    bool
	focus   int
	bounds  Bounds
	release func()
}

// New returns an Engine in the closed state.
func New(cfg Config) *Engine {
	return &Engine{
		options:           append([]Option(nil), cfg.Options...),
		value:             cfg.Value.Dedupe(),
		onChange:          cfg.OnChange,
		placeholder:       cfg.Placeholder,
		searchPlaceholder: cfg.SearchPlaceholder,
		multiple:          cfg.Multiple,
		allowCreate:       cfg.AllowCreate,
		registrar:         cfg.Registrar,
	}
}

func (e *Engine) Options() []Option         { return e.options }
func (e *Engine) Value() Selection          { return e.value.Clone() }
func (e *Engine) Query() string             { return e.query }
func (e *Engine) IsOpen() bool              { return e.open }
func (e *Engine) Focus() int                { return e.focus }
func (e *Engine) Multiple() bool            { return e.multiple }
func (e *Engine) Placeholder() string       { return e.placeholder }
func (e *Engine) SearchPlaceholder() string { return e.searchPlaceholder }

// SetOptions replaces the candidate list.
func (e *Engine) SetOptions(opts []Option) {
	e.options = append([]Option(nil), opts...)
	e.clampFocus()
}

// SetValue replaces the selection without firing OnChange.
func (e *Engine) SetValue(s Selection) {
	e.value = s.Dedupe()
}

// SetBounds records where the picker is drawn, for outside-click detection.
func (e *Engine) SetBounds(b Bounds) { e.bounds = b }

// Bounds returns the last recorded screen rectangle.
func (e *Engine) Bounds() Bounds { return e.bounds }

// SetQuery replaces the search text and resets focus to the first match.
func (e *Engine) SetQuery(q string) {
	e.query = q
	e.focus = 0
}

// Filtered returns the options whose label or value contains the query,
// case-insensitively.
func (e *Engine) Filtered() []Option {
	q := strings.ToLower(strings.TrimSpace(e.query))
	if q == "" {
		return e.options
	}
	out := make([]Option, 0, len(e.options))
	for _, o := range e.options {
		if strings.Contains(strings.ToLower(o.Label), q) || strings.Contains(strings.ToLower(o.Value), q) {
			out = append(out, o)
		}
	}
	return out
}

// Display returns the selection with labels resolved against the option
// list. Values with no matching option keep their stored label, or the raw
// value when none was stored.
func (e *Engine) Display() []Option {
	out := make([]Option, len(e.value))
	for i, v := range e.value {
		d := v
		for _, o := range e.options {
			if o.Value == v.Value {
				d = o
				break
			}
		}
		if d.Label == "" {
			d.Label = d.Value
		}
		out[i] = d
	}
	return out
}

// IsSelected reports whether value is part of the selection.
func (e *Engine) IsSelected(value string) bool { return e.value.Contains(value) }

// CanCreate reports whether the current query may be added as a new item.
func (e *Engine) CanCreate() bool {
	if !e.allowCreate {
		return false
	}
	text := strings.TrimSpace(e.query)
	if text == "" {
		return false
	}
	for _, o := range e.options {
		if strings.EqualFold(o.Label, text) || strings.EqualFold(o.Value, text) {
			return false
		}
	}
	for _, o := range e.value {
		if strings.EqualFold(o.Value, text) || strings.EqualFold(o.Label, text) {
			return false
		}
	}
	return true
}

// Create adds the trimmed query to the selection as an ad-hoc item. The
// option list is left untouched.
func (e *Engine) Create() bool {
	if !e.CanCreate() {
		return false
	}
	text := strings.TrimSpace(e.query)
	opt := Option{Value: text, Label: text}
	e.query = ""
	e.focus = 0
	if e.multiple {
		e.emit(append(e.value.Clone(), opt))
		return true
	}
	e.emit(Selection{opt})
	e.Close()
	return true
}

// Toggle selects or deselects the option with value. Unknown values are
// treated as bare {value, value} items.
func (e *Engine) Toggle(value string) {
	opt := Option{Value: value, Label: value}
	for _, o := range e.options {
		if o.Value == value {
			opt = o
			break
		}
	}
	e.Select(opt)
}

// Select applies toggle semantics to opt.
func (e *Engine) Select(opt Option) {
	if opt.Value == "" {
		return
	}
	if !e.multiple {
		if !e.value.Contains(opt.Value) {
			e.emit(Selection{opt})
		}
		e.Close()
		return
	}
	if e.value.Contains(opt.Value) {
		e.emit(e.value.Without(opt.Value))
		return
	}
	e.emit(append(e.value.Clone(), opt))
}

// Remove drops value from the selection.
func (e *Engine) Remove(value string) {
	if !e.value.Contains(value) {
		return
	}
	e.emit(e.value.Without(value))
}

// RemoveLast drops the most recently added item.
func (e *Engine) RemoveLast() {
	if len(e.value) == 0 {
		return
	}
	e.Remove(e.value[len(e.value)-1].Value)
}

// ClearAll empties the selection.
func (e *Engine) ClearAll() {
	if len(e.value) == 0 {
		return
	}
	e.emit(Selection{})
}

// Open shows the dropdown and acquires the outside-click listener.
func (e *Engine) Open() {
	if e.open {
		return
	}
	e.open = true
	e.focus = 0
	if e.registrar != nil {
		e.release = e.registrar.Listen(e.onPointer)
	}
}

// Close hides the dropdown, clears the query and releases the listener.
func (e *Engine) Close() {
	if e.release != nil {
		e.release()
		e.release = nil
	}
	e.open = false
	e.query = ""
	e.focus = 0
}

// Dispose releases everything the engine holds.
func (e *Engine) Dispose() { e.Close() }

func (e *Engine) onPointer(ev PointerEvent) {
	if !e.open || e.bounds.Contains(ev.X, ev.Y) {
		return
	}
	e.Close()
}

// MoveFocus moves the highlighted row by delta, wrapping at both ends.
func (e *Engine) MoveFocus(delta int) {
	n := len(e.Filtered())
	if n == 0 {
		e.focus = 0
		return
	}
	e.focus = ((e.focus+delta)%n + n) % n
}

// Focused returns the highlighted option.
func (e *Engine) Focused() (Option, bool) {
	f := e.Filtered()
	if e.focus < 0 || e.focus >= len(f) {
		return Option{}, false
	}
	return f[e.focus], true
}

// HandleKey applies a key press using bubbletea key names.
func (e *Engine) HandleKey(key string) Action {
	switch key {
	case "down":
		if !e.open {
			e.Open()
			return ActionOpened
		}
		e.MoveFocus(1)
		return ActionMoved
	case "up":
		if !e.open {
			e.Open()
			return ActionOpened
		}
		e.MoveFocus(-1)
		return ActionMoved
	case "enter":
		if !e.open {
			e.Open()
			return ActionOpened
		}
		if e.CanCreate() {
			e.Create()
			return ActionCreated
		}
		opt, ok := e.Focused()
		if !ok {
			return ActionNone
		}
		e.Select(opt)
		return ActionToggled
	case "esc":
		if !e.open {
			return ActionNone
		}
		e.Close()
		return ActionClosed
	case "backspace":
		if e.query == "" {
			return ActionNone
		}
		_, size := utf8.DecodeLastRuneInString(e.query)
		e.SetQuery(e.query[:len(e.query)-size])
		return ActionQuery
	}

	if !isPrintableKey(key) {
		return ActionNone
	}
	e.Open()
	e.SetQuery(e.query + key)
	return ActionQuery
}

func isPrintableKey(key string) bool {
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError || size != len(key) {
		return false
	}
	return unicode.IsPrint(r)
}

// Suggest proposes the option whose label is closest to a query that
// matched nothing.
func (e *Engine) Suggest() (Option, bool) {
	q := strings.ToLower(strings.TrimSpace(e.query))
	if q == "" || len(e.options) == 0 || len(e.Filtered()) > 0 {
		return Option{}, false
	}
	best, bestDist := -1, 0
	for i, o := range e.options {
		d := levenshtein.ComputeDistance(q, strings.ToLower(o.Label))
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if bestDist > maxSuggestDistance(q) {
		return Option{}, false
	}
	return e.options[best], true
}

func maxSuggestDistance(q string) int {
	n := utf8.RuneCountInString(q) / 3
	if n < 2 {
		return 2
	}
	return n
}

func (e *Engine) clampFocus() {
	n := len(e.Filtered())
	if e.focus >= n {
		e.focus = 0
	}
}

func (e *Engine) emit(next Selection) {
	e.value = next
	if e.onChange != nil {
		e.onChange(next.Clone())
	}
}
