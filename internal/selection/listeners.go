package selection

import "sort"

// PointerEvent is a click at terminal cell coordinates.
type PointerEvent struct {
	X, Y int
}

// Bounds is the screen rectangle occupied by a picker.
type Bounds struct {
	X, Y          int
	Width, Height int
}

// Contains reports whether the cell (x, y) lies inside b.
func (b Bounds) Contains(x, y int) bool {
	if b.Width <= 0 || b.Height <= 0 {
		return false
	}
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Registrar hands out global pointer listeners. The returned release func
// must be called exactly once to unregister.
type Registrar interface {
	Listen(fn func(PointerEvent)) (release func())
}

// Listeners is the Registrar the TUI dispatches mouse clicks through.
type Listeners struct {
	next int
	fns  map[int]func(PointerEvent)
}

// NewListeners returns an empty registry.
func NewListeners() *Listeners {
	return &Listeners{fns: make(map[int]func(PointerEvent))}
}

// Listen registers fn. Calling release more than once is harmless.
func (l *Listeners) Listen(fn func(PointerEvent)) func() {
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() { delete(l.fns, id) }
}

// Dispatch delivers ev to every listener registered at the time of the
// call. Listeners released by an earlier callback in the same dispatch are
// skipped.
func (l *Listeners) Dispatch(ev PointerEvent) {
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := l.fns[id]; ok {
			fn(ev)
		}
	}
}

// Len is the number of live listeners.
func (l *Listeners) Len() int { return len(l.fns) }
