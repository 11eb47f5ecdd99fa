package stream

import "sync"

// Value is a single-slot cache with fan-out. Subscribers receive the current
// value (if one has been emitted) synchronously on subscribe, then every
// subsequent emission until the value is closed or they cancel. Closing stops
// propagation permanently; subscribers are not notified of the close.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	has     bool
	closed  bool
	nextID  int
	subs    map[int]func(T)
}

// NewValue returns an empty Value. Subscribers see nothing until the first
// emission.
func NewValue[T any]() *Value[T] {
	return &Value[T]{subs: make(map[int]func(T))}
}

// NewValueOf returns a Value seeded with v.
func NewValueOf[T any](v T) *Value[T] {
	val := NewValue[T]()
	val.current = v
	val.has = true
	return val
}

// Emit stores v as the current value and notifies all subscribers. Emissions
// after Close are dropped.
func (v *Value[T]) Emit(next T) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.current = next
	v.has = true
	fns := make([]func(T), 0, len(v.subs))
	for _, fn := range v.subs {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	// Notify outside the lock so subscribers may emit into other values.
	for _, fn := range fns {
		fn(next)
	}
}

// Latest returns the current value and whether one has been emitted.
func (v *Value[T]) Latest() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.has
}

// Subscribe registers fn and replays the current value to it if one exists.
// The returned cancel function detaches fn; it is safe to call more than once.
func (v *Value[T]) Subscribe(fn func(T)) func() {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	if !v.closed {
		v.subs[id] = fn
	}
	replay := v.has
	cur := v.current
	v.mu.Unlock()

	if replay {
		fn(cur)
	}

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// Close terminates the value. No further emissions reach subscribers and the
// subscriber set is released. Latest keeps returning the final value.
func (v *Value[T]) Close() {
	v.mu.Lock()
	v.closed = true
	v.subs = make(map[int]func(T))
	v.mu.Unlock()
}

// Closed reports whether Close has been called.
func (v *Value[T]) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
