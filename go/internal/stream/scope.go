package stream

// Map derives a Value holding project(v) for every v emitted by src, starting
// from its current value. The returned detach function stops the derivation;
// the derived value then simply stops updating.
func Map[T, U any](src *Value[T], project func(T) U) (*Value[U], func()) {
	out := NewValue[U]()
	cancel := src.Subscribe(func(v T) {
		out.Emit(project(v))
	})
	return out, func() {
		cancel()
		out.Close()
	}
}

// ScopeWhile builds an identity-fenced child stream from parent. Values are
// skipped until match first holds, then projected into the child; the first
// value for which match no longer holds closes the child permanently and
// detaches from the parent. The child therefore never observes values
// belonging to a different identity, before or after its own window.
func ScopeWhile[T, U any](parent *Value[T], match func(T) bool, project func(T) U) (*Value[U], func()) {
	out := NewValue[U]()
	matched := false
	var cancel func()
	cancel = parent.Subscribe(func(v T) {
		if !matched {
			if !match(v) {
				return
			}
			matched = true
			out.Emit(project(v))
			return
		}
		if !match(v) {
			out.Close()
			// cancel is nil only during the synchronous replay of the
			// parent's current value, which cannot trip the fence.
			if cancel != nil {
				cancel()
			}
			return
		}
		out.Emit(project(v))
	})
	return out, func() {
		cancel()
		out.Close()
	}
}
