// File: view.go
// Role: Generation-checked, non-owning layer views.

package mapdata

// View is a handle on one layer. It does not keep the buffer alive: once
// the store is resized or closed, Acquire reports false.
type View[T any] struct {
	md  *MapData
	gen uint64
	get func() []T
}

func newView[T any](md *MapData, get func() []T) View[T] {
	md.mu.RLock()
	defer md.mu.RUnlock()

	return View[T]{md: md, gen: md.gen, get: get}
}

// Acquire returns the layer buffer if the view is still current.
// The slice must not be retained across a Resize.
func (v View[T]) Acquire() ([]T, bool) {
	if v.md == nil {
		return nil, false
	}
	v.md.mu.RLock()
	defer v.md.mu.RUnlock()
	if v.md.closed || v.md.gen != v.gen {
		return nil, false
	}

	return v.get(), true
}

// Expired reports whether Acquire would fail.
func (v View[T]) Expired() bool {
	_, ok := v.Acquire()

	return !ok
}
