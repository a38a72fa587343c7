package identity

// Rotator hands out items round-robin. It is not safe for concurrent use; the
// upload pipeline is strictly sequential.
type Rotator[T any] struct {
	items []T
	idx   int
}

func NewRotator[T any](items []T) *Rotator[T] {
	cp := make([]T, len(items))
	copy(cp, items)
	return &Rotator[T]{items: cp}
}

func (r *Rotator[T]) Len() int { return len(r.items) }

// Current returns the active item without moving the index.
func (r *Rotator[T]) Current() (T, bool) {
	var zero T
	if len(r.items) == 0 {
		return zero, false
	}
	return r.items[r.idx], true
}

// Advance moves to the next item (wrapping) and returns it.
func (r *Rotator[T]) Advance() (T, bool) {
	if len(r.items) == 0 {
		var zero T
		return zero, false
	}
	r.idx = (r.idx + 1) % len(r.items)
	return r.items[r.idx], true
}

// Next returns the active item, then advances.
func (r *Rotator[T]) Next() (T, bool) {
	item, ok := r.Current()
	if ok {
		r.idx = (r.idx + 1) % len(r.items)
	}
	return item, ok
}

// Items returns a copy of the rotation order.
func (r *Rotator[T]) Items() []T {
	cp := make([]T, len(r.items))
	copy(cp, r.items)
	return cp
}
