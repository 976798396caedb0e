package scrollback

// ring is a fixed-capacity FIFO. Pushing onto a full ring evicts the oldest
// element and reports it.
type ring[T any] struct {
	items []T
	head  int
	size  int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{items: make([]T, capacity)}
}

func (r *ring[T]) push(v T) (evicted T, ok bool) {
	if r.size == len(r.items) {
		evicted = r.items[r.head]
		r.items[r.head] = v
		r.head = (r.head + 1) % len(r.items)
		return evicted, true
	}
	r.items[(r.head+r.size)%len(r.items)] = v
	r.size++
	return evicted, false
}

func (r *ring[T]) len() int { return r.size }

func (r *ring[T]) at(i int) T { return r.items[(r.head+i)%len(r.items)] }

func (r *ring[T]) clear() {
	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.head, r.size = 0, 0
}

func (r *ring[T]) each(fn func(T)) {
	for i := 0; i < r.size; i++ {
		fn(r.at(i))
	}
}
