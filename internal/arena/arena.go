// Package arena provides the dense, monotonically increasing integer IDs
// used throughout the analyzer. All IDs issued by an Analyzer are valid for
// the lifetime of that one analysis; none are ever reused, mirroring the
// lifetime of a single CUE internal/core/adt arena.
package arena

// ID is a dense, zero-based handle into an Arena. The zero value is the
// first ID ever allocated from a fresh Arena.
type ID uint32

// Arena is a bump allocator for values of type T, addressed by dense IDs.
// It never frees individual elements; the whole Arena is dropped at the end
// of one analysis.
type Arena[T any] struct {
	items []T
}

// New allocates a new, empty Arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Alloc appends v to the arena and returns its freshly minted ID.
func (a *Arena[T]) Alloc(v T) ID {
	id := ID(len(a.items))
	a.items = append(a.items, v)
	return id
}

// Get returns the value stored at id. It panics if id was never allocated
// from this arena, which would indicate a bug in the analyzer rather than
// a recoverable condition.
func (a *Arena[T]) Get(id ID) T {
	return a.items[id]
}

// GetPtr returns a pointer to the value stored at id, so callers can mutate
// it in place.
func (a *Arena[T]) GetPtr(id ID) *T {
	return &a.items[id]
}

// Set overwrites the value stored at id.
func (a *Arena[T]) Set(id ID, v T) {
	a.items[id] = v
}

// Len reports how many IDs have been allocated so far.
func (a *Arena[T]) Len() int {
	return len(a.items)
}

// Counter is a monotonic issuer of IDs that does not itself store any
// payload; it backs ID kinds whose data lives elsewhere (e.g. DepAtom,
// whose identity is the integer itself).
type Counter struct {
	next uint32
}

// Next returns the next unused ID and advances the counter. IDs start at 0
// and are never reused within the lifetime of the Counter.
func (c *Counter) Next() ID {
	id := ID(c.next)
	c.next++
	return id
}

// Len reports how many IDs have been issued.
func (c *Counter) Len() int {
	return int(c.next)
}
