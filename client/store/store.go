// Package store holds the client's normalized, in-memory copy of board
// entities. It is the single source of truth the rest of the engine reads:
// reconciled server events and optimistic local edits both land here, and the
// view engine projects from here.
package store

// collection is an ordered, id-indexed set of one entity kind. Insertion order
// is preserved so iteration is stable until a derived view imposes its own.
type collection[T comparable] struct {
	items []T
	index map[int64]int
	id    func(T) int64
}

func newCollection[T comparable](id func(T) int64) *collection[T] {
	return &collection[T]{index: make(map[int64]int), id: id}
}

// upsert replaces the whole entity when the id is known, appends otherwise.
// It reports whether the collection actually changed, so replaying the same
// entity is a no-op.
func (c *collection[T]) upsert(v T) bool {
	id := c.id(v)
	if i, ok := c.index[id]; ok {
		if c.items[i] == v {
			return false
		}
		c.items[i] = v
		return true
	}
	c.index[id] = len(c.items)
	c.items = append(c.items, v)
	return true
}

// swap replaces old with new only if the stored entity still equals old.
func (c *collection[T]) swap(old, v T) bool {
	i, ok := c.index[c.id(old)]
	if !ok || c.items[i] != old {
		return false
	}
	c.items[i] = v
	return true
}

func (c *collection[T]) remove(id int64) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[c.id(c.items[j])] = j
	}
	return true
}

func (c *collection[T]) replaceAll(items []T) {
	c.items = c.items[:0]
	clear(c.index)
	for _, v := range items {
		// last write wins on duplicate ids in the input
		c.upsert(v)
	}
}

// drop removes every entity matching pred; a nil pred removes everything.
func (c *collection[T]) drop(pred func(T) bool) bool {
	if pred == nil {
		changed := len(c.items) > 0
		c.items = c.items[:0]
		clear(c.index)
		return changed
	}
	kept := c.items[:0]
	for _, v := range c.items {
		if !pred(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(c.items) {
		return false
	}
	c.items = kept
	clear(c.index)
	for i, v := range c.items {
		c.index[c.id(v)] = i
	}
	return true
}

func (c *collection[T]) all() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T]) byID(id int64) (T, bool) {
	if i, ok := c.index[id]; ok {
		return c.items[i], true
	}
	var zero T
	return zero, false
}
