// Package store keeps the transient in-memory copies of backend entities a
// view works on. Mutations are merged by id; nothing is re-sorted.
package store

import "sync"

// Entity is a backend record identified by a server-assigned id.
type Entity interface {
	EntityID() uint
}

// Collection is an ordered set of entity pointers. Entries that a merge does
// not touch keep their identity.
type Collection[E Entity] struct {
	mu    sync.RWMutex
	items []E
}

func NewCollection[E Entity](items ...E) *Collection[E] {
	c := &Collection[E]{}
	c.Reset(items)
	return c
}

// Reset replaces the whole content, typically with a fresh list() answer.
func (c *Collection[E]) Reset(items []E) {
	cp := make([]E, len(items))
	copy(cp, items)
	c.mu.Lock()
	c.items = cp
	c.mu.Unlock()
}

// Prepend inserts e first. Used for newly created invoices so the most
// recent stays on top.
func (c *Collection[E]) Prepend(e E) {
	c.mu.Lock()
	c.items = append([]E{e}, c.items...)
	c.mu.Unlock()
}

// Append inserts e last.
func (c *Collection[E]) Append(e E) {
	c.mu.Lock()
	c.items = append(c.items, e)
	c.mu.Unlock()
}

// Replace swaps the entry with e's id for e, in place. It reports false when
// no entry matched.
func (c *Collection[E]) Replace(e E) bool {
	id := e.EntityID()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if it.EntityID() == id {
			c.items[i] = e
			return true
		}
	}
	return false
}

// Remove drops the entry with id and reports whether it existed.
func (c *Collection[E]) Remove(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if it.EntityID() == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Collection[E]) Find(id uint) (E, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.EntityID() == id {
			return it, true
		}
	}
	var zero E
	return zero, false
}

// Items returns a snapshot of the entries in order.
func (c *Collection[E]) Items() []E {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]E, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[E]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Pointers converts a decoded list into the pointer form stored by
// collections.
func Pointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}
