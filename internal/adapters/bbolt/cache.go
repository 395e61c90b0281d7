package bbolt

import (
	"container/list"

	"github.com/corey/anagramatron/internal/ports"
)

type cacheEntry[T any] struct {
	key   ports.Fingerprint
	value T
	dirty bool // inserted since last written to a chunk
}

// lru is an unbounded LRU list; capacity is enforced by the store's health
// check. Not thread-safe.
type lru[T any] struct {
	items     map[ports.Fingerprint]*list.Element
	evictList *list.List
}

func newLRU[T any](sizeHint int) *lru[T] {
	return &lru[T]{
		items:     make(map[ports.Fingerprint]*list.Element, sizeHint),
		evictList: list.New(),
	}
}

// get returns the cached value and promotes it.
func (c *lru[T]) get(key ports.Fingerprint) (T, bool) {
	if el, ok := c.items[key]; ok {
		c.evictList.MoveToFront(el)
		return el.Value.(*cacheEntry[T]).value, true
	}
	var zero T
	return zero, false
}

// put sets key's value as most recently used. A dirty put marks the entry
// for write-back; a clean put never clears an existing dirty mark.
func (c *lru[T]) put(key ports.Fingerprint, value T, dirty bool) {
	if el, ok := c.items[key]; ok {
		c.evictList.MoveToFront(el)
		ent := el.Value.(*cacheEntry[T])
		ent.value = value
		ent.dirty = ent.dirty || dirty
		return
	}
	c.items[key] = c.evictList.PushFront(&cacheEntry[T]{key: key, value: value, dirty: dirty})
}

func (c *lru[T]) remove(key ports.Fingerprint) {
	if el, ok := c.items[key]; ok {
		c.evictList.Remove(el)
		delete(c.items, key)
	}
}

// popOldest removes up to n least recently used entries, oldest first.
func (c *lru[T]) popOldest(n int) []*cacheEntry[T] {
	out := make([]*cacheEntry[T], 0, min(n, c.evictList.Len()))
	for len(out) < n {
		el := c.evictList.Back()
		if el == nil {
			break
		}
		c.evictList.Remove(el)
		ent := el.Value.(*cacheEntry[T])
		delete(c.items, ent.key)
		out = append(out, ent)
	}
	return out
}

// restoreOldest puts popped entries back at the cold end, keeping their
// order and dirty marks. Keys cached again since the pop are skipped.
func (c *lru[T]) restoreOldest(entries []*cacheEntry[T]) {
	for i := len(entries) - 1; i >= 0; i-- {
		ent := entries[i]
		if _, ok := c.items[ent.key]; ok {
			continue
		}
		c.items[ent.key] = c.evictList.PushBack(ent)
	}
}

// dirtyEntries returns every dirty entry, oldest first. The entries stay
// cached.
func (c *lru[T]) dirtyEntries() []*cacheEntry[T] {
	var out []*cacheEntry[T]
	for el := c.evictList.Back(); el != nil; el = el.Prev() {
		if ent := el.Value.(*cacheEntry[T]); ent.dirty {
			out = append(out, ent)
		}
	}
	return out
}

func (c *lru[T]) len() int { return c.evictList.Len() }
