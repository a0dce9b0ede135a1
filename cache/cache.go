// Package cache implements a generic approximate-LRU cache with a soft
// byte budget, shared by the glyph cache, blur cache, and per-box
// layout cache (§4.2, §4.6, §4.7). It is built directly on
// container/list + a map rather than on any pack dependency: none of
// the example repos or other_examples files offer a sized-eviction
// cache, and subrandr's eviction rule (evict oldest-used until under a
// byte budget, but never evict an entry pinned by the current frame)
// is specific enough that reaching for a generic LRU library would buy
// nothing over the twenty lines container/list already provides.
package cache

import "container/list"

// entry is one cached value together with the size sizeOf charged for
// it against the cache's budget and its pin flag.
type entry[K comparable, V any] struct {
	key     K
	value   V
	size    int64
	pinned  bool
}

// LRU is a byte-budgeted, approximately-least-recently-used cache.
// Not safe for concurrent use, and it takes no lock. A Renderer owns
// its layout cache; the glyph and blur caches belong to a
// render.Library and are shared, unlocked, by all of its Renderers.
type LRU[K comparable, V any] struct {
	budget  int64
	used    int64
	sizeOf  func(V) int64
	ll      *list.List // of *entry[K, V], front = most recently used
	index   map[K]*list.Element
}

// New creates an LRU with the given soft byte budget. sizeOf computes
// the charged size of a value; pass a constant-returning func for
// caches that count entries rather than bytes.
func New[K comparable, V any](budget int64, sizeOf func(V) int64) *LRU[K, V] {
	return &LRU[K, V]{
		budget: budget,
		sizeOf: sizeOf,
		ll:     list.New(),
		index:  make(map[K]*list.Element),
	}
}

// Get returns the cached value for key, if present, and marks it most
// recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	if el, ok := c.index[key]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Put inserts or replaces the value for key, then evicts
// least-recently-used, unpinned entries until the cache is back under
// budget (or nothing left can be evicted).
func (c *LRU[K, V]) Put(key K, value V) {
	size := c.sizeOf(value)
	if el, ok := c.index[key]; ok {
		old := el.Value.(*entry[K, V])
		c.used += size - old.size
		old.value, old.size = value, size
		c.ll.MoveToFront(el)
	} else {
		el := c.ll.PushFront(&entry[K, V]{key: key, value: value, size: size})
		c.index[key] = el
		c.used += size
	}
	c.evict()
}

// Pin marks key's entry as exempt from eviction, for entries in active
// use by the current frame (§4.2 "pinned until render_frame returns").
// Unpin releases it. Pinning a key not present in the cache is a no-op.
func (c *LRU[K, V]) Pin(key K) {
	if el, ok := c.index[key]; ok {
		el.Value.(*entry[K, V]).pinned = true
	}
}

// Unpin clears the pin set by Pin.
func (c *LRU[K, V]) Unpin(key K) {
	if el, ok := c.index[key]; ok {
		el.Value.(*entry[K, V]).pinned = false
	}
}

// UnpinAll clears every pin, called once a frame's render_frame call
// returns and its glyphs/blurs/layouts are no longer guaranteed live.
func (c *LRU[K, V]) UnpinAll() {
	for el := c.ll.Back(); el != nil; el = el.Prev() {
		el.Value.(*entry[K, V]).pinned = false
	}
}

// Len returns the number of entries currently cached.
func (c *LRU[K, V]) Len() int { return c.ll.Len() }

// Used returns the total charged size of all cached entries.
func (c *LRU[K, V]) Used() int64 { return c.used }

func (c *LRU[K, V]) evict() {
	if c.used <= c.budget {
		return
	}
	el := c.ll.Back()
	for el != nil && c.used > c.budget {
		prev := el.Prev()
		e := el.Value.(*entry[K, V])
		if !e.pinned {
			c.used -= e.size
			delete(c.index, e.key)
			c.ll.Remove(el)
		}
		el = prev
	}
}
