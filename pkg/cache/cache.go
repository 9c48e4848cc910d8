package cache

import (
	"container/list"
	"strings"
	"time"
)

// Cache is a size- and count-bounded LRU cache with per-entry TTL.
//
// It uses a hash map for O(1) lookups and a doubly-linked list for O(1)
// eviction ordering. The most recently used entries are at the front of
// the list; the least recently used are at the back.
//
// The cache performs no internal locking: all operations complete
// synchronously and callers needing concurrent access must serialize
// externally (a single owning goroutine, or the Synced wrapper).
type Cache[V any] struct {
	items    map[string]*list.Element
	eviction *list.List
	opts     *options
	size     int64
	onEvict  func(key string, e *Entry[V])
	onExpire func(key string, e *Entry[V])

	hits        int64
	misses      int64
	evictions   int64
	expirations int64
}

// New creates a new cache.
//
// Example:
//
//	c := cache.New[[]byte](
//	    cache.WithMaxSizeBytes(32<<20),
//	    cache.WithMaxEntries(5000),
//	    cache.WithDefaultTTL(10*time.Minute),
//	)
func New[V any](opts ...Option) *Cache[V] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Cache[V]{
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		opts:     o,
	}
}

// SetEvictCallback sets a callback invoked when entries are removed by
// eviction pressure or Clear. It is not invoked for Delete or expiry.
// The callback runs synchronously inside the mutating operation; a
// panicking callback propagates to that operation's caller.
func (c *Cache[V]) SetEvictCallback(fn func(key string, e *Entry[V])) {
	c.onEvict = fn
}

// SetExpireCallback sets a callback invoked when an entry is removed
// because its TTL elapsed, whether detected lazily on access or by
// Prune. The same synchronous-invocation caveats as SetEvictCallback
// apply.
func (c *Cache[V]) SetExpireCallback(fn func(key string, e *Entry[V])) {
	c.onExpire = fn
}

// Get retrieves a value by key, marking the entry as most recently used.
// Returns false if the key does not exist or has expired; an expired
// entry is removed on the spot and counted as an expiration plus a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}

	e := elem.Value.(*Entry[V])
	now := c.opts.clock.Now()

	if e.expired(now) {
		c.expire(elem)
		c.misses++
		return zero, false
	}

	e.AccessedAt = now
	e.AccessCount++
	c.eviction.MoveToFront(elem)
	c.hits++

	return e.Value, true
}

// Set stores a value under key with the caller-supplied size in bytes.
//
// Updating an existing key adjusts the size accumulator by the delta and
// moves the entry to the front; it never triggers eviction. Inserting a
// new key runs eviction first, using the incoming size, so the cache
// never transiently exceeds its bounds. Oversized entries are still
// inserted after everything else has been evicted; the cache never
// refuses a write.
func (c *Cache[V]) Set(key string, value V, size int64, opts ...SetOption) {
	var so setOptions
	for _, opt := range opts {
		opt(&so)
	}

	now := c.opts.clock.Now()

	ttl := c.opts.defaultTTL
	if so.ttl != 0 {
		ttl = so.ttl
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	// Update existing entry: adjust size delta, replace in place.
	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*Entry[V])
		c.size += size - e.Size
		e.Value = value
		e.Size = size
		e.CreatedAt = now
		e.AccessedAt = now
		e.AccessCount = 0
		e.ExpiresAt = expiresAt
		e.Metadata = so.metadata
		c.eviction.MoveToFront(elem)
		return
	}

	c.evictIfNeeded(size)

	e := &Entry[V]{
		Key:        key,
		Value:      value,
		Size:       size,
		CreatedAt:  now,
		AccessedAt: now,
		ExpiresAt:  expiresAt,
		Metadata:   so.metadata,
	}
	c.items[key] = c.eviction.PushFront(e)
	c.size += size
}

// Has checks whether a key exists and has not expired. Unlike Get it
// does not touch recency order or hit/miss counters, but an expired
// entry found along the way is still removed and counted as an
// expiration.
func (c *Cache[V]) Has(key string) bool {
	elem, ok := c.items[key]
	if !ok {
		return false
	}

	if elem.Value.(*Entry[V]).expired(c.opts.clock.Now()) {
		c.expire(elem)
		return false
	}

	return true
}

// Peek returns the value without marking the entry as recently used and
// without counting a hit or miss. Like Has, it removes an expired entry
// as a side effect.
func (c *Cache[V]) Peek(key string) (V, bool) {
	var zero V

	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	e := elem.Value.(*Entry[V])
	if e.expired(c.opts.clock.Now()) {
		c.expire(elem)
		return zero, false
	}

	return e.Value, true
}

// Delete removes a key unconditionally and reports whether anything was
// removed. The eviction callback is not invoked: deletion is
// caller-initiated, distinct from policy-driven eviction.
func (c *Cache[V]) Delete(key string) bool {
	elem, ok := c.items[key]
	if !ok {
		return false
	}

	c.remove(elem)
	return true
}

// Clear removes all entries, invoking the eviction callback for each
// live entry first.
func (c *Cache[V]) Clear() {
	if c.onEvict != nil {
		for _, elem := range c.items {
			e := elem.Value.(*Entry[V])
			c.onEvict(e.Key, e)
		}
	}

	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	c.size = 0
}

// GetMany looks up several keys with the exact semantics of repeated
// Get calls. Results are positional: values[i] and found[i] correspond
// to keys[i].
func (c *Cache[V]) GetMany(keys []string) (values []V, found []bool) {
	values = make([]V, len(keys))
	found = make([]bool, len(keys))
	for i, key := range keys {
		values[i], found[i] = c.Get(key)
	}
	return values, found
}

// SetMany stores several items in input order via repeated Set calls.
func (c *Cache[V]) SetMany(items []Item[V]) {
	for _, it := range items {
		opts := make([]SetOption, 0, 2)
		if it.TTL != 0 {
			opts = append(opts, WithTTL(it.TTL))
		}
		if it.Metadata != nil {
			opts = append(opts, WithMetadata(it.Metadata))
		}
		c.Set(it.Key, it.Value, it.Size, opts...)
	}
}

// DeleteByPrefix removes every key starting with prefix and returns the
// count removed. Like Delete, it does not invoke the eviction callback.
func (c *Cache[V]) DeleteByPrefix(prefix string) int {
	n := 0
	for elem := c.eviction.Front(); elem != nil; {
		next := elem.Next()
		if strings.HasPrefix(elem.Value.(*Entry[V]).Key, prefix) {
			c.remove(elem)
			n++
		}
		elem = next
	}
	return n
}

// Entries returns copies of all live (non-expired) entries in recency
// order, most recently used first. Expired entries are filtered out but
// not removed, and access statistics are not touched.
func (c *Cache[V]) Entries() []Entry[V] {
	now := c.opts.clock.Now()
	out := make([]Entry[V], 0, c.eviction.Len())
	for elem := c.eviction.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*Entry[V])
		if e.expired(now) {
			continue
		}
		out = append(out, *e)
	}
	return out
}

// Keys returns all live keys in recency order, most recently used first.
func (c *Cache[V]) Keys() []string {
	now := c.opts.clock.Now()
	out := make([]string, 0, c.eviction.Len())
	for elem := c.eviction.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*Entry[V])
		if e.expired(now) {
			continue
		}
		out = append(out, e.Key)
	}
	return out
}

// Prune removes all expired entries, counting them as expirations, and
// returns the count removed. Intended for periodic housekeeping
// independent of read/write traffic.
func (c *Cache[V]) Prune() int {
	now := c.opts.clock.Now()
	n := 0
	for elem := c.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*Entry[V]).expired(now) {
			c.expire(elem)
			n++
		}
		elem = prev
	}
	return n
}

// Resize updates the byte and entry bounds, then immediately evicts
// down to the new bounds if they are already exceeded. Resizing to zero
// bounds does not fail; it evicts everything.
func (c *Cache[V]) Resize(maxSizeBytes int64, maxEntries int) {
	if maxSizeBytes < 0 {
		maxSizeBytes = 0
	}
	if maxEntries < 0 {
		maxEntries = 0
	}
	c.opts.maxSizeBytes = maxSizeBytes
	c.opts.maxEntries = maxEntries
	c.evictIfNeeded(0)
}

// Len returns the number of entries in the cache, including expired
// entries that have not been removed yet.
func (c *Cache[V]) Len() int {
	return c.eviction.Len()
}

// SizeBytes returns the accumulated size of all resident entries.
func (c *Cache[V]) SizeBytes() int64 {
	return c.size
}

// Stats returns a snapshot of cache statistics. The hit ratio is
// hits / (hits + misses), or 0 when there have been no requests.
func (c *Cache[V]) Stats() Stats {
	var ratio float64
	if total := c.hits + c.misses; total > 0 {
		ratio = float64(c.hits) / float64(total)
	}

	return Stats{
		Entries:      c.eviction.Len(),
		SizeBytes:    c.size,
		MaxSizeBytes: c.opts.maxSizeBytes,
		MaxEntries:   c.opts.maxEntries,
		Hits:         c.hits,
		Misses:       c.misses,
		Evictions:    c.evictions,
		Expirations:  c.expirations,
		HitRatio:     ratio,
	}
}

// evictIfNeeded evicts least recently used entries until the incoming
// size fits the byte budget, then until an entry slot is free. Byte
// pressure is always resolved before count pressure so the eviction
// order stays deterministic.
func (c *Cache[V]) evictIfNeeded(incoming int64) {
	for c.eviction.Len() > 0 && c.size+incoming > c.opts.maxSizeBytes {
		c.evictOldest()
	}
	for c.eviction.Len() > 0 && c.eviction.Len() >= c.opts.maxEntries {
		c.evictOldest()
	}
}

// evictOldest removes the least recently used entry via the eviction
// path.
func (c *Cache[V]) evictOldest() {
	if elem := c.eviction.Back(); elem != nil {
		e := c.remove(elem)
		c.evictions++
		if c.onEvict != nil {
			c.onEvict(e.Key, e)
		}
	}
}

// expire removes an entry via the expiry path.
func (c *Cache[V]) expire(elem *list.Element) {
	e := c.remove(elem)
	c.expirations++
	if c.onExpire != nil {
		c.onExpire(e.Key, e)
	}
}

// remove detaches an element from the list, index, and size accumulator.
func (c *Cache[V]) remove(elem *list.Element) *Entry[V] {
	c.eviction.Remove(elem)
	e := elem.Value.(*Entry[V])
	delete(c.items, e.Key)
	c.size -= e.Size
	return e
}
