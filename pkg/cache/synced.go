package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Synced wraps a Cache with a mutex for callers that need concurrent
// access. It is the packaged form of the "external lock" the bare Cache
// requires; single-goroutine owners should use Cache directly and skip
// the locking overhead.
type Synced[V any] struct {
	mu sync.Mutex
	c  *Cache[V]
	sf singleflight.Group
}

// NewSynced creates a mutex-guarded cache with the same options as New.
func NewSynced[V any](opts ...Option) *Synced[V] {
	return &Synced[V]{c: New[V](opts...)}
}

// Get retrieves a value by key. See Cache.Get.
func (s *Synced[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Get(key)
}

// Set stores a value under key. See Cache.Set.
func (s *Synced[V]) Set(key string, value V, size int64, opts ...SetOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Set(key, value, size, opts...)
}

// Has checks whether a key exists and has not expired. See Cache.Has.
func (s *Synced[V]) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Has(key)
}

// Delete removes a key. See Cache.Delete.
func (s *Synced[V]) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Delete(key)
}

// Clear removes all entries. See Cache.Clear.
func (s *Synced[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Clear()
}

// Prune removes all expired entries. See Cache.Prune.
func (s *Synced[V]) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Prune()
}

// Len returns the number of entries in the cache.
func (s *Synced[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Len()
}

// SizeBytes returns the accumulated size of all resident entries.
func (s *Synced[V]) SizeBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.SizeBytes()
}

// Stats returns a snapshot of cache statistics.
func (s *Synced[V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Stats()
}

// Do runs fn with exclusive access to the underlying cache, for
// operations without a dedicated wrapper method (Resize, Entries,
// DeleteByPrefix, and so on). The cache must not be retained past the
// call.
func (s *Synced[V]) Do(fn func(c *Cache[V])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.c)
}

// LoadFunc computes a value for GetOrSet on a cache miss. It returns
// the value, its size in bytes, and a TTL (with Set's TTL semantics).
type LoadFunc[V any] func(ctx context.Context) (V, int64, time.Duration, error)

type loadResult[V any] struct {
	val  V
	size int64
	ttl  time.Duration
}

// GetOrSet retrieves a value from the cache, or calls fn to compute it
// on a miss. Concurrent misses for the same key are deduplicated with
// singleflight so fn runs only once. If fn returns an error, nothing is
// cached and the error is returned.
func (s *Synced[V]) GetOrSet(ctx context.Context, key string, fn LoadFunc[V]) (V, error) {
	// Fast path: try cache first.
	if v, ok := s.Get(key); ok {
		return v, nil
	}

	// Slow path: deduplicate concurrent misses.
	v, err, _ := s.sf.Do(key, func() (any, error) {
		val, size, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return loadResult[V]{val: val, size: size, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	r := v.(loadResult[V])

	opts := make([]SetOption, 0, 1)
	if r.ttl != 0 {
		opts = append(opts, WithTTL(r.ttl))
	}
	s.Set(key, r.val, r.size, opts...)

	return r.val, nil
}
