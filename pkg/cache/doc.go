// Package cache provides a generic LRU cache bounded by both a byte
// budget and an entry count, with per-entry TTL and removal callbacks.
//
// The cache is keyed by string and generic over the value type. It uses
// a hash map for O(1) lookups and a doubly-linked list for O(1) eviction
// ordering, so Get, Set, Delete, and eviction are all constant time.
//
// # Usage
//
// Create a cache with explicit bounds:
//
//	c := cache.New[[]byte](
//	    cache.WithMaxSizeBytes(32<<20),
//	    cache.WithMaxEntries(5000),
//	    cache.WithDefaultTTL(10*time.Minute),
//	)
//
// Entry sizes are caller-supplied, which keeps accounting exact for
// payloads the cache cannot measure itself:
//
//	c.Set("page:1", rendered, int64(len(rendered)))
//
//	if data, ok := c.Get("page:1"); ok {
//	    // use data
//	}
//
// # Eviction
//
// When an insertion would exceed the byte budget, least recently used
// entries are evicted until the new entry fits; count pressure is
// resolved after byte pressure, in that order, deterministically. An
// entry larger than the whole byte budget is still inserted after
// everything else has been evicted; the cache never refuses a write.
//
// Eviction (pressure-driven removal) and expiration (TTL-driven
// removal) are tracked as separate counters and reported to separate
// callbacks:
//
//	c.SetEvictCallback(func(key string, e *cache.Entry[[]byte]) {
//	    // release resources tied to the entry
//	})
//	c.SetExpireCallback(func(key string, e *cache.Entry[[]byte]) {
//	    // entry's TTL elapsed
//	})
//
// Callbacks run synchronously inside the operation that removed the
// entry. Delete and DeleteByPrefix are caller-initiated and invoke no
// callback.
//
// # TTL
//
// TTL semantics for Set's WithTTL option and Item.TTL:
//   - Positive duration: entry expires after this duration
//   - Zero: use the cache's configured default TTL
//   - Negative: entry never expires
//
// Expiry is detected lazily on access (Get, Has, Peek) or in bulk via
// Prune. Note that Peek, despite being a non-mutating read for recency
// and statistics purposes, still removes an expired entry it finds.
//
// # Concurrency
//
// Cache performs no internal locking. All operations are synchronous
// and complete before returning; callers needing concurrent access must
// serialize externally. The Synced wrapper packages that external lock
// and adds a singleflight GetOrSet for cache-stampede protection:
//
//	s := cache.NewSynced[User](cache.WithMaxEntries(1000))
//	u, err := s.GetOrSet(ctx, "user:123", func(ctx context.Context) (User, int64, time.Duration, error) {
//	    user, err := repo.FindUser(ctx, "123")
//	    return user, user.SizeBytes(), 5 * time.Minute, err
//	})
//
// # Statistics
//
// Stats returns cumulative hits, misses, evictions, and expirations
// alongside current occupancy. A cache miss is an ordinary (zero, false)
// return, never an error.
package cache
