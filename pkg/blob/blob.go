package blob

import (
	"time"

	"github.com/dmitrymomot/cachekit/pkg/cache"
)

// Blob is a binary payload with its media type and optional opaque
// metadata. Its cache size is always len(Data).
type Blob struct {
	Data        []byte
	ContentType string
	Metadata    map[string]any
}

// Cache stores binary payloads and pairs each resident entry with a
// lazily-created, revocable access handle. A handle stays valid exactly
// as long as its entry is resident: eviction, expiry, deletion, and
// Clear all revoke it.
//
// Like the underlying cache, it performs no internal locking; callers
// needing concurrent access must serialize externally.
type Cache struct {
	inner    *cache.Cache[Blob]
	handles  map[string]string // key -> handle URI
	provider HandleProvider
}

// New creates a binary resource cache.
//
// Example:
//
//	c := blob.New(
//	    blob.WithMaxSizeBytes(128<<20),
//	    blob.WithMaxEntries(200),
//	)
func New(opts ...Option) *Cache {
	o := defaultBlobOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &Cache{
		inner:    cache.New[Blob](o.cacheOpts...),
		handles:  make(map[string]string),
		provider: o.provider,
	}

	// Any entry the base cache drops loses its handle, whether or not
	// one was ever requested.
	c.inner.SetEvictCallback(func(key string, _ *cache.Entry[Blob]) {
		c.revoke(key)
	})
	c.inner.SetExpireCallback(func(key string, _ *cache.Entry[Blob]) {
		c.revoke(key)
	})

	return c
}

// PutOption configures a single Put call.
type PutOption func(*putOptions)

type putOptions struct {
	ttl      time.Duration
	metadata map[string]any
}

// WithTTL overrides the cache's default TTL for this payload, with the
// same semantics as cache.WithTTL.
func WithTTL(d time.Duration) PutOption {
	return func(o *putOptions) {
		o.ttl = d
	}
}

// WithMetadata attaches an opaque metadata map to the payload.
func WithMetadata(m map[string]any) PutOption {
	return func(o *putOptions) {
		o.metadata = m
	}
}

// Put stores a binary payload under key. The entry's size is the
// payload's byte length.
func (c *Cache) Put(key string, data []byte, contentType string, opts ...PutOption) {
	var po putOptions
	for _, opt := range opts {
		opt(&po)
	}

	b := Blob{Data: data, ContentType: contentType, Metadata: po.metadata}

	setOpts := make([]cache.SetOption, 0, 2)
	if po.ttl != 0 {
		setOpts = append(setOpts, cache.WithTTL(po.ttl))
	}
	if po.metadata != nil {
		setOpts = append(setOpts, cache.WithMetadata(po.metadata))
	}

	c.inner.Set(key, b, int64(len(data)), setOpts...)
}

// Get retrieves a payload by key, with the base cache's recency and
// expiry semantics.
func (c *Cache) Get(key string) (Blob, bool) {
	return c.inner.Get(key)
}

// Has checks whether a key is resident and not expired.
func (c *Cache) Has(key string) bool {
	return c.inner.Has(key)
}

// Handle returns the access handle URI for a resident payload, creating
// and memoizing one on first request. Returns ErrNotFound if the key is
// not resident (including just-expired entries).
//
// A memoized handle whose entry has meanwhile disappeared is revoked
// and recomputed rather than returned stale; a handle is never reused
// for a different entry.
func (c *Cache) Handle(key string) (string, error) {
	if uri, ok := c.handles[key]; ok {
		if c.inner.Has(key) {
			return uri, nil
		}
		// The entry is gone. The residency check above may itself have
		// detected expiry and revoked through the callback, so only
		// revoke here if the side table still holds this handle.
		if cur, still := c.handles[key]; still && cur == uri {
			delete(c.handles, key)
			c.revokeURI(uri)
		}
	}

	b, ok := c.inner.Get(key)
	if !ok {
		return "", ErrNotFound
	}

	uri, err := c.provider.Create(key, b)
	if err != nil {
		return "", err
	}
	c.handles[key] = uri

	return uri, nil
}

// InvalidateHandle revokes and forgets the handle for key, if any,
// without removing the entry. The next Handle call mints a fresh one.
// Reports whether a handle was revoked.
func (c *Cache) InvalidateHandle(key string) bool {
	uri, ok := c.handles[key]
	if !ok {
		return false
	}
	delete(c.handles, key)
	c.revokeURI(uri)
	return true
}

// Delete removes a payload and revokes its handle. The base cache fires
// no eviction callback for caller-initiated deletes, so the handle is
// revoked here.
func (c *Cache) Delete(key string) bool {
	if uri, ok := c.handles[key]; ok {
		delete(c.handles, key)
		c.revokeURI(uri)
	}
	return c.inner.Delete(key)
}

// Clear revokes every outstanding handle, then clears the base cache.
func (c *Cache) Clear() {
	for key, uri := range c.handles {
		delete(c.handles, key)
		c.revokeURI(uri)
	}
	c.inner.Clear()
}

// Prune removes expired payloads, revoking their handles through the
// expiry callback, and returns the count removed.
func (c *Cache) Prune() int {
	return c.inner.Prune()
}

// Len returns the number of resident payloads.
func (c *Cache) Len() int {
	return c.inner.Len()
}

// SizeBytes returns the accumulated payload size in bytes.
func (c *Cache) SizeBytes() int64 {
	return c.inner.SizeBytes()
}

// Stats returns the base cache's statistics snapshot.
func (c *Cache) Stats() cache.Stats {
	return c.inner.Stats()
}

// revoke drops the handle for key, if any. Removing the side-table
// entry before calling the provider guarantees each handle is revoked
// exactly once, even when removal paths overlap.
func (c *Cache) revoke(key string) {
	uri, ok := c.handles[key]
	if !ok {
		return
	}
	delete(c.handles, key)
	c.revokeURI(uri)
}

func (c *Cache) revokeURI(uri string) {
	// Revocation failures are not actionable by the caller of the
	// triggering cache operation; the handle is already forgotten.
	_ = c.provider.Revoke(uri)
}
