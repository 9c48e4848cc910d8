// Package blob specializes the bounded LRU cache for binary payloads,
// pairing each resident entry with a revocable access handle whose
// lifetime tracks cache residency.
//
// A handle is an opaque URI minted by a [HandleProvider] on first
// request and memoized until the entry leaves the cache, whether by
// eviction pressure, TTL expiry, deletion, or Clear. At that point the
// handle is revoked exactly once and never reused for another entry.
//
// # Usage
//
//	c := blob.New(
//	    blob.WithMaxSizeBytes(128<<20),
//	    blob.WithMaxEntries(200),
//	    blob.WithDefaultTTL(30*time.Minute),
//	)
//
//	c.Put("page:1", pngBytes, "image/png")
//
//	uri, err := c.Handle("page:1")
//	if errors.Is(err, blob.ErrNotFound) {
//	    // payload is no longer resident; re-render and Put again
//	}
//
// Requesting the handle again for the same resident key returns the
// same URI. Once the key is evicted, the next Handle call mints a fresh
// one.
//
// # Handle providers
//
// The default provider mints in-memory mem:// URIs with no backing
// resource. Supply a custom provider to tie handles to real platform
// resources (temporary files, object URLs, pre-signed links):
//
//	c := blob.New(blob.WithHandleProvider(tmpFileProvider{dir: spool}))
//
// The cache calls Revoke exactly once per minted handle, so providers
// can release the backing resource unconditionally.
//
// # Concurrency
//
// Like the underlying cache, the blob cache performs no internal
// locking. Callers needing concurrent access must serialize externally.
package blob
