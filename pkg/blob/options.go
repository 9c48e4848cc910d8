package blob

import (
	"time"

	"github.com/dmitrymomot/cachekit/pkg/cache"
)

// Option configures the blob cache.
type Option func(*blobOptions)

type blobOptions struct {
	cacheOpts []cache.Option
	provider  HandleProvider
}

func defaultBlobOptions() *blobOptions {
	return &blobOptions{
		provider: memProvider{},
	}
}

// WithMaxSizeBytes sets the total byte budget for stored payloads.
// Default: the base cache default (64 MiB).
func WithMaxSizeBytes(n int64) Option {
	return func(o *blobOptions) {
		o.cacheOpts = append(o.cacheOpts, cache.WithMaxSizeBytes(n))
	}
}

// WithMaxEntries sets the maximum number of payloads.
// Default: the base cache default (1024).
func WithMaxEntries(n int) Option {
	return func(o *blobOptions) {
		o.cacheOpts = append(o.cacheOpts, cache.WithMaxEntries(n))
	}
}

// WithDefaultTTL sets the expiration applied to payloads stored without
// an explicit TTL. Default: 0 (no expiry).
func WithDefaultTTL(d time.Duration) Option {
	return func(o *blobOptions) {
		o.cacheOpts = append(o.cacheOpts, cache.WithDefaultTTL(d))
	}
}

// WithClock sets the time source used for TTL checks.
// Default: the system clock.
func WithClock(c cache.Clock) Option {
	return func(o *blobOptions) {
		o.cacheOpts = append(o.cacheOpts, cache.WithClock(c))
	}
}

// WithHandleProvider sets the provider used to mint and revoke access
// handles. Default: an in-memory provider minting mem:// URIs.
func WithHandleProvider(p HandleProvider) Option {
	return func(o *blobOptions) {
		if p != nil {
			o.provider = p
		}
	}
}
