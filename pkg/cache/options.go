package cache

import "time"

// Option configures the cache.
type Option func(*options)

type options struct {
	maxSizeBytes int64
	maxEntries   int
	defaultTTL   time.Duration
	clock        Clock
}

func defaultOptions() *options {
	return &options{
		maxSizeBytes: 64 << 20, // 64 MiB
		maxEntries:   1024,
		defaultTTL:   0, // no expiry
		clock:        realClock{},
	}
}

// WithMaxSizeBytes sets the total byte budget for stored entries.
// When an insertion would exceed it, least recently used entries are
// evicted first. Zero means no byte budget at all: every insertion
// evicts everything already resident, so in practice always set this.
// Default: 64 MiB.
func WithMaxSizeBytes(n int64) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxSizeBytes = n
	}
}

// WithMaxEntries sets the maximum number of entries in the cache.
// When the limit is reached, the least recently used entry is evicted.
// Zero means zero capacity (the cache holds at most the entry being
// inserted), not unlimited.
// Default: 1024.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxEntries = n
	}
}

// WithDefaultTTL sets the expiration applied when Set is called without
// an explicit TTL. Zero means entries do not expire by default.
// Default: 0 (no expiry).
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) {
		o.defaultTTL = d
	}
}

// WithClock sets the time source used for entry timestamps and TTL
// checks. Default: the system clock.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// SetOption configures a single Set call.
type SetOption func(*setOptions)

type setOptions struct {
	ttl      time.Duration
	metadata map[string]any
}

// WithTTL overrides the cache's default TTL for this entry.
// Positive = expires after duration, zero = use the cache default,
// negative = never expires.
func WithTTL(d time.Duration) SetOption {
	return func(o *setOptions) {
		o.ttl = d
	}
}

// WithMetadata attaches an opaque metadata map to the entry. The cache
// never interprets it; it travels with the entry into callbacks and
// Entries results.
func WithMetadata(m map[string]any) SetOption {
	return func(o *setOptions) {
		o.metadata = m
	}
}
