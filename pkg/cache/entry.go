package cache

import "time"

// Entry wraps a cached value with its bookkeeping fields.
//
// Entries are owned by the cache: Get updates AccessedAt and AccessCount,
// Set replaces the entry wholesale. Callbacks receive the entry at the
// moment of removal; Entries returns copies.
type Entry[V any] struct {
	Key         string
	Value       V
	Size        int64
	CreatedAt   time.Time
	AccessedAt  time.Time
	AccessCount int64
	ExpiresAt   time.Time // zero value = never expires
	Metadata    map[string]any
}

// expired reports whether the entry has passed its expiration time.
func (e *Entry[V]) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Item is one input to SetMany.
//
// TTL semantics match Set: positive = expires after duration, zero = use
// the cache default, negative = never expires.
type Item[V any] struct {
	Key      string
	Value    V
	Size     int64
	TTL      time.Duration
	Metadata map[string]any
}
