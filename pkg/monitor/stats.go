package monitor

import "context"

// Tier describes the occupancy of one cache tier.
type Tier struct {
	SizeBytes    int64 `json:"size_bytes"`
	MaxSizeBytes int64 `json:"max_size_bytes"`
	Entries      int   `json:"entries"`
}

// HitsByTier breaks cumulative request counts down by the tier that
// served them. L3 is the notional origin tier: requests no cache tier
// could serve.
type HitsByTier struct {
	L1 int64 `json:"l1"`
	L2 int64 `json:"l2"`
	L3 int64 `json:"l3"`
}

// TierStats is the statistics shape a monitored collaborator exposes.
// L2 is nil for single-tier caches; L2-related alerts and ratios are
// then not applicable.
type TierStats struct {
	L1   Tier       `json:"l1"`
	L2   *Tier      `json:"l2,omitempty"`
	Hits HitsByTier `json:"hits"`
}

// usage returns the tier's size as a fraction of its capacity,
// 0 when no capacity is configured.
func (t Tier) usage() float64 {
	if t.MaxSizeBytes <= 0 {
		return 0
	}
	return float64(t.SizeBytes) / float64(t.MaxSizeBytes)
}

// total returns the request count across all tiers including origin.
func (h HitsByTier) total() int64 {
	return h.L1 + h.L2 + h.L3
}

// StatsProvider is the collaborator contract the monitor samples.
type StatsProvider interface {
	// Stats returns a snapshot of the collaborator's tier statistics.
	Stats(ctx context.Context) (TierStats, error)
}

// StatsFunc adapts a function to the StatsProvider interface.
type StatsFunc func(ctx context.Context) (TierStats, error)

// Stats implements StatsProvider.
func (f StatsFunc) Stats(ctx context.Context) (TierStats, error) {
	return f(ctx)
}
