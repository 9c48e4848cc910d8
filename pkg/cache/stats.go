package cache

// Stats is a point-in-time snapshot of cache counters and occupancy.
type Stats struct {
	Entries      int     `json:"entries"`
	SizeBytes    int64   `json:"size_bytes"`
	MaxSizeBytes int64   `json:"max_size_bytes"`
	MaxEntries   int     `json:"max_entries"`
	Hits         int64   `json:"hits"`
	Misses       int64   `json:"misses"`
	Evictions    int64   `json:"evictions"`
	Expirations  int64   `json:"expirations"`
	HitRatio     float64 `json:"hit_ratio"`
}
