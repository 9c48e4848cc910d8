package monitor

import "time"

// Sample is one monitor observation. Samples live in a fixed-capacity
// ring in insertion order; the oldest is dropped on overflow.
type Sample struct {
	Timestamp      time.Time     `json:"timestamp"`
	L1SizeBytes    int64         `json:"l1_size_bytes"`
	L2SizeBytes    int64         `json:"l2_size_bytes"`
	L1HitRatio     float64       `json:"l1_hit_ratio"`
	L2HitRatio     float64       `json:"l2_hit_ratio"`
	AvgLatency     time.Duration `json:"avg_latency"`
	RequestsPerSec float64       `json:"requests_per_sec"`
}
