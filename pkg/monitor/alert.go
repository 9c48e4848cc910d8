package monitor

import "time"

// AlertLevel is the severity of a raised alert.
type AlertLevel string

const (
	// AlertWarning indicates a threshold was crossed.
	AlertWarning AlertLevel = "warning"
	// AlertCritical indicates a hard limit was crossed.
	AlertCritical AlertLevel = "critical"
)

// AlertCategory groups alerts for debouncing: a new alert is suppressed
// while a recent alert of the same category is in the log, regardless
// of its exact message.
type AlertCategory string

const (
	// CategoryMemoryPressure is raised when L1 usage crosses the
	// memory pressure threshold.
	CategoryMemoryPressure AlertCategory = "memory_pressure"
	// CategoryStorageFull is raised when L2 usage crosses the memory
	// pressure threshold.
	CategoryStorageFull AlertCategory = "storage_full"
	// CategoryLowHitRatio is raised when the combined L1+L2 hit ratio
	// falls below the configured threshold.
	CategoryLowHitRatio AlertCategory = "low_hit_ratio"
	// CategoryHighLatency is raised when average request latency
	// exceeds the configured threshold.
	CategoryHighLatency AlertCategory = "high_latency"
)

// Alert is one entry in the monitor's bounded, time-pruned alert log.
type Alert struct {
	ID        string         `json:"id"`
	Level     AlertLevel     `json:"level"`
	Category  AlertCategory  `json:"category"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}
