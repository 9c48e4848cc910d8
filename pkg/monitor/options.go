package monitor

import (
	"io"
	"log/slog"
	"time"
)

// Config is the monitor's effective configuration, reported in
// snapshots.
type Config struct {
	SampleInterval          time.Duration `json:"sample_interval"`
	MaxSamples              int           `json:"max_samples"`
	MemoryPressureThreshold float64       `json:"memory_pressure_threshold"`
	LowHitRatioThreshold    float64       `json:"low_hit_ratio_threshold"`
	HighLatencyThreshold    time.Duration `json:"high_latency_threshold"`
	AlertingEnabled         bool          `json:"alerting_enabled"`
}

type config struct {
	Config

	logger  *slog.Logger
	clock   Clock
	onAlert func(Alert)
}

// Option configures the monitor.
type Option func(*config)

func newConfig(opts ...Option) *config {
	cfg := &config{
		Config: Config{
			SampleInterval:          10 * time.Second,
			MaxSamples:              60,
			MemoryPressureThreshold: 0.8,
			LowHitRatioThreshold:    0.5,
			HighLatencyThreshold:    250 * time.Millisecond,
			AlertingEnabled:         true,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:  realClock{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithSampleInterval sets how often the monitor samples the
// collaborator. The alert debounce window is derived from it
// (2 × interval). Default: 10s.
func WithSampleInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.SampleInterval = d
		}
	}
}

// WithMaxSamples sets the sample ring capacity. The alert log retention
// window is derived from it (interval × maxSamples). Default: 60.
func WithMaxSamples(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.MaxSamples = n
		}
	}
}

// WithMemoryPressureThreshold sets the tier usage fraction above which
// a warning is raised. Usage above 0.95 is always critical regardless
// of this threshold. Default: 0.8.
func WithMemoryPressureThreshold(f float64) Option {
	return func(c *config) {
		if f > 0 && f <= 1 {
			c.MemoryPressureThreshold = f
		}
	}
}

// WithLowHitRatioThreshold sets the combined L1+L2 hit ratio below
// which an alert is raised, once enough samples exist. Default: 0.5.
func WithLowHitRatioThreshold(f float64) Option {
	return func(c *config) {
		if f > 0 && f <= 1 {
			c.LowHitRatioThreshold = f
		}
	}
}

// WithHighLatencyThreshold sets the average latency above which a
// warning is raised; twice the threshold is critical. Default: 250ms.
func WithHighLatencyThreshold(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.HighLatencyThreshold = d
		}
	}
}

// WithAlertingDisabled turns off alert evaluation. Samples are still
// collected.
func WithAlertingDisabled() Option {
	return func(c *config) {
		c.AlertingEnabled = false
	}
}

// WithAlertCallback sets a callback invoked synchronously once per
// newly raised, non-debounced alert.
func WithAlertCallback(fn func(Alert)) Option {
	return func(c *config) {
		c.onAlert = fn
	}
}

// WithLogger sets the logger for raised alerts and sampling failures.
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the time source used for sample timestamps, debounce,
// and alert pruning. The sampling ticker always runs on the system
// clock. Default: the system clock.
func WithClock(clk Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clock = clk
		}
	}
}
