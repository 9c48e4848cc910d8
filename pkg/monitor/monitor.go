package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	// StatusHealthy indicates no alerts and acceptable metrics.
	StatusHealthy = "healthy"
	// StatusDegraded indicates active warnings or weak metrics.
	StatusDegraded = "degraded"
	// StatusCritical indicates at least one active critical alert.
	StatusCritical = "critical"
)

// Hard alert lines, applied regardless of configured thresholds.
const (
	criticalUsage        = 0.95
	criticalHitRatio     = 0.25
	minHitRatioSamples   = 6
	rollingWindowSamples = 10
	degradedHitRatio     = 0.5
)

// Monitor periodically samples a cache collaborator's statistics,
// keeps a bounded metric history, and raises debounced alerts when
// configurable thresholds are crossed.
//
// The sampling loop runs in a single goroutine, so ticks never overlap:
// a slow collaborator delays subsequent ticks rather than stacking them.
type Monitor struct {
	provider StatsProvider
	cfg      *config

	mu         sync.Mutex
	samples    []Sample
	alerts     []Alert
	lastSample time.Time
	running    bool
	done       chan struct{}

	pendingRequests atomic.Int64
	pendingLatency  atomic.Int64 // nanoseconds
}

// New creates a monitor bound to one collaborator.
//
// Example:
//
//	m := monitor.New(tiered,
//	    monitor.WithSampleInterval(30*time.Second),
//	    monitor.WithAlertCallback(func(a monitor.Alert) {
//	        notify(a)
//	    }),
//	)
//	m.Start()
//	defer m.Stop()
func New(provider StatsProvider, opts ...Option) *Monitor {
	return &Monitor{
		provider: provider,
		cfg:      newConfig(opts...),
	}
}

// Start begins periodic sampling. It collects one sample synchronously
// before the first tick so diagnostics are available immediately.
// Calling Start on a running monitor is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	m.collectSample()
	go m.loop(done)
}

// Stop cancels future sampling ticks. An in-flight sample is not
// aborted. Calling Stop on a stopped monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false
	close(m.done)
}

// IsRunning reports whether the sampling loop is active.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// RecordRequest feeds one request observation into the monitor. It is
// consumed and reset by the next sample, and is safe to call from any
// goroutine.
func (m *Monitor) RecordRequest(latency time.Duration) {
	m.pendingRequests.Add(1)
	m.pendingLatency.Add(int64(latency))
}

// Samples returns a copy of the sample ring, oldest first.
func (m *Monitor) Samples() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Sample, len(m.samples))
	copy(out, m.samples)
	return out
}

// Alerts returns a copy of the current alert log, oldest first.
func (m *Monitor) Alerts() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// AverageMetrics averages the most recent n samples field by field.
// The timestamp is the latest sample's. Returns false if no samples
// have been collected yet.
func (m *Monitor) AverageMetrics(n int) (Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.samples) == 0 || n <= 0 {
		return Sample{}, false
	}
	if n > len(m.samples) {
		n = len(m.samples)
	}

	window := m.samples[len(m.samples)-n:]
	var avg Sample
	var latency time.Duration
	for _, s := range window {
		avg.L1SizeBytes += s.L1SizeBytes
		avg.L2SizeBytes += s.L2SizeBytes
		avg.L1HitRatio += s.L1HitRatio
		avg.L2HitRatio += s.L2HitRatio
		avg.RequestsPerSec += s.RequestsPerSec
		latency += s.AvgLatency
	}
	count := int64(len(window))
	avg.L1SizeBytes /= count
	avg.L2SizeBytes /= count
	avg.L1HitRatio /= float64(count)
	avg.L2HitRatio /= float64(count)
	avg.RequestsPerSec /= float64(count)
	avg.AvgLatency = latency / time.Duration(count)
	avg.Timestamp = window[len(window)-1].Timestamp

	return avg, true
}

// Snapshot aggregates everything a diagnostics surface needs: fresh
// collaborator stats, the sample ring, the alert log, the effective
// configuration, and a derived health status.
type Snapshot struct {
	Stats   TierStats `json:"stats"`
	Samples []Sample  `json:"samples"`
	Alerts  []Alert   `json:"alerts"`
	Config  Config    `json:"config"`
	Health  string    `json:"health"`
}

// CreateSnapshot fetches fresh stats from the collaborator and returns
// the full diagnostic snapshot. Returns ErrStatsUnavailable (joined
// with the underlying cause) if the collaborator fails.
func (m *Monitor) CreateSnapshot(ctx context.Context) (Snapshot, error) {
	stats, err := m.provider.Stats(ctx)
	if err != nil {
		return Snapshot{}, errors.Join(ErrStatsUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	samples := make([]Sample, len(m.samples))
	copy(samples, m.samples)
	alerts := make([]Alert, len(m.alerts))
	copy(alerts, m.alerts)

	return Snapshot{
		Stats:   stats,
		Samples: samples,
		Alerts:  alerts,
		Config:  m.cfg.Config,
		Health:  m.healthLocked(stats),
	}, nil
}

// healthLocked derives the rollup status. Caller must hold the mutex.
func (m *Monitor) healthLocked(stats TierStats) string {
	for _, a := range m.alerts {
		if a.Level == AlertCritical {
			return StatusCritical
		}
	}

	if len(m.alerts) > 0 {
		return StatusDegraded
	}
	if len(m.samples) >= minHitRatioSamples && m.rollingHitRatioLocked() < degradedHitRatio {
		return StatusDegraded
	}
	if stats.L1.usage() > criticalUsage {
		return StatusDegraded
	}

	return StatusHealthy
}

// rollingHitRatioLocked averages the combined hit ratio over the most
// recent samples. Caller must hold the mutex.
func (m *Monitor) rollingHitRatioLocked() float64 {
	n := rollingWindowSamples
	if n > len(m.samples) {
		n = len(m.samples)
	}
	if n == 0 {
		return 0
	}

	var sum float64
	for _, s := range m.samples[len(m.samples)-n:] {
		sum += s.L1HitRatio + s.L2HitRatio
	}
	return sum / float64(n)
}

func (m *Monitor) loop(done chan struct{}) {
	ticker := time.NewTicker(m.cfg.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			m.collectSample()
		}
	}
}

// collectSample fetches collaborator stats, derives one sample,
// appends it to the ring, resets the request accumulators, and
// evaluates alerts.
func (m *Monitor) collectSample() {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.SampleInterval)
	defer cancel()

	stats, err := m.provider.Stats(ctx)
	if err != nil {
		m.cfg.logger.WarnContext(ctx, "cache stats collection failed",
			slog.String("error", err.Error()),
		)
		return
	}

	now := m.cfg.clock.Now()
	requests := m.pendingRequests.Swap(0)
	latencyNs := m.pendingLatency.Swap(0)

	m.mu.Lock()

	var rps float64
	if !m.lastSample.IsZero() {
		if elapsed := now.Sub(m.lastSample); elapsed > 0 {
			rps = float64(requests) / elapsed.Seconds()
		}
	}

	var avgLatency time.Duration
	if requests > 0 {
		avgLatency = time.Duration(latencyNs / requests)
	}

	var l1Ratio, l2Ratio float64
	if total := stats.Hits.total(); total > 0 {
		l1Ratio = float64(stats.Hits.L1) / float64(total)
		l2Ratio = float64(stats.Hits.L2) / float64(total)
	}

	sample := Sample{
		Timestamp:      now,
		L1SizeBytes:    stats.L1.SizeBytes,
		L1HitRatio:     l1Ratio,
		L2HitRatio:     l2Ratio,
		AvgLatency:     avgLatency,
		RequestsPerSec: rps,
	}
	if stats.L2 != nil {
		sample.L2SizeBytes = stats.L2.SizeBytes
	}

	m.samples = append(m.samples, sample)
	if len(m.samples) > m.cfg.MaxSamples {
		m.samples = m.samples[len(m.samples)-m.cfg.MaxSamples:]
	}
	m.lastSample = now

	if m.cfg.AlertingEnabled {
		m.evaluateLocked(stats, sample, now)
	}

	m.mu.Unlock()
}

// evaluateLocked runs the alert predicates against the freshly
// collected sample, in fixed order. Caller must hold the mutex.
func (m *Monitor) evaluateLocked(stats TierStats, sample Sample, now time.Time) {
	// 1. Memory pressure, L1.
	if usage := stats.L1.usage(); usage > m.cfg.MemoryPressureThreshold || usage > criticalUsage {
		level := AlertWarning
		if usage > criticalUsage {
			level = AlertCritical
		}
		m.raiseLocked(level, CategoryMemoryPressure,
			fmt.Sprintf("L1 at %.0f%% of byte capacity", usage*100),
			map[string]any{
				"size_bytes":     stats.L1.SizeBytes,
				"max_size_bytes": stats.L1.MaxSizeBytes,
			}, now)
	}

	// 2. Storage full, L2 (only when an L2 tier is reported).
	if stats.L2 != nil {
		if usage := stats.L2.usage(); usage > m.cfg.MemoryPressureThreshold || usage > criticalUsage {
			level := AlertWarning
			if usage > criticalUsage {
				level = AlertCritical
			}
			m.raiseLocked(level, CategoryStorageFull,
				fmt.Sprintf("L2 at %.0f%% of byte capacity", usage*100),
				map[string]any{
					"size_bytes":     stats.L2.SizeBytes,
					"max_size_bytes": stats.L2.MaxSizeBytes,
				}, now)
		}
	}

	// 3. Low hit ratio, once enough samples exist to trust it.
	if len(m.samples) >= minHitRatioSamples {
		combined := sample.L1HitRatio + sample.L2HitRatio
		if combined < m.cfg.LowHitRatioThreshold {
			level := AlertWarning
			if combined < criticalHitRatio {
				level = AlertCritical
			}
			m.raiseLocked(level, CategoryLowHitRatio,
				fmt.Sprintf("combined hit ratio %.2f below threshold %.2f", combined, m.cfg.LowHitRatioThreshold),
				map[string]any{
					"l1_hit_ratio": sample.L1HitRatio,
					"l2_hit_ratio": sample.L2HitRatio,
				}, now)
		}
	}

	// 4. High latency.
	if sample.AvgLatency > m.cfg.HighLatencyThreshold {
		level := AlertWarning
		if sample.AvgLatency > 2*m.cfg.HighLatencyThreshold {
			level = AlertCritical
		}
		m.raiseLocked(level, CategoryHighLatency,
			fmt.Sprintf("average latency %s above threshold %s", sample.AvgLatency, m.cfg.HighLatencyThreshold),
			map[string]any{
				"avg_latency_ms": sample.AvgLatency.Milliseconds(),
			}, now)
	}
}

// raiseLocked appends an alert unless one of the same category was
// raised within the debounce window, then prunes aged-out alerts.
// Caller must hold the mutex.
func (m *Monitor) raiseLocked(level AlertLevel, category AlertCategory, message string, data map[string]any, now time.Time) {
	debounce := 2 * m.cfg.SampleInterval
	for i := len(m.alerts) - 1; i >= 0; i-- {
		a := m.alerts[i]
		if a.Category == category && now.Sub(a.Timestamp) < debounce {
			return
		}
	}

	alert := Alert{
		ID:        uuid.NewString(),
		Level:     level,
		Category:  category,
		Message:   message,
		Timestamp: now,
		Data:      data,
	}
	m.alerts = append(m.alerts, alert)

	retention := m.cfg.SampleInterval * time.Duration(m.cfg.MaxSamples)
	kept := m.alerts[:0]
	for _, a := range m.alerts {
		if now.Sub(a.Timestamp) <= retention {
			kept = append(kept, a)
		}
	}
	m.alerts = kept

	m.cfg.logger.Warn("cache alert raised",
		slog.String("level", string(level)),
		slog.String("category", string(category)),
		slog.String("message", message),
	)

	if m.cfg.onAlert != nil {
		m.cfg.onAlert(alert)
	}
}
