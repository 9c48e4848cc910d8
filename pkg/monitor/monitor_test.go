package monitor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cachekit/pkg/monitor"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// statsSource is a mutable StatsProvider for driving test scenarios.
type statsSource struct {
	stats monitor.TierStats
	err   error
}

func (s *statsSource) Stats(context.Context) (monitor.TierStats, error) {
	if s.err != nil {
		return monitor.TierStats{}, s.err
	}
	return s.stats, nil
}

func healthyStats() monitor.TierStats {
	return monitor.TierStats{
		L1:   monitor.Tier{SizeBytes: 10, MaxSizeBytes: 100, Entries: 5},
		Hits: monitor.HitsByTier{L1: 90, L3: 10},
	}
}

// sampleOnce drives exactly one sample through the monitor, relying on
// Start's synchronous initial collection. The interval in these tests
// is long enough that the ticker itself never fires.
func sampleOnce(m *monitor.Monitor) {
	m.Start()
	m.Stop()
}

// --- Sampling ---

func TestMonitor_Sampling(t *testing.T) {
	t.Parallel()

	t.Run("start collects an immediate sample", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: healthyStats()}
		m := monitor.New(src, monitor.WithSampleInterval(time.Hour))

		sampleOnce(m)

		samples := m.Samples()
		require.Len(t, samples, 1)
		require.Equal(t, int64(10), samples[0].L1SizeBytes)
	})

	t.Run("computes tier hit ratios over all tiers including origin", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 1, MaxSizeBytes: 100},
			L2:   &monitor.Tier{SizeBytes: 2, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 3, L2: 1, L3: 4},
		}}
		m := monitor.New(src, monitor.WithSampleInterval(time.Hour))

		sampleOnce(m)

		samples := m.Samples()
		require.Len(t, samples, 1)
		require.InEpsilon(t, 0.375, samples[0].L1HitRatio, 1e-9)
		require.InEpsilon(t, 0.125, samples[0].L2HitRatio, 1e-9)
		require.Equal(t, int64(2), samples[0].L2SizeBytes)
	})

	t.Run("first sample has zero requests per second", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: healthyStats()}
		m := monitor.New(src, monitor.WithSampleInterval(time.Hour))
		m.RecordRequest(10 * time.Millisecond)

		sampleOnce(m)

		require.Zero(t, m.Samples()[0].RequestsPerSec)
	})

	t.Run("derives request rate and average latency", func(t *testing.T) {
		t.Parallel()

		clk := newFakeClock()
		src := &statsSource{stats: healthyStats()}
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithClock(clk),
		)

		sampleOnce(m)

		clk.Advance(2 * time.Second)
		for i := 0; i < 10; i++ {
			m.RecordRequest(100 * time.Millisecond)
		}
		sampleOnce(m)

		samples := m.Samples()
		require.Len(t, samples, 2)
		require.InEpsilon(t, 5.0, samples[1].RequestsPerSec, 1e-9)
		require.Equal(t, 100*time.Millisecond, samples[1].AvgLatency)
	})

	t.Run("pending counters reset after each sample", func(t *testing.T) {
		t.Parallel()

		clk := newFakeClock()
		src := &statsSource{stats: healthyStats()}
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithClock(clk),
		)

		m.RecordRequest(50 * time.Millisecond)
		sampleOnce(m)

		clk.Advance(time.Second)
		sampleOnce(m)

		samples := m.Samples()
		require.Equal(t, time.Duration(0), samples[1].AvgLatency, "no requests since previous sample")
		require.Zero(t, samples[1].RequestsPerSec)
	})

	t.Run("ring drops oldest sample on overflow", func(t *testing.T) {
		t.Parallel()

		clk := newFakeClock()
		src := &statsSource{stats: healthyStats()}
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithMaxSamples(3),
			monitor.WithClock(clk),
		)

		start := clk.Now()
		for i := 0; i < 5; i++ {
			sampleOnce(m)
			clk.Advance(time.Minute)
		}

		samples := m.Samples()
		require.Len(t, samples, 3)
		require.Equal(t, start.Add(2*time.Minute), samples[0].Timestamp)
		require.Equal(t, start.Add(4*time.Minute), samples[2].Timestamp)
	})

	t.Run("provider failure skips the sample", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{err: errors.New("backend gone")}
		m := monitor.New(src, monitor.WithSampleInterval(time.Hour))

		sampleOnce(m)

		require.Empty(t, m.Samples())
	})
}

// --- Lifecycle ---

func TestMonitor_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("start and stop are idempotent", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: healthyStats()}
		m := monitor.New(src, monitor.WithSampleInterval(time.Hour))

		m.Start()
		m.Start() // no-op, no second immediate sample
		require.True(t, m.IsRunning())
		require.Len(t, m.Samples(), 1)

		m.Stop()
		m.Stop() // no-op
		require.False(t, m.IsRunning())
	})

	t.Run("ticker drives periodic samples", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: healthyStats()}
		m := monitor.New(src, monitor.WithSampleInterval(20*time.Millisecond))

		m.Start()
		defer m.Stop()

		require.Eventually(t, func() bool {
			return len(m.Samples()) >= 3
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("stop suppresses future ticks", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: healthyStats()}
		m := monitor.New(src, monitor.WithSampleInterval(20*time.Millisecond))

		m.Start()
		m.Stop()
		count := len(m.Samples())

		time.Sleep(100 * time.Millisecond)
		require.Len(t, m.Samples(), count)
	})
}

// --- Alerts ---

func TestMonitor_Alerts(t *testing.T) {
	t.Parallel()

	t.Run("memory pressure warning above threshold", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 85, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 9, L3: 1},
		}}
		m := monitor.New(src, monitor.WithSampleInterval(time.Hour))

		sampleOnce(m)

		alerts := m.Alerts()
		require.Len(t, alerts, 1)
		require.Equal(t, monitor.CategoryMemoryPressure, alerts[0].Category)
		require.Equal(t, monitor.AlertWarning, alerts[0].Level)
		require.NotEmpty(t, alerts[0].ID)
	})

	t.Run("memory pressure critical above hard line", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 96, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 9, L3: 1},
		}}
		// Threshold above the hard line must not soften the critical.
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithMemoryPressureThreshold(0.99),
		)

		sampleOnce(m)

		alerts := m.Alerts()
		require.Len(t, alerts, 1)
		require.Equal(t, monitor.AlertCritical, alerts[0].Level)
	})

	t.Run("storage full for an L2 tier", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 10, MaxSizeBytes: 100},
			L2:   &monitor.Tier{SizeBytes: 90, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 9, L3: 1},
		}}
		m := monitor.New(src, monitor.WithSampleInterval(time.Hour))

		sampleOnce(m)

		alerts := m.Alerts()
		require.Len(t, alerts, 1)
		require.Equal(t, monitor.CategoryStorageFull, alerts[0].Category)
	})

	t.Run("no storage alert without an L2 tier", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: healthyStats()}
		m := monitor.New(src, monitor.WithSampleInterval(time.Hour))

		sampleOnce(m)

		require.Empty(t, m.Alerts())
	})

	t.Run("low hit ratio needs six samples", func(t *testing.T) {
		t.Parallel()

		clk := newFakeClock()
		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 1, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 3, L3: 7}, // combined ratio 0.3
		}}
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithClock(clk),
		)

		for i := 0; i < 5; i++ {
			sampleOnce(m)
			clk.Advance(3 * time.Hour) // clear of the debounce window
		}
		require.Empty(t, m.Alerts(), "no ratio alert before six samples")

		sampleOnce(m)

		alerts := m.Alerts()
		require.Len(t, alerts, 1)
		require.Equal(t, monitor.CategoryLowHitRatio, alerts[0].Category)
		require.Equal(t, monitor.AlertWarning, alerts[0].Level)
	})

	t.Run("hit ratio below hard line is critical", func(t *testing.T) {
		t.Parallel()

		clk := newFakeClock()
		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 1, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 1, L3: 9}, // combined ratio 0.1
		}}
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithClock(clk),
		)

		for i := 0; i < 6; i++ {
			sampleOnce(m)
			clk.Advance(3 * time.Hour)
		}

		alerts := m.Alerts()
		require.NotEmpty(t, alerts)
		require.Equal(t, monitor.AlertCritical, alerts[len(alerts)-1].Level)
	})

	t.Run("high latency warning and critical", func(t *testing.T) {
		t.Parallel()

		clk := newFakeClock()
		src := &statsSource{stats: healthyStats()}
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithHighLatencyThreshold(100*time.Millisecond),
			monitor.WithClock(clk),
		)

		m.RecordRequest(150 * time.Millisecond)
		sampleOnce(m)

		alerts := m.Alerts()
		require.Len(t, alerts, 1)
		require.Equal(t, monitor.CategoryHighLatency, alerts[0].Category)
		require.Equal(t, monitor.AlertWarning, alerts[0].Level)

		clk.Advance(3 * time.Hour)
		m.RecordRequest(250 * time.Millisecond)
		sampleOnce(m)

		alerts = m.Alerts()
		require.Len(t, alerts, 2)
		require.Equal(t, monitor.AlertCritical, alerts[1].Level)
	})

	t.Run("alerting disabled collects samples without alerts", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 99, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 9, L3: 1},
		}}
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithAlertingDisabled(),
		)

		sampleOnce(m)

		require.Len(t, m.Samples(), 1)
		require.Empty(t, m.Alerts())
	})
}

// --- Debounce ---

func TestMonitor_Debounce(t *testing.T) {
	t.Parallel()

	t.Run("suppresses same category within the window", func(t *testing.T) {
		t.Parallel()

		clk := newFakeClock()
		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 90, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 9, L3: 1},
		}}
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithClock(clk),
		)

		sampleOnce(m)
		clk.Advance(time.Hour) // within the 2h debounce window
		sampleOnce(m)

		require.Len(t, m.Alerts(), 1, "second alert in same category debounced")
	})

	t.Run("raises again after the window passes", func(t *testing.T) {
		t.Parallel()

		clk := newFakeClock()
		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 90, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 9, L3: 1},
		}}
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithClock(clk),
		)

		sampleOnce(m)
		clk.Advance(3 * time.Hour)
		sampleOnce(m)

		alerts := m.Alerts()
		require.Len(t, alerts, 2)
		require.NotEqual(t, alerts[0].ID, alerts[1].ID)
	})

	t.Run("callback fires once per raised alert", func(t *testing.T) {
		t.Parallel()

		clk := newFakeClock()
		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 90, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 9, L3: 1},
		}}

		var notified []monitor.Alert
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithClock(clk),
			monitor.WithAlertCallback(func(a monitor.Alert) {
				notified = append(notified, a)
			}),
		)

		sampleOnce(m)
		clk.Advance(time.Hour)
		sampleOnce(m) // debounced, no callback

		require.Len(t, notified, 1)
		require.Equal(t, monitor.CategoryMemoryPressure, notified[0].Category)
	})

	t.Run("prunes alerts past the retention window", func(t *testing.T) {
		t.Parallel()

		clk := newFakeClock()
		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 90, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 9, L3: 1},
		}}
		// Retention = interval × maxSamples = 2h.
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithMaxSamples(2),
			monitor.WithClock(clk),
		)

		sampleOnce(m)
		require.Len(t, m.Alerts(), 1)

		clk.Advance(3 * time.Hour)
		sampleOnce(m)

		alerts := m.Alerts()
		require.Len(t, alerts, 1, "stale alert pruned when the new one was appended")
	})
}

// --- Snapshot ---

func TestMonitor_CreateSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("healthy with no alerts and strong hit ratio", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: healthyStats()}
		m := monitor.New(src, monitor.WithSampleInterval(time.Hour))

		sampleOnce(m)

		snap, err := m.CreateSnapshot(context.Background())
		require.NoError(t, err)
		require.Equal(t, monitor.StatusHealthy, snap.Health)
		require.Len(t, snap.Samples, 1)
		require.Empty(t, snap.Alerts)
		require.Equal(t, time.Hour, snap.Config.SampleInterval)
	})

	t.Run("critical while a critical alert is active", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 99, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 9, L3: 1},
		}}
		m := monitor.New(src, monitor.WithSampleInterval(time.Hour))

		sampleOnce(m)

		snap, err := m.CreateSnapshot(context.Background())
		require.NoError(t, err)
		require.Equal(t, monitor.StatusCritical, snap.Health)
	})

	t.Run("degraded with a warning alert", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 85, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 9, L3: 1},
		}}
		m := monitor.New(src, monitor.WithSampleInterval(time.Hour))

		sampleOnce(m)

		snap, err := m.CreateSnapshot(context.Background())
		require.NoError(t, err)
		require.Equal(t, monitor.StatusDegraded, snap.Health)
	})

	t.Run("degraded on weak rolling hit ratio without alerts", func(t *testing.T) {
		t.Parallel()

		clk := newFakeClock()
		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 1, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 3, L3: 7},
		}}
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithClock(clk),
			monitor.WithAlertingDisabled(),
		)

		for i := 0; i < 6; i++ {
			sampleOnce(m)
			clk.Advance(time.Minute)
		}

		snap, err := m.CreateSnapshot(context.Background())
		require.NoError(t, err)
		require.Equal(t, monitor.StatusDegraded, snap.Health)
	})

	t.Run("degraded on extreme L1 usage without alerts", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 99, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 9, L3: 1},
		}}
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithAlertingDisabled(),
		)

		sampleOnce(m)

		snap, err := m.CreateSnapshot(context.Background())
		require.NoError(t, err)
		require.Equal(t, monitor.StatusDegraded, snap.Health)
	})

	t.Run("propagates provider failure", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{err: errors.New("backend gone")}
		m := monitor.New(src, monitor.WithSampleInterval(time.Hour))

		_, err := m.CreateSnapshot(context.Background())
		require.ErrorIs(t, err, monitor.ErrStatsUnavailable)
	})
}

// --- AverageMetrics ---

func TestMonitor_AverageMetrics(t *testing.T) {
	t.Parallel()

	t.Run("false with no samples", func(t *testing.T) {
		t.Parallel()

		m := monitor.New(&statsSource{stats: healthyStats()})

		_, ok := m.AverageMetrics(5)
		require.False(t, ok)
	})

	t.Run("averages the most recent n samples", func(t *testing.T) {
		t.Parallel()

		clk := newFakeClock()
		src := &statsSource{stats: monitor.TierStats{
			L1:   monitor.Tier{SizeBytes: 10, MaxSizeBytes: 100},
			Hits: monitor.HitsByTier{L1: 9, L3: 1},
		}}
		m := monitor.New(src,
			monitor.WithSampleInterval(time.Hour),
			monitor.WithClock(clk),
		)

		sampleOnce(m)
		src.stats.L1.SizeBytes = 30
		clk.Advance(time.Minute)
		sampleOnce(m)

		avg, ok := m.AverageMetrics(2)
		require.True(t, ok)
		require.Equal(t, int64(20), avg.L1SizeBytes)
		require.Equal(t, clk.Now(), avg.Timestamp)
	})

	t.Run("clamps n to the available history", func(t *testing.T) {
		t.Parallel()

		src := &statsSource{stats: healthyStats()}
		m := monitor.New(src, monitor.WithSampleInterval(time.Hour))

		sampleOnce(m)

		avg, ok := m.AverageMetrics(100)
		require.True(t, ok)
		require.Equal(t, int64(10), avg.L1SizeBytes)
	})
}
