// Package monitor samples a cache collaborator's runtime statistics on
// a timer, maintains a bounded metric history, and raises debounced
// alerts for memory pressure, poor hit ratios, and latency regressions.
//
// The monitor is bound at construction to one collaborator implementing
// [StatsProvider], typically a tiered cache exposing per-tier occupancy
// and hit counts. Single-tier caches simply report a nil L2.
//
// # Usage
//
//	m := monitor.New(provider,
//	    monitor.WithSampleInterval(30*time.Second),
//	    monitor.WithMemoryPressureThreshold(0.85),
//	    monitor.WithAlertCallback(func(a monitor.Alert) { notify(a) }),
//	    monitor.WithLogger(log),
//	)
//	m.Start()
//	defer m.Stop()
//
// Start collects one sample synchronously before the first tick, so a
// snapshot right after Start already carries data. Start and Stop are
// idempotent.
//
// Request-handling code feeds latency observations through
// [Monitor.RecordRequest]; the pending counters are consumed and reset
// by each sample, which derives requests/sec and average latency from
// them.
//
// # Alerting
//
// Every sample is checked against four predicates, in order: L1 memory
// pressure, L2 storage pressure, low combined hit ratio (only once at
// least 6 samples exist), and high average latency. Each predicate has
// a warning threshold from configuration and a hard critical line
// (95% usage, 0.25 hit ratio, 2× latency threshold).
//
// A new alert is suppressed while an alert of the same category sits in
// the log with a timestamp within twice the sample interval; the log is
// pruned of alerts older than interval × maxSamples.
//
// # Diagnostics
//
// [Monitor.CreateSnapshot] returns fresh collaborator stats, the sample
// ring, active alerts, configuration, and a rollup health status of
// healthy, degraded, or critical. [Monitor.AverageMetrics] averages the
// most recent n samples field by field.
//
// # Concurrency
//
// The sampling loop runs in a single goroutine, so ticks are serialized
// by construction: a slow collaborator delays later ticks rather than
// overlapping them. RecordRequest uses atomic counters and never
// blocks. Stop suppresses future ticks but does not abort an in-flight
// sample.
package monitor
