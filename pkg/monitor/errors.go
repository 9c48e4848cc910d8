package monitor

import "errors"

// Sentinel errors for the monitor package.
var (
	// ErrStatsUnavailable is returned when the collaborator's stats
	// could not be fetched for a snapshot.
	ErrStatsUnavailable = errors.New("monitor: stats unavailable")
)
