package blob

import "errors"

// Sentinel errors for blob cache operations.
var (
	// ErrNotFound is returned when a handle is requested for a key that
	// is not resident or has expired.
	ErrNotFound = errors.New("blob: entry not found")
)
