package cache

import "time"

// Clock provides time for TTL checks and entry timestamps.
// The default implementation uses time.Now(). Tests can inject a
// fake clock via WithClock to exercise expiry deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}
