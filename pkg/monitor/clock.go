package monitor

import "time"

// Clock provides time for sample timestamps and alert bookkeeping.
// The default implementation uses time.Now().
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}
