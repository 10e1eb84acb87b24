package channel

import "time"

// Clock abstracts timer creation so reconnect scheduling is testable
// without real sleeps.
type Clock interface {
	// After returns a channel that fires once after d.
	After(d time.Duration) <-chan time.Time
}

// realClock uses the wall clock.
type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
