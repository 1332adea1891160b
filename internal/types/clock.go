package types

import "time"

// Clock abstracts time for testability. The forecast window heuristic
// depends on the minute of the current wall-clock hour, so tests inject
// fixed clocks instead of sleeping toward minute boundaries.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time { return time.Now() }
