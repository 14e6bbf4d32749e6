// internal/common/clock/clock.go
// Injectable time source so expiry logic can be tested deterministically

package clock

import "time"

// Clock provides the current time
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewSystem returns a Clock backed by the system time in UTC
func NewSystem() Clock {
	return systemClock{}
}

// Fixed is a Clock pinned to a settable instant
type Fixed struct {
	Current time.Time
}

func (f *Fixed) Now() time.Time {
	return f.Current
}

// Advance moves the fixed clock forward
func (f *Fixed) Advance(d time.Duration) {
	f.Current = f.Current.Add(d)
}
