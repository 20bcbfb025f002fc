package clock

import "time"

// Clock abstracts the current time so services can be tested against a
// fixed instant. All times are UTC.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns a Clock backed by time.Now.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	instant time.Time
}

// NewFixed returns a Clock frozen at t, for tests.
func NewFixed(t time.Time) Clock {
	return fixedClock{instant: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.instant
}
