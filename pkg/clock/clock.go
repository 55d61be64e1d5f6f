package clock

import "time"

// Clock abstracts the current time so the lead-time rule and the temporal
// bucket queries can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns a clock backed by the wall clock, in UTC.
func System() Clock {
	return systemClock{}
}

// Fixed returns a clock that always reports t.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t}
}

type fixedClock struct {
	t time.Time
}

func (f fixedClock) Now() time.Time {
	return f.t
}
