package interval

import "time"

// Interval is a date range between two instants. The convention across the
// codebase is half-open: two intervals that merely touch at a boundary do
// not overlap.
type Interval struct {
	From time.Time
	To   time.Time
}

func New(from, to time.Time) Interval {
	return Interval{From: from, To: to}
}

// Valid reports whether the range is well-formed (from strictly before to).
func (i Interval) Valid() bool {
	return i.From.Before(i.To)
}

// Overlaps reports whether the two intervals share at least one instant.
// This is the single overlap predicate for the whole repo; blocking checks
// and availability queries must agree on it.
func Overlaps(a, b Interval) bool {
	return a.From.Before(b.To) && a.To.After(b.From)
}

// Overlaps reports whether i and other share at least one instant.
func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i, other)
}

// Contains reports whether the instant t falls inside the interval,
// boundaries included.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.From) && !t.After(i.To)
}

// Days returns the inclusive day count of the interval: both the day of
// From and the day of To count, so a same-day range spans one day.
func (i Interval) Days() int {
	from := startOfDay(i.From)
	to := startOfDay(i.To)
	return int(to.Sub(from)/(24*time.Hour)) + 1
}

func startOfDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
