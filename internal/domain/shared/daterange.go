// Package shared holds value objects used by more than one aggregate.
package shared

import (
	"errors"
	"time"
)

// ErrInvalidDateRange is returned when a range ends before it starts.
var ErrInvalidDateRange = errors.New("date range end is before start")

// DateRange is a closed validity window [Start, End].
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange validates that end is not before start.
func NewDateRange(start, end time.Time) (DateRange, error) {
	if end.Before(start) {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{Start: start, End: end}, nil
}

// Contains reports whether t lies within the range, boundaries included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Overlaps reports whether r and other share at least one instant.
func (r DateRange) Overlaps(other DateRange) bool {
	return Overlaps(r, other)
}

// Overlaps reports whether two closed ranges overlap: a starts within b,
// a ends within b, or a encloses b.
func Overlaps(a, b DateRange) bool {
	return b.Contains(a.Start) ||
		b.Contains(a.End) ||
		(!a.Start.After(b.Start) && !a.End.Before(b.End))
}
