package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

func rng(start, end time.Time) DateRange {
	return DateRange{Start: start, End: end}
}

func TestOverlaps_Boundaries(t *testing.T) {
	assert.True(t, Overlaps(rng(day(1, 1), day(1, 10)), rng(day(1, 10), day(1, 20))))
	assert.False(t, Overlaps(rng(day(1, 1), day(1, 9)), rng(day(1, 10), day(1, 20))))
}

func TestOverlaps_Cases(t *testing.T) {
	b := rng(day(3, 1), day(3, 31))

	tests := []struct {
		name     string
		a        DateRange
		expected bool
	}{
		{"start within", rng(day(3, 15), day(4, 15)), true},
		{"end within", rng(day(2, 1), day(3, 2)), true},
		{"encloses", rng(day(2, 1), day(4, 30)), true},
		{"enclosed", rng(day(3, 5), day(3, 6)), true},
		{"identical", b, true},
		{"entirely before", rng(day(1, 1), day(2, 28)), false},
		{"entirely after", rng(day(4, 1), day(4, 2)), false},
		{"single instant on end boundary", rng(day(3, 31), day(3, 31)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Overlaps(tt.a, b))
			assert.Equal(t, tt.expected, tt.a.Overlaps(b))
		})
	}
}

func TestOverlaps_Symmetric(t *testing.T) {
	points := []time.Time{day(1, 1), day(1, 5), day(1, 10), day(1, 15), day(1, 20)}

	var ranges []DateRange
	for i, s := range points {
		for _, e := range points[i:] {
			ranges = append(ranges, rng(s, e))
		}
	}

	for _, a := range ranges {
		for _, b := range ranges {
			assert.Equal(t, Overlaps(a, b), Overlaps(b, a), "a=%v b=%v", a, b)
		}
	}
}

func TestNewDateRange(t *testing.T) {
	_, err := NewDateRange(day(2, 1), day(1, 1))
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	r, err := NewDateRange(day(1, 1), day(1, 1))
	require.NoError(t, err)
	assert.True(t, r.Contains(day(1, 1)))
	assert.False(t, r.Contains(day(1, 2)))
}
