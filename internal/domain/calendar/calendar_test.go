package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSingleDayCount(t *testing.T) {
	cal := New([]time.Weekday{time.Saturday, time.Sunday}, []time.Time{date(2025, 1, 1)})

	tests := []struct {
		name string
		day  time.Time
		want int
	}{
		{"regular weekday", date(2025, 1, 2), 1},
		{"saturday", date(2025, 1, 4), 0},
		{"sunday", date(2025, 1, 5), 0},
		{"holiday on a weekday", date(2025, 1, 1), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cal.CountWorkingDays(tc.day, tc.day))
		})
	}
}

func TestInvertedRangeIsZero(t *testing.T) {
	cal := New([]time.Weekday{time.Saturday, time.Sunday}, nil)
	assert.Zero(t, cal.CountWorkingDays(date(2025, 3, 10), date(2025, 3, 9)))
}

func TestWeekendOnlyRangeIsZero(t *testing.T) {
	cal := New([]time.Weekday{time.Saturday, time.Sunday}, nil)
	// 2025-03-08 is a Saturday.
	assert.Zero(t, cal.CountWorkingDays(date(2025, 3, 8), date(2025, 3, 9)))
}

func TestFullWeekCount(t *testing.T) {
	cal := New([]time.Weekday{time.Saturday, time.Sunday}, []time.Time{date(2025, 3, 12)})
	// Mon 2025-03-10 .. Sun 2025-03-16: five weekdays minus one holiday.
	assert.Equal(t, 4, cal.CountWorkingDays(date(2025, 3, 10), date(2025, 3, 16)))
}

func TestNonStandardWeekend(t *testing.T) {
	cal := New([]time.Weekday{time.Friday, time.Saturday}, nil)
	// Sun 2025-03-09 is a working day under a Fri/Sat weekend.
	assert.Equal(t, 1, cal.CountWorkingDays(date(2025, 3, 9), date(2025, 3, 9)))
	assert.Zero(t, cal.CountWorkingDays(date(2025, 3, 14), date(2025, 3, 15)))
}

func TestWorkingDaysEnumeration(t *testing.T) {
	cal := New([]time.Weekday{time.Saturday, time.Sunday}, nil)
	days := cal.WorkingDays(date(2025, 3, 7), date(2025, 3, 10))
	assert.Equal(t, []time.Time{date(2025, 3, 7), date(2025, 3, 10)}, days)
}

func TestCountIgnoresTimeOfDay(t *testing.T) {
	cal := New([]time.Weekday{time.Saturday, time.Sunday}, nil)
	start := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	end := time.Date(2025, 3, 11, 0, 15, 0, 0, time.UTC)
	assert.Equal(t, 2, cal.CountWorkingDays(start, end))
}

func TestIdempotentForSameInputs(t *testing.T) {
	cal := New([]time.Weekday{time.Sunday}, []time.Time{date(2025, 5, 1)})
	first := cal.CountWorkingDays(date(2025, 4, 28), date(2025, 5, 4))
	second := cal.CountWorkingDays(date(2025, 4, 28), date(2025, 5, 4))
	assert.Equal(t, first, second)
}

func TestParseWeekday(t *testing.T) {
	day, ok := ParseWeekday("Friday")
	assert.True(t, ok)
	assert.Equal(t, time.Friday, day)

	_, ok = ParseWeekday("friday")
	assert.False(t, ok)
}
