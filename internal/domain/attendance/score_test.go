package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hrops/internal/domain/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weekendCal() calendar.Calendar {
	return calendar.New([]time.Weekday{time.Saturday, time.Sunday}, nil)
}

func TestScoreFullAttendance(t *testing.T) {
	// Mon 2025-06-02 .. Fri 2025-06-06.
	records := []Record{
		{Date: date(2025, 6, 2), Kind: KindPresent, BillableHours: 8},
		{Date: date(2025, 6, 3), Kind: KindPresent, BillableHours: 8},
		{Date: date(2025, 6, 4), Kind: KindPresent, BillableHours: 8},
		{Date: date(2025, 6, 5), Kind: KindPresent, BillableHours: 8},
		{Date: date(2025, 6, 6), Kind: KindPresent, BillableHours: 8},
	}
	perf := Score(weekendCal(), records, date(2025, 6, 2), date(2025, 6, 6), DefaultWeights())
	assert.Equal(t, 5, perf.WorkingDays)
	assert.Equal(t, 5, perf.PresentDays)
	assert.Equal(t, 1.0, perf.Rate)
	assert.Equal(t, 40.0, perf.BillableHours)
}

func TestScoreWeightsWFHAndPermission(t *testing.T) {
	records := []Record{
		{Date: date(2025, 6, 2), Kind: KindPresent},
		{Date: date(2025, 6, 3), Kind: KindWFH},
		{Date: date(2025, 6, 4), Kind: KindPermission},
		{Date: date(2025, 6, 5), Kind: KindAbsent},
	}
	perf := Score(weekendCal(), records, date(2025, 6, 2), date(2025, 6, 6), Weights{WFH: 0.9, Permission: 0.5})
	assert.Equal(t, 1, perf.PresentDays)
	assert.Equal(t, 1, perf.WFHDays)
	assert.Equal(t, 1, perf.PermissionDays)
	assert.InDelta(t, 2.4, perf.WeightedPresent, 1e-9)
	assert.InDelta(t, 2.4/5.0, perf.Rate, 1e-9)
}

func TestScoreIgnoresWeekendRecords(t *testing.T) {
	records := []Record{
		{Date: date(2025, 6, 7), Kind: KindPresent}, // Saturday
	}
	perf := Score(weekendCal(), records, date(2025, 6, 2), date(2025, 6, 8), DefaultWeights())
	assert.Zero(t, perf.PresentDays)
	assert.Zero(t, perf.Rate)
}

func TestScoreZeroWorkingDayPeriod(t *testing.T) {
	perf := Score(weekendCal(), nil, date(2025, 6, 7), date(2025, 6, 8), DefaultWeights())
	assert.Zero(t, perf.WorkingDays)
	assert.Zero(t, perf.Rate)
	assert.NotEmpty(t, perf.Note)
}

func TestScoreClampsOverweightConfig(t *testing.T) {
	records := []Record{{Date: date(2025, 6, 2), Kind: KindWFH}}
	perf := Score(weekendCal(), records, date(2025, 6, 2), date(2025, 6, 2), Weights{WFH: 3})
	assert.Equal(t, 1.0, perf.Rate)
}
