package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrops/internal/domain/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func intPtr(v int) *int {
	return &v
}

func weekendCal() calendar.Calendar {
	return calendar.New([]time.Weekday{time.Saturday, time.Sunday}, nil)
}

func tieredPolicy(rules TieredRules) Policy {
	return Policy{ID: "pto", Name: "PTO", Rules: rules}
}

func rollingPolicy(rules RollingWindowRules) Policy {
	return Policy{ID: "sick", Name: "Sick Leave", Rules: rules}
}

func TestTierSelection(t *testing.T) {
	rules := TieredRules{
		InitialDays: 10,
		Tiers: []Tier{
			{MinYears: 0, MaxYears: intPtr(2), AnnualDays: 15},
			{MinYears: 3, AnnualDays: 24},
		},
	}

	tests := []struct {
		name        string
		start       *time.Time
		wantEntitle float64
	}{
		{"two years tenure hits first tier", datePtr(2022, 12, 1), 15},
		{"three years tenure hits second tier", datePtr(2021, 12, 1), 24},
		{"five years tenure stays on unbounded tier", datePtr(2019, 6, 1), 24},
		{"no start date counts as zero tenure", nil, 15},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			summary, err := ComputeSummary(weekendCal(), tieredPolicy(rules), tc.start, nil, date(2025, 6, 15))
			require.NoError(t, err)
			assert.Equal(t, tc.wantEntitle, summary.Entitled)
			assert.Equal(t, tc.wantEntitle, summary.Remaining)
		})
	}
}

func TestTierGapFallsBackToInitialDays(t *testing.T) {
	rules := TieredRules{
		InitialDays: 8,
		Tiers: []Tier{
			{MinYears: 5, AnnualDays: 30},
		},
	}
	summary, err := ComputeSummary(weekendCal(), tieredPolicy(rules), datePtr(2023, 1, 1), nil, date(2025, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, 8.0, summary.Entitled)
}

func TestOverlappingTiersHighestMinYearsWins(t *testing.T) {
	rules := TieredRules{
		Tiers: []Tier{
			{MinYears: 0, AnnualDays: 12},
			{MinYears: 2, AnnualDays: 18},
		},
	}
	summary, err := ComputeSummary(weekendCal(), tieredPolicy(rules), datePtr(2020, 1, 1), nil, date(2025, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, 18.0, summary.Entitled)
}

func TestMidYearStartProRatesByCalendarDays(t *testing.T) {
	rules := TieredRules{
		Tiers: []Tier{{MinYears: 0, AnnualDays: 12}},
	}
	// Start 2025-07-01, day 182 of a 365 day year: 184 calendar days remain.
	summary, err := ComputeSummary(weekendCal(), tieredPolicy(rules), datePtr(2025, 7, 1), nil, date(2025, 8, 1))
	require.NoError(t, err)
	assert.InDelta(t, 12.0*184.0/365.0, summary.Entitled, 1e-9)
}

func TestLeapYearProRation(t *testing.T) {
	rules := TieredRules{
		Tiers: []Tier{{MinYears: 0, AnnualDays: 24}},
	}
	// 2024 has 366 days; 2024-12-31 leaves exactly one day.
	summary, err := ComputeSummary(weekendCal(), tieredPolicy(rules), datePtr(2024, 12, 31), nil, date(2024, 12, 31))
	require.NoError(t, err)
	assert.InDelta(t, 24.0/366.0, summary.Entitled, 1e-9)
}

func TestUsageCountsWorkingDaysClampedToYear(t *testing.T) {
	rules := TieredRules{
		Tiers: []Tier{{MinYears: 0, AnnualDays: 20}},
	}
	// Span crosses into 2025: only 2025-01-01 (Wed) and 2025-01-02 (Thu)
	// and 2025-01-03 (Fri) count toward 2025 usage.
	approved := []Span{{Start: date(2024, 12, 30), End: date(2025, 1, 3)}}
	summary, err := ComputeSummary(weekendCal(), tieredPolicy(rules), datePtr(2020, 1, 1), approved, date(2025, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, 3.0, summary.Used)
	assert.Equal(t, 17.0, summary.Remaining)
}

func TestRemainingNeverNegative(t *testing.T) {
	rules := TieredRules{
		Tiers: []Tier{{MinYears: 0, AnnualDays: 2}},
	}
	// Mon 2025-03-10 .. Fri 2025-03-21: ten working days against two entitled.
	approved := []Span{{Start: date(2025, 3, 10), End: date(2025, 3, 21)}}
	summary, err := ComputeSummary(weekendCal(), tieredPolicy(rules), datePtr(2020, 1, 1), approved, date(2025, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, 10.0, summary.Used)
	assert.Zero(t, summary.Remaining)
}

func TestRollingWindowWithNoUsage(t *testing.T) {
	policy := rollingPolicy(RollingWindowRules{TotalDays: 60, PeriodMonths: 36})
	summary, err := ComputeSummary(weekendCal(), policy, nil, nil, date(2025, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, 60.0, summary.Remaining)
	require.NotNil(t, summary.WindowStart)
	require.NotNil(t, summary.WindowEnd)
	assert.Equal(t, date(2022, 6, 1), *summary.WindowStart)
	assert.Equal(t, date(2025, 6, 1), *summary.WindowEnd)
}

func TestRollingWindowExcludesUsageOutsideWindow(t *testing.T) {
	policy := rollingPolicy(RollingWindowRules{TotalDays: 10, PeriodMonths: 12})
	approved := []Span{
		// Mon-Fri fully inside the window.
		{Start: date(2025, 3, 10), End: date(2025, 3, 14)},
		// Entirely before the window start.
		{Start: date(2023, 5, 1), End: date(2023, 5, 5)},
	}
	summary, err := ComputeSummary(weekendCal(), policy, nil, approved, date(2025, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, 5.0, summary.Used)
	assert.Equal(t, 5.0, summary.Remaining)
}

func TestMalformedRollingConfigDefaultsToZero(t *testing.T) {
	policy := rollingPolicy(RollingWindowRules{TotalDays: -3, PeriodMonths: -6})
	summary, err := ComputeSummary(weekendCal(), policy, nil, nil, date(2025, 6, 1))
	require.NoError(t, err)
	assert.Zero(t, summary.Entitled)
	assert.Zero(t, summary.Remaining)
}

func TestUnknownPolicyKindIsAnError(t *testing.T) {
	_, err := ComputeSummary(weekendCal(), Policy{ID: "x"}, nil, nil, date(2025, 6, 1))
	assert.ErrorIs(t, err, ErrUnknownPolicyKind)
}

func TestAvailabilityWithinBalance(t *testing.T) {
	policy := rollingPolicy(RollingWindowRules{TotalDays: 5, PeriodMonths: 12})
	// Mon 2025-06-02 .. Wed 2025-06-04: three working days against five.
	result, err := CheckAvailability(weekendCal(), policy, nil, nil, date(2025, 6, 2), date(2025, 6, 4), date(2025, 6, 1))
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Equal(t, 3, result.RequestedDays)
	assert.Zero(t, result.Shortfall)
}

func TestAvailabilityShortfall(t *testing.T) {
	policy := rollingPolicy(RollingWindowRules{TotalDays: 5, PeriodMonths: 12})
	// Mon 2025-06-02 .. Tue 2025-06-10: seven working days against five.
	result, err := CheckAvailability(weekendCal(), policy, nil, nil, date(2025, 6, 2), date(2025, 6, 10), date(2025, 6, 1))
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Equal(t, 7, result.RequestedDays)
	assert.Equal(t, 2.0, result.Shortfall)
	assert.Contains(t, result.Message, "insufficient balance")
}

func TestAvailabilityZeroWorkingDays(t *testing.T) {
	policy := rollingPolicy(RollingWindowRules{TotalDays: 5, PeriodMonths: 12})
	// Sat 2025-06-07 .. Sun 2025-06-08.
	result, err := CheckAvailability(weekendCal(), policy, nil, nil, date(2025, 6, 7), date(2025, 6, 8), date(2025, 6, 1))
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Zero(t, result.RequestedDays)
	assert.Zero(t, result.Shortfall)
	assert.Contains(t, result.Message, "no working days")
	assert.NotContains(t, result.Message, "insufficient")
}

func TestAvailabilityTieredUsesRequestYear(t *testing.T) {
	rules := TieredRules{Tiers: []Tier{{MinYears: 0, AnnualDays: 10}}}
	// Balance for next January must come from next year's entitlement even
	// when checked in December.
	result, err := CheckAvailability(weekendCal(), tieredPolicy(rules), datePtr(2020, 1, 1), nil,
		date(2026, 1, 5), date(2026, 1, 9), date(2025, 12, 15))
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Equal(t, 5, result.RequestedDays)
}
