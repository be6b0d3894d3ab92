package leave

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMonthlyAccrualRate(t *testing.T) {
	tests := []struct {
		annualDays float64
		want       string
	}{
		{15, "1.25"},
		{24, "2"},
		{10, "0.83"},
		{0, "0"},
	}
	for _, tc := range tests {
		tier := Tier{AnnualDays: tc.annualDays}
		assert.True(t, tier.MonthlyAccrualRate().Equal(decimal.RequireFromString(tc.want)),
			"annual %v: got %s, want %s", tc.annualDays, tier.MonthlyAccrualRate(), tc.want)
	}
}

func TestTenureYears(t *testing.T) {
	at := date(2025, 1, 1)

	tests := []struct {
		name  string
		start *time.Time
		want  int
	}{
		{"nil start date", nil, 0},
		{"start after reference", datePtr(2025, 6, 1), 0},
		{"anniversary exactly on reference", datePtr(2022, 1, 1), 3},
		{"anniversary one day after reference", datePtr(2022, 1, 2), 2},
		{"partial year floors to zero", datePtr(2024, 7, 1), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TenureYears(tc.start, at))
		})
	}
}

func TestApplicableTierBoundaries(t *testing.T) {
	rules := TieredRules{
		Tiers: []Tier{
			{MinYears: 0, MaxYears: intPtr(2), AnnualDays: 15},
			{MinYears: 3, AnnualDays: 24},
		},
	}

	tier, ok := rules.applicableTier(2)
	assert.True(t, ok)
	assert.Equal(t, 15.0, tier.AnnualDays)

	tier, ok = rules.applicableTier(3)
	assert.True(t, ok)
	assert.Equal(t, 24.0, tier.AnnualDays)

	_, ok = TieredRules{Tiers: []Tier{{MinYears: 5, AnnualDays: 30}}}.applicableTier(1)
	assert.False(t, ok)
}
