package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, RunWeights{Attendance: 0.6, Billable: 0.4}.Validate())
	assert.NoError(t, RunWeights{Attendance: 1, Billable: 0}.Validate())
	assert.ErrorIs(t, RunWeights{Attendance: 0.6, Billable: 0.6}.Validate(), ErrInvalidWeights)
	assert.ErrorIs(t, RunWeights{Attendance: -0.2, Billable: 1.2}.Validate(), ErrInvalidWeights)
}

func TestBillableRate(t *testing.T) {
	assert.Equal(t, 0.5, BillableRate(80, 160))
	assert.Equal(t, 1.0, BillableRate(200, 160))
	assert.Zero(t, BillableRate(80, 0))
	assert.Zero(t, BillableRate(-5, 160))
}

func TestScore(t *testing.T) {
	weights := RunWeights{Attendance: 0.7, Billable: 0.3}
	assert.InDelta(t, 0.7*0.9+0.3*0.5, Score(0.9, 0.5, weights), 1e-9)
	assert.Equal(t, 1.0, Score(1, 1, weights))
	assert.Zero(t, Score(0, 0, weights))
}

func TestSalary(t *testing.T) {
	base := decimal.RequireFromString("5000")

	// Full score pays full base.
	assert.True(t, Salary(base, 1, 0.5).Equal(base))

	// Zero score pays the floor fraction.
	assert.True(t, Salary(base, 0, 0.5).Equal(decimal.RequireFromString("2500")))

	// Mid score scales linearly: 0.5 + 0.5*0.8 = 0.9.
	assert.True(t, Salary(base, 0.8, 0.5).Equal(decimal.RequireFromString("4500")))
}

func TestSalaryRoundsToCents(t *testing.T) {
	base := decimal.RequireFromString("3333.33")
	got := Salary(base, 0.5, 0.5)
	assert.True(t, got.Equal(decimal.RequireFromString("2500")), "got %s", got)
}
