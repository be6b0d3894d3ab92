package payroll

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// RunWeights blend attendance performance and billable-hour fulfilment
// into a single score. They must describe the whole score: sum to 1.
type RunWeights struct {
	Attendance float64 `json:"attendanceWeight"`
	Billable   float64 `json:"billableWeight"`
}

var ErrInvalidWeights = errors.New("weights must be non-negative and sum to 1")

func (w RunWeights) Validate() error {
	if w.Attendance < 0 || w.Billable < 0 {
		return ErrInvalidWeights
	}
	if math.Abs(w.Attendance+w.Billable-1) > 1e-9 {
		return ErrInvalidWeights
	}
	return nil
}

// BillableRate measures delivered billable hours against the employee's
// target for the period, capped at 1. Without a target nothing can be
// measured, so the rate is zero rather than a free full score.
func BillableRate(hours, targetHours float64) float64 {
	if targetHours <= 0 || hours <= 0 {
		return 0
	}
	rate := hours / targetHours
	if rate > 1 {
		return 1
	}
	return rate
}

// Score combines the two performance rates under the run's weights,
// clamped to [0, 1].
func Score(attendanceRate, billableRate float64, weights RunWeights) float64 {
	score := weights.Attendance*attendanceRate + weights.Billable*billableRate
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Salary maps the score onto the employee's base salary. The floor is the
// fraction of base paid at score zero, so pay scales linearly from
// floor*base to base. Amounts are computed in decimal and rounded to cents.
func Salary(base decimal.Decimal, score, floor float64) decimal.Decimal {
	if floor < 0 {
		floor = 0
	}
	if floor > 1 {
		floor = 1
	}
	factor := decimal.NewFromFloat(floor).Add(
		decimal.NewFromFloat(1 - floor).Mul(decimal.NewFromFloat(score)))
	return base.Mul(factor).Round(2)
}
