package attendance

import (
	"time"

	"hrops/internal/domain/calendar"
)

// Weights control how much a non-office day contributes to presence.
// A WFH day is close to a full working day; an approved permission covers
// only part of one; an absence contributes nothing.
type Weights struct {
	WFH        float64
	Permission float64
}

func DefaultWeights() Weights {
	return Weights{WFH: 0.9, Permission: 0.5}
}

// Performance is the attendance result for one employee over one period.
// A period without working days is a structured outcome, not an error.
type Performance struct {
	EmployeeID      string  `json:"employeeId"`
	WorkingDays     int     `json:"workingDays"`
	PresentDays     int     `json:"presentDays"`
	WFHDays         int     `json:"wfhDays"`
	PermissionDays  int     `json:"permissionDays"`
	WeightedPresent float64 `json:"weightedPresent"`
	Rate            float64 `json:"rate"`
	BillableHours   float64 `json:"billableHours"`
	Note            string  `json:"note,omitempty"`
}

// Score rates attendance over the working days of [periodStart, periodEnd].
// Only records falling on working days count; a weekend check-in neither
// helps nor hurts.
func Score(cal calendar.Calendar, records []Record, periodStart, periodEnd time.Time, weights Weights) Performance {
	perf := Performance{}
	workingDays := cal.CountWorkingDays(periodStart, periodEnd)
	perf.WorkingDays = workingDays
	if workingDays == 0 {
		perf.Note = "period contains no working days"
		return perf
	}

	byDay := make(map[string]Record, len(records))
	for _, record := range records {
		if record.Date.Before(periodStart) || record.Date.After(periodEnd) {
			continue
		}
		if !cal.IsWorkingDay(record.Date) {
			continue
		}
		byDay[record.Date.Format("2006-01-02")] = record
	}

	for _, record := range byDay {
		perf.BillableHours += record.BillableHours
		switch record.Kind {
		case KindPresent:
			perf.PresentDays++
			perf.WeightedPresent += 1
		case KindWFH:
			perf.WFHDays++
			perf.WeightedPresent += clamp01(weights.WFH)
		case KindPermission:
			perf.PermissionDays++
			perf.WeightedPresent += clamp01(weights.Permission)
		}
	}

	perf.Rate = clamp01(perf.WeightedPresent / float64(workingDays))
	return perf
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
