package leave

import (
	"errors"
	"fmt"
	"time"

	"hrops/internal/domain/calendar"
)

var ErrUnknownPolicyKind = errors.New("unknown leave policy kind")

// Summary is the computed balance for one employee against one policy.
// For rolling-window policies the resolved window bounds are included for
// display and audit.
type Summary struct {
	PolicyID    string     `json:"policyId"`
	PolicyName  string     `json:"policyName"`
	Kind        Kind       `json:"kind"`
	Entitled    float64    `json:"entitledDays"`
	Used        float64    `json:"usedDays"`
	Remaining   float64    `json:"remainingDays"`
	WindowStart *time.Time `json:"windowStart,omitempty"`
	WindowEnd   *time.Time `json:"windowEnd,omitempty"`
}

// Availability is the structured outcome of a leave availability check.
// Business-negative outcomes (no working days, insufficient balance) are
// reported here, never as errors.
type Availability struct {
	Available     bool    `json:"available"`
	RequestedDays int     `json:"requestedDays"`
	Remaining     float64 `json:"remainingDays"`
	Shortfall     float64 `json:"shortfall"`
	Message       string  `json:"message"`
}

// ComputeSummary evaluates the balance for the policy at the given instant.
// Tiered policies are evaluated against the calendar year containing asOf;
// rolling-window policies against the trailing window ending at asOf.
func ComputeSummary(cal calendar.Calendar, policy Policy, employeeStart *time.Time, approved []Span, asOf time.Time) (Summary, error) {
	switch rules := policy.Rules.(type) {
	case TieredRules:
		return tieredSummary(cal, policy, rules, employeeStart, approved, asOf.Year()), nil
	case RollingWindowRules:
		return rollingSummary(cal, policy, rules, approved, asOf), nil
	default:
		return Summary{}, fmt.Errorf("%w: policy %s", ErrUnknownPolicyKind, policy.ID)
	}
}

func tieredSummary(cal calendar.Calendar, policy Policy, rules TieredRules, employeeStart *time.Time, approved []Span, year int) Summary {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	tenure := TenureYears(employeeStart, yearStart)
	entitled := rules.InitialDays
	if tier, ok := rules.applicableTier(tenure); ok {
		entitled = tier.AnnualDays
	}

	// Entitlement pro-ration uses calendar-day fractions while usage counts
	// working days. The asymmetry mirrors how entitlements are granted: a
	// full-year grant is a calendar commitment, consumption is not.
	if employeeStart != nil && employeeStart.Year() == year {
		daysInYear := float64(yearEnd.YearDay())
		remainingDays := float64(yearEnd.YearDay()-employeeStart.YearDay()) + 1
		entitled = entitled * remainingDays / daysInYear
	}

	used := usedWorkingDays(cal, approved, yearStart, yearEnd)
	return Summary{
		PolicyID:   policy.ID,
		PolicyName: policy.Name,
		Kind:       KindTiered,
		Entitled:   entitled,
		Used:       used,
		Remaining:  maxFloat(0, entitled-used),
	}
}

func rollingSummary(cal calendar.Calendar, policy Policy, rules RollingWindowRules, approved []Span, asOf time.Time) Summary {
	months := rules.PeriodMonths
	if months < 0 {
		months = 0
	}
	total := rules.TotalDays
	if total < 0 {
		total = 0
	}

	windowStart := asOf.AddDate(0, -months, 0)
	used := usedWorkingDays(cal, approved, windowStart, asOf)
	return Summary{
		PolicyID:    policy.ID,
		PolicyName:  policy.Name,
		Kind:        KindRollingWindow,
		Entitled:    total,
		Used:        used,
		Remaining:   maxFloat(0, total-used),
		WindowStart: &windowStart,
		WindowEnd:   &asOf,
	}
}

// usedWorkingDays sums the working days of each span clamped to the query
// period. Spans outside the period clamp to an inverted range and count zero.
func usedWorkingDays(cal calendar.Calendar, approved []Span, periodStart, periodEnd time.Time) float64 {
	used := 0
	for _, span := range approved {
		start := span.Start
		if start.Before(periodStart) {
			start = periodStart
		}
		end := span.End
		if end.After(periodEnd) {
			end = periodEnd
		}
		used += cal.CountWorkingDays(start, end)
	}
	return float64(used)
}

// CheckAvailability gates a requested leave span against the computed
// balance. A span with zero working days is reported distinctly from an
// insufficient balance so the self-service UI can explain the refusal.
func CheckAvailability(cal calendar.Calendar, policy Policy, employeeStart *time.Time, approved []Span, reqStart, reqEnd, asOf time.Time) (Availability, error) {
	summary, err := ComputeSummary(cal, policy, employeeStart, approved, effectiveAsOf(policy, reqStart, asOf))
	if err != nil {
		return Availability{}, err
	}

	requested := cal.CountWorkingDays(reqStart, reqEnd)
	if requested == 0 {
		return Availability{
			Available:     false,
			RequestedDays: 0,
			Remaining:     summary.Remaining,
			Shortfall:     0,
			Message:       "requested range contains no working days",
		}, nil
	}

	if summary.Remaining >= float64(requested) {
		return Availability{
			Available:     true,
			RequestedDays: requested,
			Remaining:     summary.Remaining,
			Message:       fmt.Sprintf("%d working day(s) available", requested),
		}, nil
	}

	return Availability{
		Available:     false,
		RequestedDays: requested,
		Remaining:     summary.Remaining,
		Shortfall:     float64(requested) - summary.Remaining,
		Message:       fmt.Sprintf("insufficient balance: requested %d working day(s), %.2f remaining", requested, summary.Remaining),
	}, nil
}

// effectiveAsOf anchors tiered balances to the year the request starts in,
// so a December check against a January span evaluates next year's
// entitlement. Rolling windows always trail the current instant.
func effectiveAsOf(policy Policy, reqStart, asOf time.Time) time.Time {
	if policy.Kind() == KindTiered {
		return reqStart
	}
	return asOf
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
