package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindTiered        Kind = "tiered"
	KindRollingWindow Kind = "rolling_window"
)

// Rules is the closed set of policy rule shapes. The balance calculator
// type-switches over the two variants instead of branching on a stored
// string and trusting an ad hoc config blob.
type Rules interface {
	Kind() Kind
}

// TieredRules grants an annual entitlement that depends on tenure.
// Tiers may overlap; the tier with the greatest MinYears wins. A tenure not
// covered by any tier falls back to InitialDays, never to an unlimited grant.
type TieredRules struct {
	InitialDays float64
	Tiers       []Tier
}

func (TieredRules) Kind() Kind { return KindTiered }

// RollingWindowRules grants a total allowance consumed over a trailing
// window ending at the evaluation instant.
type RollingWindowRules struct {
	TotalDays    float64
	PeriodMonths int
}

func (RollingWindowRules) Kind() Kind { return KindRollingWindow }

type Tier struct {
	ID         string  `json:"id,omitempty"`
	MinYears   int     `json:"minYears"`
	MaxYears   *int    `json:"maxYears,omitempty"`
	AnnualDays float64 `json:"annualDays"`
}

// MonthlyAccrualRate derives the per-month accrual from the annual grant.
// The persisted copy in leave_policy_tiers is recomputed from this on every
// tier upsert; it is a cached projection, not an independent fact.
func (t Tier) MonthlyAccrualRate() decimal.Decimal {
	return decimal.NewFromFloat(t.AnnualDays).Div(decimal.NewFromInt(12)).Round(2)
}

type Policy struct {
	ID    string
	Name  string
	Rules Rules
}

func (p Policy) Kind() Kind {
	if p.Rules == nil {
		return ""
	}
	return p.Rules.Kind()
}

// applicableTier picks the tier matching tenureYears, resolving overlaps in
// favour of the greatest MinYears.
func (r TieredRules) applicableTier(tenureYears int) (Tier, bool) {
	var best *Tier
	for i := range r.Tiers {
		tier := &r.Tiers[i]
		if tier.MinYears > tenureYears {
			continue
		}
		if tier.MaxYears != nil && *tier.MaxYears < tenureYears {
			continue
		}
		if best == nil || tier.MinYears > best.MinYears {
			best = tier
		}
	}
	if best == nil {
		return Tier{}, false
	}
	return *best, true
}

// TenureYears returns completed years of service at the reference date.
// A missing start date counts as zero tenure.
func TenureYears(startDate *time.Time, at time.Time) int {
	if startDate == nil || startDate.After(at) {
		return 0
	}
	years := at.Year() - startDate.Year()
	if startDate.AddDate(years, 0, 0).After(at) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
