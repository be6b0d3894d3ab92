package leave

import "time"

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

type Record struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	PolicyID   string     `json:"policyId"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    time.Time  `json:"endDate"`
	Status     string     `json:"status"`
	Reason     string     `json:"reason,omitempty"`
	DecidedBy  *string    `json:"decidedBy,omitempty"`
	DecidedAt  *time.Time `json:"decidedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Span is the inclusive date range of an approved record, the only shape
// the balance calculators need.
type Span struct {
	Start time.Time
	End   time.Time
}

type PolicyInfo struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Kind         Kind    `json:"kind"`
	InitialDays  float64 `json:"initialDays,omitempty"`
	TotalDays    float64 `json:"totalDays,omitempty"`
	PeriodMonths int     `json:"periodMonths,omitempty"`
	Tiers        []Tier  `json:"tiers,omitempty"`
}
