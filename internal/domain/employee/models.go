package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive     = "active"
	StatusTerminated = "terminated"
	StatusResigned   = "resigned"
)

// Employees are never hard-deleted; status transitions are the only
// lifecycle. Terminal states cannot transition back to active.
var allowedTransitions = map[string][]string{
	StatusActive: {StatusTerminated, StatusResigned},
}

func TransitionAllowed(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Employee struct {
	ID          string          `json:"id"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	Email       string          `json:"email"`
	StartDate   *time.Time      `json:"startDate,omitempty"`
	Status      string          `json:"status"`
	ManagerID   *string         `json:"managerId,omitempty"`
	BaseSalary  decimal.Decimal `json:"baseSalary"`
	TargetHours float64         `json:"targetHours"`
	CreatedAt   time.Time       `json:"createdAt"`
}
