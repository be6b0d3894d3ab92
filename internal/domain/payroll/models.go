package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RunStatusDraft     = "draft"
	RunStatusFinalized = "finalized"
)

type Run struct {
	ID          string     `json:"id"`
	PeriodStart time.Time  `json:"periodStart"`
	PeriodEnd   time.Time  `json:"periodEnd"`
	Weights     RunWeights `json:"weights"`
	SalaryFloor float64    `json:"salaryFloor"`
	Status      string     `json:"status"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Result is one employee's outcome in a run. Once the run is finalized the
// row is an immutable snapshot; recomputation is refused.
type Result struct {
	ID             string          `json:"id"`
	RunID          string          `json:"runId"`
	EmployeeID     string          `json:"employeeId"`
	EmployeeName   string          `json:"employeeName,omitempty"`
	AttendanceRate float64         `json:"attendanceRate"`
	BillableRate   float64         `json:"billableRate"`
	Score          float64         `json:"score"`
	BaseSalary     decimal.Decimal `json:"baseSalary"`
	NetSalary      decimal.Decimal `json:"netSalary"`
}
