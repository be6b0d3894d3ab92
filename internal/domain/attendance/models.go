package attendance

import "time"

const (
	KindPresent    = "present"
	KindWFH        = "wfh"
	KindPermission = "permission"
	KindAbsent     = "absent"
)

func ValidKind(kind string) bool {
	switch kind {
	case KindPresent, KindWFH, KindPermission, KindAbsent:
		return true
	default:
		return false
	}
}

type Record struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employeeId"`
	Date          time.Time `json:"date"`
	Kind          string    `json:"kind"`
	BillableHours float64   `json:"billableHours"`
	CreatedAt     time.Time `json:"createdAt"`
}
