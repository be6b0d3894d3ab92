package auth

const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleEmployee = "employee"
)

// UserContext is the authenticated identity carried on the request context.
type UserContext struct {
	UserID     string
	EmployeeID string
	Email      string
	RoleName   string
}

func (u UserContext) CanManage() bool {
	return u.RoleName == RoleAdmin || u.RoleName == RoleHR
}
