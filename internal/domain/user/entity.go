package user

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"      // Full access
	RoleHRManager Role = "hr_manager" // Full access to people data
	RoleManager   Role = "manager"    // Self plus direct reports
	RoleEmployee  Role = "employee"   // Self only
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHRManager, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Privileged reports whether the role sees every record.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleHRManager
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	EmployeeID   *string
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	EmployeeName *string
}
