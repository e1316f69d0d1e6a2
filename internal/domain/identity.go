package domain

import "time"

// Role enumerates the three-tier hierarchy. SuperAdmin is global;
// Admin and User are bound to exactly one company.
type Role string

const (
	RoleSuperAdmin Role = "SuperAdmin"
	RoleAdmin      Role = "Admin"
	RoleUser       Role = "User"
)

// KnownRole reports whether the role is one of the three recognized
// values. Anything else must be treated as deny-all.
func KnownRole(role Role) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// Identity models a login-capable profile. CompanyID is empty for
// SuperAdmin and required for every other role. Role is immutable
// once assigned.
type Identity struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Gender       string
	Address      string
	Role         Role
	CompanyID    string
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
