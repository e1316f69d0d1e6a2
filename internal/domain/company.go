package domain

import "time"

// Company is the tenant boundary: every Admin/User identity, lead and
// comment belongs to exactly one company.
type Company struct {
	ID           string
	Name         string
	ContactEmail string
	Phone        string
	Address      string
	Note         string
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
