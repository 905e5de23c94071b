package model

import (
	"time"
)

// Role is the closed set of personnel roles. Role checks compare against
// these values only; free-form strings never reach the role gate.
type Role string

const (
	RoleDoctor      Role = "doctor"
	RoleNurse       Role = "nurse"
	RoleRadiologist Role = "radiologist"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleDoctor, RoleNurse, RoleRadiologist, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Personnel is an authenticated medical-personnel account. Accounts are
// deactivated, never hard-deleted.
type Personnel struct {
	Base
	Email         string     `json:"email" db:"email"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	FirstName     string     `json:"first_name" db:"first_name"`
	LastName      string     `json:"last_name" db:"last_name"`
	Role          Role       `json:"role" db:"role"`
	LicenseNumber *string    `json:"license_number,omitempty" db:"license_number"`
	Active        bool       `json:"active" db:"active"`
	LastLoginAt   *time.Time `json:"last_login_at" db:"last_login_at"`
}

// PersonnelFilters represents personnel search parameters.
type PersonnelFilters struct {
	Role       Role
	SearchTerm string
	Limit      int
	Offset     int
}

// UpdatePersonnelRequest represents partial personnel updates.
type UpdatePersonnelRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	LicenseNumber *string `json:"license_number"`
}
