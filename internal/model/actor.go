package model

import "github.com/google/uuid"

// Role is the authorisation role carried in the bearer token.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether r may run back-office operations.
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role Role      `json:"role"`
}

// CanAccess reports whether the actor may read data owned by ownerID.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.Role.IsStaff() || a.ID == ownerID
}
