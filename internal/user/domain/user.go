package domain

import (
	"errors"
	"time"
)

// User is a dashboard account as the server reports it. IDs are integers and
// unique; accounts are deactivated, never deleted.
type User struct {
	ID        int
	Email     string
	Name      string
	Role      Role
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role is the application role assigned to a user.
type Role string

const (
	RoleEncoder    Role = "encoder"
	RoleBroker     Role = "broker"
	RoleSupervisor Role = "supervisor"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
)

// operationalRoles are the roles that work the tracking dashboard and may be
// assigned to transactions. Admin is deliberately not among them.
var operationalRoles = map[Role]bool{
	RoleEncoder:    true,
	RoleBroker:     true,
	RoleSupervisor: true,
	RoleManager:    true,
}

// Known reports whether r is one of the five application roles. Anything else
// is treated as no role at all, never as an error.
func (r Role) Known() bool {
	return r == RoleAdmin || operationalRoles[r]
}

// Operational reports whether r is an operational (non-admin) role.
func (r Role) Operational() bool {
	return operationalRoles[r]
}

// Validate validates the user for display/selection. Returns an error
// describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if !u.Role.Known() {
		return errors.New("unknown role")
	}
	return nil
}

// Assignable reports whether the user may be assigned to a transaction:
// active and holding an operational role.
func (u *User) Assignable() bool {
	return u != nil && u.Active && u.Role.Operational()
}
