// Package policy maps application roles to capabilities. It is the single
// source of truth every guard and screen consults; no caller re-derives
// "is this role admin" on its own.
package policy

import (
	"context"

	userdomain "brokerops/client/internal/user/domain"
)

// Capabilities is the set of screen-group capabilities a role holds.
type Capabilities struct {
	ViewOperationalScreens bool
	ViewAdminScreens       bool
}

// None reports whether the role holds no capability at all. Such a role is
// treated as unauthenticated for gating purposes.
func (c Capabilities) None() bool {
	return !c.ViewOperationalScreens && !c.ViewAdminScreens
}

// Home identifies which screen group is a role's home.
type Home int

const (
	HomeNone Home = iota
	HomeOperational
	HomeAdmin
)

// Evaluator resolves role capabilities. Implementations must be total:
// an unknown role yields empty capabilities, never a panic or error.
type Evaluator interface {
	// Capabilities returns the capability set for role.
	Capabilities(ctx context.Context, role userdomain.Role) Capabilities
}

// HomeFor derives the home screen group from a capability set. Admin
// capability wins; no capability means no home (treated as unauthenticated).
func HomeFor(c Capabilities) Home {
	switch {
	case c.ViewAdminScreens:
		return HomeAdmin
	case c.ViewOperationalScreens:
		return HomeOperational
	default:
		return HomeNone
	}
}
