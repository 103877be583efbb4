// Package guard decides, per navigation, whether to render an area, wait for
// the session to resolve, or redirect. Decisions are pure: they read the
// session snapshot and the role policy and never perform the redirect
// themselves.
package guard

import (
	"context"

	"brokerops/client/internal/policy"
	"brokerops/client/internal/session"
	userdomain "brokerops/client/internal/user/domain"
)

// Outcome is what the caller should do with the target area.
type Outcome int

const (
	// OutcomeWait means the session is still loading; render a neutral
	// placeholder and decide again once it resolves.
	OutcomeWait Outcome = iota
	OutcomeRender
	OutcomeRedirect
)

// Decision is the result of one guard evaluation. Target is set for
// redirects; Attempted preserves the area the caller tried to reach so a
// post-login return is possible.
type Decision struct {
	Outcome   Outcome
	Target    Route
	Attempted Route
}

// Guard evaluates navigation decisions against the role policy.
type Guard struct {
	policy policy.Evaluator
}

// New returns a Guard backed by the given policy evaluator.
func New(p policy.Evaluator) *Guard {
	return &Guard{policy: p}
}

// Home returns the home route for role: the admin oversight screen for
// admins, the tracking dashboard for operational roles, and the login route
// for roles with no capability (treated as unauthenticated).
func (g *Guard) Home(ctx context.Context, role userdomain.Role) Route {
	switch policy.HomeFor(g.policy.Capabilities(ctx, role)) {
	case policy.HomeAdmin:
		return RouteAdminHome
	case policy.HomeOperational:
		return RouteOperationalHome
	default:
		return RouteLogin
	}
}

// GuestOnly guards areas only unauthenticated visitors may see (the login
// screen). Authenticated visitors are sent to their home, never shown an error.
func (g *Guard) GuestOnly(ctx context.Context, status session.Status, ident session.Identity) Decision {
	switch status {
	case session.StatusLoading:
		return Decision{Outcome: OutcomeWait}
	case session.StatusAuthenticated:
		return Decision{Outcome: OutcomeRedirect, Target: g.Home(ctx, ident.Role)}
	default:
		return Decision{Outcome: OutcomeRender}
	}
}

// Protected guards an area with a declared allowed-roles list. Unauthenticated
// visitors are redirected to login with the attempted area preserved; an
// authenticated role outside the list is silently redirected to its home.
// A role's own home always renders for it, so a redirect can never loop.
func (g *Guard) Protected(ctx context.Context, status session.Status, ident session.Identity, area Route, allowed []userdomain.Role) Decision {
	switch status {
	case session.StatusLoading:
		return Decision{Outcome: OutcomeWait}
	case session.StatusUnauthenticated:
		return Decision{Outcome: OutcomeRedirect, Target: RouteLogin, Attempted: area}
	}
	home := g.Home(ctx, ident.Role)
	if home == RouteLogin {
		// No capability at all: gate as unauthenticated.
		return Decision{Outcome: OutcomeRedirect, Target: RouteLogin, Attempted: area}
	}
	if area == home {
		return Decision{Outcome: OutcomeRender}
	}
	for _, r := range allowed {
		if r == ident.Role {
			return Decision{Outcome: OutcomeRender}
		}
	}
	return Decision{Outcome: OutcomeRedirect, Target: home}
}

// Root resolves the application root: login when unauthenticated, otherwise
// the role's home.
func (g *Guard) Root(ctx context.Context, status session.Status, ident session.Identity) Decision {
	switch status {
	case session.StatusLoading:
		return Decision{Outcome: OutcomeWait}
	case session.StatusUnauthenticated:
		return Decision{Outcome: OutcomeRedirect, Target: RouteLogin}
	default:
		return Decision{Outcome: OutcomeRedirect, Target: g.Home(ctx, ident.Role)}
	}
}
