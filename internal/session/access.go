package session

import (
	"slices"

	"github.com/noah-isme/attendance-dashboard/internal/models"
)

// Route paths of the dashboard.
const (
	RouteSignIn     = "/signin"
	RouteSignUp     = "/signup"
	RouteHome       = "/"
	RouteAttendance = "/attendance"
	RouteHistory    = "/history"
	RouteUserAccess = "/user-access"
	RouteRekap      = "/rekap-data"
	RouteProfile    = "/profile"
)

// Outcome of checking a visit against the policy.
type Outcome string

const (
	OutcomeAllow    Outcome = "allow"
	OutcomeWait     Outcome = "wait"
	OutcomeRedirect Outcome = "redirect"
)

// Decision is what to do with one route visit.
type Decision struct {
	Outcome  Outcome `json:"outcome"`
	Redirect string  `json:"redirect,omitempty"`
}

// Policy maps protected routes to the roles allowed on them. An empty role
// set admits any signed-in user. Routes not in the policy are public.
type Policy struct {
	routes map[string][]models.Role
}

// NewPolicy builds a policy from static route configuration.
func NewPolicy(routes map[string][]models.Role) Policy {
	copied := make(map[string][]models.Role, len(routes))
	for route, roles := range routes {
		copied[route] = slices.Clone(roles)
	}
	return Policy{routes: copied}
}

// DefaultPolicy is the dashboard's route table.
func DefaultPolicy() Policy {
	both := []models.Role{models.RoleAdmin, models.RoleUser}
	return NewPolicy(map[string][]models.Role{
		RouteHome:       nil,
		RouteProfile:    both,
		RouteAttendance: {models.RoleUser},
		RouteHistory:    {models.RoleUser},
		RouteUserAccess: {models.RoleAdmin},
		RouteRekap:      {models.RoleAdmin},
	})
}

// Allowed returns the roles for route and whether the route is protected.
func (p Policy) Allowed(route string) ([]models.Role, bool) {
	roles, ok := p.routes[route]
	return slices.Clone(roles), ok
}

// Decide applies the route contract: an anonymous visit to a protected route
// goes to sign-in, a visit with a role outside the allowed set goes home.
func (p Policy) Decide(state State, route string) Decision {
	roles, protected := p.routes[route]
	if !protected {
		return Decision{Outcome: OutcomeAllow}
	}
	switch state.Status {
	case StatusLoading:
		return Decision{Outcome: OutcomeWait}
	case StatusAuthenticated:
		if len(roles) == 0 || slices.Contains(roles, state.Role()) {
			return Decision{Outcome: OutcomeAllow}
		}
		return Decision{Outcome: OutcomeRedirect, Redirect: RouteHome}
	default:
		return Decision{Outcome: OutcomeRedirect, Redirect: RouteSignIn}
	}
}
