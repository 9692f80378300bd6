package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/attendance-dashboard/internal/models"
)

func authenticated(role models.Role) State {
	return State{Status: StatusAuthenticated, Identity: &models.Identity{ID: "1", Role: role}}
}

func TestPolicyDecide(t *testing.T) {
	policy := DefaultPolicy()
	anonymous := State{Status: StatusUnauthenticated}

	cases := []struct {
		name  string
		state State
		route string
		want  Decision
	}{
		{"anonymous protected", anonymous, RouteHistory, Decision{Outcome: OutcomeRedirect, Redirect: RouteSignIn}},
		{"anonymous public", anonymous, RouteSignUp, Decision{Outcome: OutcomeAllow}},
		{"loading", State{Status: StatusLoading}, RouteRekap, Decision{Outcome: OutcomeWait}},
		{"user on user route", authenticated(models.RoleUser), RouteAttendance, Decision{Outcome: OutcomeAllow}},
		{"user on admin route", authenticated(models.RoleUser), RouteUserAccess, Decision{Outcome: OutcomeRedirect, Redirect: RouteHome}},
		{"admin on user route", authenticated(models.RoleAdmin), RouteHistory, Decision{Outcome: OutcomeRedirect, Redirect: RouteHome}},
		{"admin on shared route", authenticated(models.RoleAdmin), RouteProfile, Decision{Outcome: OutcomeAllow}},
		{"unknown role at home", authenticated(models.Role("AUDITOR")), RouteHome, Decision{Outcome: OutcomeAllow}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, policy.Decide(tc.state, tc.route))
		})
	}
}

func TestPolicyAllowedIsACopy(t *testing.T) {
	policy := DefaultPolicy()
	roles, ok := policy.Allowed(RouteRekap)
	assert.True(t, ok)
	roles[0] = models.RoleUser

	again, _ := policy.Allowed(RouteRekap)
	assert.Equal(t, []models.Role{models.RoleAdmin}, again)
}
