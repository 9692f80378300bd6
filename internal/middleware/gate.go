package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard/internal/session"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
	"github.com/noah-isme/attendance-dashboard/pkg/response"
)

// Gate applies the route policy to route. It must run after Session.
//
// Browsers get a 302 to the redirect target. JSON callers get 401 when they
// need to sign in and 403 when their role is not allowed, with the redirect
// target in meta. A loading state is answered with 202 so the shell retries
// instead of rendering the page. Session decodes the token before Gate runs,
// so that answer only comes from a loading state placed on the context by
// other middleware.
func Gate(policy session.Policy, route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := policy.Decide(StateFrom(c), route)
		switch decision.Outcome {
		case session.OutcomeAllow:
			c.Next()
			return
		case session.OutcomeWait:
			response.Loading(c, 1, gin.H{"status": session.StatusLoading})
			return
		}

		if wantsHTML(c) {
			c.Redirect(http.StatusFound, decision.Redirect)
			c.Abort()
			return
		}

		err := appErrors.ErrForbidden
		if decision.Redirect == session.RouteSignIn {
			err = appErrors.ErrUnauthorized
		}
		response.Redirect(c, err, decision.Redirect)
	}
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
