package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard/internal/middleware"
	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/service"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
	"github.com/noah-isme/attendance-dashboard/pkg/response"
)

// workspaceFromContext returns the session-bound services, answering the
// request itself when the session middleware did not run.
func workspaceFromContext(c *gin.Context) (*service.Workspace, bool) {
	ws := middleware.WorkspaceFrom(c)
	if ws == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "session is not initialised"))
		return nil, false
	}
	return ws, true
}

func identityFromContext(c *gin.Context) (models.Identity, bool) {
	state := middleware.StateFrom(c)
	if state.Identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Identity{}, false
	}
	return *state.Identity, true
}

func respond(c *gin.Context, status int, data interface{}, pagination *models.Pagination) {
	response.JSON(c, status, data, pagination, middleware.ExtractMeta(c))
}
