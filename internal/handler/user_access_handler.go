package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
	"github.com/noah-isme/attendance-dashboard/pkg/response"
)

// SetRolePayload names the role to grant.
type SetRolePayload struct {
	Role string `json:"role"`
}

// UserAccessHandler serves the administrator's user access table.
type UserAccessHandler struct{}

// NewUserAccessHandler constructs a user access handler.
func NewUserAccessHandler() *UserAccessHandler {
	return &UserAccessHandler{}
}

// List godoc
// @Summary User access table
// @Description Filter, sort and page the user list. State is remembered per session.
// @Tags Pages
// @Produce json
// @Param filter[username] query string false "Username contains"
// @Param filter[role] query string false "Exact role"
// @Param sort query string false "Column key"
// @Param order query string false "asc or desc"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Param reset query bool false "Clear filters and sort"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /api/pages/user-access [get]
func (h *UserAccessHandler) List(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	change, err := parseChange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := ws.Users.Page(c.Request.Context(), change)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, page, &page.Pagination)
}

// SetRole godoc
// @Summary Assign role
// @Description Grant a role to a user who has none yet
// @Tags Pages
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param payload body SetRolePayload true "Role"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /api/pages/user-access/{id}/role [post]
func (h *UserAccessHandler) SetRole(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid user id"))
		return
	}
	var payload SetRolePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid role payload"))
		return
	}

	role := models.Role(strings.ToUpper(strings.TrimSpace(payload.Role)))
	user, page, err := ws.Users.SetRole(c.Request.Context(), id, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.WithAlert(c, http.StatusOK, page,
		models.SuccessAlert(fmt.Sprintf("%s is now %s.", user.Username, user.RoleName())))
}
