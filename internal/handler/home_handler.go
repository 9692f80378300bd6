package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard/pkg/response"
)

// HomeHandler serves the landing page.
type HomeHandler struct{}

// NewHomeHandler constructs a home handler.
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Overview godoc
// @Summary Home overview
// @Description Admins see user and rekap totals, users see today and the current month
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/pages/home [get]
func (h *HomeHandler) Overview(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	view, err := ws.Home.Overview(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, view, nil)
}
