package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard/pkg/response"
)

// HistoryHandler serves the monthly attendance history.
type HistoryHandler struct{}

// NewHistoryHandler constructs a history handler.
func NewHistoryHandler() *HistoryHandler {
	return &HistoryHandler{}
}

// List godoc
// @Summary Attendance history
// @Description One month of the signed-in user's attendance. Changing the month returns to page 1.
// @Tags Pages
// @Produce json
// @Param month query string false "YYYY-MM, defaults to the remembered or current month"
// @Param filter[date] query string false "Date contains"
// @Param sort query string false "Column key"
// @Param order query string false "asc or desc"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/pages/history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	change, err := parseChange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := ws.History.Page(c.Request.Context(), c.Query("month"), change)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, page, &page.Pagination)
}
