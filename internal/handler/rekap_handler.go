package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
	"github.com/noah-isme/attendance-dashboard/pkg/export"
	"github.com/noah-isme/attendance-dashboard/pkg/response"
)

// RekapHandler serves the aggregate attendance report.
type RekapHandler struct{}

// NewRekapHandler constructs a rekap handler.
func NewRekapHandler() *RekapHandler {
	return &RekapHandler{}
}

// List godoc
// @Summary Rekap table
// @Tags Pages
// @Produce json
// @Param filter[name] query string false "Name contains"
// @Param filter[status] query string false "Exact status"
// @Param sort query string false "Column key"
// @Param order query string false "asc or desc"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /api/pages/rekap-data [get]
func (h *RekapHandler) List(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	change, err := parseChange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := ws.Rekap.Page(c.Request.Context(), change)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, page, &page.Pagination)
}

// Export godoc
// @Summary Export rekap
// @Description Every row matching the current filters and sort, as CSV or PDF
// @Tags Pages
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /api/pages/rekap-data/export [get]
func (h *RekapHandler) Export(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatCSV)))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	change, err := parseChange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := ws.Rekap.Export(c.Request.Context(), format, change)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("X-Export-Rows", strconv.Itoa(result.Rows))
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}
