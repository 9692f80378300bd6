package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard/internal/service"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
	"github.com/noah-isme/attendance-dashboard/pkg/response"
)

// ReadyCheck reports whether a dependency of the dashboard, such as the
// session store, can serve requests.
type ReadyCheck func(ctx context.Context) error

// MetricsHandler serves the health checks, the Prometheus scrape and the status page.
type MetricsHandler struct {
	metrics *service.MetricsService
	ready   ReadyCheck
	started time.Time
}

// NewMetricsHandler builds the handler. metrics and ready may be nil.
func NewMetricsHandler(metrics *service.MetricsService, ready ReadyCheck) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, ready: ready, started: time.Now()}
}

// Prometheus serves the scrape endpoint, 503 when metrics are disabled.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health is the liveness check.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// Ready is the readiness check.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			response.Error(c, appErrors.Wrap(err, "NOT_READY", http.StatusServiceUnavailable, "session store unavailable"))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Status godoc
// @Summary Dashboard status
// @Description Request, backend call and session counters of this process
// @Tags Observability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/status [get]
func (h *MetricsHandler) Status(c *gin.Context) {
	respond(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
