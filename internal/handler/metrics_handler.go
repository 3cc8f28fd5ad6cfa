package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quilldesk/brokerage-api/internal/service"
)

// MetricsHandler serves the Prometheus scrape endpoint and the liveness probe.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Prometheus exposes the metrics registry in the Prometheus text format.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	promHandler := h.metrics.Handler()
	if promHandler == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	promHandler.ServeHTTP(c.Writer, c.Request)
}

// Health is the liveness probe. Readiness, which also checks the database,
// lives on /ready in main.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "brokerage-api"})
}
