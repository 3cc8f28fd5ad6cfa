package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quilldesk/brokerage-api/internal/service"
	"github.com/quilldesk/brokerage-api/pkg/response"
)

// DashboardHandler exposes the cached money-flow overview.
type DashboardHandler struct {
	dashboard *service.DashboardService
	metrics   *service.MetricsService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService, metrics *service.MetricsService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, metrics: metrics}
}

// Summary godoc
// @Summary Dashboard summary
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, cached, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordCacheOperation(cached)
	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"cached": cached})
}
