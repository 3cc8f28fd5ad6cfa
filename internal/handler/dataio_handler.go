package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quilldesk/brokerage-api/internal/service"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
	"github.com/quilldesk/brokerage-api/pkg/response"
)

// DataIOHandler exposes backup import and data wipe endpoints.
type DataIOHandler struct {
	dataio    *service.DataIOService
	dashboard *service.DashboardService
}

// NewDataIOHandler constructs DataIOHandler.
func NewDataIOHandler(dataio *service.DataIOService, dashboard *service.DashboardService) *DataIOHandler {
	return &DataIOHandler{dataio: dataio, dashboard: dashboard}
}

// Import godoc
// @Summary Import a backup
// @Tags Data
// @Accept json
// @Produce json
// @Param payload body service.ImportRequest true "Backup payload"
// @Success 200 {object} response.Envelope
// @Router /data/import [post]
func (h *DataIOHandler) Import(c *gin.Context) {
	var req service.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.dataio.Import(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c)
	response.JSON(c, http.StatusOK, result, nil)
}

// ClearAll godoc
// @Summary Wipe every dataset table
// @Tags Data
// @Produce json
// @Success 204
// @Router /data/clear [post]
func (h *DataIOHandler) ClearAll(c *gin.Context) {
	if err := h.dataio.ClearAll(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c)
	response.NoContent(c)
}

func (h *DataIOHandler) invalidateDashboard(c *gin.Context) {
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
}
