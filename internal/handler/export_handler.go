package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quilldesk/brokerage-api/internal/models"
	"github.com/quilldesk/brokerage-api/internal/service"
	"github.com/quilldesk/brokerage-api/pkg/response"
)

// ExportHandler exposes report export endpoints.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Assignments godoc
// @Summary Export assignment ledger
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param status query string false "Filter by status"
// @Param writerId query int false "Filter by writer"
// @Param archived query bool false "Filter by archived state"
// @Success 200 {file} file
// @Router /exports/assignments [get]
func (h *ExportHandler) Assignments(c *gin.Context) {
	var filter models.AssignmentFilter
	filter.Status = c.Query("status")
	filter.StudentID = c.Query("studentId")
	if raw := c.Query("writerId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.WriterID = &id
		}
	}
	if archived := c.Query("archived"); archived != "" {
		if archived == "true" {
			v := true
			filter.Archived = &v
		} else if archived == "false" {
			v := false
			filter.Archived = &v
		}
	}

	format := c.DefaultQuery("format", service.ExportFormatCSV)
	doc, err := h.exports.Assignments(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+doc.FileName)
	c.Data(200, doc.ContentType, doc.Body)
}
