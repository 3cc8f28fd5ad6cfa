package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quilldesk/brokerage-api/internal/models"
	"github.com/quilldesk/brokerage-api/internal/service"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
	"github.com/quilldesk/brokerage-api/pkg/response"
)

// WriterHandler exposes writer endpoints.
type WriterHandler struct {
	writers *service.WriterService
}

// NewWriterHandler constructs WriterHandler.
func NewWriterHandler(writers *service.WriterService) *WriterHandler {
	return &WriterHandler{writers: writers}
}

// List godoc
// @Summary List writers
// @Tags Writers
// @Produce json
// @Param search query string false "Search by name or phone"
// @Param availability query string false "Filter by availability"
// @Param flagged query bool false "Filter by flagged state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /writers [get]
func (h *WriterHandler) List(c *gin.Context) {
	var filter models.WriterFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Availability = c.Query("availability")
	if flagged := c.Query("flagged"); flagged != "" {
		if flagged == "true" {
			v := true
			filter.Flagged = &v
		} else if flagged == "false" {
			v := false
			filter.Flagged = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	writers, pagination, err := h.writers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, writers, pagination)
}

// Get godoc
// @Summary Get writer detail
// @Tags Writers
// @Produce json
// @Param id path int true "Writer ID"
// @Success 200 {object} response.Envelope
// @Router /writers/{id} [get]
func (h *WriterHandler) Get(c *gin.Context) {
	id, err := writerID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	writer, err := h.writers.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, writer, nil)
}

// Achievements godoc
// @Summary List writer achievements
// @Tags Writers
// @Produce json
// @Param id path int true "Writer ID"
// @Success 200 {object} response.Envelope
// @Router /writers/{id}/achievements [get]
func (h *WriterHandler) Achievements(c *gin.Context) {
	id, err := writerID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	achievements, err := h.writers.Achievements(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, achievements, nil)
}

// Create godoc
// @Summary Create writer
// @Tags Writers
// @Accept json
// @Produce json
// @Param payload body service.CreateWriterRequest true "Writer payload"
// @Success 201 {object} response.Envelope
// @Router /writers [post]
func (h *WriterHandler) Create(c *gin.Context) {
	var req service.CreateWriterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	writer, err := h.writers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, writer)
}

// Update godoc
// @Summary Update writer
// @Tags Writers
// @Accept json
// @Produce json
// @Param id path int true "Writer ID"
// @Param payload body service.UpdateWriterRequest true "Writer payload"
// @Success 200 {object} response.Envelope
// @Router /writers/{id} [put]
func (h *WriterHandler) Update(c *gin.Context) {
	id, err := writerID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateWriterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	writer, err := h.writers.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, writer, nil)
}

// Delete godoc
// @Summary Delete writer
// @Tags Writers
// @Produce json
// @Param id path int true "Writer ID"
// @Success 204
// @Router /writers/{id} [delete]
func (h *WriterHandler) Delete(c *gin.Context) {
	id, err := writerID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.writers.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func writerID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid writer id")
	}
	return id, nil
}
