package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quilldesk/brokerage-api/internal/service"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
	"github.com/quilldesk/brokerage-api/pkg/response"
)

// UniversityHandler exposes university registry endpoints.
type UniversityHandler struct {
	registry *service.RegistryService
}

// NewUniversityHandler constructs UniversityHandler.
func NewUniversityHandler(registry *service.RegistryService) *UniversityHandler {
	return &UniversityHandler{registry: registry}
}

// List godoc
// @Summary List universities
// @Tags Universities
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /universities [get]
func (h *UniversityHandler) List(c *gin.Context) {
	universities, err := h.registry.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, universities, nil)
}

// Create godoc
// @Summary Create university
// @Tags Universities
// @Accept json
// @Produce json
// @Param payload body service.UniversityRequest true "University payload"
// @Success 201 {object} response.Envelope
// @Router /universities [post]
func (h *UniversityHandler) Create(c *gin.Context) {
	var req service.UniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	university, err := h.registry.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, university)
}

// Update godoc
// @Summary Update university
// @Tags Universities
// @Accept json
// @Produce json
// @Param id path int true "University ID"
// @Param payload body service.UniversityRequest true "University payload"
// @Success 200 {object} response.Envelope
// @Router /universities/{id} [put]
func (h *UniversityHandler) Update(c *gin.Context) {
	id, err := universityID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	university, err := h.registry.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, university, nil)
}

// Delete godoc
// @Summary Delete university
// @Tags Universities
// @Produce json
// @Param id path int true "University ID"
// @Success 204
// @Router /universities/{id} [delete]
func (h *UniversityHandler) Delete(c *gin.Context) {
	id, err := universityID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.registry.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Backfill godoc
// @Summary Canonicalize free-text university names
// @Tags Universities
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /universities/backfill [post]
func (h *UniversityHandler) Backfill(c *gin.Context) {
	result, err := h.registry.Backfill(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func universityID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid university id")
	}
	return id, nil
}
