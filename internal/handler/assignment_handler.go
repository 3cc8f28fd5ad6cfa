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

// AssignmentHandler exposes the assignment ledger endpoints.
type AssignmentHandler struct {
	ledger    *service.LedgerService
	dashboard *service.DashboardService
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(ledger *service.LedgerService, dashboard *service.DashboardService) *AssignmentHandler {
	return &AssignmentHandler{ledger: ledger, dashboard: dashboard}
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param writerId query int false "Filter by writer"
// @Param status query string false "Filter by status"
// @Param archived query bool false "Filter by archived state"
// @Param search query string false "Search in title and subject"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	var filter models.AssignmentFilter
	filter.StudentID = c.Query("studentId")
	filter.Status = c.Query("status")
	filter.Search = strings.TrimSpace(c.Query("search"))
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
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	assignments, pagination, err := h.ledger.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, pagination)
}

// Get godoc
// @Summary Get assignment detail
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.ledger.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.ledger.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c)
	response.Created(c, assignment)
}

// Update godoc
// @Summary Update assignment details
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.UpdateAssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	var req service.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.ledger.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c)
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.ledger.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c)
	response.NoContent(c)
}

// Reassign godoc
// @Summary Reassign writer
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.ReassignRequest true "Reassignment payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/reassign [post]
func (h *AssignmentHandler) Reassign(c *gin.Context) {
	var req service.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.ledger.Reassign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c)
	response.JSON(c, http.StatusOK, assignment, nil)
}

// RecordPayment godoc
// @Summary Record payment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.RecordPaymentRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/payments [post]
func (h *AssignmentHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.ledger.RecordPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c)
	response.JSON(c, http.StatusOK, assignment, nil)
}

// ChangeStatus godoc
// @Summary Change assignment status
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.ChangeStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/status [patch]
func (h *AssignmentHandler) ChangeStatus(c *gin.Context) {
	var req service.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.ledger.ChangeStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c)
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Archive godoc
// @Summary Archive assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /assignments/{id}/archive [post]
func (h *AssignmentHandler) Archive(c *gin.Context) {
	if err := h.ledger.Archive(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c)
	response.NoContent(c)
}

// Unarchive godoc
// @Summary Unarchive assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /assignments/{id}/unarchive [post]
func (h *AssignmentHandler) Unarchive(c *gin.Context) {
	if err := h.ledger.Unarchive(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c)
	response.NoContent(c)
}

// Duplicate godoc
// @Summary Duplicate assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 201 {object} response.Envelope
// @Router /assignments/{id}/duplicate [post]
func (h *AssignmentHandler) Duplicate(c *gin.Context) {
	assignment, err := h.ledger.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c)
	response.Created(c, assignment)
}

// RecordActivity godoc
// @Summary Append activity log entry
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.ActivityRequest true "Activity payload"
// @Success 204
// @Router /assignments/{id}/activity [post]
func (h *AssignmentHandler) RecordActivity(c *gin.Context) {
	var req service.ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.ledger.RecordActivity(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *AssignmentHandler) invalidateDashboard(c *gin.Context) {
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
}
