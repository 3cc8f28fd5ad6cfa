package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quilldesk/brokerage-api/internal/models"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
)

// Envelope is the wire contract for every endpoint: exactly one of Data or
// Error is set, Pagination rides along on list responses, and Meta carries
// endpoint-specific extras such as cache flags.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// Ledger reads must never be served stale by intermediaries.
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON writes a success envelope. Pagination may be nil; at most the first
// meta map is used.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	env := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		env.Meta = meta[0]
	}
	c.JSON(status, env)
}

// Created writes a 201 envelope for newly persisted resources.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error maps any error onto the envelope via the app error catalogue. Unknown
// errors surface as 500 without leaking their message.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent writes a bare 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
