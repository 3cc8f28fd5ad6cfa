package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxAge = "600"

// New builds a CORS middleware from an origin allowlist. An empty list means
// every origin is accepted, which is the development default.
func New(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[normalize(o)] = true
	}
	allowAny := len(allowed) == 0

	return func(c *gin.Context) {
		h := c.Writer.Header()
		origin := c.GetHeader("Origin")

		switch {
		case origin != "" && (allowAny || allowed[normalize(origin)]):
			h.Set("Access-Control-Allow-Origin", origin)
		case origin == "" && allowAny:
			h.Set("Access-Control-Allow-Origin", "*")
		}

		h.Set("Vary", "Origin")
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With, X-Request-ID")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Max-Age", maxAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func normalize(origin string) string {
	return strings.TrimRight(strings.ToLower(origin), "/")
}
