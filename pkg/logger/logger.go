package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quilldesk/brokerage-api/pkg/config"
	"github.com/quilldesk/brokerage-api/pkg/middleware/requestid"
)

// New builds the process logger. Production gets sampled JSON output; every
// other environment gets the development config so stack traces stay readable.
func New(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.Env == config.EnvProduction {
		zc = zap.NewProductionConfig()
	}

	zc.Encoding = "json"
	if cfg.Log.Format == "console" {
		zc.Encoding = "console"
	}

	if lvl := cfg.Log.Level; lvl != "" {
		if err := zc.Level.UnmarshalText([]byte(lvl)); err != nil {
			zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zc.Build()
}

// GinMiddleware logs one line per request. Server errors are logged at error
// level so they stand out from routine traffic.
func GinMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if id := requestid.Value(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}

		if status >= 500 {
			l.Error("http_request", fields...)
			return
		}
		l.Info("http_request", fields...)
	}
}
