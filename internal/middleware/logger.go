package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"llmgateway/internal/logging"
)

// RequestLogger emits one structured log line per request with the
// request id, route, status, and latency.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		rid, _ := c.Get("request_id")
		entry := logging.Logger().WithFields(map[string]any{
			"request_id": rid,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": logging.DurationMS(time.Since(start).Nanoseconds()),
		})
		if c.Writer.Status() >= 500 {
			entry.Error("request completed")
		} else {
			entry.Info("request completed")
		}
	}
}
