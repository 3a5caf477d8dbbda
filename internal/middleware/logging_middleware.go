package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LoggingMiddleware logs one line per request and injects a request_id into
// the context. Health probes are logged at debug level to keep the info
// stream limited to real traffic.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := uuid.New().String()[:8]
		c.Set("request_id", requestID)

		c.Next()

		event := log.Info()
		if path == "/v1/health" {
			event = log.Debug()
		}

		event = event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP())

		if clientID := c.GetInt("client_id"); clientID != 0 {
			event = event.Int("client_id", clientID)
		}
		if engine := c.Query("engine"); engine != "" {
			event = event.Str("engine", engine)
		}

		event.Msg("HTTP Request")
	}
}
