package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales_api/internal/metrics"
)

// requestLogger writes one access log line per request and, when m is set,
// records the request in the HTTP metrics.
func requestLogger(logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("client_ip", c.ClientIP()))

		if m != nil {
			m.ObserveHTTP(c.Request.Method, route, status, elapsed)
		}
	}
}
