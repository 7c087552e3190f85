package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crystaldolphin/msgscheduler/internal/logx"
)

// requestLogger logs one line per request and records HTTP metrics.
func requestLogger(log logx.Logger, m *httpMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		took := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if m != nil {
			m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
			m.latency.WithLabelValues(c.Request.Method, route).Observe(took.Seconds())
		}

		fields := []logx.Field{
			logx.String("method", c.Request.Method),
			logx.String("path", c.Request.URL.Path),
			logx.Int("status", status),
			logx.Duration("took", took),
			logx.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logx.String("errors", c.Errors.String()))
		}
		switch {
		case status >= 500:
			log.Error("http: request", fields...)
		case route == "/healthz" || route == "/metrics":
			log.Debug("http: request", fields...)
		default:
			log.Info("http: request", fields...)
		}
	}
}
