package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/logger"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/metrics"
)

// Observe logs one line per request and records request metrics keyed by the
// matched route pattern, so ids in paths do not explode label cardinality.
func Observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())

		kv := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"latency", elapsed.Round(time.Microsecond),
		}
		if uid := UID(c); uid != "" {
			kv = append(kv, "uid", uid)
		}
		if status >= 500 {
			logger.Warnw("request", kv...)
			return
		}
		logger.Infow("request", kv...)
	}
}

// CORS sets permissive-by-configuration CORS headers and answers preflight requests.
func CORS(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		h.Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
