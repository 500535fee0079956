package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/logger"
)

var startTime = time.Now()

// Check tests one dependency. A nil error means the dependency is usable.
type Check func(ctx context.Context) error

// RegisterHealth mounts GET /health (liveness) and GET /ready. /ready runs
// every check and answers 503 when any of them fails.
func RegisterHealth(r gin.IRouter, checks map[string]Check) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		deps := make(map[string]bool, len(names))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.Warnw("readiness check failed", "dep", name, "err", err)
				deps[name] = false
				ready = false
				continue
			}
			deps[name] = true
		}

		uptime := time.Since(startTime).Round(time.Second).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	})
}
