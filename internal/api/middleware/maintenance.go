package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/darisadam/cardbrand/internal/pkg/maintenance"
)

// MaintenancePath stays reachable so admins can lift the flag.
const MaintenancePath = "/api/v1/admin/maintenance"

var maintenanceExempt = map[string]bool{
	"/health":       true,
	"/ready":        true,
	"/metrics":      true,
	"/":             true,
	MaintenancePath: true,
}

// MaintenanceMiddleware rejects API traffic while the maintenance flag is set.
// An empty bypassToken disables the bypass header.
func MaintenanceMiddleware(redisClient *redis.Client, bypassToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maintenanceExempt[c.Request.URL.Path] {
			c.Next()
			return
		}

		// Short timeout so a slow Redis does not stall lookups
		ctx, cancel := context.WithTimeout(c.Request.Context(), 100*time.Millisecond)
		defer cancel()

		enabled, remaining, err := maintenance.Status(ctx, redisClient)
		if err != nil {
			// Fail open
			logger.Error("Failed to check maintenance mode", zap.Error(err))
			c.Next()
			return
		}

		if !enabled || (bypassToken != "" && c.GetHeader("X-Maintenance-Bypass") == bypassToken) {
			c.Next()
			return
		}

		if remaining > 0 {
			c.Header("Retry-After", fmt.Sprintf("%d", int(remaining.Seconds())))
		}

		// Clients fall back to their local brand table on any lookup failure.
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Service under maintenance",
			"message": "BIN lookups are temporarily unavailable. Please try again later.",
		})
		c.Abort()
	}
}
