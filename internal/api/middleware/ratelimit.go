package middleware

import (
	"fmt"
	"net/http"

	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/darisadam/cardbrand/internal/pkg/metrics"
	"github.com/darisadam/cardbrand/internal/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware applies rate limiting based on IP address and endpoint
func RateLimitMiddleware(limiter *ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientIP := c.ClientIP()

		config := getRateLimitConfig(c.FullPath())
		key := fmt.Sprintf("ratelimit:%s:%s", clientIP, c.FullPath())

		blockedFor, err := limiter.BlockedFor(ctx, clientIP)
		if err != nil {
			logger.Error("Failed to check block status", zap.Error(err))
		}

		if blockedFor > 0 {
			metrics.RecordRateLimited("blocked")
			c.Header("Retry-After", fmt.Sprintf("%d", int(blockedFor.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests. Your IP has been temporarily blocked.",
				"retry_after": fmt.Sprintf("%d seconds", int(blockedFor.Seconds())),
			})
			c.Abort()
			return
		}

		info, err := limiter.CheckLimitWithInfo(ctx, key, config)
		if err != nil {
			logger.Error("Rate limit check failed", zap.Error(err))
			// Fail open
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", info.Reset.Unix()))

		if !info.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
			metrics.RecordRateLimited("ip")

			logger.Warn("Rate limit exceeded",
				zap.String("ip", clientIP),
				zap.String("path", c.FullPath()),
				zap.Int("limit", info.Limit),
			)

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"limit":       info.Limit,
				"retry_after": fmt.Sprintf("%d seconds", int(info.RetryAfter.Seconds())),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ClientRateLimitMiddleware applies rate limiting per authenticated client key
func ClientRateLimitMiddleware(limiter *ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, exists := c.Get("client_id")
		if !exists {
			c.Next()
			return
		}

		config := getRateLimitConfig(c.FullPath())
		key := fmt.Sprintf("ratelimit:client:%s:%s", clientID, c.FullPath())

		info, err := limiter.CheckLimitWithInfo(c.Request.Context(), key, config)
		if err != nil {
			logger.Error("Client rate limit check failed", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Client-Limit", fmt.Sprintf("%d", info.Limit))
		c.Header("X-RateLimit-Client-Remaining", fmt.Sprintf("%d", info.Remaining))

		if !info.Allowed {
			metrics.RecordRateLimited("client")
			logger.Warn("Client rate limit exceeded",
				zap.Any("client_id", clientID),
				zap.String("path", c.FullPath()),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Client rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getRateLimitConfig returns appropriate rate limit based on endpoint
func getRateLimitConfig(path string) ratelimit.RateLimitConfig {
	switch path {
	case "/api/v1/bin/lookup":
		return ratelimit.LookupRateLimit
	case "/api/v1/admin/bin-ranges", "/api/v1/admin/bin-ranges/:id", "/api/v1/admin/audit-logs", MaintenancePath:
		return ratelimit.AdminRateLimit
	default:
		return ratelimit.GeneralRateLimit
	}
}

// SuspiciousActivityMiddleware blocks IPs that keep getting 401 or 403
// responses, i.e. presenting rejected client keys. Validation failures (400)
// are not counted.
func SuspiciousActivityMiddleware(limiter *ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status != http.StatusUnauthorized && status != http.StatusForbidden {
			return
		}

		ctx := c.Request.Context()
		clientIP := c.ClientIP()
		key := fmt.Sprintf("suspicious:auth:%s", clientIP)

		allowed, err := limiter.CheckLimit(ctx, key, ratelimit.SuspiciousRateLimit)
		if err != nil {
			logger.Error("Suspicious activity check failed", zap.Error(err))
			return
		}

		if !allowed {
			logger.Warn("Blocking IP due to repeated rejected client keys",
				zap.String("ip", clientIP),
			)

			if err := limiter.Block(ctx, clientIP, ratelimit.BlockDuration); err != nil {
				logger.Error("Failed to block IP", zap.Error(err))
			}
		}
	}
}

