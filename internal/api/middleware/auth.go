package middleware

import (
	"net/http"
	"strings"

	"github.com/darisadam/cardbrand/internal/pkg/jwt"
	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/darisadam/cardbrand/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware validates the bearer client key and stores its claims in the
// context as client_id, merchant and scope.
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			metrics.RecordAuthAttempt(false)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			metrics.RecordAuthAttempt(false)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			metrics.RecordAuthAttempt(false)
			logger.Debug("Rejected client key", zap.String("ip", c.ClientIP()), zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		metrics.RecordAuthAttempt(true)
		c.Set("client_id", claims.ClientID)
		c.Set("merchant", claims.Merchant)
		c.Set("scope", claims.Scope)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequireScope rejects clients whose key does not grant scope. It must run
// after AuthMiddleware.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("claims")
		claims, ok := value.(*jwt.Claims)
		if !exists || !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		if !claims.Allows(scope) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient scope"})
			c.Abort()
			return
		}

		c.Next()
	}
}
