package middleware

import (
	"net/http"

	"github.com/darisadam/cardbrand/internal/domain/audit"
	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/darisadam/cardbrand/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditMiddleware records admin changes (BIN ranges, maintenance flag) once
// the handler has run. Reads are not audited. A failed write is logged and never
// fails the request.
func AuditMiddleware(repo repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		action, resource := auditAction(c)
		if action == "" {
			return
		}

		entry := &audit.AuditLog{
			EventID:    uuid.New(),
			Merchant:   c.GetString("merchant"),
			Action:     action,
			Resource:   resource,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			Status:     audit.StatusFor(c.Writer.Status()),
			StatusCode: c.Writer.Status(),
		}
		if id, ok := c.Get("client_id"); ok {
			if clientID, ok := id.(uuid.UUID); ok {
				entry.ClientID = &clientID
			}
		}
		if requestID := c.GetString("request_id"); requestID != "" {
			entry.Metadata = map[string]interface{}{"request_id": requestID}
		}

		if err := repo.Create(c.Request.Context(), entry); err != nil {
			logger.Error("Failed to write audit log",
				zap.String("action", action),
				zap.String("resource", resource),
				zap.Error(err),
			)
		}
	}
}

func auditAction(c *gin.Context) (string, string) {
	switch {
	case c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/admin/bin-ranges":
		return audit.ActionBinRangeCreate, "bin_range"
	case c.Request.Method == http.MethodDelete && c.FullPath() == "/api/v1/admin/bin-ranges/:id":
		return audit.ActionBinRangeDelete, "bin_range:" + c.Param("id")
	case c.Request.Method == http.MethodPut && c.FullPath() == MaintenancePath:
		return audit.ActionMaintenanceSet, "system:maintenance"
	}
	return "", ""
}
