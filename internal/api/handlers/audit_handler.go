package handlers

import (
	"net/http"

	"github.com/darisadam/cardbrand/internal/domain/audit"
	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/darisadam/cardbrand/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultAuditLimit = 100

type AuditHandler struct {
	auditRepo repository.AuditRepository
}

func NewAuditHandler(auditRepo repository.AuditRepository) *AuditHandler {
	return &AuditHandler{
		auditRepo: auditRepo,
	}
}

// ListLogs godoc
// @Summary List admin audit trail
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (max 500)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/audit-logs [get]
func (h *AuditHandler) ListLogs(c *gin.Context) {
	var req audit.ListAuditLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultAuditLimit
	}

	logs, err := h.auditRepo.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		logger.Error("Failed to list audit logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}
