package handlers

import (
	"net/http"
	"time"

	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/darisadam/cardbrand/internal/pkg/maintenance"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type SetMaintenanceRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
	// TTLSeconds ends the window automatically. Zero means until cleared.
	TTLSeconds int `json:"ttl_seconds" binding:"omitempty,min=1,max=86400"`
}

type MaintenanceHandler struct {
	redis *redis.Client
}

func NewMaintenanceHandler(redisClient *redis.Client) *MaintenanceHandler {
	return &MaintenanceHandler{
		redis: redisClient,
	}
}

// GetStatus godoc
// @Summary Maintenance flag status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/maintenance [get]
func (h *MaintenanceHandler) GetStatus(c *gin.Context) {
	enabled, remaining, err := maintenance.Status(c.Request.Context(), h.redis)
	if err != nil {
		logger.Error("Failed to read maintenance flag", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read maintenance status"})
		return
	}

	c.JSON(http.StatusOK, maintenanceBody(enabled, remaining))
}

// SetStatus godoc
// @Summary Enable or disable maintenance mode
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetMaintenanceRequest true "Maintenance window"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/admin/maintenance [put]
func (h *MaintenanceHandler) SetStatus(c *gin.Context) {
	var req SetMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	if err := maintenance.Set(c.Request.Context(), h.redis, *req.Enabled, ttl); err != nil {
		logger.Error("Failed to update maintenance flag", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update maintenance status"})
		return
	}

	logger.Info("Maintenance mode updated",
		zap.Bool("enabled", *req.Enabled),
		zap.Duration("ttl", ttl),
		zap.String("merchant", c.GetString("merchant")),
	)

	if !*req.Enabled {
		ttl = 0
	}
	c.JSON(http.StatusOK, maintenanceBody(*req.Enabled, ttl))
}

func maintenanceBody(enabled bool, remaining time.Duration) gin.H {
	body := gin.H{"maintenance": enabled}
	if enabled && remaining > 0 {
		body["remaining_seconds"] = int(remaining.Seconds())
	}
	return body
}
