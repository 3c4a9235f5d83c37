package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/darisadam/cardbrand/internal/domain/binlookup"
	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/darisadam/cardbrand/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LookupHandler struct {
	lookupService service.LookupService
}

func NewLookupHandler(lookupService service.LookupService) *LookupHandler {
	return &LookupHandler{
		lookupService: lookupService,
	}
}

// Lookup godoc
// @Summary Resolve card brands for a BIN
// @Description Classify an RSA-OAEP encrypted (or plain) BIN of 6 to 11 digits
// @Tags bin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body binlookup.LookupRequest true "BIN lookup"
// @Success 200 {object} binlookup.LookupResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /api/v1/bin/lookup [post]
func (h *LookupHandler) Lookup(c *gin.Context) {
	clientID, exists := c.Get("client_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req binlookup.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	req.ClientID = fmt.Sprint(clientID)

	resp, err := h.lookupService.Lookup(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidBIN) || errors.Is(err, service.ErrDecryptBIN) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errorMessage(err)})
			return
		}
		if errors.Is(err, service.ErrBINScan) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			return
		}

		logger.Error("BIN lookup failed",
			zap.String("request_id", req.RequestID),
			zap.Any("client_id", clientID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// errorMessage keeps decryption internals out of responses.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrDecryptBIN):
		return service.ErrDecryptBIN.Error()
	case errors.Is(err, service.ErrInvalidBIN):
		return service.ErrInvalidBIN.Error()
	}
	return err.Error()
}
