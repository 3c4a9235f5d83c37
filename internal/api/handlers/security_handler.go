package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/darisadam/cardbrand/internal/service"
	"github.com/gin-gonic/gin"
)

const pemContentType = "application/x-pem-file"

type SecurityHandler struct {
	securityService service.SecurityService
}

func NewSecurityHandler(securityService service.SecurityService) *SecurityHandler {
	return &SecurityHandler{
		securityService: securityService,
	}
}

// GetPublicKey godoc
// @Summary Get the BIN encryption key
// @Description PEM encoded RSA public key clients use to encrypt BINs (RSA-OAEP, SHA-256)
// @Tags security
// @Produce application/x-pem-file
// @Success 200 {string} string "PEM encoded public key"
// @Success 304 "Key unchanged"
// @Router /api/v1/security/public-key [get]
func (h *SecurityHandler) GetPublicKey(c *gin.Context) {
	pem := h.securityService.GetPublicKeyPEM()
	if pem == "" {
		logger.Error("BIN encryption key unavailable")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve public key"})
		return
	}

	// The ETag changes when the key is rotated, so clients can revalidate cheaply.
	sum := sha256.Sum256([]byte(pem))
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`

	c.Header("ETag", etag)
	c.Header("Cache-Control", "public, max-age=300")

	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.Data(http.StatusOK, pemContentType, []byte(pem))
}
