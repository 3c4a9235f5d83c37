package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSecurityService is a mock implementation of service.SecurityService
type MockSecurityService struct {
	mock.Mock
}

func (m *MockSecurityService) GetPublicKeyPEM() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSecurityService) Decrypt(encryptedBase64 string) (string, error) {
	args := m.Called(encryptedBase64)
	return args.String(0), args.Error(1)
}

const testPublicKeyPEM = "-----BEGIN PUBLIC KEY-----\nMIIBIjANBgkq...\n-----END PUBLIC KEY-----\n"

func setupSecurityRouter(mockService *MockSecurityService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/security/public-key", NewSecurityHandler(mockService).GetPublicKey)
	return router
}

// ==================== GetPublicKey Tests ====================

func TestSecurityHandler_GetPublicKey_ServesPEM(t *testing.T) {
	mockService := new(MockSecurityService)
	router := setupSecurityRouter(mockService)
	mockService.On("GetPublicKeyPEM").Return(testPublicKeyPEM)

	req, _ := http.NewRequest("GET", "/security/public-key", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testPublicKeyPEM, w.Body.String())
	assert.Equal(t, "application/x-pem-file", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("ETag"))
	mockService.AssertExpectations(t)
}

func TestSecurityHandler_GetPublicKey_NotModified(t *testing.T) {
	mockService := new(MockSecurityService)
	router := setupSecurityRouter(mockService)
	mockService.On("GetPublicKeyPEM").Return(testPublicKeyPEM)

	req, _ := http.NewRequest("GET", "/security/public-key", nil)
	first := httptest.NewRecorder()
	router.ServeHTTP(first, req)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req, _ = http.NewRequest("GET", "/security/public-key", nil)
	req.Header.Set("If-None-Match", etag)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestSecurityHandler_GetPublicKey_StaleETag(t *testing.T) {
	mockService := new(MockSecurityService)
	router := setupSecurityRouter(mockService)
	mockService.On("GetPublicKeyPEM").Return(testPublicKeyPEM)

	req, _ := http.NewRequest("GET", "/security/public-key", nil)
	req.Header.Set("If-None-Match", `"0000000000000000"`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BEGIN PUBLIC KEY")
}

func TestSecurityHandler_GetPublicKey_Unavailable(t *testing.T) {
	mockService := new(MockSecurityService)
	router := setupSecurityRouter(mockService)
	mockService.On("GetPublicKeyPEM").Return("")

	req, _ := http.NewRequest("GET", "/security/public-key", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to retrieve public key")
}
