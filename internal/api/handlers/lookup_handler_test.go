package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darisadam/cardbrand/internal/domain/binlookup"
	"github.com/darisadam/cardbrand/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockLookupService is a mock implementation of service.LookupService
type MockLookupService struct {
	mock.Mock
}

func (m *MockLookupService) Lookup(ctx context.Context, req *binlookup.LookupRequest) (*binlookup.LookupResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*binlookup.LookupResponse), args.Error(1)
}

func setupLookupRouter(handler *LookupHandler, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/bin/lookup", func(c *gin.Context) {
		if authenticated {
			c.Set("client_id", uuid.New())
		}
		handler.Lookup(c)
	})
	return router
}

// ==================== Lookup Tests ====================

func TestLookupHandler_Lookup_Success(t *testing.T) {
	mockService := new(MockLookupService)
	router := setupLookupRouter(NewLookupHandler(mockService), true)

	mockService.On("Lookup", mock.Anything, mock.MatchedBy(func(req *binlookup.LookupRequest) bool {
		return req.RequestID == "req-1" && req.EncryptedBIN == "ciphertext"
	})).Return(&binlookup.LookupResponse{RequestID: "req-1", Brands: []string{"mc"}}, nil)

	body := []byte(`{"request_id":"req-1","encrypted_bin":"ciphertext","supported_brands":["visa","mc"]}`)
	req, _ := http.NewRequest("POST", "/bin/lookup", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp binlookup.LookupResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, []string{"mc"}, resp.Brands)
	mockService.AssertExpectations(t)
}

func TestLookupHandler_Lookup_AssignsRequestID(t *testing.T) {
	mockService := new(MockLookupService)
	router := setupLookupRouter(NewLookupHandler(mockService), true)

	mockService.On("Lookup", mock.Anything, mock.MatchedBy(func(req *binlookup.LookupRequest) bool {
		_, err := uuid.Parse(req.RequestID)
		return err == nil
	})).Return(&binlookup.LookupResponse{Brands: []string{"visa"}}, nil)

	req, _ := http.NewRequest("POST", "/bin/lookup", bytes.NewBufferString(`{"bin":"411111"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestLookupHandler_Lookup_Unauthorized(t *testing.T) {
	mockService := new(MockLookupService)
	router := setupLookupRouter(NewLookupHandler(mockService), false)

	req, _ := http.NewRequest("POST", "/bin/lookup", bytes.NewBufferString(`{"bin":"411111"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestLookupHandler_Lookup_MissingBIN(t *testing.T) {
	mockService := new(MockLookupService)
	router := setupLookupRouter(NewLookupHandler(mockService), true)

	req, _ := http.NewRequest("POST", "/bin/lookup", bytes.NewBufferString(`{"request_id":"req-1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestLookupHandler_Lookup_InvalidJSON(t *testing.T) {
	mockService := new(MockLookupService)
	router := setupLookupRouter(NewLookupHandler(mockService), true)

	req, _ := http.NewRequest("POST", "/bin/lookup", bytes.NewBufferString(`{"bin":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLookupHandler_Lookup_InvalidBIN(t *testing.T) {
	mockService := new(MockLookupService)
	router := setupLookupRouter(NewLookupHandler(mockService), true)

	mockService.On("Lookup", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidBIN)

	req, _ := http.NewRequest("POST", "/bin/lookup", bytes.NewBufferString(`{"bin":"41"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bin must be 6 to 11 digits")
}

func TestLookupHandler_Lookup_DecryptFailureHidesDetail(t *testing.T) {
	mockService := new(MockLookupService)
	router := setupLookupRouter(NewLookupHandler(mockService), true)

	mockService.On("Lookup", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: %v", service.ErrDecryptBIN, errors.New("crypto/rsa: decryption error")))

	req, _ := http.NewRequest("POST", "/bin/lookup", bytes.NewBufferString(`{"encrypted_bin":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "failed to decrypt bin")
	assert.NotContains(t, w.Body.String(), "crypto/rsa")
}

func TestLookupHandler_Lookup_InternalError(t *testing.T) {
	mockService := new(MockLookupService)
	router := setupLookupRouter(NewLookupHandler(mockService), true)

	mockService.On("Lookup", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	req, _ := http.NewRequest("POST", "/bin/lookup", bytes.NewBufferString(`{"bin":"411111"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "lookup failed")
}

func TestLookupHandler_Lookup_PassesClientID(t *testing.T) {
	mockService := new(MockLookupService)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/bin/lookup", func(c *gin.Context) {
		c.Set("client_id", "shop-42")
		NewLookupHandler(mockService).Lookup(c)
	})

	mockService.On("Lookup", mock.Anything, mock.MatchedBy(func(req *binlookup.LookupRequest) bool {
		return req.ClientID == "shop-42"
	})).Return(&binlookup.LookupResponse{Brands: []string{"visa"}}, nil)

	req, _ := http.NewRequest("POST", "/bin/lookup", bytes.NewBufferString(`{"bin":"411111"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestLookupHandler_Lookup_ScanRejected(t *testing.T) {
	mockService := new(MockLookupService)
	router := setupLookupRouter(NewLookupHandler(mockService), true)

	mockService.On("Lookup", mock.Anything, mock.Anything).Return(nil, service.ErrBINScan)

	req, _ := http.NewRequest("POST", "/bin/lookup", bytes.NewBufferString(`{"bin":"411111"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "too many distinct bins")
}
