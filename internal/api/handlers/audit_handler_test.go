package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darisadam/cardbrand/internal/domain/audit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAuditRepository is a mock implementation of repository.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, log *audit.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, limit, offset int) ([]*audit.AuditLog, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.AuditLog), args.Error(1)
}

func setupAuditHandlerRouter(repo *MockAuditRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin/audit-logs", NewAuditHandler(repo).ListLogs)
	return router
}

// ==================== Audit Log Tests ====================

func TestAuditHandler_ListLogs_DefaultLimit(t *testing.T) {
	repo := new(MockAuditRepository)
	router := setupAuditHandlerRouter(repo)

	repo.On("List", mock.Anything, 100, 0).Return([]*audit.AuditLog{
		{ID: 1, EventID: uuid.New(), Action: audit.ActionBinRangeCreate, Status: audit.StatusSuccess},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/audit-logs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BIN_RANGE_CREATE")
	repo.AssertExpectations(t)
}

func TestAuditHandler_ListLogs_Paging(t *testing.T) {
	repo := new(MockAuditRepository)
	router := setupAuditHandlerRouter(repo)

	repo.On("List", mock.Anything, 10, 20).Return([]*audit.AuditLog{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/audit-logs?limit=10&offset=20", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestAuditHandler_ListLogs_InvalidLimit(t *testing.T) {
	repo := new(MockAuditRepository)
	router := setupAuditHandlerRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/audit-logs?limit=9999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuditHandler_ListLogs_Error(t *testing.T) {
	repo := new(MockAuditRepository)
	router := setupAuditHandlerRouter(repo)

	repo.On("List", mock.Anything, 100, 0).Return(nil, errors.New("db down"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/audit-logs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to list audit logs")
}
