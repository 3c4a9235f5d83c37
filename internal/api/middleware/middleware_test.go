package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/darisadam/cardbrand/internal/pkg/maintenance"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

// ==================== CORS Middleware Tests ====================

func TestCORSMiddleware_AllowedOrigin(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddleware_PreflightRequest(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware())
	router.OPTIONS("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("OPTIONS", "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Authorization")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORSMiddleware_ConfiguredOrigins(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware("https://shop.example.com"))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req, _ = http.NewRequest("GET", "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ==================== Logger Middleware Tests ====================

func TestLoggerMiddleware_LogsRequest(t *testing.T) {
	router := gin.New()
	router.Use(LoggerMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Logger middleware should not affect the response
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoggerMiddleware_LogsWithQuery(t *testing.T) {
	router := gin.New()
	router.Use(LoggerMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"query": c.Query("foo")})
	})

	req, _ := http.NewRequest("GET", "/test?foo=bar", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoggerMiddleware_RequestID(t *testing.T) {
	router := gin.New()
	router.Use(LoggerMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	req, _ = http.NewRequest("GET", "/test", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

// ==================== Metrics Middleware Tests ====================

func TestMetricsMiddleware_RecordsRequest(t *testing.T) {
	router := gin.New()
	router.Use(MetricsMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Metrics middleware should not affect the response
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsMiddleware_RecordsErrorStatus(t *testing.T) {
	router := gin.New()
	router.Use(MetricsMiddleware())
	router.GET("/error", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	})

	req, _ := http.NewRequest("GET", "/error", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ==================== Maintenance Middleware Tests ====================

func setupMaintenanceRouter(t *testing.T, bypassToken string) (*gin.Engine, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	router := gin.New()
	router.Use(MaintenanceMiddleware(client, bypassToken))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, "# Metrics")
	})
	router.POST("/api/v1/bin/lookup", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"brands": []string{}})
	})
	router.PUT(MaintenancePath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"maintenance": false})
	})
	return router, mr
}

func TestMaintenanceMiddleware_FlagUnset(t *testing.T) {
	router, _ := setupMaintenanceRouter(t, "")

	req, _ := http.NewRequest("POST", "/api/v1/bin/lookup", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMaintenanceMiddleware_BlocksAPI(t *testing.T) {
	router, mr := setupMaintenanceRouter(t, "")
	require.NoError(t, mr.Set(maintenance.Key, "true"))

	req, _ := http.NewRequest("POST", "/api/v1/bin/lookup", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Service under maintenance")
}

func TestMaintenanceMiddleware_HealthEndpointsAlwaysAccessible(t *testing.T) {
	router, mr := setupMaintenanceRouter(t, "")
	require.NoError(t, mr.Set(maintenance.Key, "true"))

	for _, path := range []string{"/health", "/metrics"} {
		req, _ := http.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestMaintenanceMiddleware_Bypass(t *testing.T) {
	router, mr := setupMaintenanceRouter(t, "ops-secret")
	require.NoError(t, mr.Set(maintenance.Key, "true"))

	req, _ := http.NewRequest("POST", "/api/v1/bin/lookup", nil)
	req.Header.Set("X-Maintenance-Bypass", "ops-secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("POST", "/api/v1/bin/lookup", nil)
	req.Header.Set("X-Maintenance-Bypass", "wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMaintenanceMiddleware_EmptyBypassTokenDisablesBypass(t *testing.T) {
	router, mr := setupMaintenanceRouter(t, "")
	require.NoError(t, mr.Set(maintenance.Key, "true"))

	req, _ := http.NewRequest("POST", "/api/v1/bin/lookup", nil)
	req.Header.Set("X-Maintenance-Bypass", "")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMaintenanceMiddleware_RedisDownFailsOpen(t *testing.T) {
	// Nothing listens on port 1.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})

	router := gin.New()
	router.Use(MaintenanceMiddleware(client, ""))
	router.POST("/api/v1/bin/lookup", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"brands": []string{}})
	})

	req, _ := http.NewRequest("POST", "/api/v1/bin/lookup", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMaintenanceMiddleware_RetryAfterForTimedWindow(t *testing.T) {
	router, mr := setupMaintenanceRouter(t, "")
	require.NoError(t, mr.Set(maintenance.Key, "true"))
	mr.SetTTL(maintenance.Key, 10*time.Minute)

	req, _ := http.NewRequest("POST", "/api/v1/bin/lookup", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "600", w.Header().Get("Retry-After"))
}

func TestMaintenanceMiddleware_ToggleEndpointExempt(t *testing.T) {
	router, mr := setupMaintenanceRouter(t, "")
	require.NoError(t, mr.Set(maintenance.Key, "true"))

	req, _ := http.NewRequest("PUT", MaintenancePath, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
