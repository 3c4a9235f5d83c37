package api

import (
	"context"
	"net/http"
	"time"

	"github.com/darisadam/cardbrand/internal/api/handlers"
	"github.com/darisadam/cardbrand/internal/api/middleware"
	"github.com/darisadam/cardbrand/internal/pkg/jwt"
	"github.com/darisadam/cardbrand/internal/pkg/ratelimit"
	"github.com/darisadam/cardbrand/internal/repository"
	"github.com/darisadam/cardbrand/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const Version = "0.1.0"

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	LookupService     service.LookupService
	BinRangeService   service.BinRangeService
	AuditRepository   repository.AuditRepository
	SecurityService   service.SecurityService
	JWTService        *jwt.JWTService
	Redis             *redis.Client
	Database          Pinger
	CORSOrigins       []string
	MaintenanceBypass string
}

func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(deps.CORSOrigins...))

	if deps.Redis != nil {
		limiter := ratelimit.NewRateLimiter(deps.Redis)
		router.Use(middleware.MaintenanceMiddleware(deps.Redis, deps.MaintenanceBypass))
		router.Use(middleware.SuspiciousActivityMiddleware(limiter))
		router.Use(middleware.RateLimitMiddleware(limiter))
		deps.registerAPI(router, middleware.ClientRateLimitMiddleware(limiter))
	} else {
		deps.registerAPI(router)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	router.GET("/ready", deps.ready)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Card Brand Lookup API",
			"version": Version,
			"status":  "operational",
		})
	})

	return router
}

func (deps Dependencies) registerAPI(router *gin.Engine, authed ...gin.HandlerFunc) {
	securityHandler := handlers.NewSecurityHandler(deps.SecurityService)
	lookupHandler := handlers.NewLookupHandler(deps.LookupService)
	binRangeHandler := handlers.NewBinRangeHandler(deps.BinRangeService)

	v1 := router.Group("/api/v1")
	v1.GET("/security/public-key", securityHandler.GetPublicKey)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWTService))
	protected.Use(authed...)

	protected.POST("/bin/lookup", middleware.RequireScope(jwt.ScopeLookup), lookupHandler.Lookup)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireScope(jwt.ScopeAdmin))
	if deps.AuditRepository != nil {
		admin.Use(middleware.AuditMiddleware(deps.AuditRepository))
		admin.GET("/audit-logs", handlers.NewAuditHandler(deps.AuditRepository).ListLogs)
	}
	admin.GET("/bin-ranges", binRangeHandler.ListRanges)
	admin.POST("/bin-ranges", binRangeHandler.CreateRange)
	admin.DELETE("/bin-ranges/:id", binRangeHandler.DeleteRange)

	if deps.Redis != nil {
		maintenanceHandler := handlers.NewMaintenanceHandler(deps.Redis)
		admin.GET("/maintenance", maintenanceHandler.GetStatus)
		admin.PUT("/maintenance", maintenanceHandler.SetStatus)
	}
}

func (deps Dependencies) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if deps.Database != nil {
		if err := deps.Database.Ping(ctx); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}

	if deps.Redis != nil {
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
