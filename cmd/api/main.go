package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/darisadam/cardbrand/internal/api"
	"github.com/darisadam/cardbrand/internal/config"
	"github.com/darisadam/cardbrand/internal/pkg/bincache"
	"github.com/darisadam/cardbrand/internal/pkg/binscan"
	"github.com/darisadam/cardbrand/internal/pkg/jwt"
	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/darisadam/cardbrand/internal/pkg/metrics"
	"github.com/darisadam/cardbrand/internal/repository"
	"github.com/darisadam/cardbrand/internal/service"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet
		logger.Init("development")
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	logger.Init(cfg.Env)
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.SetSystemInfo(api.Version, runtime.Version())

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// The lookup path degrades to the built-in table, so a cold database is not fatal.
	if err := db.Ping(); err != nil {
		logger.Warn("Database not reachable at startup", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer func() {
		_ = redisClient.Close()
	}()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("Redis not reachable at startup", zap.Error(err))
	}

	securityService, err := service.NewSecurityService(cfg.RSAPrivateKeyFile)
	if err != nil {
		logger.Fatal("Failed to initialise BIN encryption key", zap.Error(err))
	}

	binRangeRepo := repository.NewBinRangeRepository(db)
	cache := bincache.New(redisClient, cfg.CacheTTL)

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()

	var lookupOpts []service.LookupOption
	if cfg.BinScanThreshold > 0 {
		detector := binscan.NewDetector(redisClient, int64(cfg.BinScanThreshold), cfg.BinScanWindow)
		lookupOpts = append(lookupOpts, service.WithScanDetector(detector))
		go detector.Monitor(monitorCtx, time.Minute)
	}

	router := api.SetupRouter(api.Dependencies{
		LookupService:     service.NewLookupService(binRangeRepo, cache, securityService, nil, lookupOpts...),
		BinRangeService:   service.NewBinRangeService(binRangeRepo, cache),
		AuditRepository:   repository.NewAuditRepository(db),
		SecurityService:   securityService,
		JWTService:        jwt.NewJWTService(cfg.JWTSecret, cfg.JWTExpiryHours),
		Redis:             redisClient,
		Database:          binRangeRepo,
		CORSOrigins:       cfg.CORSOrigins,
		MaintenanceBypass: cfg.MaintenanceBypass,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopMonitor()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
