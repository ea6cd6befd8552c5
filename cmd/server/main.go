// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CHOISC1208/psi-erp/internal/api"
	"github.com/CHOISC1208/psi-erp/internal/cache"
	"github.com/CHOISC1208/psi-erp/internal/config"
	"github.com/CHOISC1208/psi-erp/internal/report"
	"github.com/CHOISC1208/psi-erp/internal/repository/postgres"
	"github.com/CHOISC1208/psi-erp/internal/service"
	"github.com/CHOISC1208/psi-erp/internal/storage"
	"github.com/CHOISC1208/psi-erp/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize matrix cache; a broken Redis must not take the API down.
	matrixCache := cache.NewNoopMatrixCache()
	if cfg.Cache.Enabled {
		if redisCache, err := cache.NewMatrixCache(cfg.Cache); err != nil {
			logger.Log.Warn().Err(err).Msg("Redis unavailable, matrix cache disabled")
		} else {
			matrixCache = redisCache
		}
	}

	// Initialize object storage for published reports
	var objectStore storage.ObjectStorage
	if cfg.Storage.Enabled {
		minioClient, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Object storage unavailable, reports stay inline")
		} else {
			objectStore = minioClient
		}
	}

	// Initialize repositories
	sessionRepo := postgres.NewSessionRepository(db)
	psiRepo := postgres.NewPSIRepository(db)
	planRepo := postgres.NewPlanRepository(db)
	policyRepo := postgres.NewPolicyRepository(db)
	masterRepo := postgres.NewMasterRepository(db)
	channelTransferRepo := postgres.NewChannelTransferRepository(db)

	// Initialize services
	reportService, err := service.NewReportService(psiRepo, objectStore, report.SettingsFromConfig(cfg.Report))
	if err != nil {
		log.Fatalf("Failed to initialize report service: %v", err)
	}
	services := &api.Services{
		SessionService:         service.NewSessionService(sessionRepo),
		PSIService:             service.NewPSIService(psiRepo, matrixCache),
		TransferService:        service.NewTransferService(planRepo, psiRepo, masterRepo, policyRepo, matrixCache),
		PolicyService:          service.NewPolicyService(policyRepo),
		MasterService:          service.NewMasterService(masterRepo),
		ChannelTransferService: service.NewChannelTransferService(channelTransferRepo, matrixCache),
		ReportService:          reportService,
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
