package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"delivery-options-backend/config"
	"delivery-options-backend/internal/api"
	"delivery-options-backend/internal/audit"
	"delivery-options-backend/internal/db"
	"delivery-options-backend/internal/logging"
	"delivery-options-backend/internal/session"
	"delivery-options-backend/internal/store"
	"delivery-options-backend/internal/upstream"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("path", configPath))

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	logger.Info("database initialized", zap.String("driver", cfg.Database.Driver))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	// Acknowledged saves are written off the session loops
	var recorder session.Recorder
	var pool *audit.WorkerPool
	if cfg.Audit.Enabled {
		pool = audit.NewWorkerPool(cfg.Audit.WorkerPoolSize, cfg.Audit.QueueSize, appStore, logger)
		pool.Start(ctx)
		recorder = pool
		logger.Info("audit worker pool started", zap.Int("workers", cfg.Audit.WorkerPoolSize))
	}

	client := upstream.NewClient(cfg.Upstream, logger)
	registry := session.NewRegistry(cfg, client, recorder, logger)

	router := api.NewRouter(registry, appStore, cfg, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server Shutdown", zap.Error(err))
	}

	registry.Close()
	cancel()
	if pool != nil {
		pool.Wait()
	}

	logger.Info("server gracefully stopped")
}
