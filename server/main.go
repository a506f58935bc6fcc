package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phambaophuc/image-upscaler/internal/config"
	"github.com/phambaophuc/image-upscaler/internal/http/handlers"
	"github.com/phambaophuc/image-upscaler/internal/http/routes"
	"github.com/phambaophuc/image-upscaler/internal/parallel"
	"github.com/phambaophuc/image-upscaler/internal/services/processor"
	"github.com/phambaophuc/image-upscaler/internal/services/queue"
	"github.com/phambaophuc/image-upscaler/internal/services/storage"
	"github.com/phambaophuc/image-upscaler/internal/upscaler"
	"go.uber.org/zap"
)

const cacheCleanupInterval = time.Hour

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize the upscaling engine
	pool := parallel.NewPool(cfg.Upscale.Workers, logger)
	defer pool.Close()

	primary := upscaler.New(pool,
		upscaler.WithLogger(logger),
		upscaler.WithLanczosWindow(cfg.Upscale.LanczosWindow),
	)
	fallback := upscaler.New(parallel.Serial{},
		upscaler.WithLogger(logger),
		upscaler.WithLanczosWindow(cfg.Upscale.LanczosWindow),
	)
	imageProcessor := processor.NewImageProcessor(primary, fallback, cfg.Upscale, logger)

	// Initialize services
	storageService, err := storage.NewStorageService(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage service", zap.Error(err))
	}
	defer storageService.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var jobQueue handlers.JobQueue
	queueService, err := queue.NewQueueService(cfg.RabbitMQ, cfg.Storage, imageProcessor, storageService, logger)
	if err != nil {
		// Continue without queue service for synchronous upscaling
		logger.Warn("Failed to initialize queue service", zap.Error(err))
	} else {
		defer queueService.Close()
		jobQueue = queueService

		for i := range cfg.RabbitMQ.Workers {
			if err := queueService.StartWorker(ctx, i+1); err != nil {
				logger.Error("Failed to start worker", zap.Int("worker_id", i+1), zap.Error(err))
			}
		}
	}

	go runCacheCleanup(ctx, storageService, logger)

	// Initialize handlers
	imageHandler := handlers.NewImageHandler(imageProcessor, storageService, jobQueue, pool, logger, cfg)

	router := routes.NewRouter(imageHandler, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.Int("upscale_workers", pool.Workers()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func runCacheCleanup(ctx context.Context, s *storage.StorageService, logger *zap.Logger) {
	ticker := time.NewTicker(cacheCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.CleanupCache(ctx); err != nil {
				logger.Warn("Cache cleanup failed", zap.Error(err))
			}
		}
	}
}
