package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/tarpaulin-service/internal/config"
	"github.com/SAP-F-2025/tarpaulin-service/internal/events"
	"github.com/SAP-F-2025/tarpaulin-service/internal/handlers"
	"github.com/SAP-F-2025/tarpaulin-service/internal/identity"
	"github.com/SAP-F-2025/tarpaulin-service/internal/ratelimit"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories/objectstore"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/tarpaulin-service/internal/services"
	"github.com/SAP-F-2025/tarpaulin-service/internal/utils"
	"github.com/SAP-F-2025/tarpaulin-service/internal/validator"
	"github.com/SAP-F-2025/tarpaulin-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured); without it login attempts are counted
	// per process and course reads are not cached
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize Redis, continuing without it", "error", err)
			redisClient = nil
		}
	}

	// Initialize object storage
	blobs, err := objectstore.New(startCtx, cfg.Blob, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		Blob:        blobs,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// Initialize identity provider
	exchanger, inspector, err := identity.New(startCtx, cfg.Identity, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize identity provider: %v", err)
	}

	// Initialize event publisher
	publisher, err := events.NewPublisher(events.Config{
		KafkaBrokers: cfg.KafkaBrokers,
		Topic:        cfg.EventsTopic,
	}, slogLogger)
	if err != nil {
		logger.Warn("Kafka unavailable, publishing events in process", "error", err)
		publisher, err = events.NewPublisher(events.Config{Topic: cfg.EventsTopic}, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize event publisher: %v", err)
		}
	}

	// Initialize services
	serviceManager := services.NewServiceManager(services.Dependencies{
		Repositories: repoManager,
		Exchanger:    exchanger,
		Inspector:    inspector,
		Limiter: ratelimit.New(redisClient, ratelimit.Config{
			Limit:  cfg.LoginRateLimit,
			Window: cfg.LoginRateWindow,
		}),
		Publisher: publisher,
		Validator: validator.New(),
		Logger:    slogLogger,
	}, services.ServiceManagerConfig{ImagesEnabled: cfg.ImagesEnabled})
	if err := serviceManager.Initialize(startCtx); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	handlers.SetupMiddleware(router, logger, cfg.CORSAllowedOrigins)

	// Setup routes
	handlerManager := handlers.NewHandlerManager(serviceManager, logger, handlers.HandlerConfig{
		PublicBaseURL: cfg.PublicBaseURL,
		ImagesEnabled: cfg.ImagesEnabled,
	})
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown services; this closes the publisher and the database
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	// Close Redis connection
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("Server exited")
}
