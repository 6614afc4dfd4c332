package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/api"
	"github.com/akhilmk-dev/menahub/internal/cache"
	"github.com/akhilmk-dev/menahub/internal/config"
	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/internal/events"
	"github.com/akhilmk-dev/menahub/internal/logger"
	"github.com/akhilmk-dev/menahub/internal/metrics"
	"github.com/akhilmk-dev/menahub/internal/repository/postgres"
	"github.com/akhilmk-dev/menahub/internal/service"
	"github.com/akhilmk-dev/menahub/internal/shopify"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logger.New(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting order API server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(cfg.Database, cfg.Database.MigrationsPath, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	repos := postgres.NewRepositories(db, logger)

	// Vendor metadata cache; the service runs without it when Redis is not configured
	vendorCache := cache.NewNopVendorCache()
	if cfg.Redis.Addr != "" {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.NewRedisClient(pingCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			logger.Warn("Redis unavailable, vendor cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			defer client.Close()
			vendorCache = cache.NewRedisVendorCache(client, cfg.Redis.VendorCacheTTL, logger)
			logger.Info("Vendor cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	publisher := events.NewNopTimelinePublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaTimelinePublisher(cfg.Kafka.Brokers, cfg.Kafka.TimelineTopic, logger)
		logger.Info("Publishing timeline events",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.TimelineTopic),
		)
	}
	defer publisher.Close()

	m := metrics.New()

	gateway := service.NewShopifyService(shopify.NewClient(cfg.Shopify, logger), vendorCache, logger)
	policy := domain.EditPolicy{ResurrectDeleted: cfg.Reconcile.ResurrectDeleted}

	reconciler := service.NewOrderReconciler(repos.Order, gateway, policy, m, logger)
	coordinator := service.NewFulfillmentCoordinator(repos.Order, gateway, m, logger)
	timeline := service.NewTimelineService(repos.OrderTimeline, publisher, logger)

	deps := api.Dependencies{
		Orders:  service.NewOrderService(repos.Order, gateway, reconciler, coordinator, timeline, logger),
		Queries: service.NewQueryService(repos, timeline, logger),
		Access:  service.NewAccessService(repos, cfg.Auth.AdminUserID, logger),
		Metrics: m,
	}

	router := api.NewRouter(cfg, deps, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
