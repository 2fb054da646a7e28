package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"merithub/internal/cache"
	"merithub/internal/config"
	"merithub/internal/database"
	"merithub/internal/events"
	"merithub/internal/repositories"
	"merithub/internal/router"
	"merithub/internal/services"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging, cfg.Server.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting achievement engine",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Database
	dbManager, err := database.NewManager(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	healthCtx, healthCancel := context.WithTimeout(context.Background(), 10*time.Second)
	health := dbManager.Health(healthCtx)
	healthCancel()
	if health.Status != "healthy" {
		logger.Fatal("Database is not healthy", zap.String("status", health.Status))
	}
	logger.Info("Database initialized")

	// Cache
	cacheProvider, err := cache.NewCache(&cfg.Cache, logger)
	if err != nil {
		logger.Fatal("Failed to create cache", zap.Error(err))
	}
	defer cacheProvider.Close()

	// Event bus
	bus := events.NewInMemoryEventBus(events.DefaultEventBusConfig(), logger)
	if err := bus.Start(context.Background()); err != nil {
		logger.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Repositories and services
	repos, err := repositories.NewCollection(dbManager, logger)
	if err != nil {
		logger.Fatal("Failed to initialize repositories", zap.Error(err))
	}
	serviceCollection, err := services.NewCollection(repos, cacheProvider, bus, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	handler := router.New(router.Dependencies{
		Services: serviceCollection,
		DB:       dbManager,
		Cache:    cacheProvider,
		Bus:      bus,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("HTTP server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		logger.Error("Event bus stop failed", zap.Error(err))
	}

	metrics := dbManager.Metrics()
	logger.Info("Final database metrics",
		zap.Int64("query_count", metrics.QueryCount),
		zap.Int64("error_count", metrics.ErrorCount),
		zap.Int64("slow_query_count", metrics.SlowQueryCount),
		zap.Duration("avg_query_duration", metrics.AvgQueryDuration),
	)
	logger.Info("Shutdown completed")
}

// initLogger builds the structured logger from configuration.
func initLogger(cfg config.LoggingConfig, environment string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if environment == "production" || cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = level

	return zapCfg.Build()
}
