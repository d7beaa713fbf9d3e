// Command api is the Consumer Insights API server.
//
// Usage:
//
//	insights-api
//	API_PORT=8080 REDIS_URL=redis://localhost:6379/0 insights-api

// @title Consumer Insights API
// @version 1.0.0
// @description Consumer behavior analytics: RFM scoring, purchase patterns, reorder prediction and churn risk, computed from a consistent snapshot of the retail database.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Consumer Insights
// @license.name MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/albapepper/consumer-insights/internal/api"
	"github.com/albapepper/consumer-insights/internal/cache"
	"github.com/albapepper/consumer-insights/internal/config"
	"github.com/albapepper/consumer-insights/internal/db"
	"github.com/albapepper/consumer-insights/internal/listener"
	"github.com/albapepper/consumer-insights/internal/maintenance"
	"github.com/albapepper/consumer-insights/internal/store"

	_ "github.com/albapepper/consumer-insights/docs" // swagger docs
)

const evictionInterval = time.Minute

const (
	backendRedis  = "redis"
	backendMemory = "memory"
)

// cacheBackend picks Redis only when caching is enabled and REDIS_URL is
// set. A disabled cache is always a no-op Memory store.
func cacheBackend(cfg *config.Config) string {
	if cfg.CacheEnabled && cfg.RedisURL != "" {
		return backendRedis
	}
	return backendMemory
}

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	g, gctx := errgroup.WithContext(ctx)

	var appCache cache.Store
	switch cacheBackend(cfg) {
	case backendRedis:
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		appCache = cache.NewRedis(client)
		logger.Info("Cache initialized", "backend", backendRedis, "ttl", cfg.CacheTTL)
	default:
		if cfg.RedisURL != "" {
			logger.Info("REDIS_URL ignored because caching is disabled (CACHE_ENABLED=false)")
		}
		mem := cache.NewMemory(cfg.CacheEnabled)
		appCache = mem
		if cfg.CacheEnabled {
			g.Go(func() error { return mem.RunEviction(gctx, evictionInterval) })
		}
		logger.Info("Cache initialized", "backend", backendMemory, "enabled", cfg.CacheEnabled, "ttl", cfg.CacheTTL)
	}

	source := store.NewPGSource(pool.Pool)

	if cfg.ListenerEnabled {
		g.Go(func() error { return listener.Start(gctx, cfg.DatabaseURL, appCache, logger) })
	} else {
		logger.Info("Change listener disabled (LISTENER_ENABLED=false)")
	}

	g.Go(func() error {
		deps := maintenance.Deps{DB: pool.Pool, Source: source, Cache: appCache}
		return maintenance.Start(gctx, deps, maintenance.FromAppConfig(cfg), logger)
	})

	router := api.NewRouter(source, pool, appCache, cfg, logger)
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g.Go(func() error {
		logger.Info("Starting Consumer Insights API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
