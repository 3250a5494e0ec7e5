// Package main provides the entry point for the LinkPulse URL shortener
// backend: record storage, click telemetry and analytics aggregation
// behind a small HTTP API.
package main

import (
	"LinkPulse-Backend/internal/analytics"
	"LinkPulse-Backend/internal/cache"
	"LinkPulse-Backend/internal/config"
	"LinkPulse-Backend/internal/database"
	httpHandler "LinkPulse-Backend/internal/handler/http"
	"LinkPulse-Backend/internal/repository/postgres"
	"LinkPulse-Backend/internal/service"
	"LinkPulse-Backend/pkg/logger"
	"context"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting LinkPulse backend", zap.String("env", cfg.Env))

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations if enabled
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	// Optional redirect cache
	urlCache, err := cache.New(context.Background(), &cfg.Redis, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := urlCache.Close(); err != nil {
			log.Error("failed to close redis connection", zap.Error(err))
		}
	}()

	// Initialize storage, services and the analytics engine
	storage := postgres.New(db, log)
	shortener := service.NewShortener(storage, &cfg.Shortener)
	engine := analytics.NewEngine(storage, log)

	httpAPIServer := httpHandler.NewServer(storage, shortener, engine, urlCache, log, cfg.Shortener.BaseURL)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      httpAPIServer.SetupRoutes(),
		ReadTimeout:  parseDuration(cfg.HTTPServer.ReadTimeout, 30*time.Second),
		WriteTimeout: parseDuration(cfg.HTTPServer.WriteTimeout, 30*time.Second),
		IdleTimeout:  parseDuration(cfg.HTTPServer.IdleTimeout, 60*time.Second),
	}

	log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down LinkPulse backend...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
