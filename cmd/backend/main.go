// Package main provides the entry point for the Shortly URL shortener service.
//
//	@title			Shortly API
//	@version		1.0.0
//	@description	URL shortener: link registry and redirect resolver.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Authorization header. Format: "Bearer {token}"
package main

import (
	"Shortly-Backend/internal/analytics"
	"Shortly-Backend/internal/app"
	"Shortly-Backend/internal/auth"
	"Shortly-Backend/internal/config"
	httpHandler "Shortly-Backend/internal/handler/http"
	"Shortly-Backend/internal/service"
	"Shortly-Backend/pkg/logger"
	"Shortly-Backend/pkg/useragent"
	"context"
	"errors"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	_ "Shortly-Backend/docs" // Import swagger docs
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting shortly service",
		zap.String("env", cfg.Env),
		zap.String("db_driver", cfg.Database.Driver))

	storage, err := app.OpenStorage(&cfg.Database, cfg.Database.AutoMigrate, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Error("failed to close storage", zap.Error(err))
		}
	}()

	registry, err := app.NewRegistry(cfg, storage, log)
	if err != nil {
		log.Fatal("failed to create link registry", zap.Error(err))
	}

	// Обогащение кликов информацией об устройстве
	var processor *analytics.Processor
	if cfg.Analytics.Enabled {
		parser, err := useragent.NewParser(cfg.UserAgent.RegexesPath, log)
		if err != nil {
			log.Fatal("failed to initialize User-Agent parser", zap.Error(err))
		}
		processor = analytics.NewProcessor(storage, parser, log, analytics.ConfigFrom(&cfg.Analytics))
		if err := processor.Start(); err != nil {
			log.Fatal("failed to start analytics processor", zap.Error(err))
		}
	} else {
		log.Info("click enrichment disabled")
	}

	deps := httpHandler.Deps{
		Storage:        storage,
		Registry:       registry,
		JWTService:     auth.NewJWTService(&cfg.Auth),
		BaseURL:        cfg.URLShortener.BaseURL,
		AllowedOrigins: cfg.HTTPServer.AllowedOrigins,
		MaxBodyBytes:   cfg.HTTPServer.MaxBodyBytes,
	}
	if processor != nil {
		deps.Resolver = service.NewResolver(registry, processor, cfg.URLShortener.CacheTTL, log)
		deps.Analytics = processor
	} else {
		deps.Resolver = service.NewResolver(registry, nil, cfg.URLShortener.CacheTTL, log)
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      httpHandler.NewServer(deps, log).SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down shortly service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	// Воркеры останавливаются после сервера, чтобы принять последние клики
	if processor != nil {
		if err := processor.Stop(); err != nil {
			log.Error("failed to stop analytics processor", zap.Error(err))
		}
	}
}
