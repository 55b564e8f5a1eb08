package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calen/phototagger/internal/api"
	"github.com/calen/phototagger/internal/config"
	"github.com/calen/phototagger/internal/logger"
	"github.com/calen/phototagger/internal/metadata"
	"github.com/calen/phototagger/internal/relay"
	"github.com/calen/phototagger/internal/service"
	"github.com/calen/phototagger/internal/storage"
)

func main() {
	// Initialize logger first
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	if cfg.Provider.APIKey == "" {
		appLogger.Warn("No provider API key configured; caption generation will fail until OPENROUTER_API_KEY is set")
	}

	// Start the exiftool sidecar used for metadata read/write
	codec, err := metadata.NewCodec()
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to start metadata codec")
	}
	defer codec.Close()

	// Initialize services
	captionService := service.NewCaptionService(&service.CaptionConfig{
		Model:       cfg.Provider.Model,
		APIKey:      cfg.Provider.APIKey,
		BaseURL:     cfg.Provider.BaseURL,
		Referer:     cfg.Provider.Referer,
		Title:       cfg.Provider.Title,
		Timeout:     cfg.Provider.Timeout(),
		MaxKeywords: cfg.Caption.MaxKeywords,
	})

	sessionService := service.NewSessionService(
		storage.NewMemoryStore(),
		captionService,
		codec,
		&service.SessionConfig{
			MaxUploadBytes: cfg.Upload.MaxBytes,
			MaxKeywords:    cfg.Caption.MaxKeywords,
		},
	)

	forwarder := relay.New(&relay.Config{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Referer: cfg.Provider.Referer,
		Title:   cfg.Provider.Title,
		Timeout: cfg.Provider.Timeout(),
	})

	// Setup router
	router := api.SetupRouter(sessionService, forwarder, cfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port":  cfg.Server.Port,
			"mode":  cfg.Server.Mode,
			"model": cfg.Provider.Model,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
