// batch captions and tags a directory tree of JPEG images in place, using
// the same caption service and metadata codec as the API server.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/karrick/godirwalk"

	"github.com/calen/phototagger/internal/config"
	"github.com/calen/phototagger/internal/domain"
	"github.com/calen/phototagger/internal/logger"
	"github.com/calen/phototagger/internal/metadata"
	"github.com/calen/phototagger/internal/service"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "phototagger-batch",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	dryRun := flag.Bool("n", false, "Dry-run mode, don't write metadata")
	overwrite := flag.Bool("o", false, "Re-caption images that already carry keywords")
	limit := flag.Int("limit", 0, "Maximum number of images to process (0 = no limit)")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if flag.NArg() == 0 {
		appLogger.Fatal("No input directories provided. Usage: batch [-n] [-o] [-limit N] <dir> [dir ...]")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if cfg.Provider.APIKey == "" {
		appLogger.Fatal("No provider API key configured; set OPENROUTER_API_KEY")
	}

	codec, err := metadata.NewCodec()
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to start metadata codec")
	}
	defer codec.Close()

	captions := service.NewCaptionService(&service.CaptionConfig{
		Model:       cfg.Provider.Model,
		APIKey:      cfg.Provider.APIKey,
		BaseURL:     cfg.Provider.BaseURL,
		Referer:     cfg.Provider.Referer,
		Title:       cfg.Provider.Title,
		Timeout:     cfg.Provider.Timeout(),
		MaxKeywords: cfg.Caption.MaxKeywords,
	})

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	processed, skipped, failed := 0, 0, 0

	for _, root := range flag.Args() {
		err := godirwalk.Walk(root, &godirwalk.Options{
			Callback: func(path string, de *godirwalk.Dirent) error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if de.IsDir() || !isJPEG(path) {
					return nil
				}
				if *limit > 0 && processed >= *limit {
					return nil
				}

				switch tagImage(ctx, appLogger, codec, captions, path, *overwrite, *dryRun) {
				case tagged:
					processed++
				case skippedExisting:
					skipped++
				case tagFailed:
					failed++
				}
				return nil
			},
			Unsorted: true,
		})
		if err != nil && ctx.Err() == nil {
			appLogger.WithError(err).WithField("dir", root).Error("Walk failed")
		}
	}

	appLogger.WithFields(logger.Fields{
		"processed": processed,
		"skipped":   skipped,
		"failed":    failed,
	}).Info("Batch tagging completed")
}

type tagResult int

const (
	tagged tagResult = iota
	skippedExisting
	tagFailed
)

func tagImage(ctx context.Context, log *logger.Logger, codec *metadata.Codec, captions *service.CaptionService, path string, overwrite, dryRun bool) tagResult {
	existing, err := codec.ReadFile(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Error("Read metadata failed")
		return tagFailed
	}
	if len(existing.Keywords) > 0 && !overwrite {
		log.WithField("path", path).Info("Already tagged, skipping")
		return skippedExisting
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Error("Read image failed")
		return tagFailed
	}

	generated, err := captions.Generate(ctx, data, "jpeg", existing.Caption)
	if err != nil {
		log.WithError(err).WithField("path", path).Error("Caption generation failed")
		return tagFailed
	}

	working := domain.NewWorkingSet(existing, generated, domain.DefaultMaxKeywords)
	log.WithFields(logger.Fields{
		"path":     path,
		"caption":  working.Caption,
		"keywords": working.Keywords,
	}).Info("Tagged image")

	if dryRun {
		return tagged
	}

	if err := codec.WriteFile(path, working.Snapshot()); err != nil {
		log.WithError(err).WithField("path", path).Error("Write metadata failed")
		return tagFailed
	}
	return tagged
}

func isJPEG(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg")
}
