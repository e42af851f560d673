package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/smoke-zone-etl/internal/adapter/aqi"
	"github.com/couchcryptid/smoke-zone-etl/internal/adapter/archive"
	"github.com/couchcryptid/smoke-zone-etl/internal/adapter/feed"
	httpadapter "github.com/couchcryptid/smoke-zone-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/smoke-zone-etl/internal/adapter/kafka"
	"github.com/couchcryptid/smoke-zone-etl/internal/config"
	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
	"github.com/couchcryptid/smoke-zone-etl/internal/observability"
	"github.com/couchcryptid/smoke-zone-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	extractor := feed.NewClient(cfg, metrics, logger)
	computer := pipeline.NewZoneComputer(domain.DispersionParams{
		YellowExtension: cfg.YellowZoneExtension,
		ScalingFactor:   cfg.ScalingFactor,
	}, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	// The in-memory copy serves /zones when the archive is disabled.
	latest := &pipeline.LatestBatch{}
	loaders := []pipeline.BatchLoader{writer, latest}
	var zones httpadapter.ZoneSource = latest

	var store *archive.Store
	if cfg.ArchiveEnabled {
		store, err = archive.Open(ctx, cfg.ArchivePath)
		if err != nil {
			logger.Error("failed to open archive", "path", cfg.ArchivePath, "error", err)
			os.Exit(1)
		}
		pruned, err := store.Prune(ctx, time.Now().Add(-cfg.ArchiveRetention))
		if err != nil {
			logger.Warn("archive prune failed", "error", err)
		}
		logger.Info("archive enabled", "path", cfg.ArchivePath, "pruned_runs", pruned)
		loaders = append(loaders, store)
		zones = store
	} else {
		logger.Info("archive disabled")
	}

	p := pipeline.New(extractor, computer, loaders, logger, metrics, pipeline.Options{
		Interval:       cfg.RefreshInterval,
		MaxAttempts:    cfg.RetryMaxAttempts,
		InitialBackoff: cfg.RetryBackoff,
	})

	var ready httpadapter.ReadinessChecker = p
	opts := []httpadapter.Option{httpadapter.WithMetrics(metrics)}
	if store != nil {
		ready = httpadapter.ReadinessChecks{p, store}
		opts = append(opts, httpadapter.WithReports(store))
	}
	if cfg.AQIAPIKey != "" {
		opts = append(opts, httpadapter.WithAQI(aqi.NewClient(cfg.AQIURL, cfg.AQIAPIKey, cfg.FeedTimeout, logger)))
		logger.Info("air quality proxy enabled", "url", cfg.AQIURL)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, zones, logger, opts...)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("archive close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
