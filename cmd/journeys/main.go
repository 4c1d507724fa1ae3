// Command journeys runs the letter-journey aggregation service: it reads the
// journeys table, derives the calendar, pair, and share tables, and hands
// each snapshot to the configured loaders while serving them over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/letter-journeys/internal/adapter/chart"
	"github.com/couchcryptid/letter-journeys/internal/adapter/csvfile"
	"github.com/couchcryptid/letter-journeys/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/letter-journeys/internal/adapter/kafka"
	"github.com/couchcryptid/letter-journeys/internal/adapter/mapbox"
	"github.com/couchcryptid/letter-journeys/internal/adapter/regions"
	"github.com/couchcryptid/letter-journeys/internal/config"
	"github.com/couchcryptid/letter-journeys/internal/observability"
	"github.com/couchcryptid/letter-journeys/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	opts := []pipeline.TransformerOption{pipeline.WithDateRange(cfg.DateFrom, cfg.DateTo)}

	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger)
		opts = append(opts, pipeline.WithGeocoder(mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)))
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	if cfg.RegionsPath != "" {
		counter, err := regions.Load(cfg.RegionsPath)
		if err != nil {
			logger.Error("failed to load regions", "path", cfg.RegionsPath, "error", err)
			os.Exit(1)
		}
		opts = append(opts, pipeline.WithRegionCounter(counter))
		logger.Info("region counting enabled", "regions", len(counter.Regions()))
	}

	var loaders []pipeline.Loader
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, writer)
		logger.Info("kafka loader enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	}
	if cfg.ChartDir != "" {
		loaders = append(loaders, chart.NewWriter(cfg.ChartDir, logger))
		logger.Info("chart loader enabled", "dir", cfg.ChartDir)
	}

	reader := csvfile.NewReader(cfg.InputPath, logger)
	transformer := pipeline.NewTransformer(logger, metrics, opts...)

	p := pipeline.New(reader, transformer, loaders, logger, metrics, cfg.RefreshInterval)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start aggregation pipeline.
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
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
