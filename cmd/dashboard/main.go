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

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/wildfire-price-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/wildfire-price-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/chart"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/config"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/dashboard"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/loader"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/mapview"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/observability"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/pipeline"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	style, err := chart.LoadStyle(cfg.ChartStyleFile)
	if err != nil {
		logger.Error("failed to load chart style", "path", cfg.ChartStyleFile, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := buildOptions(cfg, style, clockwork.NewRealClock(), metrics, logger)

	// Place search fallback (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		opts.Finder = mapbox.NewCachedFinder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox place search enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox place search disabled")
	}

	// Interaction events (feature-flagged via KAFKA_ENABLED).
	var (
		writer    *kafkaadapter.Writer
		publisher *pipeline.Publisher
		published = make(chan struct{})
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = pipeline.New(writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval)
		opts.Events = publisher
		go func() {
			defer close(published)
			if err := publisher.Run(ctx); err != nil {
				logger.Error("publisher error", "error", err)
			}
		}()
	} else {
		close(published)
		logger.Info("interaction publishing disabled")
	}

	holder := &dashboard.Holder{}
	sessions := dashboard.NewSessions(cfg.SessionCacheSize, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, holder, sessions, cfg.CORSOrigins, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load datasets in the background; the service reports not-ready until done.
	go load(ctx, cfg, opts, holder, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-published:
	case <-shutdownCtx.Done():
		logger.Warn("publisher did not drain before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// buildOptions maps service config onto dashboard options. Place search and
// event publishing are attached by the caller.
func buildOptions(cfg *config.Config, style chart.Style, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) dashboard.Options {
	return dashboard.Options{
		MissingPolicy: cfg.MissingPolicy,
		Viewport: mapview.Viewport{
			Width:         float64(cfg.ViewportWidth),
			Height:        float64(cfg.ViewportHeight),
			SidebarOffset: float64(cfg.SidebarOffset),
		},
		ZoomDuration:    cfg.ZoomDuration,
		Style:           style,
		SuggestionLimit: cfg.SuggestionLimit,
		DefaultYear:     cfg.DefaultYear,
		Clock:           clock,
		Metrics:         metrics,
		Logger:          logger,
	}
}

func load(ctx context.Context, cfg *config.Config, opts dashboard.Options, holder *dashboard.Holder, logger *slog.Logger) {
	start := time.Now()
	b, err := loader.New(nil, logger).Load(ctx, loader.Sources{
		CountyCSV:     cfg.CountyCSV,
		CityCSV:       cfg.CityCSV,
		CountyGeoJSON: cfg.CountyGeoJSON,
		CityGeoJSON:   cfg.CityGeoJSON,
		FireGeoJSON:   cfg.FireGeoJSON,
	})
	if err == nil {
		var d *dashboard.Dashboard
		if d, err = dashboard.New(b, opts); err == nil {
			holder.Set(d)
			opts.Metrics.DatasetsReady.Set(1)
			opts.Metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
			logger.Info("dashboard ready", "duration", time.Since(start))
			return
		}
		err = errors.Join(domain.ErrDatasetLoad, err)
	}
	holder.Fail(err)
	logger.Error("dataset load failed; dashboard stays inert", "error", err)
}
