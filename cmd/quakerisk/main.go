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

	"github.com/seismonet/quake-risk-service/internal/adapter/httpapi"
	kafkaadapter "github.com/seismonet/quake-risk-service/internal/adapter/kafka"
	"github.com/seismonet/quake-risk-service/internal/adapter/postgres"
	"github.com/seismonet/quake-risk-service/internal/adapter/usgs"
	"github.com/seismonet/quake-risk-service/internal/assessor"
	"github.com/seismonet/quake-risk-service/internal/config"
	"github.com/seismonet/quake-risk-service/internal/ingestor"
	"github.com/seismonet/quake-risk-service/internal/observability"
	"github.com/seismonet/quake-risk-service/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.Connect(ctx, postgres.Config{
		ConnString:     cfg.DatabaseURL,
		MigrationsPath: cfg.MigrationsPath,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	feed := usgs.NewClient(cfg.USGSBaseURL, cfg.USGSTimeout, logger)

	// Kafka sink is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var sink ingestor.EventSink
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		sink = writer
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka sink disabled")
	}

	ing := ingestor.New(feed, store, sink, logger, metrics, ingestor.Config{
		Lookback:     time.Duration(cfg.FetchLookbackDays) * 24 * time.Hour,
		MinMagnitude: cfg.MinMagnitude,
		FetchLimit:   cfg.FetchLimit,
	})

	assess := assessor.New(store, store, logger, metrics, assessor.Config{
		GridSize: cfg.GridSize,
		Lookback: time.Duration(cfg.RiskLookbackDays) * 24 * time.Hour,
	})

	sched := scheduler.New(ing.FetchAndStore, assess.Refresh, logger, scheduler.Config{
		FetchInterval:   cfg.FetchInterval,
		RefreshInterval: cfg.RefreshInterval,
	})

	srv := httpapi.NewServer(cfg.HTTPAddr, httpapi.Config{
		Store:   store,
		Ingest:  ing.FetchAndStore,
		Refresh: assess.Refresh,
		Ready:   assess,
	}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the fetch/refresh loop.
	go func() {
		if err := sched.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
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
