package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/TNRProtography/solar-dashboard/internal/adapter/donki"
	httpadapter "github.com/TNRProtography/solar-dashboard/internal/adapter/http"
	kafkaadapter "github.com/TNRProtography/solar-dashboard/internal/adapter/kafka"
	"github.com/TNRProtography/solar-dashboard/internal/config"
	"github.com/TNRProtography/solar-dashboard/internal/observability"
	"github.com/TNRProtography/solar-dashboard/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	fetcher := donki.NewClient(cfg, metrics, logger)

	// Alert sink is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var alerts pipeline.AlertPublisher
	var alertWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		alertWriter = kafkaadapter.NewWriter(cfg, logger)
		alerts = alertWriter
		logger.Info("kafka alerts enabled",
			"topic", cfg.KafkaAlertTopic, "max_score", int(cfg.AlertMaxScore))
	} else {
		logger.Info("kafka alerts disabled")
	}

	p := pipeline.New(fetcher, alerts, logger, metrics, clockwork.NewRealClock(), pipeline.Options{
		RefreshInterval: cfg.RefreshInterval,
		WindowDays:      cfg.FetchWindowDays,
		AlertMaxScore:   cfg.AlertMaxScore,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("refresh loop error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if alertWriter != nil {
		if err := alertWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
