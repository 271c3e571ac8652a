package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/weather-insights-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/weather-insights-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-insights-service/internal/adapter/openweather"
	"github.com/couchcryptid/weather-insights-service/internal/aggregate"
	"github.com/couchcryptid/weather-insights-service/internal/config"
	"github.com/couchcryptid/weather-insights-service/internal/insights"
	"github.com/couchcryptid/weather-insights-service/internal/observability"
	"github.com/couchcryptid/weather-insights-service/internal/refresh"
	"github.com/couchcryptid/weather-insights-service/internal/session"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	client := openweather.NewClient(cfg, metrics, logger)
	agg := aggregate.New(client, cfg.AggregateConcurrency, logger, metrics)
	svc := insights.NewService(agg, client, cfg.Cities, logger, metrics)
	board := insights.NewAlertBoard(clock)

	sinks := []refresh.Sink{board}
	var alertWriter *kafkaadapter.AlertWriter
	if cfg.KafkaEnabled {
		alertWriter = kafkaadapter.NewAlertWriter(cfg, metrics, logger)
		sinks = append(sinks, alertWriter)
		logger.Info("kafka alert sink enabled", "topic", cfg.KafkaAlertTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka alert sink disabled")
	}

	refresher := refresh.New(svc.Disasters, cfg.DisasterRefreshInterval, clock, logger, metrics, sinks...)
	sessions := session.NewStore(cfg.MaxSessions, cfg.SearchHistorySize)

	api := httpadapter.NewAPI(svc, board, refresher, sessions, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, refresher, api, logger)

	logger.Info("tracking cities",
		"count", len(cfg.Cities),
		"concurrency", cfg.AggregateConcurrency,
		"refresh_interval", cfg.DisasterRefreshInterval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start disaster refresh loop.
	refreshDone := make(chan struct{})
	go func() {
		defer close(refreshDone)
		if err := refresher.Run(ctx); err != nil {
			logger.Error("refresher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-refreshDone:
	case <-shutdownCtx.Done():
		logger.Warn("refresher did not stop before shutdown timeout")
	}

	if alertWriter != nil {
		if err := alertWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
