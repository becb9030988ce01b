// summaryd is the streaming summary daemon: it consumes raw seismic alert
// messages from Kafka, summarizes each into a geospatial report, and produces
// GeoJSON documents to the sink topic.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/quakewatch/alert-summary/internal/adapter/http"
	kafkaadapter "github.com/quakewatch/alert-summary/internal/adapter/kafka"
	"github.com/quakewatch/alert-summary/internal/config"
	"github.com/quakewatch/alert-summary/internal/domain"
	"github.com/quakewatch/alert-summary/internal/engine"
	"github.com/quakewatch/alert-summary/internal/observability"
	"github.com/quakewatch/alert-summary/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Service.LogLevel, cfg.Service.LogFormat)
	metrics := observability.NewMetrics()

	roster, err := loadRoster(cfg.Service.RosterPath)
	if err != nil {
		logger.Error("failed to load city roster", "path", cfg.Service.RosterPath, "error", err)
		os.Exit(1)
	}
	logger.Info("city roster loaded", "path", cfg.Service.RosterPath, "cities", len(roster))

	eng := engine.New(roster, cfg.Thresholds.ProximityOptions(), cfg.Thresholds.ContourOptions(), logger, metrics)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	summarizer := pipeline.NewSummarizer(eng)

	p := pipeline.New(reader, summarizer, writer, logger, metrics, cfg.Service.BatchSize)

	srv := httpadapter.NewServer(cfg.Service.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func loadRoster(path string) ([]domain.CityEntry, error) {
	if path == "" {
		return nil, errors.New("service.roster_path is not configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return domain.LoadRoster(f)
}
