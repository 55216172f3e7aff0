package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/hydrogen-sites/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/hydrogen-sites/internal/adapter/kafka"
	"github.com/couchcryptid/hydrogen-sites/internal/config"
	"github.com/couchcryptid/hydrogen-sites/internal/observability"
	"github.com/couchcryptid/hydrogen-sites/internal/pipeline"
	"github.com/couchcryptid/hydrogen-sites/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	sites, err := store.Load(cfg.SitesFile)
	if err != nil {
		logger.Error("failed to load site dataset", "error", err, "path", cfg.SitesFile)
		os.Exit(1)
	}
	for _, f := range sites.Check() {
		logger.Warn("dataset check", "site_id", f.SiteID, "check", f.Check, "message", f.Message)
	}
	logger.Info("site dataset loaded", "sites", sites.Len(), "path", cfg.SitesFile)

	analyzer := pipeline.NewAnalyzer(sites, cfg.TopN, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, analyzer, cfg.CORSAllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the request pipeline (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		handler := pipeline.NewRequestHandler(analyzer, logger)
		p := pipeline.New(reader, handler, writer, logger, metrics, cfg.BatchSize)

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
		logger.Info("kafka request pipeline enabled",
			"request_topic", cfg.KafkaRequestTopic,
			"report_topic", cfg.KafkaReportTopic,
		)
	} else {
		logger.Info("kafka request pipeline disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
