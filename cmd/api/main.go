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
	httpadapter "github.com/powerviz/plant-data-api/internal/adapter/http"
	kafkaadapter "github.com/powerviz/plant-data-api/internal/adapter/kafka"
	minioadapter "github.com/powerviz/plant-data-api/internal/adapter/minio"
	s3adapter "github.com/powerviz/plant-data-api/internal/adapter/s3"
	"github.com/powerviz/plant-data-api/internal/config"
	"github.com/powerviz/plant-data-api/internal/dataset"
	"github.com/powerviz/plant-data-api/internal/domain"
	"github.com/powerviz/plant-data-api/internal/observability"
	"github.com/powerviz/plant-data-api/internal/pipeline"
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

	// Select the store backend by endpoint: AWS S3 for amazonaws.com
	// endpoints, MinIO otherwise.
	var store domain.BlobStore
	if cfg.UseAWS() {
		store, err = s3adapter.New(ctx, cfg, logger)
	} else {
		store, err = minioadapter.New(cfg, logger)
	}
	if err != nil {
		logger.Error("failed to connect to object store", "endpoint", cfg.StoreEndpoint, "error", err)
		os.Exit(1)
	}

	audit := observability.NewMultiSink(logger, metrics)
	audit.Add("log", observability.NewLogAuditSink(logger))
	var auditWriter *kafkaadapter.AuditWriter
	if cfg.AuditKafkaEnabled() {
		auditWriter = kafkaadapter.NewAuditWriter(cfg, logger)
		audit.Add("kafka", auditWriter)
		logger.Info("kafka audit publishing enabled", "topic", cfg.AuditKafkaTopic)
	}

	cache := dataset.NewCache(cfg.CacheTTL, clockwork.NewRealClock(), metrics)
	consolidator := dataset.NewConsolidator(store, logger, metrics)
	states := dataset.NewStateIndex(logger)

	svc := pipeline.New(store, cache, consolidator, states, audit, metrics, logger, cfg.ExcelSheet)

	srv, err := httpadapter.NewServer(cfg, svc, audit, logger)
	if err != nil {
		logger.Error("failed to build http server", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if auditWriter != nil {
		if err := auditWriter.Close(); err != nil {
			logger.Error("kafka audit writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
