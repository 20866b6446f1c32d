package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/yojanasetu/eligibility-engine/internal/bootstrap"
	"github.com/yojanasetu/eligibility-engine/internal/config"
	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
	"github.com/yojanasetu/eligibility-engine/internal/infrastructure/export/excel"
	"github.com/yojanasetu/eligibility-engine/internal/observability/logging"
	"github.com/yojanasetu/eligibility-engine/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("eligibility-worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if err := os.MkdirAll(filepath.Dir(cfg.ReportPath), 0o755); err != nil {
		log.Fatalf("create report directory: %v", err)
	}
	ledger, err := excel.OpenLedger(cfg.ReportPath)
	if err != nil {
		log.Fatalf("open application ledger: %v", err)
	}
	defer ledger.Close()

	workerMetrics := metrics.NewWorkerMetrics("eligibility-worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("worker metrics server error: %v", err)
		}
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeApplicationEvents(ctx, func(handlerCtx context.Context, event domain.ApplicationEvent) error {
		start := time.Now()
		workerMetrics.ObserveLag("eligibility-worker", time.Since(event.OccurredAt))

		appendErr := ledger.Append(event)
		result := "ok"
		if appendErr != nil {
			result = "error"
		}
		workerMetrics.ObserveEvent("eligibility-worker", string(event.Status), result, time.Since(start))

		if appendErr != nil {
			return appendErr
		}
		logger.Info("application event recorded",
			"application_id", event.ApplicationID,
			"scheme_id", event.SchemeID,
			"status", event.Status)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("worker metrics shutdown error", "error", err)
	}
}
