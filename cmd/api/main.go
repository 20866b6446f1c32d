package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/yojanasetu/eligibility-engine/internal/adapters/http"
	"github.com/yojanasetu/eligibility-engine/internal/bootstrap"
	"github.com/yojanasetu/eligibility-engine/internal/config"
	"github.com/yojanasetu/eligibility-engine/internal/observability/logging"
	"github.com/yojanasetu/eligibility-engine/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("eligibility-api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	apiMetrics := metrics.NewAPIMetrics("eligibility-api")
	app.EligibilityUC.OnFallback(func() {
		apiMetrics.ObserveRelevanceFallback("eligibility-api")
	})
	router := httpadapter.NewRouter(httpadapter.RouterOptions{
		Checker:        app.EligibilityUC,
		Discovery:      app.EligibilityUC,
		Ranker:         app.EligibilityUC,
		Conversations:  app.ConversationUC,
		IntentSetter:   app.ConversationUC,
		Applications:   app.ApplicationUC,
		Profiles:       app.Profiles,
		Intents:        app.Reasoning,
		Explainer:      app.Reasoning,
		Metrics:        apiMetrics,
		Logger:         logger,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxInFlight:    cfg.MaxInFlight,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
