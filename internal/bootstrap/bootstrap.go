package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yojanasetu/eligibility-engine/internal/config"
	"github.com/yojanasetu/eligibility-engine/internal/core/usecase"
	"github.com/yojanasetu/eligibility-engine/internal/infrastructure/catalog/seed"
	"github.com/yojanasetu/eligibility-engine/internal/infrastructure/queue/nats"
	"github.com/yojanasetu/eligibility-engine/internal/infrastructure/reasoning/ollama"
	"github.com/yojanasetu/eligibility-engine/internal/infrastructure/repository/postgres"
	"github.com/yojanasetu/eligibility-engine/internal/infrastructure/resilience"
)

// App wires adapters to use cases. Both binaries share this assembly; the
// api mounts the HTTP surface on top, the worker subscribes to the queue.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue    *nats.Queue
	Schemes  *postgres.SchemeRepository
	Profiles *postgres.ProfileRepository

	EligibilityUC  *usecase.EligibilityUseCase
	ConversationUC *usecase.ConversationUseCase
	ApplicationUC  *usecase.ApplicationUseCase

	Reasoning *ollama.Client

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	schemes := postgres.NewSchemeRepository(db)
	profiles := postgres.NewProfileRepository(db)
	conversations := postgres.NewConversationRepository(db)
	applications := postgres.NewApplicationRepository(db)

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    cfg.RetryMaxAttempts,
		RetryInitialBackoff: cfg.RetryInitialBackoff,
		RetryMaxBackoff:     cfg.RetryMaxBackoff,
		BreakerEnabled:      cfg.BreakerEnabled,
	})

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	reasoning := ollama.New(cfg.ReasoningURL, cfg.ReasoningModel, executor)

	if cfg.CatalogSeedPath != "" {
		count, err := seed.Load(ctx, cfg.CatalogSeedPath, schemes, logger)
		if err != nil {
			queue.Close()
			_ = db.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		logger.Info("catalog seeded", "schemes", count, "path", cfg.CatalogSeedPath)
	}

	eligibilityUC := usecase.NewEligibilityUseCase(schemes, reasoning, cfg.ScoreTimeout, logger)
	conversationUC := usecase.NewConversationUseCase(conversations, cfg.ConversationTTL)
	applicationUC := usecase.NewApplicationUseCase(applications, schemes, queue, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:    queue,
		Schemes:  schemes,
		Profiles: profiles,

		EligibilityUC:  eligibilityUC,
		ConversationUC: conversationUC,
		ApplicationUC:  applicationUC,

		Reasoning: reasoning,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
