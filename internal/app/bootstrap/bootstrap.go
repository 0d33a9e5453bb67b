package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/robfig/cron/v3"

	votingsessions "coopvotes/contexts/governance/voting-sessions"
	"coopvotes/contexts/governance/voting-sessions/adapters/eligibility"
	postgresadapter "coopvotes/contexts/governance/voting-sessions/adapters/postgres"
	queueadapter "coopvotes/contexts/governance/voting-sessions/adapters/queue"
	"coopvotes/contexts/governance/voting-sessions/application/workers"
	"coopvotes/internal/platform/config"
	"coopvotes/internal/platform/db"
	"coopvotes/internal/platform/httpserver"
	"coopvotes/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

// The API process hosts the closure broker and its consumer: delayed closure
// instructions are produced and consumed in the same process. The worker
// process runs the reconciliation sweep that heals sessions whose instruction
// was lost.

type APIApp struct {
	server   *httpserver.Server
	consumer workers.ClosureConsumer
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	reconciler workers.ClosureReconciler
	schedule   string
	postgres   *db.Postgres
	logger     *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(); err != nil {
		_ = pg.Close()
		return nil, err
	}

	broker := messaging.NewBroker(messaging.RetryPolicy{
		MaxAttempts: cfg.ClosureMaxAttempts,
		Initial:     cfg.ClosureInitialBackoff,
		Factor:      2.0,
		Max:         cfg.ClosureMaxBackoff,
	}, logger)
	broker.DeclareQueue(messaging.RouteKeySessionClose, messaging.QueueSessionClose, messaging.QueueSessionCloseDLQ)

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := votingsessions.NewModule(votingsessions.Dependencies{
		Proposals: repo,
		Sessions:  repo,
		Votes:     repo,
		Scheduler: queueadapter.Producer{
			Broker:     broker,
			RoutingKey: messaging.RouteKeySessionClose,
			Logger:     logger,
		},
		Eligibility: &eligibility.Client{
			BaseURL:    cfg.EligibilityBaseURL,
			Enabled:    cfg.EligibilityEnabled,
			HTTPClient: &http.Client{Timeout: cfg.EligibilityTimeout},
			Logger:     logger,
		},
		Clock:       postgresadapter.SystemClock{},
		IDGen:       postgresadapter.UUIDGenerator{},
		BaseURL:     cfg.BaseURL,
		ContextPath: cfg.ContextPath,
		Logger:      logger,
	})

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server: server,
		consumer: workers.ClosureConsumer{
			Subscriber: broker,
			Sessions:   module.Sessions,
			Queue:      messaging.QueueSessionClose,
			Logger:     logger,
		},
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := votingsessions.NewModule(votingsessions.Dependencies{
		Proposals: repo,
		Sessions:  repo,
		Votes:     repo,
		Clock:     postgresadapter.SystemClock{},
		IDGen:     postgresadapter.UUIDGenerator{},
		BaseURL:   cfg.BaseURL,
		Logger:    logger,
	})

	return &WorkerApp{
		reconciler: module.Reconciler,
		schedule:   cfg.ReconcilerSchedule,
		postgres:   pg,
		logger:     logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if err := a.consumer.Start(ctx); err != nil {
		return err
	}
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(w.schedule, func() {
		if err := w.reconciler.RunOnce(ctx); err != nil {
			w.logger.Error("reconciliation sweep failed",
				"event", "bootstrap_reconciler_sweep_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	})
	if err != nil {
		return err
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"schedule", w.schedule,
	)

	if err := w.reconciler.RunOnce(ctx); err != nil {
		return err
	}

	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
