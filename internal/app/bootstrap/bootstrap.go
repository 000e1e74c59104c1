package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	witnessconsensus "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/adapters/memory"
	postgresadapter "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/adapters/postgres"
	"github.com/Philip38-hub/OYA-sub000/internal/platform/config"
	"github.com/Philip38-hub/OYA-sub000/internal/platform/db"
	"github.com/Philip38-hub/OYA-sub000/internal/platform/httpserver"
	"github.com/Philip38-hub/OYA-sub000/internal/platform/messaging"
	"github.com/Philip38-hub/OYA-sub000/internal/platform/push"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	module   witnessconsensus.Module
	postgres *db.Postgres
	cfg      config.Config
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	bus := messaging.NewBus(logger)
	hub := push.NewHub(logger)

	deps := witnessconsensus.Dependencies{
		Events:       bus,
		Subscriber:   bus,
		Push:         hub,
		MinWitnesses: cfg.ConsensusMinWitnesses,
		Staleness:    cfg.RecoveryStaleness,
		Logger:       logger,
	}

	var pg *db.Postgres
	var module witnessconsensus.Module
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		if err := repo.Migrate(); err != nil {
			_ = pg.Close()
			return nil, err
		}
		deps.Processes = repo
		deps.Submissions = repo
		deps.Stations = repo
		deps.Locks = memory.NewStationLocks()
		deps.Clock = postgresadapter.SystemClock{}
		deps.IDGen = postgresadapter.UUIDGenerator{}
		module = witnessconsensus.NewModule(deps)
		logger.Info("election store connected",
			"event", "bootstrap_postgres_connected",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	} else {
		module = witnessconsensus.NewInMemoryModule(deps, logger)
		logger.Warn("POSTGRES_DSN empty, using in-memory store",
			"event", "bootstrap_memory_store",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	server := httpserver.New(module, hub, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		module:   module,
		postgres: pg,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.cfg.EnableTallyBroadcaster {
		if err := a.module.Broadcaster.Start(ctx); err != nil {
			return err
		}
	}
	if a.cfg.EnableRecoverySweep {
		go func() {
			if err := a.module.Recovery.Run(ctx, a.cfg.RecoveryInterval); err != nil {
				a.logger.Error("recovery sweep stopped",
					"event", "bootstrap_recovery_stopped",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}()
	}

	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

// WorkerApp runs the recovery sweep and tally broadcaster without the HTTP
// surface, for deployments that split the API and background processes.
type WorkerApp struct {
	module   witnessconsensus.Module
	postgres *db.Postgres
	cfg      config.Config
	logger   *slog.Logger
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	bus := messaging.NewBus(logger)
	hub := push.NewHub(logger)

	deps := witnessconsensus.Dependencies{
		Events:       bus,
		Subscriber:   bus,
		Push:         hub,
		MinWitnesses: cfg.ConsensusMinWitnesses,
		Staleness:    cfg.RecoveryStaleness,
		Logger:       logger,
	}

	var pg *db.Postgres
	var module witnessconsensus.Module
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		if err := repo.Migrate(); err != nil {
			_ = pg.Close()
			return nil, err
		}
		deps.Processes = repo
		deps.Submissions = repo
		deps.Stations = repo
		deps.Locks = memory.NewStationLocks()
		deps.Clock = postgresadapter.SystemClock{}
		deps.IDGen = postgresadapter.UUIDGenerator{}
		module = witnessconsensus.NewModule(deps)
	} else {
		module = witnessconsensus.NewInMemoryModule(deps, logger)
	}

	return &WorkerApp{
		module:   module,
		postgres: pg,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.module.Broadcaster.Start(ctx); err != nil {
		return err
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"recovery_interval", w.cfg.RecoveryInterval.String(),
	)
	return w.module.Recovery.Run(ctx, w.cfg.RecoveryInterval)
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
