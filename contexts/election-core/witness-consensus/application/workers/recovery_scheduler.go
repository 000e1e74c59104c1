package workers

import (
	"context"
	"log/slog"
	"time"

	application "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/application"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/application/commands"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/ports"
)

const defaultStaleness = 30 * time.Second

// RecoveryScheduler is the safety net against missed inline recomputations:
// on a fixed interval it re-runs the exact same consensus entry point for
// every station still pending in an active process. It never needs a new
// submission to trigger and never holds a station lock for longer than one
// recomputation.
type RecoveryScheduler struct {
	Processes ports.ProcessRepository
	Stations  ports.StationRepository
	Consensus commands.SubmitUseCase
	Clock     ports.Clock
	// Staleness skips stations recomputed more recently than this window,
	// keeping the sweep cheap while a station is receiving live traffic.
	Staleness time.Duration
	Logger    *slog.Logger
}

// RunOnce performs a single recovery sweep.
func (s RecoveryScheduler) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	staleness := s.Staleness
	if staleness <= 0 {
		staleness = defaultStaleness
	}
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}

	processes, err := s.Processes.ListProcesses(ctx)
	if err != nil {
		logger.Error("recovery sweep process list failed",
			"event", "consensus_recovery_list_failed",
			"module", "election-core/witness-consensus",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	swept, recovered := 0, 0
	for _, process := range processes {
		if process.Status != entities.ProcessStatusActive {
			continue
		}
		states, err := s.Stations.ListStationStates(ctx, process.ProcessID)
		if err != nil {
			logger.Error("recovery sweep station list failed",
				"event", "consensus_recovery_stations_failed",
				"module", "election-core/witness-consensus",
				"layer", "worker",
				"process_id", process.ProcessID,
				"error", err.Error(),
			)
			return err
		}
		for _, state := range states {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if state.Status != entities.StationStatusPending {
				continue
			}
			if !state.UpdatedAt.IsZero() && now.Sub(state.UpdatedAt) < staleness {
				continue
			}
			swept++
			_, changed, err := s.Consensus.RecomputeStation(ctx, process.ProcessID, state.PollingStationID)
			if err != nil {
				logger.Error("recovery recompute failed",
					"event", "consensus_recovery_recompute_failed",
					"module", "election-core/witness-consensus",
					"layer", "worker",
					"process_id", process.ProcessID,
					"polling_station_id", state.PollingStationID,
					"error", err.Error(),
				)
				return err
			}
			if changed {
				recovered++
			}
		}
	}

	if recovered > 0 {
		logger.Info("recovery sweep recovered stations",
			"event", "consensus_recovery_completed",
			"module", "election-core/witness-consensus",
			"layer", "worker",
			"swept", swept,
			"recovered", recovered,
		)
	} else {
		logger.Debug("recovery sweep completed",
			"event", "consensus_recovery_noop",
			"module", "election-core/witness-consensus",
			"layer", "worker",
			"swept", swept,
		)
	}
	return nil
}

// Run loops RunOnce on the given interval until ctx is cancelled. An
// in-flight sweep finishes before Run returns.
func (s RecoveryScheduler) Run(ctx context.Context, interval time.Duration) error {
	logger := application.ResolveLogger(s.Logger)
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("recovery scheduler started",
		"event", "consensus_recovery_started",
		"module", "election-core/witness-consensus",
		"layer", "worker",
		"interval", interval.String(),
	)
	for {
		select {
		case <-ctx.Done():
			logger.Info("recovery scheduler stopped",
				"event", "consensus_recovery_stopped",
				"module", "election-core/witness-consensus",
				"layer", "worker",
			)
			return nil
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				logger.Error("recovery sweep failed",
					"event", "consensus_recovery_sweep_failed",
					"module", "election-core/witness-consensus",
					"layer", "worker",
					"error", err.Error(),
				)
			}
		}
	}
}
