package commands

import (
	"context"

	application "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/application"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
	domainerrors "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/errors"
)

// StartProcess moves a process from setup to active and stamps StartedAt.
// Any other starting status fails with ErrInvalidStatus; a process cannot be
// started twice.
func (uc ProcessUseCase) StartProcess(ctx context.Context, processID string) (entities.VotingProcess, error) {
	logger := application.ResolveLogger(uc.Logger)

	process, err := uc.Processes.GetProcess(ctx, processID)
	if err != nil {
		return entities.VotingProcess{}, err
	}
	if process.Status != entities.ProcessStatusSetup {
		logger.Warn("voting process start rejected",
			"event", "consensus_process_start_rejected",
			"module", "election-core/witness-consensus",
			"layer", "application",
			"process_id", process.ProcessID,
			"status", string(process.Status),
		)
		return entities.VotingProcess{}, domainerrors.ErrInvalidStatus
	}

	now := uc.Clock.Now().UTC()
	process.Status = entities.ProcessStatusActive
	process.StartedAt = &now
	if err := uc.Processes.SaveProcess(ctx, process); err != nil {
		return entities.VotingProcess{}, err
	}

	logger.Info("voting process started",
		"event", "consensus_process_started",
		"module", "election-core/witness-consensus",
		"layer", "application",
		"process_id", process.ProcessID,
	)
	return process, nil
}

// CloseProcess moves a process from active to closed. Closed processes stop
// accepting submissions and drop out of the recovery sweep.
func (uc ProcessUseCase) CloseProcess(ctx context.Context, processID string) (entities.VotingProcess, error) {
	logger := application.ResolveLogger(uc.Logger)

	process, err := uc.Processes.GetProcess(ctx, processID)
	if err != nil {
		return entities.VotingProcess{}, err
	}
	if process.Status != entities.ProcessStatusActive {
		return entities.VotingProcess{}, domainerrors.ErrInvalidStatus
	}

	now := uc.Clock.Now().UTC()
	process.Status = entities.ProcessStatusClosed
	process.ClosedAt = &now
	if err := uc.Processes.SaveProcess(ctx, process); err != nil {
		return entities.VotingProcess{}, err
	}

	logger.Info("voting process closed",
		"event", "consensus_process_closed",
		"module", "election-core/witness-consensus",
		"layer", "application",
		"process_id", process.ProcessID,
	)
	return process, nil
}
