package commands

import (
	"context"
	"log/slog"
	"strings"

	application "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/application"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/services"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/ports"
)

// CreateProcessCommand is the write-model input for voting-process creation.
type CreateProcessCommand struct {
	Title           string
	Position        string
	Candidates      []entities.Candidate
	PollingStations []string
}

// ProcessUseCase orchestrates voting-process creation and lifecycle
// transitions. Lifecycle is one-directional: setup -> active -> closed.
type ProcessUseCase struct {
	Processes ports.ProcessRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// CreateProcess validates the payload and stores a new process in setup
// status. Validation failures return before any store mutation.
func (uc ProcessUseCase) CreateProcess(ctx context.Context, cmd CreateProcessCommand) (entities.VotingProcess, error) {
	logger := application.ResolveLogger(uc.Logger)

	if err := services.ValidateProcess(services.ProcessInput{
		Title:           cmd.Title,
		Position:        cmd.Position,
		Candidates:      cmd.Candidates,
		PollingStations: cmd.PollingStations,
	}); err != nil {
		logger.Warn("voting process validation failed",
			"event", "consensus_process_create_validation_failed",
			"module", "election-core/witness-consensus",
			"layer", "application",
			"title", strings.TrimSpace(cmd.Title),
			"error", err.Error(),
		)
		return entities.VotingProcess{}, err
	}

	processID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.VotingProcess{}, err
	}

	candidates := make([]entities.Candidate, 0, len(cmd.Candidates))
	for _, candidate := range cmd.Candidates {
		candidates = append(candidates, entities.Candidate{
			CandidateID: strings.TrimSpace(candidate.CandidateID),
			Name:        strings.TrimSpace(candidate.Name),
		})
	}
	stations := make([]string, 0, len(cmd.PollingStations))
	for _, stationID := range cmd.PollingStations {
		stations = append(stations, strings.TrimSpace(stationID))
	}

	process := entities.VotingProcess{
		ProcessID:       processID,
		Title:           strings.TrimSpace(cmd.Title),
		Position:        strings.TrimSpace(cmd.Position),
		Candidates:      candidates,
		PollingStations: stations,
		Status:          entities.ProcessStatusSetup,
		CreatedAt:       uc.Clock.Now().UTC(),
	}
	if err := uc.Processes.SaveProcess(ctx, process); err != nil {
		logger.Error("voting process save failed",
			"event", "consensus_process_create_save_failed",
			"module", "election-core/witness-consensus",
			"layer", "application",
			"process_id", processID,
			"error", err.Error(),
		)
		return entities.VotingProcess{}, err
	}

	logger.Info("voting process created",
		"event", "consensus_process_created",
		"module", "election-core/witness-consensus",
		"layer", "application",
		"process_id", processID,
		"station_count", len(stations),
		"candidate_count", len(candidates),
	)
	return process, nil
}
