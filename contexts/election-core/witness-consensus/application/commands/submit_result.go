package commands

import (
	"context"
	"log/slog"
	"strings"

	application "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/application"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
	domainerrors "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/errors"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/services"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/ports"
)

// SubmitResultCommand is the write-model input for one witness submission.
type SubmitResultCommand struct {
	WalletAddress    string
	PollingStationID string
	GPS              entities.GPSCoordinates
	Timestamp        string
	Results          map[string]int
	SubmissionType   string
	Confidence       float64
}

// SubmitResultOutcome returns the stored submission id plus the station's
// consensus state as of this submission's serialization point.
type SubmitResultOutcome struct {
	SubmissionID string
	Replaced     bool
	Station      entities.PollingStationState
}

// SubmitUseCase is the consensus engine entry point. Both the inline
// submission path and the recovery sweep funnel through RecomputeStation so
// there is exactly one implementation of the majority rule's orchestration.
type SubmitUseCase struct {
	Processes   ports.ProcessRepository
	Submissions ports.SubmissionRepository
	Stations    ports.StationRepository
	Locks       ports.StationLocker
	Policy      services.ConsensusPolicy
	Events      ports.EventPublisher
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// SubmitResult validates the payload, upserts the submission (replacing any
// prior record from the same wallet for the same station) and recomputes the
// station's consensus state under the station lock. The change event, if any,
// is published only after the lock is released.
func (uc SubmitUseCase) SubmitResult(ctx context.Context, cmd SubmitResultCommand) (SubmitResultOutcome, error) {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.Clock.Now().UTC()

	timestamp, tsErr := parseSubmissionTimestamp(cmd.Timestamp)
	input := services.SubmissionInput{
		WalletAddress:    cmd.WalletAddress,
		PollingStationID: cmd.PollingStationID,
		GPS:              cmd.GPS,
		Timestamp:        timestamp,
		Results:          cmd.Results,
		SubmissionType:   cmd.SubmissionType,
		Confidence:       cmd.Confidence,
	}
	err := services.ValidateSubmission(input, now)
	if tsErr != nil {
		err = appendFieldError(err, "timestamp", "timestamp must be RFC 3339")
	}
	if err != nil {
		logger.Warn("submission validation failed",
			"event", "consensus_submit_validation_failed",
			"module", "election-core/witness-consensus",
			"layer", "application",
			"polling_station_id", strings.TrimSpace(cmd.PollingStationID),
			"error", err.Error(),
		)
		return SubmitResultOutcome{}, err
	}

	stationID := strings.TrimSpace(cmd.PollingStationID)
	process, err := uc.Processes.FindProcessByStation(ctx, stationID)
	if err != nil {
		if !errorsIsStationUnknown(err) {
			return SubmitResultOutcome{}, err
		}
		// An unregistered station is a payload problem, not a lookup
		// failure: report it at field level like any other bad input.
		return SubmitResultOutcome{}, &domainerrors.ValidationError{Fields: []domainerrors.FieldError{{
			Field:   "pollingStationId",
			Message: "polling station is not part of any voting process",
		}}}
	}
	if process.Status != entities.ProcessStatusActive {
		logger.Warn("submission rejected for inactive process",
			"event", "consensus_submit_process_inactive",
			"module", "election-core/witness-consensus",
			"layer", "application",
			"process_id", process.ProcessID,
			"polling_station_id", stationID,
			"status", string(process.Status),
		)
		return SubmitResultOutcome{}, domainerrors.ErrInvalidStatus
	}

	submissionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return SubmitResultOutcome{}, err
	}
	submission := entities.Submission{
		SubmissionID:     submissionID,
		WalletAddress:    strings.TrimSpace(cmd.WalletAddress),
		PollingStationID: stationID,
		GPS:              cmd.GPS,
		Timestamp:        timestamp.UTC(),
		Results:          cmd.Results,
		SubmissionType:   entities.SubmissionType(cmd.SubmissionType),
		Confidence:       cmd.Confidence,
		ReceivedAt:       now,
	}

	unlock := uc.Locks.LockStation(stationID)
	replaced, err := uc.Submissions.UpsertSubmission(ctx, submission)
	if err != nil {
		unlock()
		return SubmitResultOutcome{}, err
	}
	state, changed, err := uc.recomputeLocked(ctx, process.ProcessID, stationID)
	unlock()
	if err != nil {
		return SubmitResultOutcome{}, err
	}
	if changed {
		uc.publishStationChanged(ctx, process.ProcessID, state)
	}

	logger.Info("submission accepted",
		"event", "consensus_submit_accepted",
		"module", "election-core/witness-consensus",
		"layer", "application",
		"process_id", process.ProcessID,
		"polling_station_id", stationID,
		"submission_id", submissionID,
		"replaced", replaced,
		"station_status", string(state.Status),
		"witness_count", state.WitnessCount,
	)
	return SubmitResultOutcome{
		SubmissionID: submissionID,
		Replaced:     replaced,
		Station:      state,
	}, nil
}

// RecomputeStation re-runs the consensus rule for one station under its lock
// and publishes a station-changed event when status or verified results
// moved. It is idempotent and safe to invoke from the recovery sweep at any
// time.
func (uc SubmitUseCase) RecomputeStation(ctx context.Context, processID string, stationID string) (entities.PollingStationState, bool, error) {
	unlock := uc.Locks.LockStation(stationID)
	state, changed, err := uc.recomputeLocked(ctx, processID, stationID)
	unlock()
	if err != nil {
		return entities.PollingStationState{}, false, err
	}
	if changed {
		uc.publishStationChanged(ctx, processID, state)
	}
	return state, changed, nil
}

// recomputeLocked reads the station's live submissions, evaluates the
// majority rule and persists the outcome. Caller must hold the station lock.
func (uc SubmitUseCase) recomputeLocked(ctx context.Context, processID string, stationID string) (entities.PollingStationState, bool, error) {
	submissions, err := uc.Submissions.ListSubmissionsByStation(ctx, stationID)
	if err != nil {
		return entities.PollingStationState{}, false, err
	}
	outcome := uc.Policy.Evaluate(submissions)

	previous, err := uc.Stations.GetStationState(ctx, stationID)
	if err != nil && !errorsIsStationUnknown(err) {
		return entities.PollingStationState{}, false, err
	}

	state := entities.PollingStationState{
		PollingStationID: stationID,
		ProcessID:        processID,
		Status:           outcome.Status,
		VerifiedResults:  outcome.VerifiedResults,
		ConfidenceLevel:  outcome.ConfidenceLevel,
		WitnessCount:     outcome.WitnessCount,
		UpdatedAt:        uc.Clock.Now().UTC(),
	}
	if err := uc.Stations.SetStationState(ctx, state); err != nil {
		return entities.PollingStationState{}, false, err
	}
	return state, !state.Equivalent(previous), nil
}

func (uc SubmitUseCase) publishStationChanged(ctx context.Context, processID string, state entities.PollingStationState) {
	if uc.Events == nil {
		return
	}
	logger := application.ResolveLogger(uc.Logger)
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		eventID = state.PollingStationID
	}
	envelope := ports.EventEnvelope{
		EventID:        eventID,
		EventType:      ports.StationChangedType,
		SourceService:  "witness-consensus",
		OccurredAtUTC:  uc.Clock.Now().UTC(),
		EntityType:     "polling_station",
		EntityID:       state.PollingStationID,
		PayloadVersion: 1,
		Payload: ports.StationChangedPayload{
			ProcessID:        processID,
			PollingStationID: state.PollingStationID,
			Status:           string(state.Status),
		},
	}
	if err := uc.Events.Publish(ctx, ports.StationChangedTopic, envelope); err != nil {
		logger.Error("station changed publish failed",
			"event", "consensus_station_changed_publish_failed",
			"module", "election-core/witness-consensus",
			"layer", "application",
			"process_id", processID,
			"polling_station_id", state.PollingStationID,
			"error", err.Error(),
		)
		return
	}
	logger.Info("station consensus state changed",
		"event", "consensus_station_changed",
		"module", "election-core/witness-consensus",
		"layer", "application",
		"process_id", processID,
		"polling_station_id", state.PollingStationID,
		"station_status", string(state.Status),
		"confidence", state.ConfidenceLevel,
	)
}
