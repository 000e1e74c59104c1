package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/application/commands"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/application/queries"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
	httptransport "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/transport/http"
)

type Handler struct {
	Processes   commands.ProcessUseCase
	Submissions commands.SubmitUseCase
	Tallies     queries.TallyUseCase
	Logger      *slog.Logger
}

// @Summary Create a voting process
// @Tags voting-process
// @Accept json
// @Produce json
// @Param request body http.CreateProcessRequest true "process definition"
// @Success 201 {object} http.CreateProcessResponse
// @Failure 400 {object} http.ErrorResponse
// @Router /voting-process [post]
func (h Handler) CreateProcessHandler(ctx context.Context, req httptransport.CreateProcessRequest) (httptransport.CreateProcessResponse, error) {
	candidates := make([]entities.Candidate, 0, len(req.Candidates))
	for _, candidate := range req.Candidates {
		candidates = append(candidates, entities.Candidate{
			CandidateID: candidate.ID,
			Name:        candidate.Name,
		})
	}
	process, err := h.Processes.CreateProcess(ctx, commands.CreateProcessCommand{
		Title:           req.Title,
		Position:        req.Position,
		Candidates:      candidates,
		PollingStations: req.PollingStations,
	})
	if err != nil {
		return httptransport.CreateProcessResponse{}, err
	}
	return httptransport.CreateProcessResponse{
		Success:       true,
		VotingProcess: ProcessResponseFromEntity(process),
		Message:       "voting process created",
	}, nil
}

// @Summary Start a voting process
// @Tags voting-process
// @Produce json
// @Param id path string true "voting process id"
// @Success 200 {object} http.ProcessResponse
// @Failure 400 {object} http.ErrorResponse
// @Failure 404 {object} http.ErrorResponse
// @Router /voting-process/{id}/start [put]
func (h Handler) StartProcessHandler(ctx context.Context, processID string) (httptransport.ProcessResponse, error) {
	process, err := h.Processes.StartProcess(ctx, processID)
	if err != nil {
		return httptransport.ProcessResponse{}, err
	}
	return ProcessResponseFromEntity(process), nil
}

// @Summary Close a voting process
// @Tags voting-process
// @Produce json
// @Param id path string true "voting process id"
// @Success 200 {object} http.ProcessResponse
// @Failure 400 {object} http.ErrorResponse
// @Failure 404 {object} http.ErrorResponse
// @Router /voting-process/{id}/close [put]
func (h Handler) CloseProcessHandler(ctx context.Context, processID string) (httptransport.ProcessResponse, error) {
	process, err := h.Processes.CloseProcess(ctx, processID)
	if err != nil {
		return httptransport.ProcessResponse{}, err
	}
	return ProcessResponseFromEntity(process), nil
}

// @Summary Get voting process detail
// @Tags voting-process
// @Produce json
// @Param id path string true "voting process id"
// @Success 200 {object} http.ProcessResponse
// @Failure 404 {object} http.ErrorResponse
// @Router /voting-process/{id} [get]
func (h Handler) GetProcessHandler(ctx context.Context, processID string) (httptransport.ProcessResponse, error) {
	process, err := h.Processes.Processes.GetProcess(ctx, processID)
	if err != nil {
		return httptransport.ProcessResponse{}, err
	}
	return ProcessResponseFromEntity(process), nil
}

// @Summary List voting processes
// @Tags voting-process
// @Produce json
// @Success 200 {object} http.ProcessListResponse
// @Router /voting-process [get]
func (h Handler) ListProcessesHandler(ctx context.Context) (httptransport.ProcessListResponse, error) {
	processes, err := h.Processes.Processes.ListProcesses(ctx)
	if err != nil {
		return httptransport.ProcessListResponse{}, err
	}
	out := httptransport.ProcessListResponse{Processes: make([]httptransport.ProcessResponse, 0, len(processes))}
	for _, process := range processes {
		out.Processes = append(out.Processes, ProcessResponseFromEntity(process))
	}
	return out, nil
}

// @Summary Submit a witness result
// @Tags submissions
// @Accept json
// @Produce json
// @Param request body http.SubmitResultRequest true "witness submission"
// @Success 200 {object} http.SubmitResultResponse
// @Failure 400 {object} http.ErrorResponse
// @Router /submitResult [post]
func (h Handler) SubmitResultHandler(ctx context.Context, req httptransport.SubmitResultRequest) (httptransport.SubmitResultResponse, error) {
	outcome, err := h.Submissions.SubmitResult(ctx, commands.SubmitResultCommand{
		WalletAddress:    req.WalletAddress,
		PollingStationID: req.PollingStationID,
		GPS: entities.GPSCoordinates{
			Latitude:  req.GPSCoordinates.Latitude,
			Longitude: req.GPSCoordinates.Longitude,
		},
		Timestamp:      req.Timestamp,
		Results:        req.Results,
		SubmissionType: req.SubmissionType,
		Confidence:     req.Confidence,
	})
	if err != nil {
		return httptransport.SubmitResultResponse{}, err
	}
	message := "submission recorded"
	if outcome.Replaced {
		message = "previous submission replaced"
	}
	return httptransport.SubmitResultResponse{
		Success:      true,
		SubmissionID: outcome.SubmissionID,
		Message:      message,
		Consensus:    httptransport.ConsensusStatus{Status: string(outcome.Station.Status)},
	}, nil
}

// @Summary Get the live tally for a voting process
// @Tags tally
// @Produce json
// @Param votingProcessId path string true "voting process id"
// @Success 200 {object} http.TallyResponse
// @Failure 404 {object} http.ErrorResponse
// @Router /getTally/{votingProcessId} [get]
func (h Handler) GetTallyHandler(ctx context.Context, processID string) (httptransport.TallyResponse, error) {
	tally, err := h.Tallies.GetTally(ctx, processID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	return TallyResponseFromEntity(tally), nil
}

// TallySnapshotHandler renders the current tally as a push-channel frame.
// Streams send it on connect so subscribers start from a consistent state.
func (h Handler) TallySnapshotHandler(ctx context.Context, processID string) ([]byte, error) {
	tally, err := h.Tallies.GetTally(ctx, processID)
	if err != nil {
		return nil, err
	}
	return TallyUpdateMessage(tally)
}

func ProcessResponseFromEntity(process entities.VotingProcess) httptransport.ProcessResponse {
	candidates := make([]httptransport.CandidatePayload, 0, len(process.Candidates))
	for _, candidate := range process.Candidates {
		candidates = append(candidates, httptransport.CandidatePayload{
			ID:   candidate.CandidateID,
			Name: candidate.Name,
		})
	}
	out := httptransport.ProcessResponse{
		ID:              process.ProcessID,
		Title:           process.Title,
		Position:        process.Position,
		Candidates:      candidates,
		PollingStations: append([]string(nil), process.PollingStations...),
		Status:          string(process.Status),
		CreatedAt:       process.CreatedAt.UTC().Format(time.RFC3339),
	}
	if process.StartedAt != nil {
		out.StartedAt = process.StartedAt.UTC().Format(time.RFC3339)
	}
	if process.ClosedAt != nil {
		out.ClosedAt = process.ClosedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func TallyResponseFromEntity(tally entities.Tally) httptransport.TallyResponse {
	stations := make([]httptransport.StationTallyPayload, 0, len(tally.PollingStations))
	for _, station := range tally.PollingStations {
		stations = append(stations, httptransport.StationTallyPayload{
			PollingStationID: station.PollingStationID,
			Status:           string(station.Status),
			Results:          station.Results,
			ConfidenceLevel:  station.ConfidenceLevel,
			WitnessCount:     station.WitnessCount,
		})
	}
	return httptransport.TallyResponse{
		VotingProcess:   ProcessResponseFromEntity(tally.Process),
		AggregatedTally: tally.AggregatedTally,
		PollingStations: stations,
		VerifiedCount:   tally.VerifiedCount,
		PendingCount:    tally.PendingCount,
		LastUpdated:     tally.LastUpdated.UTC().Format(time.RFC3339),
	}
}

// TallyUpdateMessage serializes the push-channel frame for one tally. The
// broadcaster uses it so the stream payload matches GET /getTally exactly.
func TallyUpdateMessage(tally entities.Tally) ([]byte, error) {
	return json.Marshal(httptransport.TallyUpdateMessage{
		Type: "tally_update",
		Data: TallyResponseFromEntity(tally),
	})
}
