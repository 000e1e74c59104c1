package queries

import (
	"context"

	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/ports"
)

// TallyUseCase derives the process-wide aggregate from verified stations. It
// never mutates state and recomputes fresh on every call: call volume is
// bounded by the dashboard refresh interval, so correctness wins over
// latency.
type TallyUseCase struct {
	Processes ports.ProcessRepository
	Stations  ports.StationRepository
	Clock     ports.Clock
}

// GetTally sums candidate totals and spoilt ballots across verified stations
// only. Pending stations appear in the station list with nil results and zero
// confidence, contributing nothing to the aggregate.
func (uc TallyUseCase) GetTally(ctx context.Context, processID string) (entities.Tally, error) {
	process, err := uc.Processes.GetProcess(ctx, processID)
	if err != nil {
		return entities.Tally{}, err
	}
	states, err := uc.Stations.ListStationStates(ctx, process.ProcessID)
	if err != nil {
		return entities.Tally{}, err
	}

	aggregate := make(map[string]int, len(process.Candidates)+1)
	for _, name := range process.CandidateNames() {
		aggregate[name] = 0
	}
	aggregate[entities.SpoiltKey] = 0

	stations := make([]entities.StationTallyEntry, 0, len(states))
	verified, pending := 0, 0
	for _, state := range states {
		entry := entities.StationTallyEntry{
			PollingStationID: state.PollingStationID,
			Status:           state.Status,
			ConfidenceLevel:  state.ConfidenceLevel,
			WitnessCount:     state.WitnessCount,
		}
		if state.Status == entities.StationStatusVerified {
			verified++
			entry.Results = state.VerifiedResults
			for name, votes := range state.VerifiedResults {
				aggregate[name] += votes
			}
		} else {
			pending++
		}
		stations = append(stations, entry)
	}

	return entities.Tally{
		Process:         process,
		AggregatedTally: aggregate,
		PollingStations: stations,
		VerifiedCount:   verified,
		PendingCount:    pending,
		LastUpdated:     uc.Clock.Now().UTC(),
	}, nil
}
