package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
	domainerrors "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/errors"

	"github.com/google/uuid"
)

// Store is the in-memory authority for processes, submissions and derived
// station state. A single RWMutex guards the maps; per-station serialization
// of the consensus critical section is provided separately through
// LockStation so that holding one station's lock never blocks another
// station's submission path.
type Store struct {
	mu sync.RWMutex

	processes        map[string]entities.VotingProcess
	stationToProcess map[string]string
	submissions      map[string]map[string]entities.Submission
	stations         map[string]entities.PollingStationState

	locks *StationLocks
}

func NewStore() *Store {
	return &Store{
		processes:        make(map[string]entities.VotingProcess),
		stationToProcess: make(map[string]string),
		submissions:      make(map[string]map[string]entities.Submission),
		stations:         make(map[string]entities.PollingStationState),
		locks:            NewStationLocks(),
	}
}

// LockStation acquires the mutex scoped to one polling station, creating it
// on first use. The returned closure releases it.
func (s *Store) LockStation(stationID string) func() {
	return s.locks.LockStation(stationID)
}

func (s *Store) SaveProcess(_ context.Context, process entities.VotingProcess) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	processID := strings.TrimSpace(process.ProcessID)
	s.processes[processID] = cloneProcess(process)
	for _, stationID := range process.PollingStations {
		s.stationToProcess[stationID] = processID
		if _, ok := s.stations[stationID]; !ok {
			s.stations[stationID] = entities.PollingStationState{
				PollingStationID: stationID,
				ProcessID:        processID,
				Status:           entities.StationStatusPending,
			}
		}
	}
	return nil
}

func (s *Store) GetProcess(_ context.Context, processID string) (entities.VotingProcess, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	process, ok := s.processes[strings.TrimSpace(processID)]
	if !ok {
		return entities.VotingProcess{}, domainerrors.ErrProcessNotFound
	}
	return cloneProcess(process), nil
}

func (s *Store) ListProcesses(_ context.Context) ([]entities.VotingProcess, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.VotingProcess, 0, len(s.processes))
	for _, process := range s.processes {
		out = append(out, cloneProcess(process))
	}
	return out, nil
}

func (s *Store) FindProcessByStation(_ context.Context, stationID string) (entities.VotingProcess, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	processID, ok := s.stationToProcess[strings.TrimSpace(stationID)]
	if !ok {
		return entities.VotingProcess{}, domainerrors.ErrStationNotFound
	}
	process, ok := s.processes[processID]
	if !ok {
		return entities.VotingProcess{}, domainerrors.ErrProcessNotFound
	}
	return cloneProcess(process), nil
}

func (s *Store) UpsertSubmission(_ context.Context, submission entities.Submission) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stationID := strings.TrimSpace(submission.PollingStationID)
	wallet := strings.TrimSpace(submission.WalletAddress)
	byWallet, ok := s.submissions[stationID]
	if !ok {
		byWallet = make(map[string]entities.Submission)
		s.submissions[stationID] = byWallet
	}
	_, replaced := byWallet[wallet]
	byWallet[wallet] = cloneSubmission(submission)
	return replaced, nil
}

func (s *Store) ListSubmissionsByStation(_ context.Context, stationID string) ([]entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byWallet := s.submissions[strings.TrimSpace(stationID)]
	out := make([]entities.Submission, 0, len(byWallet))
	for _, submission := range byWallet {
		out = append(out, cloneSubmission(submission))
	}
	return out, nil
}

func (s *Store) GetStationState(_ context.Context, stationID string) (entities.PollingStationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.stations[strings.TrimSpace(stationID)]
	if !ok {
		return entities.PollingStationState{}, domainerrors.ErrStationNotFound
	}
	return cloneStationState(state), nil
}

func (s *Store) SetStationState(_ context.Context, state entities.PollingStationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations[strings.TrimSpace(state.PollingStationID)] = cloneStationState(state)
	return nil
}

func (s *Store) ListStationStates(_ context.Context, processID string) ([]entities.PollingStationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	process, ok := s.processes[strings.TrimSpace(processID)]
	if !ok {
		return nil, domainerrors.ErrProcessNotFound
	}
	// Declared station order keeps reads deterministic.
	out := make([]entities.PollingStationState, 0, len(process.PollingStations))
	for _, stationID := range process.PollingStations {
		state, ok := s.stations[stationID]
		if !ok {
			state = entities.PollingStationState{
				PollingStationID: stationID,
				ProcessID:        process.ProcessID,
				Status:           entities.StationStatusPending,
			}
		}
		out = append(out, cloneStationState(state))
	}
	return out, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func cloneProcess(process entities.VotingProcess) entities.VotingProcess {
	out := process
	out.Candidates = append([]entities.Candidate(nil), process.Candidates...)
	out.PollingStations = append([]string(nil), process.PollingStations...)
	if process.StartedAt != nil {
		startedAt := *process.StartedAt
		out.StartedAt = &startedAt
	}
	if process.ClosedAt != nil {
		closedAt := *process.ClosedAt
		out.ClosedAt = &closedAt
	}
	return out
}

func cloneSubmission(submission entities.Submission) entities.Submission {
	out := submission
	out.Results = submission.CloneResults()
	return out
}

func cloneStationState(state entities.PollingStationState) entities.PollingStationState {
	out := state
	if state.VerifiedResults != nil {
		results := make(map[string]int, len(state.VerifiedResults))
		for name, votes := range state.VerifiedResults {
			results[name] = votes
		}
		out.VerifiedResults = results
	}
	return out
}
