package entities

import "time"

type ProcessStatus string

const (
	ProcessStatusSetup  ProcessStatus = "setup"
	ProcessStatusActive ProcessStatus = "active"
	ProcessStatusClosed ProcessStatus = "closed"
)

type Candidate struct {
	CandidateID string
	Name        string
}

// VotingProcess is the root entity for one election event. Lifecycle moves
// one way only: setup -> active -> closed.
type VotingProcess struct {
	ProcessID       string
	Title           string
	Position        string
	Candidates      []Candidate
	PollingStations []string
	Status          ProcessStatus
	CreatedAt       time.Time
	StartedAt       *time.Time
	ClosedAt        *time.Time
}

// HasStation reports whether stationID belongs to this process.
func (p VotingProcess) HasStation(stationID string) bool {
	for _, id := range p.PollingStations {
		if id == stationID {
			return true
		}
	}
	return false
}

// CandidateNames returns the candidate names in their declared order.
func (p VotingProcess) CandidateNames() []string {
	names := make([]string, 0, len(p.Candidates))
	for _, candidate := range p.Candidates {
		names = append(names, candidate.Name)
	}
	return names
}
