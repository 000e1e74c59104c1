package entities

import "time"

type StationStatus string

const (
	StationStatusPending  StationStatus = "pending"
	StationStatusVerified StationStatus = "verified"
)

// PollingStationState is the derived consensus state for one station.
// VerifiedResults is nil and ConfidenceLevel is 0 while the station is
// pending. Verified state can degrade back to pending when a replacing
// submission breaks the majority group.
type PollingStationState struct {
	PollingStationID string
	ProcessID        string
	Status           StationStatus
	VerifiedResults  map[string]int
	ConfidenceLevel  float64
	WitnessCount     int
	UpdatedAt        time.Time
}

// Equivalent reports whether two states carry the same status and verified
// results. Confidence, witness count and UpdatedAt are bookkeeping; a change
// in those alone must not trigger a broadcast.
func (s PollingStationState) Equivalent(other PollingStationState) bool {
	if s.Status != other.Status {
		return false
	}
	if len(s.VerifiedResults) != len(other.VerifiedResults) {
		return false
	}
	for name, votes := range s.VerifiedResults {
		if other.VerifiedResults[name] != votes {
			return false
		}
	}
	return true
}
