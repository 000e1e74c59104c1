package entities

import "time"

// StationTallyEntry is one station's contribution to a tally read. Results is
// nil for pending stations so dashboards can tell "no consensus yet" apart
// from an all-zero count.
type StationTallyEntry struct {
	PollingStationID string
	Status           StationStatus
	Results          map[string]int
	ConfidenceLevel  float64
	WitnessCount     int
}

// Tally is the derived process-wide aggregate. It is recomputed on every
// read, never stored.
type Tally struct {
	Process         VotingProcess
	AggregatedTally map[string]int
	PollingStations []StationTallyEntry
	VerifiedCount   int
	PendingCount    int
	LastUpdated     time.Time
}
