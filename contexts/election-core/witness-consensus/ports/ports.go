package ports

import (
	"context"
	"time"

	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
	"github.com/Philip38-hub/OYA-sub000/internal/shared/events"
)

// ProcessRepository owns voting-process records.
type ProcessRepository interface {
	SaveProcess(ctx context.Context, process entities.VotingProcess) error
	GetProcess(ctx context.Context, processID string) (entities.VotingProcess, error)
	ListProcesses(ctx context.Context) ([]entities.VotingProcess, error)
	// FindProcessByStation resolves the process a polling station belongs
	// to. Returns ErrStationNotFound when no process claims the station.
	FindProcessByStation(ctx context.Context, stationID string) (entities.VotingProcess, error)
}

// SubmissionRepository owns witness submissions. UpsertSubmission replaces by
// (polling station, wallet): a resubmission from the same witness swaps the
// prior record atomically and reports replaced=true.
type SubmissionRepository interface {
	UpsertSubmission(ctx context.Context, submission entities.Submission) (replaced bool, err error)
	ListSubmissionsByStation(ctx context.Context, stationID string) ([]entities.Submission, error)
}

// StationRepository owns derived per-station consensus state.
type StationRepository interface {
	GetStationState(ctx context.Context, stationID string) (entities.PollingStationState, error)
	SetStationState(ctx context.Context, state entities.PollingStationState) error
	ListStationStates(ctx context.Context, processID string) ([]entities.PollingStationState, error)
}

// StationLocker serializes all reads and mutations for one station.
// Distinct stations lock independently so submissions to different stations
// stay fully parallel.
type StationLocker interface {
	LockStation(stationID string) (unlock func())
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = events.Envelope

const (
	// StationChangedTopic carries consensus-state transitions for polling
	// stations. Envelope payload is a StationChangedPayload.
	StationChangedTopic = "election.station_changed"
	StationChangedType  = "election.station_changed.v1"
)

// StationChangedPayload identifies the station whose verified state moved.
type StationChangedPayload struct {
	ProcessID        string `json:"process_id"`
	PollingStationID string `json:"polling_station_id"`
	Status           string `json:"status"`
}

// EventPublisher hands envelopes to the in-process bus. Publish must never
// block the caller on slow consumers.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a handler for a topic; delivery runs on a bus
// goroutine until ctx is cancelled.
type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}

// TallyPusher fans a serialized tally payload out to every dashboard
// subscriber of a voting process.
type TallyPusher interface {
	Broadcast(processID string, payload []byte)
}
