package workers

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/adapters/memory"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/application/queries"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/ports"
)

// directSubscriber invokes the handler synchronously so tests observe the
// broadcast without racing bus goroutines.
type directSubscriber struct {
	handler func(context.Context, ports.EventEnvelope) error
}

func (s *directSubscriber) Subscribe(_ context.Context, _ string, _ string, handler func(context.Context, ports.EventEnvelope) error) error {
	s.handler = handler
	return nil
}

type capturePusher struct {
	mu       sync.Mutex
	messages map[string][][]byte
}

func (p *capturePusher) Broadcast(processID string, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.messages == nil {
		p.messages = make(map[string][][]byte)
	}
	p.messages[processID] = append(p.messages[processID], append([]byte(nil), payload...))
}

func (p *capturePusher) forProcess(processID string) [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messages[processID]
}

func TestBroadcasterRecomputesAndPushes(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	now := time.Date(2027, 8, 12, 21, 0, 0, 0, time.UTC)

	err := store.SaveProcess(ctx, entities.VotingProcess{
		ProcessID:       "proc-1",
		Title:           "Presidential Election 2027",
		Position:        "President",
		Candidates:      []entities.Candidate{{CandidateID: "c1", Name: "Alice"}},
		PollingStations: []string{"st-001"},
		Status:          entities.ProcessStatusActive,
		CreatedAt:       now.Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed process: %v", err)
	}
	err = store.SetStationState(ctx, entities.PollingStationState{
		PollingStationID: "st-001",
		ProcessID:        "proc-1",
		Status:           entities.StationStatusVerified,
		VerifiedResults:  map[string]int{"Alice": 77, "spoilt": 2},
		ConfidenceLevel:  1,
		WitnessCount:     3,
	})
	if err != nil {
		t.Fatalf("seed station: %v", err)
	}

	subscriber := &directSubscriber{}
	pusher := &capturePusher{}
	broadcaster := TallyBroadcaster{
		Subscriber: subscriber,
		Tallies:    queries.TallyUseCase{Processes: store, Stations: store, Clock: sweepClock{now: now}},
		Push:       pusher,
	}
	if err := broadcaster.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if subscriber.handler == nil {
		t.Fatalf("start must register the handler")
	}

	err = subscriber.handler(ctx, ports.EventEnvelope{
		EventID:   "evt-1",
		EventType: ports.StationChangedType,
		Payload: ports.StationChangedPayload{
			ProcessID:        "proc-1",
			PollingStationID: "st-001",
			Status:           string(entities.StationStatusVerified),
		},
	})
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}

	messages := pusher.forProcess("proc-1")
	if len(messages) != 1 {
		t.Fatalf("expected one pushed message, got %d", len(messages))
	}
	var frame struct {
		Type string         `json:"type"`
		Data map[string]int `json:"data"`
	}
	if err := json.Unmarshal(messages[0], &frame); err != nil {
		t.Fatalf("decode pushed frame: %v", err)
	}
	if frame.Type != "tally_update" {
		t.Fatalf("expected tally_update frame, got %q", frame.Type)
	}
	if frame.Data["Alice"] != 77 {
		t.Fatalf("pushed aggregate must reflect verified results, got %v", frame.Data)
	}
}

func TestBroadcasterDecodesJSONPayload(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	now := time.Date(2027, 8, 12, 21, 0, 0, 0, time.UTC)

	err := store.SaveProcess(ctx, entities.VotingProcess{
		ProcessID:       "proc-1",
		Title:           "Ward Rep",
		Position:        "Representative",
		Candidates:      []entities.Candidate{{CandidateID: "c1", Name: "Bob"}},
		PollingStations: []string{"st-001"},
		Status:          entities.ProcessStatusActive,
		CreatedAt:       now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("seed process: %v", err)
	}

	subscriber := &directSubscriber{}
	pusher := &capturePusher{}
	broadcaster := TallyBroadcaster{
		Subscriber: subscriber,
		Tallies:    queries.TallyUseCase{Processes: store, Stations: store, Clock: sweepClock{now: now}},
		Push:       pusher,
	}
	if err := broadcaster.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	// A broker delivery arrives as generic JSON, not the typed struct.
	err = subscriber.handler(ctx, ports.EventEnvelope{
		EventID:   "evt-2",
		EventType: ports.StationChangedType,
		Payload: map[string]any{
			"process_id":         "proc-1",
			"polling_station_id": "st-001",
			"status":             "pending",
		},
	})
	if err != nil {
		t.Fatalf("handle roundtripped event: %v", err)
	}
	if len(pusher.forProcess("proc-1")) != 1 {
		t.Fatalf("roundtripped payload must still broadcast")
	}
}
