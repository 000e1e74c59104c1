package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	application "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/application"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/application/queries"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/ports"
)

const defaultBroadcasterCG = "witness-consensus-tally-cg"

// TallyBroadcaster consumes station-changed events, recomputes the tally for
// the affected process and hands the serialized update to every dashboard
// subscriber. It runs on bus goroutines, fully decoupled from the submission
// path: a slow or disconnected subscriber can never block the engine.
type TallyBroadcaster struct {
	Subscriber    ports.EventSubscriber
	Tallies       queries.TallyUseCase
	Push          ports.TallyPusher
	Encode        func(entities.Tally) ([]byte, error)
	ConsumerGroup string
	Logger        *slog.Logger
}

// Start subscribes the broadcaster to station consensus transitions.
func (b TallyBroadcaster) Start(ctx context.Context) error {
	logger := application.ResolveLogger(b.Logger)
	group := strings.TrimSpace(b.ConsumerGroup)
	if group == "" {
		group = defaultBroadcasterCG
	}
	if err := b.Subscriber.Subscribe(ctx, ports.StationChangedTopic, group, b.handleStationChanged); err != nil {
		logger.Error("tally broadcaster subscribe failed",
			"event", "consensus_broadcaster_subscribe_failed",
			"module", "election-core/witness-consensus",
			"layer", "worker",
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("tally broadcaster subscription active",
		"event", "consensus_broadcaster_started",
		"module", "election-core/witness-consensus",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (b TallyBroadcaster) handleStationChanged(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(b.Logger)

	payload, err := decodeStationChanged(event.Payload)
	if err != nil {
		logger.Error("station changed payload decode failed",
			"event", "consensus_broadcaster_decode_failed",
			"module", "election-core/witness-consensus",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}

	tally, err := b.Tallies.GetTally(ctx, payload.ProcessID)
	if err != nil {
		logger.Error("tally recompute for broadcast failed",
			"event", "consensus_broadcaster_tally_failed",
			"module", "election-core/witness-consensus",
			"layer", "worker",
			"process_id", payload.ProcessID,
			"error", err.Error(),
		)
		return err
	}

	message, err := b.encode(tally)
	if err != nil {
		return err
	}
	b.Push.Broadcast(payload.ProcessID, message)

	logger.Info("tally update broadcast",
		"event", "consensus_broadcaster_dispatched",
		"module", "election-core/witness-consensus",
		"layer", "worker",
		"process_id", payload.ProcessID,
		"polling_station_id", payload.PollingStationID,
		"station_status", payload.Status,
	)
	return nil
}

func (b TallyBroadcaster) encode(tally entities.Tally) ([]byte, error) {
	if b.Encode != nil {
		return b.Encode(tally)
	}
	return json.Marshal(map[string]any{
		"type": "tally_update",
		"data": tally.AggregatedTally,
	})
}

// decodeStationChanged accepts both the in-process typed payload and the
// JSON-roundtripped form an external broker would deliver.
func decodeStationChanged(payload any) (ports.StationChangedPayload, error) {
	if typed, ok := payload.(ports.StationChangedPayload); ok {
		return typed, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return ports.StationChangedPayload{}, err
	}
	var decoded ports.StationChangedPayload
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ports.StationChangedPayload{}, err
	}
	return decoded, nil
}
