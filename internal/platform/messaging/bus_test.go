package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/Philip38-hub/OYA-sub000/internal/shared/events"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.Envelope, 1)
	err := bus.Subscribe(ctx, "topic-a", "cg-test", func(_ context.Context, event events.Envelope) error {
		received <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := bus.Publish(ctx, "topic-a", events.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case event := <-received:
		if event.EventID != "evt-1" {
			t.Fatalf("unexpected event %q", event.EventID)
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber never received the event")
	}
}

func TestPublishToUnknownTopicIsNoop(t *testing.T) {
	bus := NewBus(nil)
	if err := bus.Publish(context.Background(), "nobody-listens", events.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("publish without subscribers must not fail: %v", err)
	}
}

func TestSubscriberRemovedOnCancel(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())

	err := bus.Subscribe(ctx, "topic-a", "cg-test", func(context.Context, events.Envelope) error {
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancel()

	// The consumer goroutine deregisters on cancellation; wait for it.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		bus.mu.RLock()
		remaining := len(bus.subscribers["topic-a"])
		bus.mu.RUnlock()
		if remaining == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscriber was not removed after cancel")
}
