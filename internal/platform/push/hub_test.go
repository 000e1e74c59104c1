package push

import (
	"fmt"
	"sync"
	"testing"
)

func TestBroadcastReachesProcessSubscribersOnly(t *testing.T) {
	hub := NewHub(nil)
	a := hub.Subscribe("proc-a")
	b := hub.Subscribe("proc-b")

	hub.Broadcast("proc-a", []byte("update-a"))

	select {
	case msg := <-a.Messages:
		if string(msg) != "update-a" {
			t.Fatalf("unexpected payload %q", msg)
		}
	default:
		t.Fatalf("proc-a subscriber received nothing")
	}
	select {
	case msg := <-b.Messages:
		t.Fatalf("proc-b subscriber must not receive proc-a updates, got %q", msg)
	default:
	}
}

func TestBroadcastDropsForSlowSubscriber(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("proc-a")

	// Fill the buffer without draining; the overflow frame must be dropped
	// without blocking the broadcaster.
	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Broadcast("proc-a", []byte(fmt.Sprintf("frame-%d", i)))
	}

	received := 0
	for {
		select {
		case <-sub.Messages:
			received++
			continue
		default:
		}
		break
	}
	if received != subscriberBuffer {
		t.Fatalf("expected exactly %d buffered frames, got %d", subscriberBuffer, received)
	}
}

func TestUnsubscribeClosesChannelOnce(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("proc-a")

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	if _, open := <-sub.Messages; open {
		t.Fatalf("channel must be closed after unsubscribe")
	}

	// Broadcasting to a process with no subscribers is a no-op.
	hub.Broadcast("proc-a", []byte("late"))
}

func TestStatsCountsSubscribers(t *testing.T) {
	hub := NewHub(nil)
	a1 := hub.Subscribe("proc-a")
	_ = hub.Subscribe("proc-a")
	_ = hub.Subscribe("proc-b")

	stats := hub.Stats()
	if stats.TotalSubscribers != 3 {
		t.Fatalf("expected 3 subscribers, got %d", stats.TotalSubscribers)
	}
	if stats.ByProcess["proc-a"] != 2 || stats.ByProcess["proc-b"] != 1 {
		t.Fatalf("unexpected per-process counts: %v", stats.ByProcess)
	}

	hub.Unsubscribe(a1)
	stats = hub.Stats()
	if stats.TotalSubscribers != 2 {
		t.Fatalf("expected 2 subscribers after unsubscribe, got %d", stats.TotalSubscribers)
	}
}

func TestConcurrentBroadcastAndChurn(t *testing.T) {
	hub := NewHub(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sub := hub.Subscribe("proc-a")
				hub.Broadcast("proc-a", []byte("frame"))
				hub.Unsubscribe(sub)
			}
		}()
	}
	wg.Wait()

	if stats := hub.Stats(); stats.TotalSubscribers != 0 {
		t.Fatalf("expected no subscribers after churn, got %d", stats.TotalSubscribers)
	}
}
