package push

import (
	"log/slog"
	"sync"
	"time"
)

const subscriberBuffer = 16

// Subscriber is one dashboard connection attached to a voting process. The
// transport drains Messages; Closed flips when the hub drops the subscriber.
type Subscriber struct {
	ProcessID   string
	Messages    chan []byte
	ConnectedAt time.Time
}

// Hub maintains per-process subscriber sets for the tally push channel.
// Broadcast is fire-and-forget: a subscriber that cannot keep up has its
// pending message dropped rather than blocking the broadcaster, because every
// frame carries the full current tally and the next frame supersedes it.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscriber]struct{}
	startedAt   time.Time
	logger      *slog.Logger
}

// Stats is the operational snapshot served by the stats endpoint.
type Stats struct {
	TotalSubscribers int            `json:"total_subscribers"`
	ByProcess        map[string]int `json:"subscribers_by_process"`
	UptimeSeconds    int64          `json:"uptime_seconds"`
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[*Subscriber]struct{}),
		startedAt:   time.Now().UTC(),
		logger:      logger,
	}
}

// Subscribe attaches a new connection to a voting process.
func (h *Hub) Subscribe(processID string) *Subscriber {
	sub := &Subscriber{
		ProcessID:   processID,
		Messages:    make(chan []byte, subscriberBuffer),
		ConnectedAt: time.Now().UTC(),
	}

	h.mu.Lock()
	set, ok := h.subscribers[processID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.subscribers[processID] = set
	}
	set[sub] = struct{}{}
	count := len(set)
	h.mu.Unlock()

	if h.logger != nil {
		h.logger.Info("push subscriber attached",
			"event", "push_subscribe",
			"module", "internal/platform/push",
			"layer", "platform",
			"process_id", processID,
			"subscriber_count", count,
		)
	}
	return sub
}

// Unsubscribe detaches a connection; safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	set, ok := h.subscribers[sub.ProcessID]
	if ok {
		if _, present := set[sub]; present {
			delete(set, sub)
			close(sub.Messages)
		}
		if len(set) == 0 {
			delete(h.subscribers, sub.ProcessID)
		}
	}
	h.mu.Unlock()
}

// Broadcast fans payload out to every subscriber of processID. Sends stay
// under the read lock: they cannot block (buffered send with default) and the
// lock keeps Unsubscribe from closing a channel mid-send.
func (h *Hub) Broadcast(processID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[processID] {
		select {
		case sub.Messages <- payload:
		default:
			if h.logger != nil {
				h.logger.Warn("dropping tally update for slow subscriber",
					"event", "push_broadcast_drop",
					"module", "internal/platform/push",
					"layer", "platform",
					"process_id", processID,
				)
			}
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := Stats{
		ByProcess:     make(map[string]int, len(h.subscribers)),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	}
	for processID, set := range h.subscribers {
		stats.ByProcess[processID] = len(set)
		stats.TotalSubscribers += len(set)
	}
	return stats
}
