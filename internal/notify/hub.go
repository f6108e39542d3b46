// Package notify fans newly accepted participant records out to connected
// dashboard viewers. Delivery is best-effort: a subscriber that connects
// after a broadcast never sees that record here and must rely on its own
// bulk fetch instead.
package notify

import (
	"log/slog"
	"sync"

	"rollcall/internal/participant"
	"rollcall/internal/platform/metrics"
)

const subscriberBuffer = 16

// Hub is the connection manager for dashboard subscribers. Callers construct
// one per process and pass it to whatever needs to broadcast; there is no
// package-level shared instance.
type Hub struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	subs   map[uint64]chan participant.Record
	nextID uint64
	closed bool
}

func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		logger:  logger,
		metrics: m,
		subs:    make(map[uint64]chan participant.Record),
	}
}

// Subscribe registers a new viewer and returns its receive channel plus a
// cancel function. Cancel is idempotent and closes the channel.
func (h *Hub) Subscribe() (<-chan participant.Record, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		ch := make(chan participant.Record)
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	ch := make(chan participant.Record, subscriberBuffer)
	h.subs[id] = ch
	if h.metrics != nil {
		h.metrics.DashboardSubscribers.Inc()
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[id]; !ok {
				return
			}
			delete(h.subs, id)
			close(ch)
			if h.metrics != nil {
				h.metrics.DashboardSubscribers.Dec()
			}
		})
	}
	return ch, cancel
}

// Broadcast delivers rec to every currently connected subscriber without
// blocking. A subscriber whose buffer is full misses the record; the HTTP
// response to the submitter must never wait on a slow viewer.
func (h *Hub) Broadcast(rec participant.Record) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	for id, ch := range h.subs {
		select {
		case ch <- rec:
			if h.metrics != nil {
				h.metrics.BroadcastsSent.Inc()
			}
		default:
			if h.metrics != nil {
				h.metrics.BroadcastsDropped.Inc()
			}
			h.logger.Warn("dropping broadcast for slow subscriber",
				"subscriber_id", id,
				"participant_id", rec.ID,
			)
		}
	}
}

// SubscriberCount reports how many viewers are currently connected.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects all subscribers. Further broadcasts are no-ops and
// further subscriptions receive an already-closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
		if h.metrics != nil {
			h.metrics.DashboardSubscribers.Dec()
		}
	}
}
