package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const heartbeatInterval = 25 * time.Second

// SSEHandler exposes the hub as a server-sent-events stream. Each connected
// dashboard holds one GET /api/events request open and receives one
// new_participant event per accepted registration.
type SSEHandler struct {
	hub       *Hub
	logger    *slog.Logger
	heartbeat time.Duration
}

func NewSSEHandler(hub *Hub, logger *slog.Logger) *SSEHandler {
	return &SSEHandler{hub: hub, logger: logger, heartbeat: heartbeatInterval}
}

// Register mounts the event stream route.
func (h *SSEHandler) Register(r chi.Router) {
	r.Get("/api/events", h.handleStream)
}

func (h *SSEHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel := h.hub.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Comment frame confirms the stream is live before any event arrives.
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case rec, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(rec)
			if err != nil {
				h.logger.ErrorContext(ctx, "failed to marshal broadcast record",
					"participant_id", rec.ID,
					"error", err,
				)
				continue
			}
			fmt.Fprintf(w, "event: new_participant\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
