package notify

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/participant"
)

func newSSEServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	handler := NewSSEHandler(hub, discardLogger())
	handler.heartbeat = 50 * time.Millisecond
	r := chi.NewRouter()
	handler.Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// readEvent scans frames until one complete named event arrives.
func readEvent(t *testing.T, reader *bufio.Reader, timeout time.Duration) (string, string) {
	t.Helper()

	type frame struct{ event, data string }
	result := make(chan frame, 1)
	go func() {
		var event, data string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "":
				if event != "" {
					result <- frame{event, data}
					return
				}
				event, data = "", ""
			case strings.HasPrefix(line, ":"):
				// comment frame
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
	}()

	select {
	case f := <-result:
		return f.event, f.data
	case <-time.After(timeout):
		t.Fatal("timed out waiting for event")
		return "", ""
	}
}

func TestSSEStreamDeliversNewParticipant(t *testing.T) {
	hub := NewHub(discardLogger(), nil)
	defer hub.Close()
	srv := newSSEServer(t, hub)

	resp, err := http.Get(srv.URL + "/api/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Wait for the subscription to be registered before broadcasting.
	require.Eventually(t, func() bool { return hub.SubscriberCount() == 1 },
		time.Second, 10*time.Millisecond)

	year := 3
	sent := participant.Record{
		ID:          "rec-1",
		FullName:    "Jane Doe",
		Email:       "jane@outlook.com",
		Phone:       "+14155550100",
		Role:        participant.RoleStudent,
		Department:  "CS",
		CurrentYear: &year,
		CreatedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
	hub.Broadcast(sent)

	event, data := readEvent(t, bufio.NewReader(resp.Body), 2*time.Second)
	assert.Equal(t, "new_participant", event)

	var got participant.Record
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	assert.Equal(t, sent, got)
}

func TestSSEStreamUnsubscribesOnDisconnect(t *testing.T) {
	hub := NewHub(discardLogger(), nil)
	defer hub.Close()
	srv := newSSEServer(t, hub)

	resp, err := http.Get(srv.URL + "/api/events")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.SubscriberCount() == 1 },
		time.Second, 10*time.Millisecond)

	resp.Body.Close()

	assert.Eventually(t, func() bool { return hub.SubscriberCount() == 0 },
		2*time.Second, 10*time.Millisecond, "disconnect should release the subscription")
}
