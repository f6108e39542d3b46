package httptransport_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/notify"
	"rollcall/internal/participant"
	participantHandler "rollcall/internal/participant/handler"
	"rollcall/internal/participant/service"
	"rollcall/internal/participant/store"
	httptransport "rollcall/internal/transport/http"
)

func newServer(t *testing.T) (*httptest.Server, *notify.Hub) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hub := notify.NewHub(logger, nil)
	t.Cleanup(hub.Close)

	svc := service.New(store.NewMemoryStore(), &notify.Dispatcher{Hub: hub}, logger)
	router := httptransport.NewRouter(logger,
		participantHandler.New(svc, logger),
		notify.NewSSEHandler(hub, logger),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, hub
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func TestRegistrationEndToEnd(t *testing.T) {
	srv, hub := newServer(t)

	// Connect a dashboard before submitting.
	stream, err := http.Get(srv.URL + "/api/events")
	require.NoError(t, err)
	defer stream.Body.Close()
	require.Eventually(t, func() bool { return hub.SubscriberCount() == 1 },
		time.Second, 10*time.Millisecond)

	resp := postJSON(t, srv.URL+"/api/register", map[string]any{
		"fullName":    "Jane Doe",
		"email":       "jane@outlook.com",
		"phone":       "+14155550100",
		"role":        "Student",
		"department":  "CS",
		"currentYear": "3",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Message     string             `json:"message"`
		Participant participant.Record `json:"participant"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "Registration successful", created.Message)
	assert.Equal(t, "Jane Doe", created.Participant.FullName)
	assert.Empty(t, created.Participant.CompanyName)
	assert.Nil(t, created.Participant.YearsOfExperience)
	require.NotNil(t, created.Participant.CurrentYear)
	assert.Equal(t, 3, *created.Participant.CurrentYear)

	// The connected dashboard receives the same record.
	broadcast := readNewParticipant(t, stream.Body, 2*time.Second)
	assert.Equal(t, created.Participant, broadcast)

	// And the bulk fetch returns it.
	list, err := http.Get(srv.URL + "/api/participants")
	require.NoError(t, err)
	defer list.Body.Close()
	require.Equal(t, http.StatusOK, list.StatusCode)

	var records []participant.Record
	require.NoError(t, json.NewDecoder(list.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, created.Participant, records[0])
}

func TestRegistrationValidationEndToEnd(t *testing.T) {
	srv, _ := newServer(t)

	resp := postJSON(t, srv.URL+"/api/register", map[string]any{
		"fullName": "Jane Doe",
		"email":    "jane@proton.me",
		"phone":    "123",
		"role":     "Student",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Validation failed", body.Message)
	assert.Contains(t, body.Errors, "email")
	assert.Contains(t, body.Errors, "phone")
	assert.Contains(t, body.Errors, "department")
	assert.Contains(t, body.Errors, "currentYear")

	// Nothing was persisted.
	list, err := http.Get(srv.URL + "/api/participants")
	require.NoError(t, err)
	defer list.Body.Close()
	var records []participant.Record
	require.NoError(t, json.NewDecoder(list.Body).Decode(&records))
	assert.Empty(t, records)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv, _ := newServer(t)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
}

func readNewParticipant(t *testing.T, body io.Reader, timeout time.Duration) participant.Record {
	t.Helper()

	result := make(chan participant.Record, 1)
	go func() {
		reader := bufio.NewReader(body)
		var event, data string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "":
				if event == "new_participant" {
					var rec participant.Record
					if json.Unmarshal([]byte(data), &rec) == nil {
						result <- rec
						return
					}
				}
				event, data = "", ""
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
	}()

	select {
	case rec := <-result:
		return rec
	case <-time.After(timeout):
		t.Fatal("timed out waiting for new_participant event")
		return participant.Record{}
	}
}
