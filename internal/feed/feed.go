// Package feed maintains the dashboard's merged view: one bulk fetch of the
// participant collection combined with the live new_participant stream into
// a single newest-first, duplicate-free list.
package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"rollcall/internal/participant"
)

// Feed is a headless dashboard client. The bulk fetch and the subscription
// can overlap; records seen on both paths are de-duplicated by id.
type Feed struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
	view []participant.Record

	cancel context.CancelFunc
	done   chan struct{}
}

// Open subscribes to the live stream, performs the initial bulk fetch, and
// returns the merged feed. A failed bulk fetch fails Open; the live stream's
// health is independent and stream errors only end future delivery.
func Open(ctx context.Context, baseURL string, logger *slog.Logger) (*Feed, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	f := &Feed{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  logger,
		seen:    make(map[string]struct{}),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	// Subscribe before the bulk fetch. A record accepted in between then
	// shows up twice, never zero times.
	stream, err := f.openStream(streamCtx)
	if err != nil {
		cancel()
		return nil, err
	}
	go f.consume(streamCtx, stream)

	records, err := f.fetchAll(ctx)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.mergeBulk(records)

	return f, nil
}

// Snapshot returns a copy of the current newest-first view.
func (f *Feed) Snapshot() []participant.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]participant.Record{}, f.view...)
}

// Close releases the live subscription and waits for the consumer to stop.
func (f *Feed) Close() {
	f.cancel()
	<-f.done
}

func (f *Feed) fetchAll(ctx context.Context) ([]participant.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/api/participants", nil)
	if err != nil {
		return nil, fmt.Errorf("build bulk fetch request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bulk fetch participants: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bulk fetch participants: unexpected status %d", resp.StatusCode)
	}

	var records []participant.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	return records, nil
}

// mergeBulk folds the bulk snapshot in behind any records that already
// arrived live, newest first within the snapshot. The snapshot arrives in
// append order, so it is reversed before the stable sort to keep createdAt
// ties in newest-insertion-first order.
func (f *Feed) mergeBulk(records []participant.Record) {
	sorted := make([]participant.Record, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		sorted = append(sorted, records[i])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range sorted {
		if _, dup := f.seen[rec.ID]; dup {
			continue
		}
		f.seen[rec.ID] = struct{}{}
		f.view = append(f.view, rec)
	}
}

func (f *Feed) prependLive(rec participant.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.seen[rec.ID]; dup {
		return
	}
	f.seen[rec.ID] = struct{}{}
	f.view = append([]participant.Record{rec}, f.view...)
}

func (f *Feed) openStream(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/api/events", nil)
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("open event stream: unexpected status %d", resp.StatusCode)
	}
	return resp, nil
}

// consume parses server-sent-event frames off the stream until it ends.
func (f *Feed) consume(ctx context.Context, resp *http.Response) {
	defer close(f.done)
	defer resp.Body.Close()

	var event, data string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if event == "new_participant" && data != "" {
				var rec participant.Record
				if err := json.Unmarshal([]byte(data), &rec); err != nil {
					f.logger.Warn("discarding malformed event payload", "error", err)
				} else {
					f.prependLive(rec)
				}
			}
			event, data = "", ""
		case strings.HasPrefix(line, ":"):
			// heartbeat comment
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		f.logger.Warn("event stream ended", "error", err)
	}
}
