package store

import (
	"context"
	"sync"

	"rollcall/internal/participant"
)

// MemoryStore keeps the collection in a slice. It intentionally favors
// clarity over performance and exists for tests and local wiring.
type MemoryStore struct {
	mu      sync.RWMutex
	records []participant.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, rec participant.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]participant.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]participant.Record{}, s.records...), nil
}
