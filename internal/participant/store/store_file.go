package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"rollcall/internal/participant"
)

// FileStore persists the whole collection as a single pretty-printed JSON
// array, matching the on-disk format the dashboard tooling already reads.
// Every append is a read-modify-write of the full array under the store
// mutex; the rewrite goes through a temp file and rename so a crash mid-write
// leaves the previous contents intact.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewFileStore opens (and if needed initializes) the JSON file at path.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	s := &FileStore{path: path, logger: logger}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.writeLocked([]participant.Record{}); err != nil {
			return nil, fmt.Errorf("initialize data file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat data file: %w", err)
	}
	return s, nil
}

func (s *FileStore) Append(ctx context.Context, rec participant.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readLocked(ctx)
	records = append(records, rec)
	if err := s.writeLocked(records); err != nil {
		return fmt.Errorf("append participant: %w", err)
	}
	return nil
}

func (s *FileStore) ListAll(ctx context.Context) ([]participant.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(ctx), nil
}

// readLocked loads the collection. An unreadable or corrupt file is reset to
// an empty array rather than surfaced as an error, so the intake endpoints
// keep accepting registrations. Dashboards and tooling that read the file
// depend on it always holding a valid JSON array.
func (s *FileStore) readLocked(ctx context.Context) []participant.Record {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.WarnContext(ctx, "data file unreadable, resetting to empty",
			"path", s.path,
			"error", err,
		)
		_ = s.writeLocked([]participant.Record{})
		return []participant.Record{}
	}

	var records []participant.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		s.logger.WarnContext(ctx, "data file corrupted, resetting to empty",
			"path", s.path,
			"error", err,
		)
		_ = s.writeLocked([]participant.Record{})
		return []participant.Record{}
	}
	if records == nil {
		records = []participant.Record{}
	}
	return records
}

func (s *FileStore) writeLocked(records []participant.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal participants: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}
