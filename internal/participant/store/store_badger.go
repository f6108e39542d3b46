package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"rollcall/internal/participant"
)

var badgerKeyPrefix = []byte("participant/")

// BadgerStore keeps the collection in an embedded Badger database. Records
// are written under big-endian sequence keys so the default key iteration
// order is exactly append order.
type BadgerStore struct {
	mu   sync.Mutex
	db   *badger.DB
	next uint64
}

// NewBadgerStore opens the database at dir (in-memory when dir is empty) and
// recovers the next sequence number from the highest existing key.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	s := &BadgerStore{db: db}
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = true
		opts.Prefix = badgerKeyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		// Seek past the highest possible key, then step back to the last one.
		seekKey := append(append([]byte{}, badgerKeyPrefix...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		it.Seek(seekKey)
		if it.ValidForPrefix(badgerKeyPrefix) {
			key := it.Item().Key()
			s.next = binary.BigEndian.Uint64(key[len(badgerKeyPrefix):]) + 1
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("recover badger sequence: %w", err)
	}
	return s, nil
}

func (s *BadgerStore) Append(_ context.Context, rec participant.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal participant: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := make([]byte, len(badgerKeyPrefix)+8)
	copy(key, badgerKeyPrefix)
	binary.BigEndian.PutUint64(key[len(badgerKeyPrefix):], s.next)

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("append participant: %w", err)
	}
	s.next++
	return nil
}

func (s *BadgerStore) ListAll(_ context.Context) ([]participant.Record, error) {
	records := []participant.Record{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = badgerKeyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(badgerKeyPrefix); it.ValidForPrefix(badgerKeyPrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec participant.Record
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("unmarshal participant: %w", err)
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return records, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
