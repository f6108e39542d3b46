package store

import (
	"context"

	"rollcall/internal/participant"
)

// Store is the append-only participant collection. Implementations must keep
// the collection durable across restarts and must serialize concurrent
// appends so a read-modify-write backend never drops a record. Records are
// never reordered or mutated in place.
//
// Stores are interface-driven so the file-backed default can be swapped for
// an embedded key-value store or a real database without rewiring business
// code.
type Store interface {
	Append(ctx context.Context, rec participant.Record) error
	ListAll(ctx context.Context) ([]participant.Record, error)
}
