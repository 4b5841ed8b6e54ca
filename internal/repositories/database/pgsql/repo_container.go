package pgsql

import (
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StoreProvider holds the pgsql-backed store implementations needed to wire
// the event-sourced repository and the numbering service.
type StoreProvider struct {
	EventStore    portsrepo.EventStore
	SnapshotStore portsrepo.SnapshotStore
	SequenceRepo  portsrepo.SequenceRepository
}

// NewStoreProvider constructs every pgsql store over one shared pool.
func NewStoreProvider(dbPool *pgxpool.Pool) StoreProvider {
	return StoreProvider{
		EventStore:    NewPgxEventStore(dbPool),
		SnapshotStore: NewPgxSnapshotStore(dbPool),
		SequenceRepo:  NewPgxSequenceRepository(dbPool),
	}
}
