package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// EventStore is the durable append-only stream storage. Stream keys embed the
// tenant identity so two tenants' streams can never collide or be cross-read.
type EventStore interface {
	// AppendToStream atomically appends events at positions
	// expectedVersion+1, expectedVersion+2, ... The append fails with
	// apperrors.ErrConcurrency if another writer has appended since the
	// caller observed expectedVersion. All-or-none: a failed or cancelled
	// append leaves no partial batch behind.
	AppendToStream(ctx context.Context, streamID string, expectedVersion int64, events []domain.Event) error

	// ReadStream returns the committed events with position > fromVersion in
	// strict stream order. A missing stream yields an empty slice, not an
	// error.
	ReadStream(ctx context.Context, streamID string, fromVersion int64) ([]domain.Event, error)

	// StreamExists reports whether the stream has at least one committed
	// event, independent of snapshot state.
	StreamExists(ctx context.Context, streamID string) (bool, error)
}

// SnapshotStore persists advisory aggregate snapshots in a stream logically
// separate from the events.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, streamID string, snapshot domain.Snapshot) error

	// LatestSnapshot returns nil when no snapshot exists for the stream.
	LatestSnapshot(ctx context.Context, streamID string) (*domain.Snapshot, error)
}

// SequenceRepository issues durable, monotonically increasing counter values
// scoped by tenant, document type and period. It replaces the in-process
// counter that would not survive restarts or multiple service instances.
type SequenceRepository interface {
	NextValue(ctx context.Context, tenantID, docType, periodKey string) (int64, error)
}

// JournalRepository is the aggregate-facing persistence contract the command
// handlers use. GetByID returns (nil, nil) for a never-created journal.
type JournalRepository interface {
	Save(ctx context.Context, journal *domain.JournalEntry) error
	GetByID(ctx context.Context, tenantID, journalID string) (*domain.JournalEntry, error)
	Exists(ctx context.Context, tenantID, journalID string) (bool, error)
}
