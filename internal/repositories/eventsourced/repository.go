// Package eventsourced bridges pure aggregates to durable storage: append
// with optimistic concurrency on save, snapshot-then-tail-replay on load.
package eventsourced

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

// DefaultSnapshotInterval is how many events pass between snapshots unless
// configured otherwise.
const DefaultSnapshotInterval = 50

// StreamID builds the stream key for an aggregate. The tenant identity is
// embedded so two tenants' streams can never collide or be cross-read.
func StreamID(tenantID, aggregateType, aggregateID string) string {
	return fmt.Sprintf("%s/%s/%s", tenantID, aggregateType, aggregateID)
}

// Repository orchestrates save and load for one aggregate type. Store clients
// are explicit constructor-injected dependencies, never ambient singletons.
type Repository[A domain.EventSourced] struct {
	events           portsrepo.EventStore
	snapshots        portsrepo.SnapshotStore // nil disables snapshotting
	factory          func() A
	snapshotInterval int64
	logger           *slog.Logger
}

// NewRepository creates a repository for aggregates produced by factory.
// A snapshotInterval <= 0 selects DefaultSnapshotInterval; a nil snapshot
// store disables snapshotting entirely.
func NewRepository[A domain.EventSourced](
	events portsrepo.EventStore,
	snapshots portsrepo.SnapshotStore,
	factory func() A,
	snapshotInterval int64,
	logger *slog.Logger,
) *Repository[A] {
	if snapshotInterval <= 0 {
		snapshotInterval = DefaultSnapshotInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository[A]{
		events:           events,
		snapshots:        snapshots,
		factory:          factory,
		snapshotInterval: snapshotInterval,
		logger:           logger,
	}
}

// Save appends the aggregate's uncommitted events to its stream with an
// expected-revision check; apperrors.ErrConcurrency propagates to the caller,
// which is expected to reload and retry. Saving with no pending events is a
// no-op. After a successful append the events are marked committed and, when
// the new version crosses a snapshot interval boundary, a snapshot is
// written best-effort: its failure is logged and swallowed, never failing
// the save that triggered it.
func (r *Repository[A]) Save(ctx context.Context, aggregate A) error {
	pending := aggregate.UncommittedEvents()
	if len(pending) == 0 {
		return nil
	}

	expectedVersion := aggregate.Version() - int64(len(pending))
	streamID := StreamID(aggregate.TenantID(), aggregate.AggregateType(), aggregate.ID())
	if err := r.events.AppendToStream(ctx, streamID, expectedVersion, pending); err != nil {
		return err
	}
	aggregate.MarkEventsCommitted()

	r.maybeSnapshot(ctx, streamID, aggregate, expectedVersion)
	return nil
}

// GetByID reconstructs the aggregate from the latest snapshot plus the tail
// of events past it, or from genesis when no usable snapshot exists. A
// never-created aggregate yields found == false, not an error.
func (r *Repository[A]) GetByID(ctx context.Context, tenantID, aggregateID string) (A, bool, error) {
	var zero A

	aggregate := r.factory()
	streamID := StreamID(tenantID, aggregate.AggregateType(), aggregateID)

	var fromVersion int64
	if r.snapshots != nil {
		snapshot, err := r.snapshots.LatestSnapshot(ctx, streamID)
		if err != nil {
			// Snapshots are advisory; fall back to full replay.
			r.logger.Warn("failed to load snapshot, replaying from genesis",
				slog.String("stream_id", streamID), slog.String("error", err.Error()))
		} else if snapshot != nil {
			if err := aggregate.RestoreSnapshot(snapshot.State, snapshot.Version); err != nil {
				r.logger.Warn("failed to restore snapshot, replaying from genesis",
					slog.String("stream_id", streamID), slog.String("error", err.Error()))
				aggregate = r.factory()
			} else {
				fromVersion = snapshot.Version
			}
		}
	}

	events, err := r.events.ReadStream(ctx, streamID, fromVersion)
	if err != nil {
		return zero, false, fmt.Errorf("failed to read stream %s: %w", streamID, err)
	}
	if len(events) == 0 && aggregate.Version() == 0 {
		return zero, false, nil
	}
	if err := aggregate.LoadFromHistory(events); err != nil {
		return zero, false, err
	}
	return aggregate, true, nil
}

// Exists reports whether the aggregate's stream has at least one committed
// event, independent of snapshot state.
func (r *Repository[A]) Exists(ctx context.Context, tenantID, aggregateID string) (bool, error) {
	aggregate := r.factory()
	return r.events.StreamExists(ctx, StreamID(tenantID, aggregate.AggregateType(), aggregateID))
}

func (r *Repository[A]) maybeSnapshot(ctx context.Context, streamID string, aggregate A, previousVersion int64) {
	if r.snapshots == nil {
		return
	}
	newVersion := aggregate.Version()
	if newVersion/r.snapshotInterval == previousVersion/r.snapshotInterval {
		return
	}
	state, err := aggregate.SnapshotState()
	if err != nil {
		r.logger.Warn("failed to serialize snapshot state",
			slog.String("stream_id", streamID), slog.String("error", err.Error()))
		return
	}
	snapshot := domain.Snapshot{
		AggregateID:   aggregate.ID(),
		AggregateType: aggregate.AggregateType(),
		TenantID:      aggregate.TenantID(),
		Version:       newVersion,
		State:         state,
		TakenAt:       time.Now().UTC(),
	}
	if err := r.snapshots.SaveSnapshot(ctx, streamID, snapshot); err != nil {
		r.logger.Warn("failed to persist snapshot",
			slog.String("stream_id", streamID), slog.Int64("version", newVersion),
			slog.String("error", err.Error()))
	}
}

// JournalRepository adapts the generic repository to the journal-facing port,
// mapping absence to a nil journal.
type JournalRepository struct {
	inner *Repository[*domain.JournalEntry]
}

// NewJournalRepository wires an event-sourced repository for journal entries.
func NewJournalRepository(
	events portsrepo.EventStore,
	snapshots portsrepo.SnapshotStore,
	snapshotInterval int64,
	logger *slog.Logger,
) *JournalRepository {
	return &JournalRepository{
		inner: NewRepository(events, snapshots, func() *domain.JournalEntry {
			return &domain.JournalEntry{}
		}, snapshotInterval, logger),
	}
}

var _ portsrepo.JournalRepository = (*JournalRepository)(nil)

// Save implements portsrepo.JournalRepository.
func (r *JournalRepository) Save(ctx context.Context, journal *domain.JournalEntry) error {
	return r.inner.Save(ctx, journal)
}

// GetByID implements portsrepo.JournalRepository.
func (r *JournalRepository) GetByID(ctx context.Context, tenantID, journalID string) (*domain.JournalEntry, error) {
	journal, found, err := r.inner.GetByID(ctx, tenantID, journalID)
	if err != nil || !found {
		return nil, err
	}
	return journal, nil
}

// Exists implements portsrepo.JournalRepository.
func (r *JournalRepository) Exists(ctx context.Context, tenantID, journalID string) (bool, error) {
	return r.inner.Exists(ctx, tenantID, journalID)
}
