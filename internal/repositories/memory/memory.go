// Package memory provides in-memory store implementations used by tests and
// local wiring. They honor the same contracts as the pgsql stores, including
// the optimistic-concurrency check on append.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

// EventStore keeps streams in a map, appending under a mutex so the
// expected-revision check and the append are atomic.
type EventStore struct {
	mu      sync.Mutex
	streams map[string][]domain.Event
}

// NewEventStore creates an empty in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{streams: make(map[string][]domain.Event)}
}

var _ portsrepo.EventStore = (*EventStore)(nil)

// AppendToStream implements portsrepo.EventStore.
func (s *EventStore) AppendToStream(ctx context.Context, streamID string, expectedVersion int64, events []domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current := int64(len(s.streams[streamID]))
	if current != expectedVersion {
		return fmt.Errorf("%w: stream %s is at version %d, expected %d",
			apperrors.ErrConcurrency, streamID, current, expectedVersion)
	}
	s.streams[streamID] = append(s.streams[streamID], events...)
	return nil
}

// ReadStream implements portsrepo.EventStore.
func (s *EventStore) ReadStream(ctx context.Context, streamID string, fromVersion int64) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[streamID]
	if fromVersion >= int64(len(stream)) {
		return nil, nil
	}
	out := make([]domain.Event, len(stream)-int(fromVersion))
	copy(out, stream[fromVersion:])
	return out, nil
}

// StreamExists implements portsrepo.EventStore.
func (s *EventStore) StreamExists(ctx context.Context, streamID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams[streamID]) > 0, nil
}

// SnapshotStore keeps the latest snapshot per stream.
type SnapshotStore struct {
	mu        sync.Mutex
	snapshots map[string]domain.Snapshot

	// FailSaves makes every SaveSnapshot fail; tests use it to verify that
	// snapshot failures never fail the triggering save.
	FailSaves bool
	// SaveCalls counts SaveSnapshot invocations, successful or not.
	SaveCalls int
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[string]domain.Snapshot)}
}

var _ portsrepo.SnapshotStore = (*SnapshotStore)(nil)

// SaveSnapshot implements portsrepo.SnapshotStore.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, streamID string, snapshot domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SaveCalls++
	if s.FailSaves {
		return fmt.Errorf("snapshot store unavailable")
	}
	s.snapshots[streamID] = snapshot
	return nil
}

// LatestSnapshot implements portsrepo.SnapshotStore.
func (s *SnapshotStore) LatestSnapshot(ctx context.Context, streamID string) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.snapshots[streamID]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

// SequenceRepository issues monotonically increasing values per
// (tenant, document type, period) key.
type SequenceRepository struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewSequenceRepository creates an empty in-memory sequence repository.
func NewSequenceRepository() *SequenceRepository {
	return &SequenceRepository{counters: make(map[string]int64)}
}

var _ portsrepo.SequenceRepository = (*SequenceRepository)(nil)

// NextValue implements portsrepo.SequenceRepository.
func (s *SequenceRepository) NextValue(ctx context.Context, tenantID, docType, periodKey string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tenantID + "/" + docType + "/" + periodKey
	s.counters[key]++
	return s.counters[key], nil
}
