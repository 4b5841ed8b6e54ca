package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSnapshotStore keeps the latest snapshot per stream in the snapshots
// table. Snapshots are advisory; stale writes are dropped by the version
// guard in the upsert.
type PgxSnapshotStore struct {
	BaseRepository
}

// NewPgxSnapshotStore creates a snapshot store over the given pool.
func NewPgxSnapshotStore(pool *pgxpool.Pool) *PgxSnapshotStore {
	return &PgxSnapshotStore{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SnapshotStore = (*PgxSnapshotStore)(nil)

// SaveSnapshot implements portsrepo.SnapshotStore.
func (s *PgxSnapshotStore) SaveSnapshot(ctx context.Context, streamID string, snapshot domain.Snapshot) error {
	query := `
		INSERT INTO snapshots (stream_id, aggregate_id, aggregate_type, tenant_id, version, state, taken_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (stream_id) DO UPDATE
		SET version = EXCLUDED.version, state = EXCLUDED.state, taken_at = EXCLUDED.taken_at
		WHERE snapshots.version < EXCLUDED.version;
	`
	_, err := s.Pool.Exec(ctx, query,
		streamID,
		snapshot.AggregateID,
		snapshot.AggregateType,
		snapshot.TenantID,
		snapshot.Version,
		snapshot.State,
		snapshot.TakenAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save snapshot for stream "+streamID, err)
	}
	return nil
}

// LatestSnapshot implements portsrepo.SnapshotStore; absence is nil, not an
// error.
func (s *PgxSnapshotStore) LatestSnapshot(ctx context.Context, streamID string) (*domain.Snapshot, error) {
	query := `
		SELECT aggregate_id, aggregate_type, tenant_id, version, state, taken_at
		FROM snapshots
		WHERE stream_id = $1;
	`
	var snapshot domain.Snapshot
	err := s.Pool.QueryRow(ctx, query, streamID).Scan(
		&snapshot.AggregateID,
		&snapshot.AggregateType,
		&snapshot.TenantID,
		&snapshot.Version,
		&snapshot.State,
		&snapshot.TakenAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewAppError(500, "failed to load snapshot for stream "+streamID, err)
	}
	return &snapshot, nil
}
