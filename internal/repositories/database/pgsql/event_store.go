package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

// PgxEventStore persists event streams in the events table. The primary key
// (stream_id, version) makes the expected-revision append check a unique
// constraint: concurrent writers race at the insert, exactly one wins.
type PgxEventStore struct {
	BaseRepository
}

// NewPgxEventStore creates an event store over the given pool.
func NewPgxEventStore(pool *pgxpool.Pool) *PgxEventStore {
	return &PgxEventStore{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.EventStore = (*PgxEventStore)(nil)

// AppendToStream implements portsrepo.EventStore. The batch is inserted in a
// single transaction, so a failed or cancelled append leaves no partial batch.
func (s *PgxEventStore) AppendToStream(ctx context.Context, streamID string, expectedVersion int64, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	insertQuery := `
		INSERT INTO events (stream_id, version, event_id, aggregate_id, aggregate_type, kind, tenant_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for i, evt := range events {
		batch.Queue(insertQuery,
			streamID,
			expectedVersion+int64(i)+1,
			evt.EventID,
			evt.AggregateID,
			evt.AggregateType,
			evt.Kind,
			evt.TenantID,
			evt.Payload,
			evt.OccurredAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	var batchErr error
	for range events {
		if _, err := results.Exec(); err != nil && batchErr == nil {
			batchErr = err
		}
	}
	if err := results.Close(); err != nil && batchErr == nil {
		batchErr = err
	}
	if batchErr != nil {
		var pgErr *pgconn.PgError
		if errors.As(batchErr, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperrors.ErrConcurrency
		}
		return apperrors.NewAppError(500, "failed to append events to stream "+streamID, batchErr)
	}

	return s.Commit(ctx, tx)
}

// ReadStream implements portsrepo.EventStore. A missing stream yields an
// empty result, not an error.
func (s *PgxEventStore) ReadStream(ctx context.Context, streamID string, fromVersion int64) ([]domain.Event, error) {
	query := `
		SELECT version, event_id, aggregate_id, aggregate_type, kind, tenant_id, payload, occurred_at
		FROM events
		WHERE stream_id = $1 AND version > $2
		ORDER BY version ASC;
	`
	rows, err := s.Pool.Query(ctx, query, streamID, fromVersion)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to read stream "+streamID, err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var evt domain.Event
		if err := rows.Scan(
			&evt.Version,
			&evt.EventID,
			&evt.AggregateID,
			&evt.AggregateType,
			&evt.Kind,
			&evt.TenantID,
			&evt.Payload,
			&evt.OccurredAt,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan event row", err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate stream "+streamID, err)
	}
	return events, nil
}

// StreamExists implements portsrepo.EventStore.
func (s *PgxEventStore) StreamExists(ctx context.Context, streamID string) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE stream_id = $1);`, streamID,
	).Scan(&exists)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check stream "+streamID, err)
	}
	return exists, nil
}
