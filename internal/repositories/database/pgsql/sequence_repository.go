package pgsql

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSequenceRepository issues durable document sequence values with a single
// atomic upsert per call. One row per (tenant, document type, period) keeps
// the counters isolated across tenants and months, and the increment survives
// restarts and concurrent service instances.
type PgxSequenceRepository struct {
	BaseRepository
}

// NewPgxSequenceRepository creates a sequence repository over the given pool.
func NewPgxSequenceRepository(pool *pgxpool.Pool) *PgxSequenceRepository {
	return &PgxSequenceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SequenceRepository = (*PgxSequenceRepository)(nil)

// NextValue implements portsrepo.SequenceRepository.
func (r *PgxSequenceRepository) NextValue(ctx context.Context, tenantID, docType, periodKey string) (int64, error) {
	query := `
		INSERT INTO document_sequences (tenant_id, doc_type, period_key, value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (tenant_id, doc_type, period_key) DO UPDATE
		SET value = document_sequences.value + 1
		RETURNING value;
	`
	var value int64
	if err := r.Pool.QueryRow(ctx, query, tenantID, docType, periodKey).Scan(&value); err != nil {
		return 0, apperrors.NewAppError(500, "failed to advance document sequence", err)
	}
	return value, nil
}
