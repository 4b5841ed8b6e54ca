package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
)

// numberingService issues document numbers backed by a durable, tenant-scoped
// sequence. Counters are keyed per (tenant, type prefix, month), so numbering
// restarts at 1 each month per document type and can never collide across
// tenants or service instances.
type numberingService struct {
	sequenceRepo portsrepo.SequenceRepository
}

// NewNumberingService creates a NumberingService over the given sequence
// repository.
func NewNumberingService(sequenceRepo portsrepo.SequenceRepository) portssvc.NumberingService {
	return &numberingService{sequenceRepo: sequenceRepo}
}

var _ portssvc.NumberingService = (*numberingService)(nil)

// NextDocumentNumber implements portssvc.NumberingService, formatting
// {PREFIX}-{YYYY}-{MM}-{NNNNNN}.
func (s *numberingService) NextDocumentNumber(ctx context.Context, date time.Time, docType domain.DocumentType, tenantID string) (string, error) {
	prefix := docType.Prefix()
	if prefix == "" {
		return "", fmt.Errorf("%w: unknown document type %q", apperrors.ErrValidation, docType)
	}
	periodKey := date.Format("2006-01")
	value, err := s.sequenceRepo.NextValue(ctx, tenantID, prefix, periodKey)
	if err != nil {
		return "", fmt.Errorf("failed to advance sequence for %s/%s: %w", prefix, periodKey, err)
	}
	return fmt.Sprintf("%s-%04d-%02d-%06d", prefix, date.Year(), int(date.Month()), value), nil
}
