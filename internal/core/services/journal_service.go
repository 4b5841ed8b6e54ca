package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/platform/logging"
)

// journalService is the command-handler layer over the event-sourced journal
// repository. Aggregate commands stay pure; this service owns the load,
// numbering, policy and save choreography, including the single
// reload-and-retry on a concurrency conflict.
type journalService struct {
	journalRepo  portsrepo.JournalRepository
	numbering    portssvc.NumberingService
	periodPolicy domain.PeriodPolicy
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepository, numbering portssvc.NumberingService, periodPolicy domain.PeriodPolicy) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo:  journalRepo,
		numbering:    numbering,
		periodPolicy: periodPolicy,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// CreateJournal creates a new journal entry in DRAFT, with optional initial
// lines and an immediate post when requested.
// Implements portssvc.JournalSvcFacade.
func (s *journalService) CreateJournal(ctx context.Context, tenantID string, req dto.CreateJournalRequest, creatorUserID string) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	documentNumber, err := s.numbering.NextDocumentNumber(ctx, req.DocumentDate, req.DocumentType, tenantID)
	if err != nil {
		logger.Error("Failed to obtain document number", slog.String("tenant_id", tenantID), slog.String("error", err.Error()))
		return nil, err
	}

	lines := make([]domain.LineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = l.ToLineInput()
	}

	journal, err := domain.NewJournalEntry(domain.NewJournalParams{
		DocumentNumber: documentNumber,
		DocumentDate:   req.DocumentDate,
		DocumentType:   req.DocumentType,
		Description:    req.Description,
		Reference:      req.Reference,
		TenantID:       tenantID,
		InitialLines:   lines,
		AutoPost:       req.AutoPost,
		Actor:          creatorUserID,
	}, s.periodPolicy)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.Save(ctx, journal); err != nil {
		logger.Error("Failed to save new journal", slog.String("journal_id", journal.ID()), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}

	logger.Info("Journal created",
		slog.String("journal_id", journal.ID()),
		slog.String("document_number", journal.DocumentNumber()),
		slog.String("status", string(journal.Status())))
	return journal, nil
}

// GetJournalByID implements portssvc.JournalSvcFacade. A never-created
// journal yields (nil, nil).
func (s *journalService) GetJournalByID(ctx context.Context, tenantID string, journalID string) (*domain.JournalEntry, error) {
	return s.journalRepo.GetByID(ctx, tenantID, journalID)
}

// JournalExists implements portssvc.JournalSvcFacade.
func (s *journalService) JournalExists(ctx context.Context, tenantID string, journalID string) (bool, error) {
	return s.journalRepo.Exists(ctx, tenantID, journalID)
}

// AddLine appends a line to a DRAFT journal.
// Implements portssvc.JournalSvcFacade.
func (s *journalService) AddLine(ctx context.Context, tenantID string, journalID string, req dto.LineRequest, userID string) (*domain.JournalEntry, error) {
	return s.updateJournal(ctx, tenantID, journalID, func(j *domain.JournalEntry) error {
		line, err := domain.NewJournalLine(req.ToLineInput())
		if err != nil {
			return err
		}
		return j.AddLine(line)
	})
}

// PostJournal transitions a DRAFT journal to POSTED.
// Implements portssvc.JournalSvcFacade.
func (s *journalService) PostJournal(ctx context.Context, tenantID string, journalID string, actorUserID string) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)
	journal, err := s.updateJournal(ctx, tenantID, journalID, func(j *domain.JournalEntry) error {
		return j.Post(actorUserID)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Journal posted", slog.String("journal_id", journalID), slog.String("posted_by", actorUserID))
	return journal, nil
}

// ReverseJournal creates a reversing entry against a POSTED journal, posts
// it, and marks the original REVERSED.
// Implements portssvc.JournalSvcFacade.
func (s *journalService) ReverseJournal(ctx context.Context, tenantID string, journalID string, reversalDate time.Time, actorUserID string) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	original, err := s.journalRepo.GetByID(ctx, tenantID, journalID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, apperrors.ErrNotFound
	}

	documentNumber, err := s.numbering.NextDocumentNumber(ctx, reversalDate, domain.DocTypeReversing, tenantID)
	if err != nil {
		return nil, err
	}

	reversal, err := original.CreateReversingEntry(documentNumber, reversalDate, s.periodPolicy)
	if err != nil {
		return nil, err
	}
	if err := reversal.Post(actorUserID); err != nil {
		return nil, err
	}
	if err := s.journalRepo.Save(ctx, reversal); err != nil {
		logger.Error("Failed to save reversing journal", slog.String("journal_id", reversal.ID()), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save reversing journal: %w", err)
	}

	// The compensation is recorded on the original as its own event; a
	// concurrent writer on the original stream triggers the usual
	// reload-and-retry.
	if _, err := s.updateJournal(ctx, tenantID, journalID, func(j *domain.JournalEntry) error {
		return j.MarkReversed(reversal.ID())
	}); err != nil {
		logger.Error("Failed to mark original journal reversed",
			slog.String("journal_id", journalID), slog.String("reversing_journal_id", reversal.ID()),
			slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Journal reversed",
		slog.String("journal_id", journalID),
		slog.String("reversing_journal_id", reversal.ID()),
		slog.String("document_number", reversal.DocumentNumber()))
	return reversal, nil
}

// CreateClosingEntries constructs the period-end closing journal(s) in DRAFT
// for the caller to review and post explicitly.
// Implements portssvc.JournalSvcFacade.
func (s *journalService) CreateClosingEntries(ctx context.Context, tenantID string, req dto.CreateClosingRequest, actorUserID string) ([]*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	documentNumber, err := s.numbering.NextDocumentNumber(ctx, req.ClosingDate, domain.DocTypeClosing, tenantID)
	if err != nil {
		return nil, err
	}

	closing, err := domain.CreateClosingEntry(domain.ClosingParams{
		BalancesByAccount:       req.BalancesByAccount,
		ClosingDate:             req.ClosingDate,
		TenantID:                tenantID,
		DocumentNumber:          documentNumber,
		RetainedEarningsAccount: req.RetainedEarningsAccount,
	}, s.periodPolicy)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.Save(ctx, closing); err != nil {
		logger.Error("Failed to save closing journal", slog.String("journal_id", closing.ID()), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save closing journal: %w", err)
	}

	logger.Info("Closing journal created",
		slog.String("journal_id", closing.ID()),
		slog.String("document_number", closing.DocumentNumber()),
		slog.Int("line_count", len(closing.Lines())))
	return []*domain.JournalEntry{closing}, nil
}

// updateJournal runs cmd against a freshly loaded journal and saves it,
// reloading and retrying exactly once when another writer wins the append
// race. Domain validation failures are returned as-is without retry.
func (s *journalService) updateJournal(ctx context.Context, tenantID, journalID string, cmd func(*domain.JournalEntry) error) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		journal, err := s.journalRepo.GetByID(ctx, tenantID, journalID)
		if err != nil {
			return nil, err
		}
		if journal == nil {
			return nil, apperrors.ErrNotFound
		}
		if err := cmd(journal); err != nil {
			return nil, err
		}
		if err := s.journalRepo.Save(ctx, journal); err != nil {
			if errors.Is(err, apperrors.ErrConcurrency) {
				logger.Warn("Concurrent write on journal stream, retrying",
					slog.String("journal_id", journalID), slog.Int("attempt", attempt+1))
				lastErr = err
				continue
			}
			return nil, err
		}
		return journal, nil
	}
	return nil, lastErr
}
