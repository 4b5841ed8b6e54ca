package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// JournalReaderSvc defines read operations for journal entries.
type JournalReaderSvc interface {
	// GetJournalByID retrieves a journal by its ID, or nil if it was never
	// created.
	GetJournalByID(ctx context.Context, tenantID string, journalID string) (*domain.JournalEntry, error)

	// JournalExists reports whether the journal's event stream exists.
	JournalExists(ctx context.Context, tenantID string, journalID string) (bool, error)
}

// JournalWriterSvc defines command operations for journal entries.
type JournalWriterSvc interface {
	// CreateJournal creates a new journal entry, optionally with initial
	// lines and an immediate post.
	CreateJournal(ctx context.Context, tenantID string, req dto.CreateJournalRequest, creatorUserID string) (*domain.JournalEntry, error)

	// AddLine appends a line to a DRAFT journal.
	AddLine(ctx context.Context, tenantID string, journalID string, req dto.LineRequest, userID string) (*domain.JournalEntry, error)

	// PostJournal transitions a DRAFT journal to POSTED.
	PostJournal(ctx context.Context, tenantID string, journalID string, actorUserID string) (*domain.JournalEntry, error)

	// ReverseJournal creates and posts a reversing entry against a POSTED
	// journal, marking the original REVERSED.
	ReverseJournal(ctx context.Context, tenantID string, journalID string, reversalDate time.Time, actorUserID string) (*domain.JournalEntry, error)

	// CreateClosingEntries constructs the period-end closing journal(s) in
	// DRAFT for the caller to review and post explicitly.
	CreateClosingEntries(ctx context.Context, tenantID string, req dto.CreateClosingRequest, actorUserID string) ([]*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces.
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}

// NumberingService issues human-readable document numbers formatted
// {PREFIX}-{YYYY}-{MM}-{NNNNNN}, scoped per tenant, document type and month.
type NumberingService interface {
	NextDocumentNumber(ctx context.Context, date time.Time, docType domain.DocumentType, tenantID string) (string, error)
}
