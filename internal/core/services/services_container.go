package services

import (
	"log/slog"

	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/repositories/eventsourced"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies. Stores arrive as explicit dependencies so the
// container can be built over pgsql in production and the in-memory fakes in
// tests.
func NewServiceContainer(
	cfg *config.Config,
	eventStore portsrepo.EventStore,
	snapshotStore portsrepo.SnapshotStore,
	sequenceRepo portsrepo.SequenceRepository,
	logger *slog.Logger,
) *portssvc.ServiceContainer {
	journalRepo := eventsourced.NewJournalRepository(eventStore, snapshotStore, cfg.SnapshotInterval, logger)
	numbering := NewNumberingService(sequenceRepo)

	return &portssvc.ServiceContainer{
		Journal:   NewJournalService(journalRepo, numbering, NewWindowPeriodPolicy()),
		Numbering: numbering,
	}
}
