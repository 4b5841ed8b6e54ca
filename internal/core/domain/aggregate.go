package domain

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
)

// EventSourced is the capability set the event-sourced repository works
// against. Concrete aggregates embed AggregateRoot and add their own fold.
type EventSourced interface {
	ID() string
	TenantID() string
	AggregateType() string
	Version() int64
	UncommittedEvents() []Event
	MarkEventsCommitted()
	LoadFromHistory(events []Event) error
	SnapshotState() (json.RawMessage, error)
	RestoreSnapshot(state json.RawMessage, version int64) error
}

// AggregateRoot provides the generic event-sourcing mechanics: uncommitted
// event tracking, replay and a version counter equal to the number of events
// ever applied. It carries no ledger semantics.
type AggregateRoot struct {
	id          string
	tenantID    string
	version     int64
	uncommitted []Event
}

func (a *AggregateRoot) init(id, tenantID string) {
	a.id = id
	a.tenantID = tenantID
}

// ID returns the aggregate identity.
func (a *AggregateRoot) ID() string { return a.id }

// TenantID returns the opaque tenant identity the aggregate belongs to.
func (a *AggregateRoot) TenantID() string { return a.tenantID }

// Version equals the total number of events applied since genesis (or since
// the restored snapshot version plus subsequently applied events). It never
// decreases.
func (a *AggregateRoot) Version() int64 { return a.version }

// UncommittedEvents returns the events produced by commands since the last
// MarkEventsCommitted. The repository's save path persists exactly these.
func (a *AggregateRoot) UncommittedEvents() []Event { return a.uncommitted }

// MarkEventsCommitted clears the pending queue after a successful save.
func (a *AggregateRoot) MarkEventsCommitted() { a.uncommitted = nil }

// recordThat folds evt into state via when, then enqueues it as uncommitted.
// Commands validate before constructing events, so a failing when here means
// the command built an event its own fold rejects.
func (a *AggregateRoot) recordThat(when func(Event) error, evt Event) error {
	evt.Version = a.version + 1
	if err := when(evt); err != nil {
		return err
	}
	a.version++
	a.uncommitted = append(a.uncommitted, evt)
	return nil
}

// replay applies already-committed events in order without enqueueing them,
// incrementing the version once per event. A fold failure during replay is a
// data-corruption condition: the store accepted an event the aggregate cannot
// apply.
func (a *AggregateRoot) replay(when func(Event) error, events []Event) error {
	for _, evt := range events {
		if err := when(evt); err != nil {
			return fmt.Errorf("%w: replaying %s at version %d for aggregate %s: %v",
				apperrors.ErrCorruptEvent, evt.Kind, evt.Version, a.id, err)
		}
		a.version++
	}
	return nil
}

// restore primes identity and version from a snapshot before tail replay.
func (a *AggregateRoot) restore(id, tenantID string, version int64) {
	a.id = id
	a.tenantID = tenantID
	a.version = version
}
