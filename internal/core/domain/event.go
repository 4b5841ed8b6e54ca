package domain

import (
	"encoding/json"
	"time"
)

// Event is the envelope every committed fact travels in. The typed payloads
// live in the per-aggregate event unions (see journal_events.go); the envelope
// is what the stores persist and replay.
type Event struct {
	EventID       string          `json:"eventID"`       // Unique per event (UUID)
	AggregateID   string          `json:"aggregateID"`   // Stream owner
	AggregateType string          `json:"aggregateType"` // e.g. "JournalEntry"
	Kind          string          `json:"kind"`          // Closed set per aggregate type
	TenantID      string          `json:"tenantID"`      // Opaque tenant identity, partitions streams
	Payload       json.RawMessage `json:"payload"`       // Kind-specific body
	OccurredAt    time.Time       `json:"occurredAt"`
	Version       int64           `json:"version"` // Stream-relative position, 1-based
}

// Snapshot is an advisory materialization of aggregate state at a version.
// Its absence or staleness never changes the reconstructed state, only the
// replay cost.
type Snapshot struct {
	AggregateID   string          `json:"aggregateID"`
	AggregateType string          `json:"aggregateType"`
	TenantID      string          `json:"tenantID"`
	Version       int64           `json:"version"`
	State         json.RawMessage `json:"state"`
	TakenAt       time.Time       `json:"takenAt"`
}
