package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/shopspring/decimal"
)

// JournalAggregateType names the journal entry stream type in stores.
const JournalAggregateType = "JournalEntry"

// Event kinds for the journal entry aggregate. This is a closed set: the fold
// in journal.go and decodeJournalEvent switch over every kind and treat
// anything else as corrupt data.
const (
	KindJournalCreated          = "ledger.journal.created"
	KindJournalLineAdded        = "ledger.journal.line_added"
	KindJournalLineReplaced     = "ledger.journal.line_replaced"
	KindJournalLineRemoved      = "ledger.journal.line_removed"
	KindJournalDateChanged      = "ledger.journal.date_changed"
	KindJournalBalanceValidated = "ledger.journal.balance_validated"
	KindJournalPosted           = "ledger.journal.posted"
	KindJournalReversed         = "ledger.journal.reversed"
)

// JournalEvent is the tagged union of journal entry event payloads.
type JournalEvent interface {
	Kind() string
	isJournalEvent()
}

// JournalCreated is the genesis event of every journal entry stream.
type JournalCreated struct {
	JournalID         string       `json:"journalID"`
	DocumentNumber    string       `json:"documentNumber"`
	DocumentDate      time.Time    `json:"documentDate"`
	DocumentType      DocumentType `json:"documentType"`
	Description       string       `json:"description"`
	Reference         string       `json:"reference"`
	FiscalPeriod      string       `json:"fiscalPeriod"`
	TenantID          string       `json:"tenantID"`
	ReversesJournalID string       `json:"reversesJournalID,omitempty"`
}

// JournalLineAdded records a line appended while DRAFT.
type JournalLineAdded struct {
	Line JournalLine `json:"line"`
}

// JournalLineReplaced records a DRAFT line swapped in place, matched by line ID.
type JournalLineReplaced struct {
	LineID string      `json:"lineID"`
	Line   JournalLine `json:"line"`
}

// JournalLineRemoved records a DRAFT line removal.
type JournalLineRemoved struct {
	LineID string `json:"lineID"`
}

// JournalDateChanged records a DRAFT document date change together with the
// recomputed fiscal period.
type JournalDateChanged struct {
	DocumentDate time.Time `json:"documentDate"`
	FiscalPeriod string    `json:"fiscalPeriod"`
}

// JournalBalanceValidated records a validation-passed fact with the computed
// totals at that point.
type JournalBalanceValidated struct {
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// JournalPosted is the DRAFT to POSTED transition.
type JournalPosted struct {
	PostedAt time.Time `json:"postedAt"`
	PostedBy string    `json:"postedBy"`
}

// JournalReversed marks a POSTED source journal as compensated by a reversing
// entry.
type JournalReversed struct {
	ReversingJournalID string    `json:"reversingJournalID"`
	ReversedAt         time.Time `json:"reversedAt"`
}

func (JournalCreated) Kind() string          { return KindJournalCreated }
func (JournalLineAdded) Kind() string        { return KindJournalLineAdded }
func (JournalLineReplaced) Kind() string     { return KindJournalLineReplaced }
func (JournalLineRemoved) Kind() string      { return KindJournalLineRemoved }
func (JournalDateChanged) Kind() string      { return KindJournalDateChanged }
func (JournalBalanceValidated) Kind() string { return KindJournalBalanceValidated }
func (JournalPosted) Kind() string           { return KindJournalPosted }
func (JournalReversed) Kind() string         { return KindJournalReversed }

func (JournalCreated) isJournalEvent()          {}
func (JournalLineAdded) isJournalEvent()        {}
func (JournalLineReplaced) isJournalEvent()     {}
func (JournalLineRemoved) isJournalEvent()      {}
func (JournalDateChanged) isJournalEvent()      {}
func (JournalBalanceValidated) isJournalEvent() {}
func (JournalPosted) isJournalEvent()           {}
func (JournalReversed) isJournalEvent()         {}

// decodeJournalEvent turns an envelope back into its typed payload. An unknown
// kind or undecodable payload is corrupt data, never a skippable condition.
func decodeJournalEvent(evt Event) (JournalEvent, error) {
	var (
		payload JournalEvent
		err     error
	)
	switch evt.Kind {
	case KindJournalCreated:
		var p JournalCreated
		err = json.Unmarshal(evt.Payload, &p)
		payload = p
	case KindJournalLineAdded:
		var p JournalLineAdded
		err = json.Unmarshal(evt.Payload, &p)
		payload = p
	case KindJournalLineReplaced:
		var p JournalLineReplaced
		err = json.Unmarshal(evt.Payload, &p)
		payload = p
	case KindJournalLineRemoved:
		var p JournalLineRemoved
		err = json.Unmarshal(evt.Payload, &p)
		payload = p
	case KindJournalDateChanged:
		var p JournalDateChanged
		err = json.Unmarshal(evt.Payload, &p)
		payload = p
	case KindJournalBalanceValidated:
		var p JournalBalanceValidated
		err = json.Unmarshal(evt.Payload, &p)
		payload = p
	case KindJournalPosted:
		var p JournalPosted
		err = json.Unmarshal(evt.Payload, &p)
		payload = p
	case KindJournalReversed:
		var p JournalReversed
		err = json.Unmarshal(evt.Payload, &p)
		payload = p
	default:
		return nil, fmt.Errorf("%w: unknown journal event kind %q", apperrors.ErrCorruptEvent, evt.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s payload: %v", apperrors.ErrCorruptEvent, evt.Kind, err)
	}
	return payload, nil
}
