package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalStatus indicates the lifecycle state of a journal entry.
type JournalStatus string

const (
	StatusDraft    JournalStatus = "DRAFT"
	StatusPosted   JournalStatus = "POSTED"
	StatusReversed JournalStatus = "REVERSED"
)

// DocumentType classifies a journal entry. The set is closed; each type maps
// to a fixed two-letter document number prefix.
type DocumentType string

const (
	DocTypeGeneral     DocumentType = "GENERAL"
	DocTypeSales       DocumentType = "SALES"
	DocTypePurchase    DocumentType = "PURCHASE"
	DocTypeCashReceipt DocumentType = "CASH_RECEIPT"
	DocTypeCashPayment DocumentType = "CASH_PAYMENT"
	DocTypeAdjustment  DocumentType = "ADJUSTMENT"
	DocTypeReversing   DocumentType = "REVERSING"
	DocTypeClosing     DocumentType = "CLOSING"
	DocTypeOpening     DocumentType = "OPENING"
)

// Prefix returns the document number prefix for the type, or "" for an
// unknown type.
func (t DocumentType) Prefix() string {
	switch t {
	case DocTypeGeneral:
		return "GJ"
	case DocTypeSales:
		return "SJ"
	case DocTypePurchase:
		return "PJ"
	case DocTypeCashReceipt:
		return "CR"
	case DocTypeCashPayment:
		return "CP"
	case DocTypeAdjustment:
		return "AJ"
	case DocTypeReversing:
		return "RJ"
	case DocTypeClosing:
		return "CJ"
	case DocTypeOpening:
		return "OJ"
	default:
		return ""
	}
}

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool { return t.Prefix() != "" }

// balanceTolerance is the rounding tolerance for the double-entry balance
// check, 0.01 of the minor currency unit.
var balanceTolerance = decimal.NewFromFloat(0.01)

// JournalLine is a single side of a double entry. Exactly one of Debit or
// Credit is strictly positive; the other is exactly zero.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
	CostCenter  string          `json:"costCenter,omitempty"`
	Project     string          `json:"project,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	TaxCode     string          `json:"taxCode,omitempty"`
}

// LineInput carries the caller-supplied fields of a new journal line.
type LineInput struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	CostCenter  string
	Project     string
	Reference   string
	TaxCode     string
}

// NewJournalLine constructs a validated line. Malformed lines are rejected
// here, at construction, never later.
func NewJournalLine(in LineInput) (JournalLine, error) {
	line := JournalLine{
		LineID:      uuid.NewString(),
		AccountCode: in.AccountCode,
		Debit:       in.Debit,
		Credit:      in.Credit,
		Description: in.Description,
		CostCenter:  in.CostCenter,
		Project:     in.Project,
		Reference:   in.Reference,
		TaxCode:     in.TaxCode,
	}
	if err := line.validate(); err != nil {
		return JournalLine{}, err
	}
	return line, nil
}

func (l JournalLine) validate() error {
	if l.AccountCode == "" {
		return fmt.Errorf("%w: journal line requires an account code", apperrors.ErrValidation)
	}
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return apperrors.MalformedLineError{Debit: l.Debit, Credit: l.Credit}
	}
	if l.Debit.IsPositive() == l.Credit.IsPositive() {
		return apperrors.MalformedLineError{Debit: l.Debit, Credit: l.Credit}
	}
	return nil
}

// JournalEntry is the double-entry ledger aggregate. All command methods are
// pure in-memory computations; durability is the repository's concern.
type JournalEntry struct {
	AggregateRoot

	documentNumber string
	documentDate   time.Time
	documentType   DocumentType
	description    string
	reference      string
	fiscalPeriod   string
	status         JournalStatus
	lines          []JournalLine
	totalDebit     decimal.Decimal
	totalCredit    decimal.Decimal
	postedAt       *time.Time
	postedBy       string

	// Set on a reversing entry: the posted journal it compensates.
	reversesJournalID string
	// Set on the original once a reversing entry posts against it.
	reversedByJournalID string
}

// NewJournalParams carries everything the creation command needs. The
// document number comes from the external numbering collaborator; the period
// policy decides whether the document date is acceptable.
type NewJournalParams struct {
	JournalID      string // optional, generated when empty
	DocumentNumber string
	DocumentDate   time.Time
	DocumentType   DocumentType
	Description    string
	Reference      string
	TenantID       string

	// Optional initial lines; with AutoPost set, the entry is posted as part
	// of the same logical operation once it validates as balanced.
	InitialLines []LineInput
	AutoPost     bool
	Actor        string

	reversesJournalID string
}

// NewJournalEntry creates a journal entry in DRAFT, applying initial lines
// and the optional auto-post in the same logical operation.
func NewJournalEntry(p NewJournalParams, policy PeriodPolicy) (*JournalEntry, error) {
	if !p.DocumentType.Valid() {
		return nil, fmt.Errorf("%w: unknown document type %q", apperrors.ErrValidation, p.DocumentType)
	}
	if p.TenantID == "" {
		return nil, fmt.Errorf("%w: tenant is required", apperrors.ErrValidation)
	}
	if p.DocumentNumber == "" {
		return nil, fmt.Errorf("%w: document number is required", apperrors.ErrValidation)
	}
	if policy != nil && !policy.IsPeriodOpen(p.DocumentDate) {
		return nil, apperrors.PeriodClosedError{Date: p.DocumentDate}
	}

	journalID := p.JournalID
	if journalID == "" {
		journalID = uuid.NewString()
	}

	j := &JournalEntry{}
	j.init(journalID, p.TenantID)
	err := j.recordJournalEvent(JournalCreated{
		JournalID:         journalID,
		DocumentNumber:    p.DocumentNumber,
		DocumentDate:      p.DocumentDate,
		DocumentType:      p.DocumentType,
		Description:       p.Description,
		Reference:         p.Reference,
		FiscalPeriod:      FiscalPeriodOf(p.DocumentDate),
		TenantID:          p.TenantID,
		ReversesJournalID: p.reversesJournalID,
	})
	if err != nil {
		return nil, err
	}

	for _, in := range p.InitialLines {
		line, err := NewJournalLine(in)
		if err != nil {
			return nil, err
		}
		if err := j.AddLine(line); err != nil {
			return nil, err
		}
	}
	if p.AutoPost {
		if err := j.Post(p.Actor); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// AggregateType implements EventSourced.
func (j *JournalEntry) AggregateType() string { return JournalAggregateType }

func (j *JournalEntry) DocumentNumber() string       { return j.documentNumber }
func (j *JournalEntry) DocumentDate() time.Time      { return j.documentDate }
func (j *JournalEntry) DocumentType() DocumentType   { return j.documentType }
func (j *JournalEntry) Description() string          { return j.description }
func (j *JournalEntry) Reference() string            { return j.reference }
func (j *JournalEntry) FiscalPeriod() string         { return j.fiscalPeriod }
func (j *JournalEntry) Status() JournalStatus        { return j.status }
func (j *JournalEntry) TotalDebit() decimal.Decimal  { return j.totalDebit }
func (j *JournalEntry) TotalCredit() decimal.Decimal { return j.totalCredit }
func (j *JournalEntry) PostedBy() string             { return j.postedBy }
func (j *JournalEntry) ReversesJournalID() string    { return j.reversesJournalID }

// ReversedByJournalID returns the reversing journal's id once the entry has
// been marked REVERSED, otherwise "".
func (j *JournalEntry) ReversedByJournalID() string { return j.reversedByJournalID }

// PostedAt returns the posting timestamp, or nil while unposted.
func (j *JournalEntry) PostedAt() *time.Time {
	if j.postedAt == nil {
		return nil
	}
	t := *j.postedAt
	return &t
}

// Lines returns a copy of the current line set.
func (j *JournalEntry) Lines() []JournalLine {
	out := make([]JournalLine, len(j.lines))
	copy(out, j.lines)
	return out
}

// AddLine appends a line while DRAFT and recomputes running totals.
func (j *JournalEntry) AddLine(line JournalLine) error {
	if j.status != StatusDraft {
		return apperrors.InvalidStatusError{Current: string(j.status), Expected: string(StatusDraft)}
	}
	if err := line.validate(); err != nil {
		return err
	}
	return j.recordJournalEvent(JournalLineAdded{Line: line})
}

// ReplaceLine swaps the line identified by lineID for a new one built from
// in, keeping the line identity stable. DRAFT only.
func (j *JournalEntry) ReplaceLine(lineID string, in LineInput) error {
	if j.status != StatusDraft {
		return apperrors.InvalidStatusError{Current: string(j.status), Expected: string(StatusDraft)}
	}
	if j.findLine(lineID) < 0 {
		return fmt.Errorf("%w: line %s", apperrors.ErrNotFound, lineID)
	}
	line, err := NewJournalLine(in)
	if err != nil {
		return err
	}
	line.LineID = lineID
	return j.recordJournalEvent(JournalLineReplaced{LineID: lineID, Line: line})
}

// RemoveLine deletes the line identified by lineID. DRAFT only.
func (j *JournalEntry) RemoveLine(lineID string) error {
	if j.status != StatusDraft {
		return apperrors.InvalidStatusError{Current: string(j.status), Expected: string(StatusDraft)}
	}
	if j.findLine(lineID) < 0 {
		return fmt.Errorf("%w: line %s", apperrors.ErrNotFound, lineID)
	}
	return j.recordJournalEvent(JournalLineRemoved{LineID: lineID})
}

// ChangeDate moves the document date while DRAFT, recomputing the fiscal
// period.
func (j *JournalEntry) ChangeDate(date time.Time, policy PeriodPolicy) error {
	if j.status != StatusDraft {
		return apperrors.InvalidStatusError{Current: string(j.status), Expected: string(StatusDraft)}
	}
	if policy != nil && !policy.IsPeriodOpen(date) {
		return apperrors.PeriodClosedError{Date: date}
	}
	return j.recordJournalEvent(JournalDateChanged{
		DocumentDate: date,
		FiscalPeriod: FiscalPeriodOf(date),
	})
}

// checkBalance recomputes the double-entry invariants from the current line
// set without touching state.
func (j *JournalEntry) checkBalance() error {
	if len(j.lines) < 2 {
		return apperrors.EmptyJournalError{LineCount: len(j.lines)}
	}
	if j.totalDebit.Sub(j.totalCredit).Abs().GreaterThan(balanceTolerance) {
		return apperrors.UnbalancedJournalError{TotalDebit: j.totalDebit, TotalCredit: j.totalCredit}
	}
	return nil
}

// ValidateBalance verifies the double-entry invariant, recording a
// validation-passed fact on success. Callable any number of times.
func (j *JournalEntry) ValidateBalance() error {
	if err := j.checkBalance(); err != nil {
		return err
	}
	return j.recordJournalEvent(JournalBalanceValidated{
		TotalDebit:  j.totalDebit,
		TotalCredit: j.totalCredit,
	})
}

// Post transitions DRAFT to POSTED after the balance validates, recording the
// actor and timestamp. Terminal for normal mutation.
func (j *JournalEntry) Post(actor string) error {
	if j.status != StatusDraft {
		return apperrors.InvalidStatusError{Current: string(j.status), Expected: string(StatusDraft)}
	}
	if err := j.ValidateBalance(); err != nil {
		return err
	}
	return j.recordJournalEvent(JournalPosted{
		PostedAt: time.Now().UTC(),
		PostedBy: actor,
	})
}

// CreateReversingEntry builds a new DRAFT journal whose lines are this
// entry's lines with debit and credit swapped. The source is not mutated
// here; MarkReversed records the compensation on it once the reversing entry
// posts.
func (j *JournalEntry) CreateReversingEntry(documentNumber string, reversalDate time.Time, policy PeriodPolicy) (*JournalEntry, error) {
	if j.status != StatusPosted {
		return nil, apperrors.CannotReverseUnpostedError{Current: string(j.status)}
	}
	if policy != nil && !policy.IsPeriodOpen(reversalDate) {
		return nil, apperrors.PeriodClosedError{Date: reversalDate}
	}

	reversal, err := NewJournalEntry(NewJournalParams{
		DocumentNumber:    documentNumber,
		DocumentDate:      reversalDate,
		DocumentType:      DocTypeReversing,
		Description:       "Reversing: " + j.description,
		Reference:         "REV-" + j.documentNumber,
		TenantID:          j.TenantID(),
		reversesJournalID: j.ID(),
	}, policy)
	if err != nil {
		return nil, err
	}
	for _, src := range j.lines {
		line, err := NewJournalLine(LineInput{
			AccountCode: src.AccountCode,
			Debit:       src.Credit,
			Credit:      src.Debit,
			Description: src.Description,
			CostCenter:  src.CostCenter,
			Project:     src.Project,
			Reference:   src.Reference,
			TaxCode:     src.TaxCode,
		})
		if err != nil {
			return nil, err
		}
		if err := reversal.AddLine(line); err != nil {
			return nil, err
		}
	}
	return reversal, nil
}

// MarkReversed records that a posted reversing entry compensates this
// journal, moving it POSTED to REVERSED.
func (j *JournalEntry) MarkReversed(reversingJournalID string) error {
	if j.status != StatusPosted {
		return apperrors.InvalidStatusError{Current: string(j.status), Expected: string(StatusPosted)}
	}
	return j.recordJournalEvent(JournalReversed{
		ReversingJournalID: reversingJournalID,
		ReversedAt:         time.Now().UTC(),
	})
}

// ClosingParams drives the period-end closing construction.
type ClosingParams struct {
	// Net balance per account code; positive values are debit balances,
	// negative values credit balances.
	BalancesByAccount map[string]decimal.Decimal
	ClosingDate       time.Time
	TenantID          string
	DocumentNumber    string
	// The equity account absorbing the period's net result.
	RetainedEarningsAccount string
}

// isIncomeStatementAccount reports whether the account code denotes a revenue
// or expense classification (4xxx and 5xxx by chart convention).
func isIncomeStatementAccount(code string) bool {
	return strings.HasPrefix(code, "4") || strings.HasPrefix(code, "5")
}

// CreateClosingEntry constructs a DRAFT closing journal that zeroes out every
// income-statement balance by posting it to the opposite side, with the net
// result absorbed by the retained earnings account. The caller reviews and
// posts it explicitly.
func CreateClosingEntry(p ClosingParams, policy PeriodPolicy) (*JournalEntry, error) {
	if p.RetainedEarningsAccount == "" {
		return nil, fmt.Errorf("%w: retained earnings account is required", apperrors.ErrValidation)
	}

	accounts := make([]string, 0, len(p.BalancesByAccount))
	for code, balance := range p.BalancesByAccount {
		if isIncomeStatementAccount(code) && !balance.IsZero() {
			accounts = append(accounts, code)
		}
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: no income-statement balances to close", apperrors.ErrValidation)
	}
	sort.Strings(accounts)

	closing, err := NewJournalEntry(NewJournalParams{
		DocumentNumber: p.DocumentNumber,
		DocumentDate:   p.ClosingDate,
		DocumentType:   DocTypeClosing,
		Description:    "Period-end closing",
		TenantID:       p.TenantID,
	}, policy)
	if err != nil {
		return nil, err
	}

	net := decimal.Zero
	for _, code := range accounts {
		balance := p.BalancesByAccount[code]
		in := LineInput{AccountCode: code, Description: "Period-end closing"}
		if balance.IsPositive() {
			// A debit balance is zeroed by a credit of the same amount.
			in.Credit = balance
			net = net.Sub(balance)
		} else {
			in.Debit = balance.Neg()
			net = net.Add(balance.Neg())
		}
		line, err := NewJournalLine(in)
		if err != nil {
			return nil, err
		}
		if err := closing.AddLine(line); err != nil {
			return nil, err
		}
	}

	if !net.IsZero() {
		in := LineInput{AccountCode: p.RetainedEarningsAccount, Description: "Period-end closing"}
		if net.IsPositive() {
			in.Credit = net
		} else {
			in.Debit = net.Neg()
		}
		line, err := NewJournalLine(in)
		if err != nil {
			return nil, err
		}
		if err := closing.AddLine(line); err != nil {
			return nil, err
		}
	}
	return closing, nil
}

func (j *JournalEntry) findLine(lineID string) int {
	for i, l := range j.lines {
		if l.LineID == lineID {
			return i
		}
	}
	return -1
}

func (j *JournalEntry) recordJournalEvent(p JournalEvent) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", p.Kind(), err)
	}
	return j.recordThat(j.when, Event{
		EventID:       uuid.NewString(),
		AggregateID:   j.ID(),
		AggregateType: JournalAggregateType,
		Kind:          p.Kind(),
		TenantID:      j.TenantID(),
		Payload:       payload,
		OccurredAt:    time.Now().UTC(),
	})
}

// when is the fold: a pure function of (state, event) with no I/O. Commands
// validate before producing events, so a failure here on replay means the
// store holds data the aggregate cannot apply.
func (j *JournalEntry) when(evt Event) error {
	typed, err := decodeJournalEvent(evt)
	if err != nil {
		return err
	}
	switch p := typed.(type) {
	case JournalCreated:
		j.init(p.JournalID, p.TenantID)
		j.documentNumber = p.DocumentNumber
		j.documentDate = p.DocumentDate
		j.documentType = p.DocumentType
		j.description = p.Description
		j.reference = p.Reference
		j.fiscalPeriod = p.FiscalPeriod
		j.reversesJournalID = p.ReversesJournalID
		j.status = StatusDraft
		j.lines = nil
		j.totalDebit = decimal.Zero
		j.totalCredit = decimal.Zero
	case JournalLineAdded:
		j.lines = append(j.lines, p.Line)
		j.totalDebit = j.totalDebit.Add(p.Line.Debit)
		j.totalCredit = j.totalCredit.Add(p.Line.Credit)
	case JournalLineReplaced:
		i := j.findLine(p.LineID)
		if i < 0 {
			return fmt.Errorf("line %s not found", p.LineID)
		}
		old := j.lines[i]
		j.lines[i] = p.Line
		j.totalDebit = j.totalDebit.Sub(old.Debit).Add(p.Line.Debit)
		j.totalCredit = j.totalCredit.Sub(old.Credit).Add(p.Line.Credit)
	case JournalLineRemoved:
		i := j.findLine(p.LineID)
		if i < 0 {
			return fmt.Errorf("line %s not found", p.LineID)
		}
		old := j.lines[i]
		j.lines = append(j.lines[:i], j.lines[i+1:]...)
		j.totalDebit = j.totalDebit.Sub(old.Debit)
		j.totalCredit = j.totalCredit.Sub(old.Credit)
	case JournalDateChanged:
		j.documentDate = p.DocumentDate
		j.fiscalPeriod = p.FiscalPeriod
	case JournalBalanceValidated:
		// Validation-passed fact; no state change.
	case JournalPosted:
		j.status = StatusPosted
		postedAt := p.PostedAt
		j.postedAt = &postedAt
		j.postedBy = p.PostedBy
	case JournalReversed:
		j.status = StatusReversed
		j.reversedByJournalID = p.ReversingJournalID
	default:
		return fmt.Errorf("unhandled journal event %T", typed)
	}
	return nil
}

// LoadFromHistory implements EventSourced, replaying already-committed events
// in stream order.
func (j *JournalEntry) LoadFromHistory(events []Event) error {
	return j.replay(j.when, events)
}

// journalSnapshotState is the serialized fold of a journal entry at a
// version. Advisory only; the event stream stays authoritative.
type journalSnapshotState struct {
	JournalID           string          `json:"journalID"`
	TenantID            string          `json:"tenantID"`
	DocumentNumber      string          `json:"documentNumber"`
	DocumentDate        time.Time       `json:"documentDate"`
	DocumentType        DocumentType    `json:"documentType"`
	Description         string          `json:"description"`
	Reference           string          `json:"reference"`
	FiscalPeriod        string          `json:"fiscalPeriod"`
	Status              JournalStatus   `json:"status"`
	Lines               []JournalLine   `json:"lines"`
	TotalDebit          decimal.Decimal `json:"totalDebit"`
	TotalCredit         decimal.Decimal `json:"totalCredit"`
	PostedAt            *time.Time      `json:"postedAt,omitempty"`
	PostedBy            string          `json:"postedBy,omitempty"`
	ReversesJournalID   string          `json:"reversesJournalID,omitempty"`
	ReversedByJournalID string          `json:"reversedByJournalID,omitempty"`
}

// SnapshotState implements EventSourced.
func (j *JournalEntry) SnapshotState() (json.RawMessage, error) {
	return json.Marshal(journalSnapshotState{
		JournalID:           j.ID(),
		TenantID:            j.TenantID(),
		DocumentNumber:      j.documentNumber,
		DocumentDate:        j.documentDate,
		DocumentType:        j.documentType,
		Description:         j.description,
		Reference:           j.reference,
		FiscalPeriod:        j.fiscalPeriod,
		Status:              j.status,
		Lines:               j.lines,
		TotalDebit:          j.totalDebit,
		TotalCredit:         j.totalCredit,
		PostedAt:            j.postedAt,
		PostedBy:            j.postedBy,
		ReversesJournalID:   j.reversesJournalID,
		ReversedByJournalID: j.reversedByJournalID,
	})
}

// RestoreSnapshot implements EventSourced, priming state for tail replay.
func (j *JournalEntry) RestoreSnapshot(state json.RawMessage, version int64) error {
	var s journalSnapshotState
	if err := json.Unmarshal(state, &s); err != nil {
		return fmt.Errorf("%w: decoding journal snapshot: %v", apperrors.ErrCorruptEvent, err)
	}
	j.restore(s.JournalID, s.TenantID, version)
	j.documentNumber = s.DocumentNumber
	j.documentDate = s.DocumentDate
	j.documentType = s.DocumentType
	j.description = s.Description
	j.reference = s.Reference
	j.fiscalPeriod = s.FiscalPeriod
	j.status = s.Status
	j.lines = s.Lines
	j.totalDebit = s.TotalDebit
	j.totalCredit = s.TotalCredit
	j.postedAt = s.PostedAt
	j.postedBy = s.PostedBy
	j.reversesJournalID = s.ReversesJournalID
	j.reversedByJournalID = s.ReversedByJournalID
	return nil
}

var _ EventSourced = (*JournalEntry)(nil)
