package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineRequest defines the data accepted for a single journal line.
type LineRequest struct {
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
	CostCenter  string          `json:"costCenter,omitempty"`
	Project     string          `json:"project,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	TaxCode     string          `json:"taxCode,omitempty"`
}

// ToLineInput converts a LineRequest to the domain input type.
func (r LineRequest) ToLineInput() domain.LineInput {
	return domain.LineInput{
		AccountCode: r.AccountCode,
		Debit:       r.Debit,
		Credit:      r.Credit,
		Description: r.Description,
		CostCenter:  r.CostCenter,
		Project:     r.Project,
		Reference:   r.Reference,
		TaxCode:     r.TaxCode,
	}
}

// CreateJournalRequest defines the data accepted when creating a journal entry.
type CreateJournalRequest struct {
	DocumentDate time.Time           `json:"documentDate"`
	DocumentType domain.DocumentType `json:"documentType"`
	Description  string              `json:"description"`
	Reference    string              `json:"reference,omitempty"`
	Lines        []LineRequest       `json:"lines,omitempty"`
	AutoPost     bool                `json:"autoPost,omitempty"`
}

// CreateClosingRequest defines the data accepted for a period-end closing run.
type CreateClosingRequest struct {
	BalancesByAccount       map[string]decimal.Decimal `json:"balancesByAccount"`
	ClosingDate             time.Time                  `json:"closingDate"`
	RetainedEarningsAccount string                     `json:"retainedEarningsAccount"`
}

// LineResponse defines the data returned for a journal line.
type LineResponse struct {
	LineID      string          `json:"lineID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	JournalID           string          `json:"journalID"`
	DocumentNumber      string          `json:"documentNumber"`
	DocumentDate        time.Time       `json:"documentDate"`
	DocumentType        string          `json:"documentType"`
	Description         string          `json:"description"`
	Reference           string          `json:"reference,omitempty"`
	FiscalPeriod        string          `json:"fiscalPeriod"`
	Status              string          `json:"status"`
	Lines               []LineResponse  `json:"lines"`
	TotalDebit          decimal.Decimal `json:"totalDebit"`
	TotalCredit         decimal.Decimal `json:"totalCredit"`
	PostedAt            *time.Time      `json:"postedAt,omitempty"`
	PostedBy            string          `json:"postedBy,omitempty"`
	ReversesJournalID   string          `json:"reversesJournalID,omitempty"`
	ReversedByJournalID string          `json:"reversedByJournalID,omitempty"`
}

// ToJournalResponse converts a domain.JournalEntry to JournalResponse DTO.
func ToJournalResponse(j *domain.JournalEntry) JournalResponse {
	lines := j.Lines()
	lineResponses := make([]LineResponse, len(lines))
	for i, l := range lines {
		lineResponses[i] = LineResponse{
			LineID:      l.LineID,
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return JournalResponse{
		JournalID:           j.ID(),
		DocumentNumber:      j.DocumentNumber(),
		DocumentDate:        j.DocumentDate(),
		DocumentType:        string(j.DocumentType()),
		Description:         j.Description(),
		Reference:           j.Reference(),
		FiscalPeriod:        j.FiscalPeriod(),
		Status:              string(j.Status()),
		Lines:               lineResponses,
		TotalDebit:          j.TotalDebit(),
		TotalCredit:         j.TotalCredit(),
		PostedAt:            j.PostedAt(),
		PostedBy:            j.PostedBy(),
		ReversesJournalID:   j.ReversesJournalID(),
		ReversedByJournalID: j.ReversedByJournalID(),
	}
}
