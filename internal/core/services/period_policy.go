package services

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// WindowPeriodPolicy treats a period as open when the document date falls
// within one month either side of now. It is a placeholder for a real
// accounting-period ledger and exists as an injected policy so callers can
// swap it without touching the aggregate.
type WindowPeriodPolicy struct {
	now func() time.Time
}

// NewWindowPeriodPolicy creates the default ±1 month window policy.
func NewWindowPeriodPolicy() *WindowPeriodPolicy {
	return &WindowPeriodPolicy{now: time.Now}
}

var _ domain.PeriodPolicy = (*WindowPeriodPolicy)(nil)

// IsPeriodOpen implements domain.PeriodPolicy.
func (p *WindowPeriodPolicy) IsPeriodOpen(date time.Time) bool {
	now := p.now()
	return !date.Before(now.AddDate(0, -1, 0)) && !date.After(now.AddDate(0, 1, 0))
}
