package domain

import (
	"fmt"
	"time"
)

// PeriodPolicy decides whether a document date falls in an open accounting
// period. Implementations live outside the domain; the default placeholder
// policy is in internal/core/services.
type PeriodPolicy interface {
	IsPeriodOpen(date time.Time) bool
}

// FiscalPeriodOf computes the fiscal period label for a document date.
// The fiscal year runs July 1 through June 30 (Bangladesh convention), with
// July as period 1 and June as period 12, e.g. "FY2025-2026-P03" for a
// September 2025 date. The label is a pure function of the date and is
// recomputed whenever the document date changes while still DRAFT.
func FiscalPeriodOf(date time.Time) string {
	startYear := date.Year()
	if date.Month() < time.July {
		startYear--
	}
	period := int(date.Month()) - 6
	if period <= 0 {
		period += 12
	}
	return fmt.Sprintf("FY%d-%d-P%02d", startYear, startYear+1, period)
}
