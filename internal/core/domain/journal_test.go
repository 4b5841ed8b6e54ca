package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openPolicy accepts every date; closedPolicy rejects every date.
type openPolicy struct{}

func (openPolicy) IsPeriodOpen(time.Time) bool { return true }

type closedPolicy struct{}

func (closedPolicy) IsPeriodOpen(time.Time) bool { return false }

func testDate() time.Time {
	return time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC)
}

func newDraftJournal(t *testing.T) *domain.JournalEntry {
	t.Helper()
	j, err := domain.NewJournalEntry(domain.NewJournalParams{
		DocumentNumber: "GJ-2025-09-000001",
		DocumentDate:   testDate(),
		DocumentType:   domain.DocTypeGeneral,
		Description:    "Sale",
		TenantID:       "tenant-1",
	}, openPolicy{})
	require.NoError(t, err)
	return j
}

func mustLine(t *testing.T, account string, debit, credit decimal.Decimal) domain.JournalLine {
	t.Helper()
	line, err := domain.NewJournalLine(domain.LineInput{
		AccountCode: account,
		Debit:       debit,
		Credit:      credit,
	})
	require.NoError(t, err)
	return line
}

func TestNewJournalLine_Exclusivity(t *testing.T) {
	amount := decimal.NewFromFloat(100.00)

	testCases := []struct {
		name   string
		debit  decimal.Decimal
		credit decimal.Decimal
		ok     bool
	}{
		{"debit only", amount, decimal.Zero, true},
		{"credit only", decimal.Zero, amount, true},
		{"both set", amount, amount, false},
		{"neither set", decimal.Zero, decimal.Zero, false},
		{"negative debit", amount.Neg(), decimal.Zero, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.NewJournalLine(domain.LineInput{
				AccountCode: "1010",
				Debit:       tc.debit,
				Credit:      tc.credit,
			})
			if tc.ok {
				assert.NoError(t, err)
			} else {
				var malformed apperrors.MalformedLineError
				assert.ErrorAs(t, err, &malformed)
			}
		})
	}
}

func TestNewJournalEntry(t *testing.T) {
	t.Run("creates a DRAFT entry with computed fiscal period", func(t *testing.T) {
		j := newDraftJournal(t)

		assert.Equal(t, domain.StatusDraft, j.Status())
		assert.Equal(t, "GJ-2025-09-000001", j.DocumentNumber())
		assert.Equal(t, "FY2025-2026-P03", j.FiscalPeriod())
		assert.Equal(t, int64(1), j.Version())
		assert.Len(t, j.UncommittedEvents(), 1)
	})

	t.Run("rejects a date outside the open period", func(t *testing.T) {
		_, err := domain.NewJournalEntry(domain.NewJournalParams{
			DocumentNumber: "GJ-2025-09-000002",
			DocumentDate:   testDate(),
			DocumentType:   domain.DocTypeGeneral,
			TenantID:       "tenant-1",
		}, closedPolicy{})

		var periodClosed apperrors.PeriodClosedError
		require.ErrorAs(t, err, &periodClosed)
		assert.Equal(t, testDate(), periodClosed.Date)
	})

	t.Run("rejects an unknown document type", func(t *testing.T) {
		_, err := domain.NewJournalEntry(domain.NewJournalParams{
			DocumentNumber: "XX-2025-09-000001",
			DocumentDate:   testDate(),
			DocumentType:   domain.DocumentType("BOGUS"),
			TenantID:       "tenant-1",
		}, openPolicy{})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("auto-post posts a balanced entry in the same operation", func(t *testing.T) {
		amount := decimal.NewFromFloat(1000.00)
		j, err := domain.NewJournalEntry(domain.NewJournalParams{
			DocumentNumber: "GJ-2025-09-000003",
			DocumentDate:   testDate(),
			DocumentType:   domain.DocTypeGeneral,
			Description:    "Sale",
			TenantID:       "tenant-1",
			InitialLines: []domain.LineInput{
				{AccountCode: "1010", Debit: amount},
				{AccountCode: "4010", Credit: amount},
			},
			AutoPost: true,
			Actor:    "user-1",
		}, openPolicy{})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusPosted, j.Status())
		assert.True(t, j.TotalDebit().Equal(amount))
		assert.True(t, j.TotalCredit().Equal(amount))
		assert.Equal(t, "user-1", j.PostedBy())
		require.NotNil(t, j.PostedAt())
	})
}

func TestJournalEntry_ValidateBalance(t *testing.T) {
	t.Run("fails with fewer than two lines", func(t *testing.T) {
		j := newDraftJournal(t)
		require.NoError(t, j.AddLine(mustLine(t, "1010", decimal.NewFromInt(50), decimal.Zero)))

		var empty apperrors.EmptyJournalError
		require.ErrorAs(t, j.ValidateBalance(), &empty)
		assert.Equal(t, 1, empty.LineCount)
	})

	t.Run("fails with the exact computed totals when unbalanced", func(t *testing.T) {
		j := newDraftJournal(t)
		require.NoError(t, j.AddLine(mustLine(t, "1010", decimal.NewFromFloat(100.00), decimal.Zero)))
		require.NoError(t, j.AddLine(mustLine(t, "4010", decimal.Zero, decimal.NewFromFloat(99.00))))

		var unbalanced apperrors.UnbalancedJournalError
		require.ErrorAs(t, j.ValidateBalance(), &unbalanced)
		assert.True(t, unbalanced.TotalDebit.Equal(decimal.NewFromFloat(100.00)))
		assert.True(t, unbalanced.TotalCredit.Equal(decimal.NewFromFloat(99.00)))
	})

	t.Run("passes within the rounding tolerance", func(t *testing.T) {
		j := newDraftJournal(t)
		require.NoError(t, j.AddLine(mustLine(t, "1010", decimal.NewFromFloat(100.00), decimal.Zero)))
		require.NoError(t, j.AddLine(mustLine(t, "4010", decimal.Zero, decimal.NewFromFloat(99.99))))

		assert.NoError(t, j.ValidateBalance())
	})

	t.Run("fails just past the rounding tolerance", func(t *testing.T) {
		j := newDraftJournal(t)
		require.NoError(t, j.AddLine(mustLine(t, "1010", decimal.NewFromFloat(100.00), decimal.Zero)))
		require.NoError(t, j.AddLine(mustLine(t, "4010", decimal.Zero, decimal.NewFromFloat(99.98))))

		var unbalanced apperrors.UnbalancedJournalError
		assert.ErrorAs(t, j.ValidateBalance(), &unbalanced)
	})
}

func TestJournalEntry_Post(t *testing.T) {
	amount := decimal.NewFromFloat(1000.00)

	t.Run("posts a balanced DRAFT journal", func(t *testing.T) {
		j := newDraftJournal(t)
		require.NoError(t, j.AddLine(mustLine(t, "1010", amount, decimal.Zero)))
		require.NoError(t, j.AddLine(mustLine(t, "4010", decimal.Zero, amount)))

		require.NoError(t, j.Post("user-1"))
		assert.Equal(t, domain.StatusPosted, j.Status())
	})

	t.Run("fails on an already posted journal", func(t *testing.T) {
		j := newDraftJournal(t)
		require.NoError(t, j.AddLine(mustLine(t, "1010", amount, decimal.Zero)))
		require.NoError(t, j.AddLine(mustLine(t, "4010", decimal.Zero, amount)))
		require.NoError(t, j.Post("user-1"))

		var invalid apperrors.InvalidStatusError
		require.ErrorAs(t, j.Post("user-1"), &invalid)
		assert.Equal(t, string(domain.StatusPosted), invalid.Current)
		assert.Equal(t, string(domain.StatusDraft), invalid.Expected)
	})
}

func TestJournalEntry_LineMutationOnlyWhileDraft(t *testing.T) {
	amount := decimal.NewFromFloat(1000.00)
	j := newDraftJournal(t)
	require.NoError(t, j.AddLine(mustLine(t, "1010", amount, decimal.Zero)))
	require.NoError(t, j.AddLine(mustLine(t, "4010", decimal.Zero, amount)))
	require.NoError(t, j.Post("user-1"))

	versionBefore := j.Version()
	linesBefore := j.Lines()

	var invalid apperrors.InvalidStatusError
	assert.ErrorAs(t, j.AddLine(mustLine(t, "5010", amount, decimal.Zero)), &invalid)
	assert.ErrorAs(t, j.RemoveLine(linesBefore[0].LineID), &invalid)
	assert.ErrorAs(t, j.ReplaceLine(linesBefore[0].LineID, domain.LineInput{AccountCode: "1020", Debit: amount}), &invalid)
	assert.ErrorAs(t, j.ChangeDate(testDate().AddDate(0, 0, 1), openPolicy{}), &invalid)

	// The failed calls left no trace: same version, same lines, same totals.
	assert.Equal(t, versionBefore, j.Version())
	assert.Equal(t, linesBefore, j.Lines())
	assert.True(t, j.TotalDebit().Equal(amount))
	assert.True(t, j.TotalCredit().Equal(amount))
}

func TestJournalEntry_ReplaceAndRemoveLine(t *testing.T) {
	j := newDraftJournal(t)
	require.NoError(t, j.AddLine(mustLine(t, "1010", decimal.NewFromInt(100), decimal.Zero)))
	require.NoError(t, j.AddLine(mustLine(t, "4010", decimal.Zero, decimal.NewFromInt(100))))
	lineID := j.Lines()[0].LineID

	require.NoError(t, j.ReplaceLine(lineID, domain.LineInput{
		AccountCode: "1020",
		Debit:       decimal.NewFromInt(60),
	}))
	assert.Equal(t, "1020", j.Lines()[0].AccountCode)
	assert.Equal(t, lineID, j.Lines()[0].LineID)
	assert.True(t, j.TotalDebit().Equal(decimal.NewFromInt(60)))

	require.NoError(t, j.RemoveLine(lineID))
	assert.Len(t, j.Lines(), 1)
	assert.True(t, j.TotalDebit().IsZero())

	assert.ErrorIs(t, j.RemoveLine("no-such-line"), apperrors.ErrNotFound)
}

func TestJournalEntry_ChangeDateRecomputesFiscalPeriod(t *testing.T) {
	j := newDraftJournal(t)
	require.Equal(t, "FY2025-2026-P03", j.FiscalPeriod())

	newDate := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.ChangeDate(newDate, openPolicy{}))

	assert.Equal(t, newDate, j.DocumentDate())
	assert.Equal(t, "FY2025-2026-P07", j.FiscalPeriod())
}

func TestJournalEntry_ReplayEquivalence(t *testing.T) {
	amount := decimal.NewFromFloat(1000.00)
	live := newDraftJournal(t)
	require.NoError(t, live.AddLine(mustLine(t, "1010", amount, decimal.Zero)))
	require.NoError(t, live.AddLine(mustLine(t, "4010", decimal.Zero, amount)))
	require.NoError(t, live.Post("user-1"))

	replayed := &domain.JournalEntry{}
	require.NoError(t, replayed.LoadFromHistory(live.UncommittedEvents()))

	assert.Equal(t, live.Version(), replayed.Version())
	assert.Equal(t, live.ID(), replayed.ID())
	assert.Equal(t, live.DocumentNumber(), replayed.DocumentNumber())
	assert.Equal(t, live.FiscalPeriod(), replayed.FiscalPeriod())
	assert.Equal(t, live.Status(), replayed.Status())
	assert.Equal(t, live.Lines(), replayed.Lines())
	assert.True(t, live.TotalDebit().Equal(replayed.TotalDebit()))
	assert.True(t, live.TotalCredit().Equal(replayed.TotalCredit()))
	assert.Empty(t, replayed.UncommittedEvents())
}

func TestJournalEntry_SnapshotRoundTrip(t *testing.T) {
	amount := decimal.NewFromFloat(1000.00)
	live := newDraftJournal(t)
	require.NoError(t, live.AddLine(mustLine(t, "1010", amount, decimal.Zero)))
	require.NoError(t, live.AddLine(mustLine(t, "4010", decimal.Zero, amount)))
	events := live.UncommittedEvents()

	// Snapshot after the first two events, replay the tail on top.
	base := &domain.JournalEntry{}
	require.NoError(t, base.LoadFromHistory(events[:2]))
	state, err := base.SnapshotState()
	require.NoError(t, err)

	restored := &domain.JournalEntry{}
	require.NoError(t, restored.RestoreSnapshot(state, base.Version()))
	require.NoError(t, restored.LoadFromHistory(events[2:]))

	assert.Equal(t, live.Version(), restored.Version())
	assert.Equal(t, live.Lines(), restored.Lines())
	assert.True(t, live.TotalDebit().Equal(restored.TotalDebit()))
	assert.Equal(t, live.Status(), restored.Status())
}

func TestJournalEntry_CreateReversingEntry(t *testing.T) {
	amount := decimal.NewFromFloat(1000.00)

	t.Run("swaps sides and back-references the source", func(t *testing.T) {
		source := newDraftJournal(t)
		require.NoError(t, source.AddLine(mustLine(t, "1010", amount, decimal.Zero)))
		require.NoError(t, source.AddLine(mustLine(t, "4010", decimal.Zero, amount)))
		require.NoError(t, source.Post("user-1"))

		reversal, err := source.CreateReversingEntry("RJ-2025-09-000001", testDate(), openPolicy{})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusDraft, reversal.Status())
		assert.Equal(t, domain.DocTypeReversing, reversal.DocumentType())
		assert.Equal(t, "Reversing: Sale", reversal.Description())
		assert.Equal(t, "REV-GJ-2025-09-000001", reversal.Reference())
		assert.Equal(t, source.ID(), reversal.ReversesJournalID())

		lines := reversal.Lines()
		require.Len(t, lines, 2)
		assert.Equal(t, "1010", lines[0].AccountCode)
		assert.True(t, lines[0].Credit.Equal(amount))
		assert.True(t, lines[0].Debit.IsZero())
		assert.Equal(t, "4010", lines[1].AccountCode)
		assert.True(t, lines[1].Debit.Equal(amount))

		// The source itself is untouched until MarkReversed.
		assert.Equal(t, domain.StatusPosted, source.Status())
	})

	t.Run("fails on an unposted source", func(t *testing.T) {
		source := newDraftJournal(t)

		_, err := source.CreateReversingEntry("RJ-2025-09-000002", testDate(), openPolicy{})
		var cannotReverse apperrors.CannotReverseUnpostedError
		require.ErrorAs(t, err, &cannotReverse)
		assert.Equal(t, string(domain.StatusDraft), cannotReverse.Current)
	})

	t.Run("rejects a reversal date outside the open period", func(t *testing.T) {
		source := newDraftJournal(t)
		require.NoError(t, source.AddLine(mustLine(t, "1010", amount, decimal.Zero)))
		require.NoError(t, source.AddLine(mustLine(t, "4010", decimal.Zero, amount)))
		require.NoError(t, source.Post("user-1"))

		_, err := source.CreateReversingEntry("RJ-2025-09-000003", testDate(), closedPolicy{})
		var periodClosed apperrors.PeriodClosedError
		assert.ErrorAs(t, err, &periodClosed)
	})
}

func TestJournalEntry_MarkReversed(t *testing.T) {
	amount := decimal.NewFromFloat(1000.00)
	source := newDraftJournal(t)
	require.NoError(t, source.AddLine(mustLine(t, "1010", amount, decimal.Zero)))
	require.NoError(t, source.AddLine(mustLine(t, "4010", decimal.Zero, amount)))
	require.NoError(t, source.Post("user-1"))

	require.NoError(t, source.MarkReversed("reversing-journal-id"))
	assert.Equal(t, domain.StatusReversed, source.Status())
	assert.Equal(t, "reversing-journal-id", source.ReversedByJournalID())

	// A reversed journal cannot be reversed again.
	var invalid apperrors.InvalidStatusError
	assert.ErrorAs(t, source.MarkReversed("another"), &invalid)
}

func TestCreateClosingEntry(t *testing.T) {
	t.Run("zeroes income-statement accounts and balances to retained earnings", func(t *testing.T) {
		closing, err := domain.CreateClosingEntry(domain.ClosingParams{
			BalancesByAccount: map[string]decimal.Decimal{
				"4010": decimal.NewFromFloat(-5000.00), // revenue, credit balance
				"5010": decimal.NewFromFloat(3000.00),  // expense, debit balance
				"1010": decimal.NewFromFloat(800.00),   // asset, ignored
			},
			ClosingDate:             testDate(),
			TenantID:                "tenant-1",
			DocumentNumber:          "CJ-2025-09-000001",
			RetainedEarningsAccount: "3200",
		}, openPolicy{})
		require.NoError(t, err)

		assert.Equal(t, domain.DocTypeClosing, closing.DocumentType())
		assert.Equal(t, domain.StatusDraft, closing.Status())

		lines := closing.Lines()
		require.Len(t, lines, 3)
		byAccount := make(map[string]domain.JournalLine, len(lines))
		for _, l := range lines {
			byAccount[l.AccountCode] = l
			assert.Equal(t, "Period-end closing", l.Description)
		}
		// Revenue's credit balance is zeroed by a debit; the expense's debit
		// balance by a credit; retained earnings absorbs the net profit.
		assert.True(t, byAccount["4010"].Debit.Equal(decimal.NewFromFloat(5000.00)))
		assert.True(t, byAccount["5010"].Credit.Equal(decimal.NewFromFloat(3000.00)))
		assert.True(t, byAccount["3200"].Credit.Equal(decimal.NewFromFloat(2000.00)))

		// The constructed journal is balanced and ready to post.
		require.NoError(t, closing.Post("user-1"))
	})

	t.Run("fails when no income-statement balances exist", func(t *testing.T) {
		_, err := domain.CreateClosingEntry(domain.ClosingParams{
			BalancesByAccount: map[string]decimal.Decimal{
				"1010": decimal.NewFromFloat(800.00),
			},
			ClosingDate:             testDate(),
			TenantID:                "tenant-1",
			DocumentNumber:          "CJ-2025-09-000002",
			RetainedEarningsAccount: "3200",
		}, openPolicy{})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}
