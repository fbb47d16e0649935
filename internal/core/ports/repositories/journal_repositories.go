package repositories

import (
	"context"
	"time"

	"github.com/fincore/backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalEntryRepositoryFacade defines the persistence operations for journal
// entries and their lines. Saving an entry persists its lines atomically and,
// for POSTED entries, applies the supplied balance changes to accounts within
// the same transaction.
type JournalEntryRepositoryFacade interface {
	SaveEntry(ctx context.Context, entry domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	// MaxEntrySequence returns the highest numeric suffix among existing entry
	// numbers sharing the given prefix (e.g. "JE2024"), or 0 if none exist.
	MaxEntrySequence(ctx context.Context, prefix string) (int, error)
	EntryNumberExists(ctx context.Context, entryNumber string) (bool, error)
	ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// PostEntry flips a DRAFT entry to POSTED and applies the balance changes
	// in one transaction. Returns apperrors.ErrInvalidState when the entry is
	// not in DRAFT.
	PostEntry(ctx context.Context, entryID string, balanceChanges map[string]decimal.Decimal, updatedBy string, updatedAt time.Time) error
	// UpdateEntryStatus transitions the entry status without touching balances.
	UpdateEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, updatedBy string, updatedAt time.Time) error
}
