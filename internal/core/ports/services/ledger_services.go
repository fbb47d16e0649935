package services

import (
	"context"

	"github.com/fincore/backoffice/internal/core/domain"
	"github.com/fincore/backoffice/internal/dto"
)

// LedgerSvcFacade is the ledger posting engine surface.
type LedgerSvcFacade interface {
	// CreateJournalEntry builds, balances, numbers and persists a journal
	// entry. Account balances mutate only when the entry status is POSTED.
	CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creatorUserID string) (*domain.JournalEntry, error)
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)
	// VerifyConfig resolves the balancing account eagerly so a broken
	// configuration fails at startup rather than on the first unbalanced entry.
	VerifyConfig(ctx context.Context) error
}
