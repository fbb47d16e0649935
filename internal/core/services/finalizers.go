package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fincore/backoffice/internal/apperrors"
	"github.com/fincore/backoffice/internal/core/domain"
	portsrepo "github.com/fincore/backoffice/internal/core/ports/repositories"
	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
	"github.com/fincore/backoffice/internal/middleware"
)

// DocumentTypeJournalEntry is the workflow document type for journal entries.
const DocumentTypeJournalEntry = "JOURNAL_ENTRY"

// journalEntryFinalizer posts a draft journal entry when its approval
// workflow completes, and cancels it on rejection.
type journalEntryFinalizer struct {
	entryRepo   portsrepo.JournalEntryRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewJournalEntryFinalizer creates the finalizer registered for
// DocumentTypeJournalEntry.
func NewJournalEntryFinalizer(entryRepo portsrepo.JournalEntryRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.DocumentFinalizer {
	return &journalEntryFinalizer{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.DocumentFinalizer = (*journalEntryFinalizer)(nil)

// Finalize implements portssvc.DocumentFinalizer. The draft entry moves to
// POSTED and account balances take effect.
func (f *journalEntryFinalizer) Finalize(ctx context.Context, documentID, approverUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := f.entryRepo.FindEntryByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to find journal entry %s: %w", documentID, err)
	}
	if entry.Status == domain.Posted {
		// A concurrent finalization already won.
		return nil
	}
	if entry.Status != domain.Draft {
		return fmt.Errorf("%w: journal entry %s is %s", apperrors.ErrInvalidState, documentID, entry.Status)
	}

	accountIDs := make([]string, 0, len(entry.Lines))
	for _, line := range entry.Lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	accountsMap, err := f.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts for posting: %w", err)
	}

	balanceChanges := make(map[string]decimal.Decimal)
	for _, line := range entry.Lines {
		acc, found := accountsMap[line.AccountID]
		if !found {
			logger.Warn("Account not found while posting approved entry, skipping line", slog.String("account_id", line.AccountID))
			continue
		}
		net := acc.NetAmount(line.Debit, line.Credit)
		balanceChanges[line.AccountID] = balanceChanges[line.AccountID].Add(net)
	}

	now := time.Now().UTC()
	if err := f.entryRepo.PostEntry(ctx, documentID, balanceChanges, approverUserID, now); err != nil {
		if errors.Is(err, apperrors.ErrInvalidState) {
			return nil
		}
		return fmt.Errorf("failed to post journal entry %s: %w", documentID, err)
	}

	logger.Info("Journal entry posted via workflow", slog.String("entry_id", documentID), slog.String("approver", approverUserID))
	return nil
}

// Reject implements portssvc.DocumentFinalizer. The draft entry is cancelled;
// balances were never touched.
func (f *journalEntryFinalizer) Reject(ctx context.Context, documentID string) error {
	entry, err := f.entryRepo.FindEntryByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to find journal entry %s: %w", documentID, err)
	}
	if entry.Status != domain.Draft {
		return nil
	}

	now := time.Now().UTC()
	if err := f.entryRepo.UpdateEntryStatus(ctx, documentID, domain.Cancelled, "system", now); err != nil {
		return fmt.Errorf("failed to cancel journal entry %s: %w", documentID, err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Journal entry cancelled via workflow rejection", slog.String("entry_id", documentID))
	return nil
}

// DocumentBranch implements portssvc.DocumentFinalizer.
func (f *journalEntryFinalizer) DocumentBranch(ctx context.Context, documentID string) (string, error) {
	entry, err := f.entryRepo.FindEntryByID(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("failed to find journal entry %s: %w", documentID, err)
	}
	return entry.BranchID, nil
}
