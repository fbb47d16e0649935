package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fincore/backoffice/internal/apperrors"
	"github.com/fincore/backoffice/internal/core/domain"
	portsrepo "github.com/fincore/backoffice/internal/core/ports/repositories"
	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
	"github.com/fincore/backoffice/internal/dto"
	"github.com/fincore/backoffice/internal/middleware"
)

var (
	ErrNoLines            = errors.New("journal entry must have at least one line")
	ErrMixedCurrencies    = errors.New("all accounts in a journal entry must share one currency")
	ErrNegativeAmount     = errors.New("line amounts must not be negative")
	ErrBalancingAccount   = errors.New("balancing account is not configured")
	ErrBalancingCurrency  = errors.New("balancing account currency does not match entry currency")
	ErrInvalidEntryStatus = errors.New("journal entry status must be DRAFT or POSTED on creation")
)

// balancingDescription is used for the synthetic balancing line when the
// entry itself has no description.
const balancingDescription = "automatic balancing entry"

// entryNumberPrefix precedes the year in generated document numbers.
const entryNumberPrefix = "JE"

// ledgerService implements the ledger posting engine. It is the only path
// that mutates account running balances.
type ledgerService struct {
	entryRepo    portsrepo.JournalEntryRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
	settingsRepo portsrepo.SettingsRepositoryFacade
	balancingKey string
}

// NewLedgerService creates a new LedgerService. balancingKey names the system
// setting that holds the balancing account id.
func NewLedgerService(
	entryRepo portsrepo.JournalEntryRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	settingsRepo portsrepo.SettingsRepositoryFacade,
	balancingKey string,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		entryRepo:    entryRepo,
		accountRepo:  accountRepo,
		settingsRepo: settingsRepo,
		balancingKey: balancingKey,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// CreateJournalEntry implements portssvc.LedgerSvcFacade.
func (s *ledgerService) CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrNoLines)
	}

	status := req.Status
	if status == "" {
		status = domain.Draft
	}
	if status != domain.Draft && status != domain.Posted {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrInvalidEntryStatus)
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()

	// Normalize lines: blank line descriptions inherit the entry description.
	lines := make([]domain.JournalLine, 0, len(req.Lines)+1)
	accountIDs := make([]string, 0, len(req.Lines))
	for _, lineReq := range req.Lines {
		if lineReq.Debit.IsNegative() || lineReq.Credit.IsNegative() {
			return nil, fmt.Errorf("%w: %w (account %s)", apperrors.ErrValidation, ErrNegativeAmount, lineReq.AccountID)
		}
		description := lineReq.Description
		if description == "" {
			description = req.Description
		}
		lines = append(lines, domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			AccountID:    lineReq.AccountID,
			CostCenterID: lineReq.CostCenterID,
			Debit:        lineReq.Debit,
			Credit:       lineReq.Credit,
			Description:  description,
			Reference:    lineReq.Reference,
		})
		accountIDs = append(accountIDs, lineReq.AccountID)
	}

	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, uniqueStrings(accountIDs))
	if err != nil {
		logger.Error("Failed to fetch accounts for entry creation", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	// All referenced accounts must share one currency. Accounts that do not
	// resolve contribute nothing here; posting skips them too.
	entryCurrency := ""
	for _, acc := range accountsMap {
		if entryCurrency == "" {
			entryCurrency = acc.CurrencyCode
			continue
		}
		if acc.CurrencyCode != entryCurrency {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrMixedCurrencies)
		}
	}

	totalDebit, totalCredit := sumLines(lines)
	difference := totalDebit.Sub(totalCredit).Round(2)

	if !difference.IsZero() {
		balancingLine, balancingAccount, err := s.buildBalancingLine(ctx, entryID, req.Description, entryCurrency, difference)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *balancingLine)
		accountsMap[balancingAccount.AccountID] = *balancingAccount
		totalDebit, totalCredit = sumLines(lines)
	}

	number, err := s.resolveEntryNumber(ctx, req.Number)
	if err != nil {
		return nil, err
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryNumber: number,
		EntryDate:   req.Date,
		Description: req.Description,
		Reference:   req.Reference,
		BranchID:    req.BranchID,
		Status:      status,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Lines:       lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	// Balance changes apply only when the entry is posted. A line whose
	// account does not resolve is skipped silently.
	balanceChanges := make(map[string]decimal.Decimal)
	if status == domain.Posted {
		for _, line := range entry.Lines {
			acc, found := accountsMap[line.AccountID]
			if !found {
				logger.Warn("Account not found while applying balances, skipping line", slog.String("account_id", line.AccountID))
				continue
			}
			net := acc.NetAmount(line.Debit, line.Credit)
			balanceChanges[line.AccountID] = balanceChanges[line.AccountID].Add(net)
		}
	}

	if err := s.entryRepo.SaveEntry(ctx, entry, balanceChanges); err != nil {
		logger.Error("Failed to save journal entry", slog.String("error", err.Error()), slog.String("entry_number", number))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	logger.Info("Journal entry created", slog.String("entry_id", entryID), slog.String("entry_number", number), slog.String("status", string(status)))
	return &entry, nil
}

// buildBalancingLine resolves the configured balancing account and produces
// the synthetic line that offsets the rounding difference.
func (s *ledgerService) buildBalancingLine(ctx context.Context, entryID, entryDescription, entryCurrency string, difference decimal.Decimal) (*domain.JournalLine, *domain.Account, error) {
	balancingAccount, err := s.resolveBalancingAccount(ctx)
	if err != nil {
		return nil, nil, err
	}

	if entryCurrency != "" && balancingAccount.CurrencyCode != entryCurrency {
		return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrBalancingCurrency)
	}

	description := entryDescription
	if description == "" {
		description = balancingDescription
	}

	debit := decimal.Zero
	credit := decimal.Zero
	if difference.IsNegative() {
		debit = difference.Neg()
	} else {
		credit = difference
	}

	line := &domain.JournalLine{
		LineID:      uuid.NewString(),
		EntryID:     entryID,
		AccountID:   balancingAccount.AccountID,
		Debit:       debit,
		Credit:      credit,
		Description: description,
	}
	return line, balancingAccount, nil
}

// resolveBalancingAccount reads the balancing account id from system settings
// and loads the account. Any miss is a configuration error, not recoverable
// at this layer.
func (s *ledgerService) resolveBalancingAccount(ctx context.Context) (*domain.Account, error) {
	accountID, err := s.settingsRepo.Get(ctx, s.balancingKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s (setting %q)", apperrors.ErrConfiguration, ErrBalancingAccount, s.balancingKey)
		}
		return nil, fmt.Errorf("failed to read balancing account setting: %w", err)
	}
	if accountID == "" {
		return nil, fmt.Errorf("%w: %s (setting %q is empty)", apperrors.ErrConfiguration, ErrBalancingAccount, s.balancingKey)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: balancing account %s does not exist", apperrors.ErrConfiguration, accountID)
		}
		return nil, fmt.Errorf("failed to load balancing account: %w", err)
	}
	return account, nil
}

// resolveEntryNumber uses the caller-supplied number verbatim, or generates
// the next JE<year><seq> number. Generation retries past concurrent numbers;
// the unique index on entry_number is the final arbiter.
func (s *ledgerService) resolveEntryNumber(ctx context.Context, supplied *string) (string, error) {
	if supplied != nil && *supplied != "" {
		return *supplied, nil
	}

	prefix := fmt.Sprintf("%s%d", entryNumberPrefix, time.Now().UTC().Year())
	maxSeq, err := s.entryRepo.MaxEntrySequence(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to determine next entry number: %w", err)
	}

	seq := maxSeq + 1
	for {
		candidate := fmt.Sprintf("%s%03d", prefix, seq)
		exists, err := s.entryRepo.EntryNumberExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check entry number %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		seq++
	}
}

// GetEntryByID implements portssvc.LedgerSvcFacade.
func (s *ledgerService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	return entry, nil
}

// ListEntries implements portssvc.LedgerSvcFacade.
func (s *ledgerService) ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.entryRepo.ListEntries(ctx, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list journal entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	responses := make([]dto.JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = dto.ToJournalEntryResponse(&entries[i])
	}
	return &dto.ListJournalEntriesResponse{Entries: responses, NextToken: nextToken}, nil
}

// VerifyConfig implements portssvc.LedgerSvcFacade. Called at startup so a
// missing balancing account fails boot instead of the first unbalanced entry.
func (s *ledgerService) VerifyConfig(ctx context.Context) error {
	_, err := s.resolveBalancingAccount(ctx)
	return err
}

func sumLines(lines []domain.JournalLine) (decimal.Decimal, decimal.Decimal) {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}
	return totalDebit, totalCredit
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
