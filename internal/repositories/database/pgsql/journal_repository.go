package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fincore/backoffice/internal/apperrors"
	"github.com/fincore/backoffice/internal/core/domain"
	portsrepo "github.com/fincore/backoffice/internal/core/ports/repositories"
	"github.com/fincore/backoffice/internal/utils/pagination"
)

type PgxJournalEntryRepository struct {
	BaseRepository
}

// newPgxJournalEntryRepository creates a new repository for journal entry data.
func newPgxJournalEntryRepository(pool *pgxpool.Pool) portsrepo.JournalEntryRepositoryFacade {
	return &PgxJournalEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.JournalEntryRepositoryFacade = (*PgxJournalEntryRepository)(nil)

// SaveEntry saves an entry with its lines and, for POSTED entries, applies the
// balance changes to accounts, all within one DB transaction.
func (r *PgxJournalEntryRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Ignored once committed

	entryQuery := `
		INSERT INTO journal_entries (
			entry_id, entry_number, entry_date, description, reference, branch_id, status,
			total_debit, total_credit,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = tx.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.EntryNumber,
		entry.EntryDate,
		entry.Description,
		entry.Reference,
		entry.BranchID,
		entry.Status,
		entry.TotalDebit,
		entry.TotalCredit,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert journal entry "+entry.EntryID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (line_id, entry_id, account_id, cost_center_id, debit, credit, description, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, line := range entry.Lines {
		batch.Queue(lineQuery,
			line.LineID,
			line.EntryID,
			line.AccountID,
			line.CostCenterID,
			line.Debit,
			line.Credit,
			line.Description,
			line.Reference,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert lines for entry "+entry.EntryID, err)
	}

	if err := applyBalanceChanges(ctx, tx, balanceChanges, entry.LastUpdatedBy, entry.LastUpdatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// applyBalanceChanges adds each net amount onto the account's running balance
// inside the caller's transaction.
func applyBalanceChanges(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, updatedBy string, updatedAt time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE account_id = $1;
	`
	batch := &pgx.Batch{}
	for accountID, change := range balanceChanges {
		batch.Queue(query, accountID, change, updatedAt, updatedBy)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to apply account balance changes", err)
	}
	return nil
}

// FindEntryByID retrieves an entry together with its lines.
func (r *PgxJournalEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entryQuery := `
		SELECT entry_id, entry_number, entry_date, description, reference, branch_id, status,
		       total_debit, total_credit,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM journal_entries
		WHERE entry_id = $1;
	`
	var e domain.JournalEntry
	err := r.Pool.QueryRow(ctx, entryQuery, entryID).Scan(
		&e.EntryID,
		&e.EntryNumber,
		&e.EntryDate,
		&e.Description,
		&e.Reference,
		&e.BranchID,
		&e.Status,
		&e.TotalDebit,
		&e.TotalCredit,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal entry by ID "+entryID, err)
	}

	lineQuery := `
		SELECT line_id, entry_id, account_id, cost_center_id, debit, credit, description, reference
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY line_id;
	`
	rows, err := r.Pool.Query(ctx, lineQuery, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.JournalLine
		if err := rows.Scan(
			&l.LineID,
			&l.EntryID,
			&l.AccountID,
			&l.CostCenterID,
			&l.Debit,
			&l.Credit,
			&l.Description,
			&l.Reference,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for entry "+entryID, err)
		}
		e.Lines = append(e.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for entry "+entryID, err)
	}

	return &e, nil
}

// MaxEntrySequence returns the highest numeric suffix among entry numbers
// sharing the given prefix, or 0 when none exist.
func (r *PgxJournalEntryRepository) MaxEntrySequence(ctx context.Context, prefix string) (int, error) {
	query := `
		SELECT COALESCE(MAX(substr(entry_number, length($1) + 1)::int), 0)
		FROM journal_entries
		WHERE entry_number ~ ('^' || $1 || '[0-9]+$');
	`
	var maxSeq int
	if err := r.Pool.QueryRow(ctx, query, prefix).Scan(&maxSeq); err != nil {
		return 0, apperrors.NewAppError(500, "failed to determine max sequence for prefix "+prefix, err)
	}
	return maxSeq, nil
}

// EntryNumberExists reports whether an entry with the given number exists.
func (r *PgxJournalEntryRepository) EntryNumberExists(ctx context.Context, entryNumber string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM journal_entries WHERE entry_number = $1);`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, entryNumber).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check entry number "+entryNumber, err)
	}
	return exists, nil
}

// ListEntries retrieves a paginated list of entries (without lines) using
// token-based pagination, newest first.
func (r *PgxJournalEntryRepository) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to know whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT entry_id, entry_number, entry_date, description, reference, branch_id, status,
		       total_debit, total_credit,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM journal_entries
	`
	orderByClause := `ORDER BY created_at DESC, entry_id DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastEntryID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt, lastEntryID)
		query := baseQuery + " WHERE (created_at, entry_id) < ($1, $2) " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $1;"
		rows, err = r.Pool.Query(ctx, query, fetchLimit)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journal entries", err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		var e domain.JournalEntry
		if err := rows.Scan(
			&e.EntryID,
			&e.EntryNumber,
			&e.EntryDate,
			&e.Description,
			&e.Reference,
			&e.BranchID,
			&e.Status,
			&e.TotalDebit,
			&e.TotalCredit,
			&e.CreatedAt,
			&e.CreatedBy,
			&e.LastUpdatedAt,
			&e.LastUpdatedBy,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal entry row", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal entry rows", err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.EntryID)
		nextTokenVal = &token
		entries = entries[:limit]
	}

	return entries, nextTokenVal, nil
}

// PostEntry flips a DRAFT entry to POSTED and applies the balance changes in
// one transaction. The conditional update closes the race between two
// concurrent finalizations.
func (r *PgxJournalEntryRepository) PostEntry(ctx context.Context, entryID string, balanceChanges map[string]decimal.Decimal, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE journal_entries
		SET status = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE entry_id = $1 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, query, entryID, domain.Posted, updatedAt, updatedBy, domain.Draft)
	if err != nil {
		return apperrors.NewAppError(500, "failed to post journal entry "+entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrInvalidState
	}

	if err := applyBalanceChanges(ctx, tx, balanceChanges, updatedBy, updatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateEntryStatus transitions the entry status without touching balances.
func (r *PgxJournalEntryRepository) UpdateEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE entry_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, entryID, status, updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status for entry "+entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
