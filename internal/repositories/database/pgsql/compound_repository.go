package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fincore/backoffice/internal/apperrors"
	"github.com/fincore/backoffice/internal/core/domain"
	portsrepo "github.com/fincore/backoffice/internal/core/ports/repositories"
	"github.com/fincore/backoffice/internal/utils/pagination"
)

type PgxCompoundRepository struct {
	BaseRepository
}

// newPgxCompoundRepository creates a new repository for compound journal data.
func newPgxCompoundRepository(pool *pgxpool.Pool) portsrepo.CompoundJournalRepositoryFacade {
	return &PgxCompoundRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.CompoundJournalRepositoryFacade = (*PgxCompoundRepository)(nil)

const compoundDefinitionColumns = `
	definition_id, name, template_json, trigger_type, recurrence, recurrence_interval,
	is_active, start_date_utc, end_date_utc, last_run_utc, next_run_utc,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanCompoundDefinition(row pgx.Row) (*domain.CompoundJournalDefinition, error) {
	var d domain.CompoundJournalDefinition
	err := row.Scan(
		&d.DefinitionID,
		&d.Name,
		&d.TemplateJSON,
		&d.TriggerType,
		&d.Recurrence,
		&d.RecurrenceInterval,
		&d.IsActive,
		&d.StartDateUTC,
		&d.EndDateUTC,
		&d.LastRunUTC,
		&d.NextRunUTC,
		&d.CreatedAt,
		&d.CreatedBy,
		&d.LastUpdatedAt,
		&d.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SaveDefinition inserts a new definition.
func (r *PgxCompoundRepository) SaveDefinition(ctx context.Context, def domain.CompoundJournalDefinition) error {
	query := `
		INSERT INTO compound_definitions (` + compoundDefinitionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		def.DefinitionID,
		def.Name,
		def.TemplateJSON,
		def.TriggerType,
		def.Recurrence,
		def.RecurrenceInterval,
		def.IsActive,
		def.StartDateUTC,
		def.EndDateUTC,
		def.LastRunUTC,
		def.NextRunUTC,
		def.CreatedAt,
		def.CreatedBy,
		def.LastUpdatedAt,
		def.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert compound definition "+def.DefinitionID, err)
	}
	return nil
}

// UpdateDefinition updates the mutable fields of a definition.
func (r *PgxCompoundRepository) UpdateDefinition(ctx context.Context, def domain.CompoundJournalDefinition) error {
	query := `
		UPDATE compound_definitions
		SET name = $2,
		    template_json = $3,
		    recurrence = $4,
		    recurrence_interval = $5,
		    is_active = $6,
		    end_date_utc = $7,
		    next_run_utc = $8,
		    last_updated_at = $9,
		    last_updated_by = $10
		WHERE definition_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		def.DefinitionID,
		def.Name,
		def.TemplateJSON,
		def.Recurrence,
		def.RecurrenceInterval,
		def.IsActive,
		def.EndDateUTC,
		def.NextRunUTC,
		def.LastUpdatedAt,
		def.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update compound definition "+def.DefinitionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindDefinitionByID retrieves a definition by its ID.
func (r *PgxCompoundRepository) FindDefinitionByID(ctx context.Context, definitionID string) (*domain.CompoundJournalDefinition, error) {
	query := `SELECT ` + compoundDefinitionColumns + ` FROM compound_definitions WHERE definition_id = $1;`

	def, err := scanCompoundDefinition(r.Pool.QueryRow(ctx, query, definitionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find compound definition "+definitionID, err)
	}
	return def, nil
}

// FindDueDefinitions returns active, non-manual definitions whose next run is
// not after asOf, oldest first so backlogs drain in order.
func (r *PgxCompoundRepository) FindDueDefinitions(ctx context.Context, asOf time.Time) ([]domain.CompoundJournalDefinition, error) {
	query := `
		SELECT ` + compoundDefinitionColumns + `
		FROM compound_definitions
		WHERE is_active = TRUE
		  AND trigger_type != $1
		  AND next_run_utc IS NOT NULL
		  AND next_run_utc <= $2
		ORDER BY next_run_utc;
	`
	rows, err := r.Pool.Query(ctx, query, domain.TriggerManual, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query due compound definitions", err)
	}
	defer rows.Close()

	definitions := []domain.CompoundJournalDefinition{}
	for rows.Next() {
		def, err := scanCompoundDefinition(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan compound definition row", err)
		}
		definitions = append(definitions, *def)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating compound definition rows", err)
	}

	return definitions, nil
}

// UpdateRunTimes advances the run bookkeeping after an execution attempt.
func (r *PgxCompoundRepository) UpdateRunTimes(ctx context.Context, definitionID string, lastRun time.Time, nextRun *time.Time, updatedBy string) error {
	query := `
		UPDATE compound_definitions
		SET last_run_utc = $2,
		    next_run_utc = $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE definition_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, definitionID, lastRun, nextRun, time.Now().UTC(), updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update run times for definition "+definitionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SaveExecutionLog appends one execution log row.
func (r *PgxCompoundRepository) SaveExecutionLog(ctx context.Context, log domain.CompoundExecutionLog) error {
	query := `
		INSERT INTO compound_execution_logs (
			log_id, definition_id, executed_at, is_automatic, journal_entry_id, status, message, context_json
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		log.LogID,
		log.DefinitionID,
		log.ExecutedAt,
		log.IsAutomatic,
		log.JournalEntryID,
		log.Status,
		log.Message,
		log.ContextJSON,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert execution log for definition "+log.DefinitionID, err)
	}
	return nil
}

// ListExecutionLogs retrieves a paginated list of execution logs for a
// definition using token-based pagination, newest first.
func (r *PgxCompoundRepository) ListExecutionLogs(ctx context.Context, definitionID string, limit int, nextToken *string) ([]domain.CompoundExecutionLog, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT log_id, definition_id, executed_at, is_automatic, journal_entry_id, status, message, context_json
		FROM compound_execution_logs
		WHERE definition_id = $1
	`
	orderByClause := `ORDER BY executed_at DESC, log_id DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{definitionID}

	if nextToken != nil && *nextToken != "" {
		lastExecutedAt, lastLogID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastExecutedAt, lastLogID)
		query := baseQuery + " AND (executed_at, log_id) < ($2, $3) " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $2;"
		rows, err = r.Pool.Query(ctx, query, definitionID, fetchLimit)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query execution logs for definition "+definitionID, err)
	}
	defer rows.Close()

	logs := make([]domain.CompoundExecutionLog, 0, fetchLimit)
	for rows.Next() {
		var l domain.CompoundExecutionLog
		if err := rows.Scan(
			&l.LogID,
			&l.DefinitionID,
			&l.ExecutedAt,
			&l.IsAutomatic,
			&l.JournalEntryID,
			&l.Status,
			&l.Message,
			&l.ContextJSON,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan execution log row", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating execution log rows", err)
	}

	var nextTokenVal *string
	if len(logs) > limit {
		last := logs[limit-1]
		token := pagination.EncodeToken(last.ExecutedAt, last.LogID)
		nextTokenVal = &token
		logs = logs[:limit]
	}

	return logs, nextTokenVal, nil
}
