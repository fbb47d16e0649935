package repositories

import (
	"context"
	"time"

	"github.com/fincore/backoffice/internal/core/domain"
)

// CompoundJournalRepositoryFacade defines the persistence operations for
// compound journal definitions and their append-only execution logs.
type CompoundJournalRepositoryFacade interface {
	SaveDefinition(ctx context.Context, def domain.CompoundJournalDefinition) error
	UpdateDefinition(ctx context.Context, def domain.CompoundJournalDefinition) error
	FindDefinitionByID(ctx context.Context, definitionID string) (*domain.CompoundJournalDefinition, error)
	// FindDueDefinitions returns active, non-manual definitions whose
	// NextRunUTC is non-null and not after asOf.
	FindDueDefinitions(ctx context.Context, asOf time.Time) ([]domain.CompoundJournalDefinition, error)
	// UpdateRunTimes advances the run bookkeeping after an execution attempt.
	UpdateRunTimes(ctx context.Context, definitionID string, lastRun time.Time, nextRun *time.Time, updatedBy string) error

	SaveExecutionLog(ctx context.Context, log domain.CompoundExecutionLog) error
	ListExecutionLogs(ctx context.Context, definitionID string, limit int, nextToken *string) ([]domain.CompoundExecutionLog, *string, error)
}
