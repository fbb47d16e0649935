package services

import (
	"context"
	"time"

	"github.com/fincore/backoffice/internal/core/domain"
	"github.com/fincore/backoffice/internal/dto"
)

// CompoundJournalSvcFacade is the recurring/conditional journal engine surface.
type CompoundJournalSvcFacade interface {
	CreateDefinition(ctx context.Context, req dto.CreateCompoundDefinitionRequest, creatorUserID string) (*domain.CompoundJournalDefinition, error)
	UpdateDefinition(ctx context.Context, definitionID string, req dto.UpdateCompoundDefinitionRequest, updaterUserID string) (*domain.CompoundJournalDefinition, error)
	GetDefinitionByID(ctx context.Context, definitionID string) (*domain.CompoundJournalDefinition, error)

	// Execute evaluates the definition's conditions and lines against the
	// merged context and, when they pass, posts a journal entry. A skipped
	// execution returns a non-success result without error.
	Execute(ctx context.Context, definitionID string, req dto.ExecuteCompoundRequest, actingUserID string) (*dto.CompoundExecutionResult, error)

	// ListDueDefinitions returns the definitions the scheduler should run.
	ListDueDefinitions(ctx context.Context, asOf time.Time) ([]domain.CompoundJournalDefinition, error)
	// RecordFailure logs a FAILED execution row and advances the definition's
	// run bookkeeping so a permanently failing definition does not spin.
	RecordFailure(ctx context.Context, def domain.CompoundJournalDefinition, runErr error, at time.Time) error

	ListExecutionLogs(ctx context.Context, definitionID string, params dto.ListExecutionLogsParams) (*dto.ListExecutionLogsResponse, error)
}
