package repositories

import (
	"context"
	"time"

	"github.com/fincore/backoffice/internal/core/domain"
)

// WorkflowRepositoryFacade defines the persistence operations for workflow
// definitions, instances and actions.
type WorkflowRepositoryFacade interface {
	// FindActiveDefinitions returns all active definitions for a document
	// type, steps loaded and ordered by step order.
	FindActiveDefinitions(ctx context.Context, documentType string) ([]domain.WorkflowDefinition, error)
	FindDefinitionByID(ctx context.Context, definitionID string) (*domain.WorkflowDefinition, error)

	// SaveInstance persists a new instance together with its eagerly created
	// per-step actions as one atomic unit.
	SaveInstance(ctx context.Context, instance domain.WorkflowInstance, actions []domain.WorkflowAction) error
	FindInstanceByID(ctx context.Context, instanceID string) (*domain.WorkflowInstance, error)
	UpdateInstance(ctx context.Context, instance domain.WorkflowInstance) error

	FindActionByID(ctx context.Context, actionID string) (*domain.WorkflowAction, error)
	// MarkActionIfPending transitions the action out of PENDING with a
	// conditional update. It returns apperrors.ErrInvalidState when the action
	// is no longer pending, closing the race between two concurrent approvers.
	MarkActionIfPending(ctx context.Context, actionID string, status domain.ActionStatus, actedBy string, notes string, actedAt time.Time) error
	// SkipPendingActions flips every still-pending action of the instance to
	// SKIPPED.
	SkipPendingActions(ctx context.Context, instanceID string, actedAt time.Time) error
}
