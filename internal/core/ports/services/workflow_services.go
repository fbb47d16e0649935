package services

import (
	"context"

	"github.com/fincore/backoffice/internal/core/domain"
)

// WorkflowSvcFacade is the approval state machine surface.
type WorkflowSvcFacade interface {
	// GetActiveDefinition returns the most specific active definition for the
	// document type: branch-scoped definitions win over global ones. Returns
	// (nil, nil) when no definition matches.
	GetActiveDefinition(ctx context.Context, documentType string, branchID *string) (*domain.WorkflowDefinition, error)
	// StartWorkflow creates an instance with one pending action per step and
	// notifies the first step's approvers. Returns (nil, nil) for a
	// definition with zero steps: the document proceeds unrouted.
	StartWorkflow(ctx context.Context, def *domain.WorkflowDefinition, documentType, documentID, initiatorUserID string, branchID *string) (*domain.WorkflowInstance, error)
	// ProcessAction approves or rejects the pending action, advancing or
	// terminating the instance. On terminal approval the document type's
	// finalizer runs with the acting user as approver.
	ProcessAction(ctx context.Context, actionID, actingUserID string, approve bool, notes string) (*domain.WorkflowInstance, error)
	GetInstanceByID(ctx context.Context, instanceID string) (*domain.WorkflowInstance, error)
}
