package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fincore/backoffice/internal/apperrors"
	"github.com/fincore/backoffice/internal/core/domain"
	portsrepo "github.com/fincore/backoffice/internal/core/ports/repositories"
	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
	"github.com/fincore/backoffice/internal/middleware"
)

var (
	ErrActionNotPending = errors.New("workflow action has already been processed")
	ErrActionNotCurrent = errors.New("workflow action is not at the instance's current step")
	ErrNotEligible      = errors.New("user is not eligible to act on this step")
	ErrNoEligibleUsers  = errors.New("workflow step resolves to zero eligible users")
	ErrFinalizerMissing = errors.New("no finalizer registered for document type")
	ErrStepMissing      = errors.New("workflow step not found for action")
	ErrDocumentBranch   = errors.New("cannot resolve document branch for branch step")
)

// actionDeepLinkFormat is the link embedded in approval notifications.
const actionDeepLinkFormat = "/api/v1/workflow/actions/%s"

// workflowService implements the approval state machine.
type workflowService struct {
	workflowRepo portsrepo.WorkflowRepositoryFacade
	directory    portssvc.UserDirectory
	notifier     portssvc.Notifier
	finalizers   portssvc.FinalizerRegistry
}

// NewWorkflowService creates a new WorkflowService.
func NewWorkflowService(
	workflowRepo portsrepo.WorkflowRepositoryFacade,
	directory portssvc.UserDirectory,
	notifier portssvc.Notifier,
	finalizers portssvc.FinalizerRegistry,
) portssvc.WorkflowSvcFacade {
	return &workflowService{
		workflowRepo: workflowRepo,
		directory:    directory,
		notifier:     notifier,
		finalizers:   finalizers,
	}
}

var _ portssvc.WorkflowSvcFacade = (*workflowService)(nil)

// GetActiveDefinition implements portssvc.WorkflowSvcFacade. Branch-scoped
// definitions take precedence over global ones; no match returns (nil, nil).
func (s *workflowService) GetActiveDefinition(ctx context.Context, documentType string, branchID *string) (*domain.WorkflowDefinition, error) {
	definitions, err := s.workflowRepo.FindActiveDefinitions(ctx, documentType)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow definitions for %s: %w", documentType, err)
	}

	var global *domain.WorkflowDefinition
	for i := range definitions {
		def := &definitions[i]
		if def.BranchID != nil {
			if branchID != nil && *def.BranchID == *branchID {
				return def, nil
			}
			continue
		}
		if global == nil {
			global = def
		}
	}
	return global, nil
}

// StartWorkflow implements portssvc.WorkflowSvcFacade.
//
// A definition with zero steps starts nothing and returns (nil, nil); the
// caller treats the document as auto-approved by omission.
func (s *workflowService) StartWorkflow(ctx context.Context, def *domain.WorkflowDefinition, documentType, documentID, initiatorUserID string, branchID *string) (*domain.WorkflowInstance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if def == nil || len(def.Steps) == 0 {
		logger.Debug("No workflow steps to route, document proceeds unrouted", slog.String("document_type", documentType), slog.String("document_id", documentID))
		return nil, nil
	}

	steps := make([]domain.WorkflowStep, len(def.Steps))
	copy(steps, def.Steps)
	sort.Slice(steps, func(i, j int) bool { return steps[i].StepOrder < steps[j].StepOrder })

	for _, step := range steps {
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrConfiguration, err)
		}
	}

	now := time.Now().UTC()
	instance := domain.WorkflowInstance{
		InstanceID:       uuid.NewString(),
		DefinitionID:     def.DefinitionID,
		DocumentType:     documentType,
		DocumentID:       documentID,
		Status:           domain.InstanceInProgress,
		CurrentStepOrder: steps[0].StepOrder,
		InitiatorUserID:  initiatorUserID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     initiatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: initiatorUserID,
		},
	}

	// One pending action per step, created eagerly.
	actions := make([]domain.WorkflowAction, len(steps))
	for i, step := range steps {
		actions[i] = domain.WorkflowAction{
			ActionID:   uuid.NewString(),
			InstanceID: instance.InstanceID,
			StepID:     step.StepID,
			StepOrder:  step.StepOrder,
			Status:     domain.ActionPending,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     initiatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: initiatorUserID,
			},
		}
	}

	if err := s.workflowRepo.SaveInstance(ctx, instance, actions); err != nil {
		logger.Error("Failed to save workflow instance", slog.String("error", err.Error()), slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to save workflow instance: %w", err)
	}

	// Only the first step's approvers are notified at start.
	if err := s.notifyApprovers(ctx, steps[0], &instance, actions[0].ActionID); err != nil {
		return nil, err
	}

	instance.Actions = actions
	logger.Info("Workflow started", slog.String("instance_id", instance.InstanceID), slog.String("document_type", documentType), slog.String("document_id", documentID), slog.Int("steps", len(steps)))
	return &instance, nil
}

// ProcessAction implements portssvc.WorkflowSvcFacade.
func (s *workflowService) ProcessAction(ctx context.Context, actionID, actingUserID string, approve bool, notes string) (*domain.WorkflowInstance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	action, err := s.workflowRepo.FindActionByID(ctx, actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find workflow action %s: %w", actionID, err)
	}
	if action.Status != domain.ActionPending {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidState, ErrActionNotPending)
	}

	instance, err := s.workflowRepo.FindInstanceByID(ctx, action.InstanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find workflow instance %s: %w", action.InstanceID, err)
	}
	if instance.Status != domain.InstanceInProgress {
		return nil, fmt.Errorf("%w: workflow instance is already %s", apperrors.ErrInvalidState, instance.Status)
	}
	// Actions exist for every step up front; only the current step's may act.
	if action.StepOrder != instance.CurrentStepOrder {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidState, ErrActionNotCurrent)
	}

	def, err := s.workflowRepo.FindDefinitionByID(ctx, instance.DefinitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find workflow definition %s: %w", instance.DefinitionID, err)
	}

	step := findStep(def.Steps, action.StepOrder)
	if step == nil {
		return nil, fmt.Errorf("%w: %s (order %d)", apperrors.ErrConfiguration, ErrStepMissing, action.StepOrder)
	}

	eligible, err := s.isUserEligibleForStep(ctx, *step, instance, actingUserID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotEligible)
	}

	now := time.Now().UTC()
	newStatus := domain.ActionApproved
	if !approve {
		newStatus = domain.ActionRejected
	}

	// Conditional update: a second concurrent approver loses here.
	if err := s.workflowRepo.MarkActionIfPending(ctx, actionID, newStatus, actingUserID, notes, now); err != nil {
		return nil, err
	}

	if err := s.notifier.ClearForUserAction(ctx, actingUserID, actionID); err != nil {
		logger.Warn("Failed to clear notification for processed action", slog.String("error", err.Error()), slog.String("action_id", actionID))
	}

	if !approve {
		return s.rejectInstance(ctx, instance, actingUserID, now)
	}
	return s.advanceInstance(ctx, def, instance, *step, actingUserID, now)
}

// rejectInstance terminates the workflow: the instance goes REJECTED, every
// remaining pending action is skipped, and the document's reversal hook runs
// if one is registered.
func (s *workflowService) rejectInstance(ctx context.Context, instance *domain.WorkflowInstance, actingUserID string, now time.Time) (*domain.WorkflowInstance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	instance.Status = domain.InstanceRejected
	instance.CompletedAt = &now
	instance.LastUpdatedAt = now
	instance.LastUpdatedBy = actingUserID
	if err := s.workflowRepo.UpdateInstance(ctx, *instance); err != nil {
		return nil, fmt.Errorf("failed to update workflow instance: %w", err)
	}
	if err := s.workflowRepo.SkipPendingActions(ctx, instance.InstanceID, now); err != nil {
		return nil, fmt.Errorf("failed to skip pending actions: %w", err)
	}

	if finalizer, ok := s.finalizers[instance.DocumentType]; ok {
		if err := finalizer.Reject(ctx, instance.DocumentID); err != nil {
			return nil, fmt.Errorf("failed to revert document %s on rejection: %w", instance.DocumentID, err)
		}
	}

	logger.Info("Workflow rejected", slog.String("instance_id", instance.InstanceID), slog.String("document_id", instance.DocumentID))
	return instance, nil
}

// advanceInstance moves the workflow to the next step or, when none remains,
// approves the instance and invokes the document type's finalizer.
func (s *workflowService) advanceInstance(ctx context.Context, def *domain.WorkflowDefinition, instance *domain.WorkflowInstance, current domain.WorkflowStep, actingUserID string, now time.Time) (*domain.WorkflowInstance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	next := nextStep(def.Steps, current.StepOrder)
	if next == nil {
		instance.Status = domain.InstanceApproved
		instance.CompletedAt = &now
		instance.LastUpdatedAt = now
		instance.LastUpdatedBy = actingUserID
		if err := s.workflowRepo.UpdateInstance(ctx, *instance); err != nil {
			return nil, fmt.Errorf("failed to update workflow instance: %w", err)
		}

		finalizer, ok := s.finalizers[instance.DocumentType]
		if !ok {
			return nil, fmt.Errorf("%w: %s (%s)", apperrors.ErrConfiguration, ErrFinalizerMissing, instance.DocumentType)
		}
		if err := finalizer.Finalize(ctx, instance.DocumentID, actingUserID); err != nil {
			return nil, fmt.Errorf("failed to finalize document %s: %w", instance.DocumentID, err)
		}

		logger.Info("Workflow approved", slog.String("instance_id", instance.InstanceID), slog.String("document_id", instance.DocumentID))
		return instance, nil
	}

	instance.CurrentStepOrder = next.StepOrder
	instance.LastUpdatedAt = now
	instance.LastUpdatedBy = actingUserID
	if err := s.workflowRepo.UpdateInstance(ctx, *instance); err != nil {
		return nil, fmt.Errorf("failed to update workflow instance: %w", err)
	}

	nextActionID := ""
	for _, a := range instance.Actions {
		if a.StepOrder == next.StepOrder {
			nextActionID = a.ActionID
			break
		}
	}
	if err := s.notifyApprovers(ctx, *next, instance, nextActionID); err != nil {
		return nil, err
	}

	logger.Info("Workflow advanced", slog.String("instance_id", instance.InstanceID), slog.Int("step_order", next.StepOrder))
	return instance, nil
}

// GetInstanceByID implements portssvc.WorkflowSvcFacade.
func (s *workflowService) GetInstanceByID(ctx context.Context, instanceID string) (*domain.WorkflowInstance, error) {
	instance, err := s.workflowRepo.FindInstanceByID(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find workflow instance %s: %w", instanceID, err)
	}
	return instance, nil
}

// isUserEligibleForStep applies the step's eligibility rule to one user.
func (s *workflowService) isUserEligibleForStep(ctx context.Context, step domain.WorkflowStep, instance *domain.WorkflowInstance, userID string) (bool, error) {
	switch step.StepType {
	case domain.StepSpecificUser:
		return step.ApproverUserID != nil && *step.ApproverUserID == userID, nil
	case domain.StepPermission:
		if step.PermissionName == nil {
			return false, fmt.Errorf("%w: permission step %d has no permission name", apperrors.ErrConfiguration, step.StepOrder)
		}
		return s.directory.UserHasPermission(ctx, userID, *step.PermissionName)
	case domain.StepBranch:
		branchID, err := s.resolveStepBranch(ctx, step, instance)
		if err != nil {
			return false, err
		}
		return s.directory.IsUserInBranch(ctx, userID, branchID)
	}
	return false, fmt.Errorf("%w: unknown step type %q", apperrors.ErrConfiguration, step.StepType)
}

// resolveStepApprovers returns the full set of users who may act on a step.
func (s *workflowService) resolveStepApprovers(ctx context.Context, step domain.WorkflowStep, instance *domain.WorkflowInstance) ([]string, error) {
	switch step.StepType {
	case domain.StepSpecificUser:
		if step.ApproverUserID == nil || *step.ApproverUserID == "" {
			return nil, nil
		}
		return []string{*step.ApproverUserID}, nil
	case domain.StepPermission:
		if step.PermissionName == nil {
			return nil, fmt.Errorf("%w: permission step %d has no permission name", apperrors.ErrConfiguration, step.StepOrder)
		}
		return s.directory.UsersWithPermission(ctx, *step.PermissionName)
	case domain.StepBranch:
		branchID, err := s.resolveStepBranch(ctx, step, instance)
		if err != nil {
			return nil, err
		}
		return s.directory.UsersInBranch(ctx, branchID)
	}
	return nil, fmt.Errorf("%w: unknown step type %q", apperrors.ErrConfiguration, step.StepType)
}

// resolveStepBranch picks the step's designated branch or falls back to the
// document's own branch through the document type's finalizer.
func (s *workflowService) resolveStepBranch(ctx context.Context, step domain.WorkflowStep, instance *domain.WorkflowInstance) (string, error) {
	if step.BranchID != nil && *step.BranchID != "" {
		return *step.BranchID, nil
	}
	finalizer, ok := s.finalizers[instance.DocumentType]
	if !ok {
		return "", fmt.Errorf("%w: %s (%s)", apperrors.ErrConfiguration, ErrDocumentBranch, instance.DocumentType)
	}
	branchID, err := finalizer.DocumentBranch(ctx, instance.DocumentID)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", apperrors.ErrConfiguration, ErrDocumentBranch, err)
	}
	return branchID, nil
}

// notifyApprovers fans one notification out to every eligible user of a step.
// A step with zero eligible users is a configuration error: the workflow must
// never stall on an unreachable step.
func (s *workflowService) notifyApprovers(ctx context.Context, step domain.WorkflowStep, instance *domain.WorkflowInstance, actionID string) error {
	approvers, err := s.resolveStepApprovers(ctx, step, instance)
	if err != nil {
		return err
	}
	if len(approvers) == 0 {
		return fmt.Errorf("%w: %s (step %d)", apperrors.ErrConfiguration, ErrNoEligibleUsers, step.StepOrder)
	}

	title := "Approval required"
	message := fmt.Sprintf("%s %s awaits your approval at step %d", instance.DocumentType, instance.DocumentID, step.StepOrder)
	deepLink := fmt.Sprintf(actionDeepLinkFormat, actionID)
	if err := s.notifier.Notify(ctx, approvers, title, message, deepLink); err != nil {
		return fmt.Errorf("failed to notify approvers for step %d: %w", step.StepOrder, err)
	}
	return nil
}

func findStep(steps []domain.WorkflowStep, order int) *domain.WorkflowStep {
	for i := range steps {
		if steps[i].StepOrder == order {
			return &steps[i]
		}
	}
	return nil
}

// nextStep returns the step with the smallest order strictly greater than
// current, or nil when current is the last step.
func nextStep(steps []domain.WorkflowStep, current int) *domain.WorkflowStep {
	var next *domain.WorkflowStep
	for i := range steps {
		if steps[i].StepOrder <= current {
			continue
		}
		if next == nil || steps[i].StepOrder < next.StepOrder {
			next = &steps[i]
		}
	}
	return next
}
