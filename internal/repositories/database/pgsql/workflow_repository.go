package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fincore/backoffice/internal/apperrors"
	"github.com/fincore/backoffice/internal/core/domain"
	portsrepo "github.com/fincore/backoffice/internal/core/ports/repositories"
)

type PgxWorkflowRepository struct {
	BaseRepository
}

// newPgxWorkflowRepository creates a new repository for workflow data.
func newPgxWorkflowRepository(pool *pgxpool.Pool) portsrepo.WorkflowRepositoryFacade {
	return &PgxWorkflowRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.WorkflowRepositoryFacade = (*PgxWorkflowRepository)(nil)

// FindActiveDefinitions retrieves all active definitions for a document type,
// steps loaded and ordered by step order.
func (r *PgxWorkflowRepository) FindActiveDefinitions(ctx context.Context, documentType string) ([]domain.WorkflowDefinition, error) {
	query := `
		SELECT definition_id, document_type, branch_id, is_active,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM workflow_definitions
		WHERE document_type = $1 AND is_active = TRUE;
	`
	rows, err := r.Pool.Query(ctx, query, documentType)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query workflow definitions for "+documentType, err)
	}
	defer rows.Close()

	definitions := []domain.WorkflowDefinition{}
	for rows.Next() {
		var d domain.WorkflowDefinition
		if err := rows.Scan(
			&d.DefinitionID,
			&d.DocumentType,
			&d.BranchID,
			&d.IsActive,
			&d.CreatedAt,
			&d.CreatedBy,
			&d.LastUpdatedAt,
			&d.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan workflow definition row", err)
		}
		definitions = append(definitions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating workflow definition rows", err)
	}

	for i := range definitions {
		steps, err := r.findStepsByDefinitionID(ctx, definitions[i].DefinitionID)
		if err != nil {
			return nil, err
		}
		definitions[i].Steps = steps
	}

	return definitions, nil
}

// FindDefinitionByID retrieves a definition with its steps.
func (r *PgxWorkflowRepository) FindDefinitionByID(ctx context.Context, definitionID string) (*domain.WorkflowDefinition, error) {
	query := `
		SELECT definition_id, document_type, branch_id, is_active,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM workflow_definitions
		WHERE definition_id = $1;
	`
	var d domain.WorkflowDefinition
	err := r.Pool.QueryRow(ctx, query, definitionID).Scan(
		&d.DefinitionID,
		&d.DocumentType,
		&d.BranchID,
		&d.IsActive,
		&d.CreatedAt,
		&d.CreatedBy,
		&d.LastUpdatedAt,
		&d.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find workflow definition "+definitionID, err)
	}

	steps, err := r.findStepsByDefinitionID(ctx, definitionID)
	if err != nil {
		return nil, err
	}
	d.Steps = steps

	return &d, nil
}

func (r *PgxWorkflowRepository) findStepsByDefinitionID(ctx context.Context, definitionID string) ([]domain.WorkflowStep, error) {
	query := `
		SELECT step_id, definition_id, step_order, step_type, approver_user_id, permission_name, branch_id
		FROM workflow_steps
		WHERE definition_id = $1
		ORDER BY step_order;
	`
	rows, err := r.Pool.Query(ctx, query, definitionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query steps for definition "+definitionID, err)
	}
	defer rows.Close()

	steps := []domain.WorkflowStep{}
	for rows.Next() {
		var s domain.WorkflowStep
		if err := rows.Scan(
			&s.StepID,
			&s.DefinitionID,
			&s.StepOrder,
			&s.StepType,
			&s.ApproverUserID,
			&s.PermissionName,
			&s.BranchID,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan workflow step row", err)
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating workflow step rows", err)
	}

	return steps, nil
}

// SaveInstance persists a new instance together with its eagerly created
// per-step actions as one atomic unit.
func (r *PgxWorkflowRepository) SaveInstance(ctx context.Context, instance domain.WorkflowInstance, actions []domain.WorkflowAction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	instanceQuery := `
		INSERT INTO workflow_instances (
			instance_id, definition_id, document_type, document_id, status,
			current_step_order, initiator_user_id, completed_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, instanceQuery,
		instance.InstanceID,
		instance.DefinitionID,
		instance.DocumentType,
		instance.DocumentID,
		instance.Status,
		instance.CurrentStepOrder,
		instance.InitiatorUserID,
		instance.CompletedAt,
		instance.CreatedAt,
		instance.CreatedBy,
		instance.LastUpdatedAt,
		instance.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert workflow instance "+instance.InstanceID, err)
	}

	batch := &pgx.Batch{}
	actionQuery := `
		INSERT INTO workflow_actions (
			action_id, instance_id, step_id, step_order, status, acted_by, notes, acted_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	for _, action := range actions {
		batch.Queue(actionQuery,
			action.ActionID,
			action.InstanceID,
			action.StepID,
			action.StepOrder,
			action.Status,
			action.ActedBy,
			action.Notes,
			action.ActedAt,
			action.CreatedAt,
			action.CreatedBy,
			action.LastUpdatedAt,
			action.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert actions for instance "+instance.InstanceID, err)
	}

	return r.Commit(ctx, tx)
}

// FindInstanceByID retrieves an instance together with its actions.
func (r *PgxWorkflowRepository) FindInstanceByID(ctx context.Context, instanceID string) (*domain.WorkflowInstance, error) {
	query := `
		SELECT instance_id, definition_id, document_type, document_id, status,
		       current_step_order, initiator_user_id, completed_at,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM workflow_instances
		WHERE instance_id = $1;
	`
	var i domain.WorkflowInstance
	err := r.Pool.QueryRow(ctx, query, instanceID).Scan(
		&i.InstanceID,
		&i.DefinitionID,
		&i.DocumentType,
		&i.DocumentID,
		&i.Status,
		&i.CurrentStepOrder,
		&i.InitiatorUserID,
		&i.CompletedAt,
		&i.CreatedAt,
		&i.CreatedBy,
		&i.LastUpdatedAt,
		&i.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find workflow instance "+instanceID, err)
	}

	actionQuery := `
		SELECT action_id, instance_id, step_id, step_order, status, acted_by, notes, acted_at,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM workflow_actions
		WHERE instance_id = $1
		ORDER BY step_order;
	`
	rows, err := r.Pool.Query(ctx, actionQuery, instanceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query actions for instance "+instanceID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.WorkflowAction
		if err := rows.Scan(
			&a.ActionID,
			&a.InstanceID,
			&a.StepID,
			&a.StepOrder,
			&a.Status,
			&a.ActedBy,
			&a.Notes,
			&a.ActedAt,
			&a.CreatedAt,
			&a.CreatedBy,
			&a.LastUpdatedAt,
			&a.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan workflow action row", err)
		}
		i.Actions = append(i.Actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating workflow action rows", err)
	}

	return &i, nil
}

// UpdateInstance updates the mutable fields of an instance.
func (r *PgxWorkflowRepository) UpdateInstance(ctx context.Context, instance domain.WorkflowInstance) error {
	query := `
		UPDATE workflow_instances
		SET status = $2,
		    current_step_order = $3,
		    completed_at = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE instance_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		instance.InstanceID,
		instance.Status,
		instance.CurrentStepOrder,
		instance.CompletedAt,
		instance.LastUpdatedAt,
		instance.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update workflow instance "+instance.InstanceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindActionByID retrieves a single action.
func (r *PgxWorkflowRepository) FindActionByID(ctx context.Context, actionID string) (*domain.WorkflowAction, error) {
	query := `
		SELECT action_id, instance_id, step_id, step_order, status, acted_by, notes, acted_at,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM workflow_actions
		WHERE action_id = $1;
	`
	var a domain.WorkflowAction
	err := r.Pool.QueryRow(ctx, query, actionID).Scan(
		&a.ActionID,
		&a.InstanceID,
		&a.StepID,
		&a.StepOrder,
		&a.Status,
		&a.ActedBy,
		&a.Notes,
		&a.ActedAt,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find workflow action "+actionID, err)
	}
	return &a, nil
}

// MarkActionIfPending transitions the action out of PENDING with a conditional
// update. Zero affected rows means another approver got there first.
func (r *PgxWorkflowRepository) MarkActionIfPending(ctx context.Context, actionID string, status domain.ActionStatus, actedBy string, notes string, actedAt time.Time) error {
	query := `
		UPDATE workflow_actions
		SET status = $2,
		    acted_by = $3,
		    notes = $4,
		    acted_at = $5,
		    last_updated_at = $5,
		    last_updated_by = $3
		WHERE action_id = $1 AND status = $6;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, actionID, status, actedBy, notes, actedAt, domain.ActionPending)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark workflow action "+actionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrInvalidState
	}
	return nil
}

// SkipPendingActions flips every still-pending action of the instance to SKIPPED.
func (r *PgxWorkflowRepository) SkipPendingActions(ctx context.Context, instanceID string, actedAt time.Time) error {
	query := `
		UPDATE workflow_actions
		SET status = $2,
		    acted_at = $3,
		    last_updated_at = $3
		WHERE instance_id = $1 AND status = $4;
	`
	_, err := r.Pool.Exec(ctx, query, instanceID, domain.ActionSkipped, actedAt, domain.ActionPending)
	if err != nil {
		return apperrors.NewAppError(500, "failed to skip pending actions for instance "+instanceID, err)
	}
	return nil
}
