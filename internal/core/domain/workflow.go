package domain

import (
	"fmt"
	"time"
)

// WorkflowStepType selects how the approver(s) for a step are resolved.
type WorkflowStepType string

const (
	StepSpecificUser WorkflowStepType = "SPECIFIC_USER"
	StepPermission   WorkflowStepType = "PERMISSION"
	StepBranch       WorkflowStepType = "BRANCH"
)

// InstanceStatus is the state of a routed document.
type InstanceStatus string

const (
	InstanceInProgress InstanceStatus = "IN_PROGRESS"
	InstanceApproved   InstanceStatus = "APPROVED"
	InstanceRejected   InstanceStatus = "REJECTED"
)

// ActionStatus is the state of a single per-step approval record.
type ActionStatus string

const (
	ActionPending  ActionStatus = "PENDING"
	ActionApproved ActionStatus = "APPROVED"
	ActionRejected ActionStatus = "REJECTED"
	ActionSkipped  ActionStatus = "SKIPPED"
)

// WorkflowDefinition is an authored routing definition for one document type.
// Read-only to the state machine.
type WorkflowDefinition struct {
	DefinitionID string         `json:"definitionID"`
	DocumentType string         `json:"documentType"`
	BranchID     *string        `json:"branchID,omitempty"` // nil = applies to all branches
	IsActive     bool           `json:"isActive"`
	Steps        []WorkflowStep `json:"steps,omitempty"` // Ordered by StepOrder
	AuditFields
}

// WorkflowStep is one step in a definition. Exactly one selector field is
// meaningful for the step's type; Validate enforces that.
type WorkflowStep struct {
	StepID         string           `json:"stepID"`
	DefinitionID   string           `json:"definitionID"`
	StepOrder      int              `json:"stepOrder"`
	StepType       WorkflowStepType `json:"stepType"`
	ApproverUserID *string          `json:"approverUserID,omitempty"` // SPECIFIC_USER
	PermissionName *string          `json:"permissionName,omitempty"` // PERMISSION
	BranchID       *string          `json:"branchID,omitempty"`       // BRANCH; nil falls back to the document's branch
}

// Validate checks that the selector matching the step type is set.
func (s WorkflowStep) Validate() error {
	switch s.StepType {
	case StepSpecificUser:
		if s.ApproverUserID == nil || *s.ApproverUserID == "" {
			return fmt.Errorf("step %d: specific-user step requires an approver user id", s.StepOrder)
		}
	case StepPermission:
		if s.PermissionName == nil || *s.PermissionName == "" {
			return fmt.Errorf("step %d: permission step requires a permission name", s.StepOrder)
		}
	case StepBranch:
		// BranchID may be nil; the document's own branch is used then.
	default:
		return fmt.Errorf("step %d: unknown step type %q", s.StepOrder, s.StepType)
	}
	return nil
}

// WorkflowInstance is one routing of a single document through a definition's
// ordered steps. Mutated in place until it reaches a terminal status.
type WorkflowInstance struct {
	InstanceID       string         `json:"instanceID"`
	DefinitionID     string         `json:"definitionID"`
	DocumentType     string         `json:"documentType"`
	DocumentID       string         `json:"documentID"`
	Status           InstanceStatus `json:"status"`
	CurrentStepOrder int            `json:"currentStepOrder"`
	InitiatorUserID  string         `json:"initiatorUserID"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
	Actions          []WorkflowAction `json:"actions,omitempty"`
	AuditFields
}

// WorkflowAction is the per-step approval/rejection record. One action per
// (instance, step), created eagerly when the instance starts. At most one
// action is PENDING at a time for an in-progress instance.
type WorkflowAction struct {
	ActionID   string       `json:"actionID"`
	InstanceID string       `json:"instanceID"`
	StepID     string       `json:"stepID"`
	StepOrder  int          `json:"stepOrder"`
	Status     ActionStatus `json:"status"`
	ActedBy    *string      `json:"actedBy,omitempty"`
	Notes      string       `json:"notes,omitempty"`
	ActedAt    *time.Time   `json:"actedAt,omitempty"`
	AuditFields
}
