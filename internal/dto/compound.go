package dto

import (
	"time"

	"github.com/fincore/backoffice/internal/core/domain"
)

// CreateCompoundDefinitionRequest creates a new compound journal definition.
type CreateCompoundDefinitionRequest struct {
	Name               string                  `json:"name" binding:"required"`
	Template           domain.CompoundTemplate `json:"template" binding:"required"`
	TriggerType        domain.TriggerType      `json:"triggerType" binding:"required"`
	Recurrence         domain.Recurrence       `json:"recurrence"`
	RecurrenceInterval int                     `json:"recurrenceInterval"`
	StartDateUTC       *time.Time              `json:"startDateUTC"`
	EndDateUTC         *time.Time              `json:"endDateUTC"`
}

// UpdateCompoundDefinitionRequest updates mutable fields of a definition.
// Nil fields are left unchanged.
type UpdateCompoundDefinitionRequest struct {
	Name               *string                  `json:"name"`
	Template           *domain.CompoundTemplate `json:"template"`
	Recurrence         *domain.Recurrence       `json:"recurrence"`
	RecurrenceInterval *int                     `json:"recurrenceInterval"`
	IsActive           *bool                    `json:"isActive"`
	EndDateUTC         *time.Time               `json:"endDateUTC"`
}

// ExecuteCompoundRequest parameterizes one execution of a definition.
// Overrides win over template defaults.
type ExecuteCompoundRequest struct {
	ContextOverrides map[string]string   `json:"contextOverrides"`
	BranchID         *string             `json:"branchID"`
	Description      *string             `json:"description"`
	Status           *domain.EntryStatus `json:"status"`
	JournalDate      *time.Time          `json:"journalDate"`
	IsAutomatic      bool                `json:"-"`
}

// CompoundExecutionResult reports the outcome of one execution attempt.
// A SKIPPED outcome is not an error: no journal entry was produced.
type CompoundExecutionResult struct {
	Status         domain.ExecutionStatus `json:"status"`
	Message        string                 `json:"message,omitempty"`
	JournalEntryID *string                `json:"journalEntryID,omitempty"`
	NextRunUTC     *time.Time             `json:"nextRunUTC,omitempty"`
}

// ListExecutionLogsParams holds token-paginated list parameters.
type ListExecutionLogsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListExecutionLogsResponse is a page of execution logs plus the next token.
type ListExecutionLogsResponse struct {
	Logs      []domain.CompoundExecutionLog `json:"logs"`
	NextToken *string                       `json:"nextToken,omitempty"`
}
