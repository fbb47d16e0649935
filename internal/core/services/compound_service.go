package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fincore/backoffice/internal/apperrors"
	"github.com/fincore/backoffice/internal/core/domain"
	portsrepo "github.com/fincore/backoffice/internal/core/ports/repositories"
	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
	"github.com/fincore/backoffice/internal/dto"
	"github.com/fincore/backoffice/internal/middleware"
	"github.com/fincore/backoffice/internal/utils/expr"
)

var (
	ErrDefinitionInactive = errors.New("compound journal definition is inactive")
	ErrTemplateInvalid    = errors.New("compound journal template is invalid")
	ErrRecurrenceRequired = errors.New("recurring definitions require a recurrence and a positive interval")
	ErrStartDateRequired  = errors.New("scheduled definitions require a start date")
	ErrBranchUnresolved   = errors.New("no branch supplied and template has no default branch")
)

const defaultLogPageLimit = 20

// compoundJournalService implements the recurring/conditional journal engine.
type compoundJournalService struct {
	compoundRepo portsrepo.CompoundJournalRepositoryFacade
	ledgerSvc    portssvc.LedgerSvcFacade
	validate     *validator.Validate
}

// NewCompoundJournalService creates a new CompoundJournalService.
func NewCompoundJournalService(compoundRepo portsrepo.CompoundJournalRepositoryFacade, ledgerSvc portssvc.LedgerSvcFacade) portssvc.CompoundJournalSvcFacade {
	return &compoundJournalService{
		compoundRepo: compoundRepo,
		ledgerSvc:    ledgerSvc,
		validate:     validator.New(),
	}
}

var _ portssvc.CompoundJournalSvcFacade = (*compoundJournalService)(nil)

// CreateDefinition implements portssvc.CompoundJournalSvcFacade.
func (s *compoundJournalService) CreateDefinition(ctx context.Context, req dto.CreateCompoundDefinitionRequest, creatorUserID string) (*domain.CompoundJournalDefinition, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.validate.Struct(req.Template); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrValidation, ErrTemplateInvalid, err)
	}
	templateJSON, err := json.Marshal(req.Template)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrValidation, ErrTemplateInvalid, err)
	}

	switch req.TriggerType {
	case domain.TriggerManual:
		// No schedule fields required.
	case domain.TriggerOneTime:
		if req.StartDateUTC == nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrStartDateRequired)
		}
	case domain.TriggerRecurring:
		if req.StartDateUTC == nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrStartDateRequired)
		}
		if req.Recurrence == "" || req.RecurrenceInterval < 1 {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrRecurrenceRequired)
		}
	default:
		return nil, fmt.Errorf("%w: unknown trigger type %q", apperrors.ErrValidation, req.TriggerType)
	}

	now := time.Now().UTC()
	def := domain.CompoundJournalDefinition{
		DefinitionID:       uuid.NewString(),
		Name:               req.Name,
		TemplateJSON:       string(templateJSON),
		TriggerType:        req.TriggerType,
		Recurrence:         req.Recurrence,
		RecurrenceInterval: req.RecurrenceInterval,
		IsActive:           true,
		StartDateUTC:       req.StartDateUTC,
		EndDateUTC:         req.EndDateUTC,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	def.NextRunUTC = initialNextRun(def, now)

	if err := s.compoundRepo.SaveDefinition(ctx, def); err != nil {
		logger.Error("Failed to save compound definition", slog.String("error", err.Error()), slog.String("name", req.Name))
		return nil, fmt.Errorf("failed to save compound definition: %w", err)
	}

	logger.Info("Compound definition created", slog.String("definition_id", def.DefinitionID), slog.String("trigger_type", string(def.TriggerType)))
	return &def, nil
}

// initialNextRun seeds the schedule for a fresh definition. One-time runs fire
// at their start date even when it is already due; recurring runs start at the
// start date and roll forward past it only once executed.
func initialNextRun(def domain.CompoundJournalDefinition, now time.Time) *time.Time {
	switch def.TriggerType {
	case domain.TriggerOneTime, domain.TriggerRecurring:
		if def.StartDateUTC != nil {
			t := *def.StartDateUTC
			return &t
		}
	}
	return nil
}

// UpdateDefinition implements portssvc.CompoundJournalSvcFacade. Nil request
// fields leave the stored value untouched.
func (s *compoundJournalService) UpdateDefinition(ctx context.Context, definitionID string, req dto.UpdateCompoundDefinitionRequest, updaterUserID string) (*domain.CompoundJournalDefinition, error) {
	def, err := s.compoundRepo.FindDefinitionByID(ctx, definitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find compound definition %s: %w", definitionID, err)
	}

	if req.Name != nil {
		def.Name = *req.Name
	}
	if req.Template != nil {
		if err := s.validate.Struct(*req.Template); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrValidation, ErrTemplateInvalid, err)
		}
		templateJSON, err := json.Marshal(*req.Template)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrValidation, ErrTemplateInvalid, err)
		}
		def.TemplateJSON = string(templateJSON)
	}
	if req.Recurrence != nil {
		def.Recurrence = *req.Recurrence
	}
	if req.RecurrenceInterval != nil {
		if *req.RecurrenceInterval < 1 {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrRecurrenceRequired)
		}
		def.RecurrenceInterval = *req.RecurrenceInterval
	}
	if req.EndDateUTC != nil {
		def.EndDateUTC = req.EndDateUTC
	}

	now := time.Now().UTC()
	if req.IsActive != nil && *req.IsActive != def.IsActive {
		def.IsActive = *req.IsActive
		if def.IsActive {
			// Reactivation recomputes the schedule instead of replaying
			// every run missed while inactive.
			def.NextRunUTC = def.NextRunAfter(now)
		} else {
			def.NextRunUTC = nil
		}
	}

	def.LastUpdatedAt = now
	def.LastUpdatedBy = updaterUserID
	if err := s.compoundRepo.UpdateDefinition(ctx, *def); err != nil {
		return nil, fmt.Errorf("failed to update compound definition: %w", err)
	}
	return def, nil
}

// GetDefinitionByID implements portssvc.CompoundJournalSvcFacade.
func (s *compoundJournalService) GetDefinitionByID(ctx context.Context, definitionID string) (*domain.CompoundJournalDefinition, error) {
	def, err := s.compoundRepo.FindDefinitionByID(ctx, definitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find compound definition %s: %w", definitionID, err)
	}
	return def, nil
}

// Execute implements portssvc.CompoundJournalSvcFacade.
func (s *compoundJournalService) Execute(ctx context.Context, definitionID string, req dto.ExecuteCompoundRequest, actingUserID string) (*dto.CompoundExecutionResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	def, err := s.compoundRepo.FindDefinitionByID(ctx, definitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find compound definition %s: %w", definitionID, err)
	}
	if !def.IsActive {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidState, ErrDefinitionInactive)
	}

	var template domain.CompoundTemplate
	if err := json.Unmarshal([]byte(def.TemplateJSON), &template); err != nil {
		return nil, fmt.Errorf("%w: stored template for %s does not parse: %v", apperrors.ErrConfiguration, definitionID, err)
	}

	now := time.Now().UTC()
	execCtx := mergeContext(template.DefaultContext, req.ContextOverrides)

	for _, cond := range template.Conditions {
		if cond.Evaluate(execCtx) {
			continue
		}
		message := fmt.Sprintf("condition not met: %s %s %s", cond.Key, cond.Operator, cond.Value)
		return s.finishSkipped(ctx, def, req, execCtx, now, actingUserID, message)
	}

	lines, err := s.buildLines(template, execCtx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return s.finishSkipped(ctx, def, req, execCtx, now, actingUserID, "no lines produced by template")
	}

	branchID, err := resolveBranch(req, template)
	if err != nil {
		return nil, err
	}

	entryReq := dto.CreateJournalEntryRequest{
		Date:        resolveDate(req, now),
		Description: resolveDescription(req, template, def.Name),
		BranchID:    branchID,
		Status:      resolveStatus(req, template),
		Lines:       lines,
	}

	entry, err := s.ledgerSvc.CreateJournalEntry(ctx, entryReq, actingUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to post entry for definition %s: %w", definitionID, err)
	}

	result := &dto.CompoundExecutionResult{
		Status:         domain.ExecutionSuccess,
		JournalEntryID: &entry.EntryID,
	}
	if err := s.recordOutcome(ctx, def, req, execCtx, now, domain.ExecutionSuccess, "", &entry.EntryID, actingUserID, result); err != nil {
		return nil, err
	}

	logger.Info("Compound definition executed",
		slog.String("definition_id", definitionID),
		slog.String("entry_id", entry.EntryID),
		slog.Bool("automatic", req.IsAutomatic))
	return result, nil
}

// finishSkipped records a SKIPPED outcome and advances the schedule so a
// permanently unmet condition does not wedge the scheduler.
func (s *compoundJournalService) finishSkipped(ctx context.Context, def *domain.CompoundJournalDefinition, req dto.ExecuteCompoundRequest, execCtx map[string]string, now time.Time, actingUserID, message string) (*dto.CompoundExecutionResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	result := &dto.CompoundExecutionResult{
		Status:  domain.ExecutionSkipped,
		Message: message,
	}
	if err := s.recordOutcome(ctx, def, req, execCtx, now, domain.ExecutionSkipped, message, nil, actingUserID, result); err != nil {
		return nil, err
	}
	logger.Info("Compound definition skipped", slog.String("definition_id", def.DefinitionID), slog.String("reason", message))
	return result, nil
}

// recordOutcome writes the execution log and, for scheduled definitions,
// advances the run bookkeeping. The computed next run lands in result.
func (s *compoundJournalService) recordOutcome(ctx context.Context, def *domain.CompoundJournalDefinition, req dto.ExecuteCompoundRequest, execCtx map[string]string, now time.Time, status domain.ExecutionStatus, message string, entryID *string, actingUserID string, result *dto.CompoundExecutionResult) error {
	contextJSON, err := json.Marshal(execCtx)
	if err != nil {
		contextJSON = []byte("{}")
	}
	log := domain.CompoundExecutionLog{
		LogID:          uuid.NewString(),
		DefinitionID:   def.DefinitionID,
		ExecutedAt:     now,
		IsAutomatic:    req.IsAutomatic,
		JournalEntryID: entryID,
		Status:         status,
		Message:        message,
		ContextJSON:    string(contextJSON),
	}
	if err := s.compoundRepo.SaveExecutionLog(ctx, log); err != nil {
		return fmt.Errorf("failed to save execution log: %w", err)
	}

	if def.TriggerType == domain.TriggerManual {
		return nil
	}
	nextRun := def.NextRunAfter(now)
	if err := s.compoundRepo.UpdateRunTimes(ctx, def.DefinitionID, now, nextRun, actingUserID); err != nil {
		return fmt.Errorf("failed to update run times for %s: %w", def.DefinitionID, err)
	}
	result.NextRunUTC = nextRun
	return nil
}

// buildLines evaluates the template's value descriptors against the execution
// context. Lines whose debit and credit both resolve to zero are dropped.
func (s *compoundJournalService) buildLines(template domain.CompoundTemplate, execCtx map[string]string) ([]dto.CreateJournalLineRequest, error) {
	lines := make([]dto.CreateJournalLineRequest, 0, len(template.Lines))
	for i, tl := range template.Lines {
		debit, err := evaluateLineValue(tl.Debit, execCtx)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d debit: %v", apperrors.ErrConfiguration, i+1, err)
		}
		credit, err := evaluateLineValue(tl.Credit, execCtx)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d credit: %v", apperrors.ErrConfiguration, i+1, err)
		}
		if debit.IsZero() && credit.IsZero() {
			continue
		}
		lines = append(lines, dto.CreateJournalLineRequest{
			AccountID:    tl.AccountID,
			CostCenterID: tl.CostCenterID,
			Debit:        debit,
			Credit:       credit,
			Description:  expr.Substitute(tl.Description, execCtx),
		})
	}
	return lines, nil
}

// evaluateLineValue resolves one tagged value descriptor to an amount.
// A missing, blank or unparsable context value resolves to zero; only a
// broken expression is an error.
func evaluateLineValue(v domain.LineValue, execCtx map[string]string) (decimal.Decimal, error) {
	switch v.Kind {
	case "":
		return decimal.Zero, nil
	case domain.ValueFixed:
		return v.Amount, nil
	case domain.ValueContext:
		raw, ok := execCtx[strings.ToLower(v.Key)]
		if !ok || strings.TrimSpace(raw) == "" {
			return decimal.Zero, nil
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return decimal.Zero, nil
		}
		return amount, nil
	case domain.ValueExpression:
		return expr.Evaluate(expr.Substitute(v.Expression, execCtx))
	}
	return decimal.Zero, fmt.Errorf("unknown value kind %q", v.Kind)
}

// mergeContext folds the template defaults under the request overrides.
// Keys are case-insensitive; overrides win.
func mergeContext(defaults, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[strings.ToLower(k)] = v
	}
	for k, v := range overrides {
		merged[strings.ToLower(k)] = v
	}
	return merged
}

func resolveBranch(req dto.ExecuteCompoundRequest, template domain.CompoundTemplate) (string, error) {
	if req.BranchID != nil && *req.BranchID != "" {
		return *req.BranchID, nil
	}
	if template.DefaultBranchID != nil && *template.DefaultBranchID != "" {
		return *template.DefaultBranchID, nil
	}
	return "", fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrBranchUnresolved)
}

func resolveDescription(req dto.ExecuteCompoundRequest, template domain.CompoundTemplate, definitionName string) string {
	if req.Description != nil && *req.Description != "" {
		return *req.Description
	}
	if template.DefaultDescription != "" {
		return template.DefaultDescription
	}
	return definitionName
}

func resolveStatus(req dto.ExecuteCompoundRequest, template domain.CompoundTemplate) domain.EntryStatus {
	if req.Status != nil && *req.Status != "" {
		return *req.Status
	}
	return template.DefaultStatus
}

// resolveDate picks the journal date: an explicit request date wins, else the
// execution day truncated to a date (journal dates carry no time of day).
func resolveDate(req dto.ExecuteCompoundRequest, now time.Time) time.Time {
	if req.JournalDate != nil {
		return *req.JournalDate
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ListDueDefinitions implements portssvc.CompoundJournalSvcFacade.
func (s *compoundJournalService) ListDueDefinitions(ctx context.Context, asOf time.Time) ([]domain.CompoundJournalDefinition, error) {
	defs, err := s.compoundRepo.FindDueDefinitions(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list due definitions: %w", err)
	}
	return defs, nil
}

// RecordFailure implements portssvc.CompoundJournalSvcFacade. The schedule
// still advances so a permanently failing definition does not run hot.
func (s *compoundJournalService) RecordFailure(ctx context.Context, def domain.CompoundJournalDefinition, runErr error, at time.Time) error {
	log := domain.CompoundExecutionLog{
		LogID:        uuid.NewString(),
		DefinitionID: def.DefinitionID,
		ExecutedAt:   at,
		IsAutomatic:  true,
		Status:       domain.ExecutionFailed,
		Message:      runErr.Error(),
	}
	if err := s.compoundRepo.SaveExecutionLog(ctx, log); err != nil {
		return fmt.Errorf("failed to save failure log: %w", err)
	}

	if def.TriggerType == domain.TriggerManual {
		return nil
	}
	nextRun := def.NextRunAfter(at)
	if err := s.compoundRepo.UpdateRunTimes(ctx, def.DefinitionID, at, nextRun, "system"); err != nil {
		return fmt.Errorf("failed to update run times for %s: %w", def.DefinitionID, err)
	}
	return nil
}

// ListExecutionLogs implements portssvc.CompoundJournalSvcFacade.
func (s *compoundJournalService) ListExecutionLogs(ctx context.Context, definitionID string, params dto.ListExecutionLogsParams) (*dto.ListExecutionLogsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultLogPageLimit
	}
	logs, nextToken, err := s.compoundRepo.ListExecutionLogs(ctx, definitionID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list execution logs for %s: %w", definitionID, err)
	}
	return &dto.ListExecutionLogsResponse{Logs: logs, NextToken: nextToken}, nil
}
