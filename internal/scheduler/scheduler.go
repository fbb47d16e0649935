// Package scheduler polls for due compound journal definitions and executes
// them on a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
	"github.com/fincore/backoffice/internal/dto"
	"github.com/fincore/backoffice/internal/middleware"
)

// schedulerActor is the audit identity used for automatic executions.
const schedulerActor = "system"

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

// realClock is the production Clock.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Scheduler runs due compound journal definitions in the background.
type Scheduler struct {
	compoundSvc portssvc.CompoundJournalSvcFacade
	logger      *slog.Logger
	interval    time.Duration
	clock       Clock
}

// NewScheduler creates a scheduler polling at the given interval.
func NewScheduler(compoundSvc portssvc.CompoundJournalSvcFacade, logger *slog.Logger, interval time.Duration) *Scheduler {
	return &Scheduler{
		compoundSvc: compoundSvc,
		logger:      logger,
		interval:    interval,
		clock:       realClock{},
	}
}

// WithClock overrides the scheduler's clock. Intended for tests.
func (s *Scheduler) WithClock(clock Clock) *Scheduler {
	s.clock = clock
	return s
}

// Run polls until ctx is cancelled. The first cycle fires immediately so a
// restart does not delay overdue definitions by a full interval.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Scheduler started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle executes every due definition once. A failing definition is logged
// and recorded but never aborts the cycle for the others.
func (s *Scheduler) RunCycle(ctx context.Context) {
	ctx = middleware.ContextWithLogger(ctx, s.logger)
	now := s.clock.Now()

	defs, err := s.compoundSvc.ListDueDefinitions(ctx, now)
	if err != nil {
		s.logger.Error("Failed to list due definitions", slog.String("error", err.Error()))
		return
	}
	if len(defs) == 0 {
		return
	}
	s.logger.Info("Scheduler cycle", slog.Int("due", len(defs)))

	for _, def := range defs {
		if ctx.Err() != nil {
			return
		}

		// Automatic runs are attributed to the definition's owner so the
		// resulting entries carry an accountable identity.
		actor := def.CreatedBy
		if actor == "" {
			actor = schedulerActor
		}

		req := dto.ExecuteCompoundRequest{IsAutomatic: true}
		result, err := s.compoundSvc.Execute(ctx, def.DefinitionID, req, actor)
		if err != nil {
			s.logger.Error("Scheduled execution failed",
				slog.String("definition_id", def.DefinitionID),
				slog.String("name", def.Name),
				slog.String("error", err.Error()))
			if recErr := s.compoundSvc.RecordFailure(ctx, def, err, now); recErr != nil {
				s.logger.Error("Failed to record execution failure",
					slog.String("definition_id", def.DefinitionID),
					slog.String("error", recErr.Error()))
			}
			continue
		}

		s.logger.Info("Scheduled execution finished",
			slog.String("definition_id", def.DefinitionID),
			slog.String("status", string(result.Status)))
	}
}
