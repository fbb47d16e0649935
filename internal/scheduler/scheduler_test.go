package scheduler_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fincore/backoffice/internal/core/domain"
	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
	"github.com/fincore/backoffice/internal/dto"
	"github.com/fincore/backoffice/internal/scheduler"
)

// --- Mock CompoundJournalService ---
type MockCompoundService struct {
	mock.Mock
}

var _ portssvc.CompoundJournalSvcFacade = (*MockCompoundService)(nil)

func (m *MockCompoundService) CreateDefinition(ctx context.Context, req dto.CreateCompoundDefinitionRequest, creatorUserID string) (*domain.CompoundJournalDefinition, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompoundJournalDefinition), args.Error(1)
}

func (m *MockCompoundService) UpdateDefinition(ctx context.Context, definitionID string, req dto.UpdateCompoundDefinitionRequest, updaterUserID string) (*domain.CompoundJournalDefinition, error) {
	args := m.Called(ctx, definitionID, req, updaterUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompoundJournalDefinition), args.Error(1)
}

func (m *MockCompoundService) GetDefinitionByID(ctx context.Context, definitionID string) (*domain.CompoundJournalDefinition, error) {
	args := m.Called(ctx, definitionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompoundJournalDefinition), args.Error(1)
}

func (m *MockCompoundService) Execute(ctx context.Context, definitionID string, req dto.ExecuteCompoundRequest, actingUserID string) (*dto.CompoundExecutionResult, error) {
	args := m.Called(ctx, definitionID, req, actingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CompoundExecutionResult), args.Error(1)
}

func (m *MockCompoundService) ListDueDefinitions(ctx context.Context, asOf time.Time) ([]domain.CompoundJournalDefinition, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompoundJournalDefinition), args.Error(1)
}

func (m *MockCompoundService) RecordFailure(ctx context.Context, def domain.CompoundJournalDefinition, runErr error, at time.Time) error {
	args := m.Called(ctx, def, runErr, at)
	return args.Error(0)
}

func (m *MockCompoundService) ListExecutionLogs(ctx context.Context, definitionID string, params dto.ListExecutionLogsParams) (*dto.ListExecutionLogsResponse, error) {
	args := m.Called(ctx, definitionID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListExecutionLogsResponse), args.Error(1)
}

// --- Fixed Clock ---
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// --- Test Suite Setup ---
type SchedulerTestSuite struct {
	suite.Suite
	mockSvc *MockCompoundService
	sched   *scheduler.Scheduler
	now     time.Time
}

func (suite *SchedulerTestSuite) SetupTest() {
	suite.mockSvc = new(MockCompoundService)
	suite.now = time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(testWriter{suite.T()}, nil))
	suite.sched = scheduler.NewScheduler(suite.mockSvc, logger, time.Minute).WithClock(fixedClock{suite.now})
}

// testWriter routes scheduler log output through the test log.
type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func dueDefinition(name string) domain.CompoundJournalDefinition {
	return domain.CompoundJournalDefinition{
		DefinitionID: uuid.NewString(),
		Name:         name,
		TriggerType:  domain.TriggerRecurring,
		IsActive:     true,
		AuditFields:  domain.AuditFields{CreatedBy: uuid.NewString()},
	}
}

// --- Test Cases ---

func (suite *SchedulerTestSuite) TestRunCycle_ExecutesAllDueDefinitions() {
	ctx := context.Background()
	first := dueDefinition("rent accrual")
	second := dueDefinition("depreciation")

	suite.mockSvc.On("ListDueDefinitions", mock.Anything, suite.now).Return([]domain.CompoundJournalDefinition{first, second}, nil).Once()
	automaticReq := dto.ExecuteCompoundRequest{IsAutomatic: true}
	// Automatic runs are attributed to the definition owner, not the scheduler.
	suite.mockSvc.On("Execute", mock.Anything, first.DefinitionID, automaticReq, first.CreatedBy).Return(&dto.CompoundExecutionResult{Status: domain.ExecutionSuccess}, nil).Once()
	suite.mockSvc.On("Execute", mock.Anything, second.DefinitionID, automaticReq, second.CreatedBy).Return(&dto.CompoundExecutionResult{Status: domain.ExecutionSkipped}, nil).Once()

	suite.sched.RunCycle(ctx)

	suite.mockSvc.AssertExpectations(suite.T())
	suite.mockSvc.AssertNotCalled(suite.T(), "RecordFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SchedulerTestSuite) TestRunCycle_OwnerlessDefinitionRunsAsSystem() {
	ctx := context.Background()
	orphan := dueDefinition("legacy import accrual")
	orphan.CreatedBy = ""

	suite.mockSvc.On("ListDueDefinitions", mock.Anything, suite.now).Return([]domain.CompoundJournalDefinition{orphan}, nil).Once()
	suite.mockSvc.On("Execute", mock.Anything, orphan.DefinitionID, dto.ExecuteCompoundRequest{IsAutomatic: true}, "system").Return(&dto.CompoundExecutionResult{Status: domain.ExecutionSuccess}, nil).Once()

	suite.sched.RunCycle(ctx)

	suite.mockSvc.AssertExpectations(suite.T())
}

func (suite *SchedulerTestSuite) TestRunCycle_FailureDoesNotStopOtherDefinitions() {
	ctx := context.Background()
	failing := dueDefinition("broken template")
	healthy := dueDefinition("rent accrual")
	execErr := errors.New("balancing account missing")

	suite.mockSvc.On("ListDueDefinitions", mock.Anything, suite.now).Return([]domain.CompoundJournalDefinition{failing, healthy}, nil).Once()
	automaticReq := dto.ExecuteCompoundRequest{IsAutomatic: true}
	suite.mockSvc.On("Execute", mock.Anything, failing.DefinitionID, automaticReq, failing.CreatedBy).Return(nil, execErr).Once()
	suite.mockSvc.On("RecordFailure", mock.Anything, failing, mock.Anything, suite.now).Return(nil).Once()
	suite.mockSvc.On("Execute", mock.Anything, healthy.DefinitionID, automaticReq, healthy.CreatedBy).Return(&dto.CompoundExecutionResult{Status: domain.ExecutionSuccess}, nil).Once()

	suite.sched.RunCycle(ctx)

	suite.mockSvc.AssertExpectations(suite.T())
}

func (suite *SchedulerTestSuite) TestRunCycle_ListFailureAbortsCycle() {
	ctx := context.Background()
	suite.mockSvc.On("ListDueDefinitions", mock.Anything, suite.now).Return(nil, errors.New("connection refused")).Once()

	suite.sched.RunCycle(ctx)

	suite.mockSvc.AssertNotCalled(suite.T(), "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SchedulerTestSuite) TestRunCycle_CancelledContextStopsMidCycle() {
	ctx, cancel := context.WithCancel(context.Background())
	first := dueDefinition("rent accrual")
	second := dueDefinition("depreciation")

	suite.mockSvc.On("ListDueDefinitions", mock.Anything, suite.now).Return([]domain.CompoundJournalDefinition{first, second}, nil).Once()
	suite.mockSvc.On("Execute", mock.Anything, first.DefinitionID, mock.Anything, first.CreatedBy).Run(func(mock.Arguments) {
		cancel()
	}).Return(&dto.CompoundExecutionResult{Status: domain.ExecutionSuccess}, nil).Once()

	suite.sched.RunCycle(ctx)

	suite.mockSvc.AssertNotCalled(suite.T(), "Execute", mock.Anything, second.DefinitionID, mock.Anything, mock.Anything)
}

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}
