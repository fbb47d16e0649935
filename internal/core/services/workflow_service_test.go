package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fincore/backoffice/internal/apperrors"
	"github.com/fincore/backoffice/internal/core/domain"
	portsrepo "github.com/fincore/backoffice/internal/core/ports/repositories"
	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
	"github.com/fincore/backoffice/internal/core/services"
)

const testDocumentType = "JOURNAL_ENTRY"

// --- Mock WorkflowRepository ---
type MockWorkflowRepository struct {
	mock.Mock
}

var _ portsrepo.WorkflowRepositoryFacade = (*MockWorkflowRepository)(nil)

func (m *MockWorkflowRepository) FindActiveDefinitions(ctx context.Context, documentType string) ([]domain.WorkflowDefinition, error) {
	args := m.Called(ctx, documentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkflowDefinition), args.Error(1)
}

func (m *MockWorkflowRepository) FindDefinitionByID(ctx context.Context, definitionID string) (*domain.WorkflowDefinition, error) {
	args := m.Called(ctx, definitionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkflowDefinition), args.Error(1)
}

func (m *MockWorkflowRepository) SaveInstance(ctx context.Context, instance domain.WorkflowInstance, actions []domain.WorkflowAction) error {
	args := m.Called(ctx, instance, actions)
	return args.Error(0)
}

func (m *MockWorkflowRepository) FindInstanceByID(ctx context.Context, instanceID string) (*domain.WorkflowInstance, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkflowInstance), args.Error(1)
}

func (m *MockWorkflowRepository) UpdateInstance(ctx context.Context, instance domain.WorkflowInstance) error {
	args := m.Called(ctx, instance)
	return args.Error(0)
}

func (m *MockWorkflowRepository) FindActionByID(ctx context.Context, actionID string) (*domain.WorkflowAction, error) {
	args := m.Called(ctx, actionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkflowAction), args.Error(1)
}

func (m *MockWorkflowRepository) MarkActionIfPending(ctx context.Context, actionID string, status domain.ActionStatus, actedBy string, notes string, actedAt time.Time) error {
	args := m.Called(ctx, actionID, status, actedBy, notes, actedAt)
	return args.Error(0)
}

func (m *MockWorkflowRepository) SkipPendingActions(ctx context.Context, instanceID string, actedAt time.Time) error {
	args := m.Called(ctx, instanceID, actedAt)
	return args.Error(0)
}

// --- Mock UserDirectory ---
type MockUserDirectory struct {
	mock.Mock
}

var _ portssvc.UserDirectory = (*MockUserDirectory)(nil)

func (m *MockUserDirectory) UserHasPermission(ctx context.Context, userID, permissionName string) (bool, error) {
	args := m.Called(ctx, userID, permissionName)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserDirectory) UsersWithPermission(ctx context.Context, permissionName string) ([]string, error) {
	args := m.Called(ctx, permissionName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserDirectory) UsersInBranch(ctx context.Context, branchID string) ([]string, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserDirectory) IsUserInBranch(ctx context.Context, userID, branchID string) (bool, error) {
	args := m.Called(ctx, userID, branchID)
	return args.Bool(0), args.Error(1)
}

// --- Mock Notifier ---
type MockNotifier struct {
	mock.Mock
}

var _ portssvc.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Notify(ctx context.Context, userIDs []string, title, message, deepLink string) error {
	args := m.Called(ctx, userIDs, title, message, deepLink)
	return args.Error(0)
}

func (m *MockNotifier) ClearForUserAction(ctx context.Context, userID, actionID string) error {
	args := m.Called(ctx, userID, actionID)
	return args.Error(0)
}

// --- Mock DocumentFinalizer ---
type MockDocumentFinalizer struct {
	mock.Mock
}

var _ portssvc.DocumentFinalizer = (*MockDocumentFinalizer)(nil)

func (m *MockDocumentFinalizer) Finalize(ctx context.Context, documentID, approverUserID string) error {
	args := m.Called(ctx, documentID, approverUserID)
	return args.Error(0)
}

func (m *MockDocumentFinalizer) Reject(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockDocumentFinalizer) DocumentBranch(ctx context.Context, documentID string) (string, error) {
	args := m.Called(ctx, documentID)
	return args.String(0), args.Error(1)
}

// --- Test Suite Setup ---
type WorkflowServiceTestSuite struct {
	suite.Suite
	mockRepo       *MockWorkflowRepository
	mockDirectory  *MockUserDirectory
	mockNotifier   *MockNotifier
	mockFinalizer  *MockDocumentFinalizer
	service        portssvc.WorkflowSvcFacade
	firstApprover  string
	secondApprover string
	initiator      string
	documentID     string
}

func (suite *WorkflowServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockWorkflowRepository)
	suite.mockDirectory = new(MockUserDirectory)
	suite.mockNotifier = new(MockNotifier)
	suite.mockFinalizer = new(MockDocumentFinalizer)
	registry := portssvc.FinalizerRegistry{testDocumentType: suite.mockFinalizer}
	suite.service = services.NewWorkflowService(suite.mockRepo, suite.mockDirectory, suite.mockNotifier, registry)

	suite.firstApprover = uuid.NewString()
	suite.secondApprover = uuid.NewString()
	suite.initiator = uuid.NewString()
	suite.documentID = uuid.NewString()
}

// twoStepDefinition builds a definition with two specific-user steps.
func (suite *WorkflowServiceTestSuite) twoStepDefinition() *domain.WorkflowDefinition {
	defID := uuid.NewString()
	return &domain.WorkflowDefinition{
		DefinitionID: defID,
		DocumentType: testDocumentType,
		IsActive:     true,
		Steps: []domain.WorkflowStep{
			{StepID: uuid.NewString(), DefinitionID: defID, StepOrder: 1, StepType: domain.StepSpecificUser, ApproverUserID: &suite.firstApprover},
			{StepID: uuid.NewString(), DefinitionID: defID, StepOrder: 2, StepType: domain.StepSpecificUser, ApproverUserID: &suite.secondApprover},
		},
	}
}

// pendingWorkflow wires up an in-progress instance at the given step with
// find expectations registered on the mock repo.
func (suite *WorkflowServiceTestSuite) pendingWorkflow(def *domain.WorkflowDefinition, currentStep int) *domain.WorkflowInstance {
	instance := &domain.WorkflowInstance{
		InstanceID:       uuid.NewString(),
		DefinitionID:     def.DefinitionID,
		DocumentType:     testDocumentType,
		DocumentID:       suite.documentID,
		Status:           domain.InstanceInProgress,
		CurrentStepOrder: currentStep,
		InitiatorUserID:  suite.initiator,
	}
	for _, step := range def.Steps {
		status := domain.ActionPending
		if step.StepOrder < currentStep {
			status = domain.ActionApproved
		}
		instance.Actions = append(instance.Actions, domain.WorkflowAction{
			ActionID:   uuid.NewString(),
			InstanceID: instance.InstanceID,
			StepID:     step.StepID,
			StepOrder:  step.StepOrder,
			Status:     status,
		})
	}
	return instance
}

func (suite *WorkflowServiceTestSuite) actionForStep(instance *domain.WorkflowInstance, order int) *domain.WorkflowAction {
	for i := range instance.Actions {
		if instance.Actions[i].StepOrder == order {
			return &instance.Actions[i]
		}
	}
	return nil
}

// --- Test Cases ---

func (suite *WorkflowServiceTestSuite) TestGetActiveDefinition_BranchBeatsGlobal() {
	ctx := context.Background()
	branchID := uuid.NewString()
	global := domain.WorkflowDefinition{DefinitionID: uuid.NewString(), DocumentType: testDocumentType, IsActive: true}
	scoped := domain.WorkflowDefinition{DefinitionID: uuid.NewString(), DocumentType: testDocumentType, BranchID: &branchID, IsActive: true}

	suite.mockRepo.On("FindActiveDefinitions", ctx, testDocumentType).Return([]domain.WorkflowDefinition{global, scoped}, nil).Once()

	def, err := suite.service.GetActiveDefinition(ctx, testDocumentType, &branchID)

	suite.Require().NoError(err)
	suite.Require().NotNil(def)
	suite.Equal(scoped.DefinitionID, def.DefinitionID)
}

func (suite *WorkflowServiceTestSuite) TestGetActiveDefinition_FallsBackToGlobal() {
	ctx := context.Background()
	otherBranch := uuid.NewString()
	requestBranch := uuid.NewString()
	global := domain.WorkflowDefinition{DefinitionID: uuid.NewString(), DocumentType: testDocumentType, IsActive: true}
	scoped := domain.WorkflowDefinition{DefinitionID: uuid.NewString(), DocumentType: testDocumentType, BranchID: &otherBranch, IsActive: true}

	suite.mockRepo.On("FindActiveDefinitions", ctx, testDocumentType).Return([]domain.WorkflowDefinition{scoped, global}, nil).Once()

	def, err := suite.service.GetActiveDefinition(ctx, testDocumentType, &requestBranch)

	suite.Require().NoError(err)
	suite.Require().NotNil(def)
	suite.Equal(global.DefinitionID, def.DefinitionID)
}

func (suite *WorkflowServiceTestSuite) TestGetActiveDefinition_NoneMatches() {
	ctx := context.Background()
	suite.mockRepo.On("FindActiveDefinitions", ctx, testDocumentType).Return([]domain.WorkflowDefinition{}, nil).Once()

	def, err := suite.service.GetActiveDefinition(ctx, testDocumentType, nil)

	suite.Require().NoError(err)
	suite.Nil(def)
}

func (suite *WorkflowServiceTestSuite) TestStartWorkflow_CreatesActionsAndNotifiesFirstStep() {
	ctx := context.Background()
	def := suite.twoStepDefinition()

	var savedActions []domain.WorkflowAction
	suite.mockRepo.On("SaveInstance", ctx, mock.AnythingOfType("domain.WorkflowInstance"), mock.AnythingOfType("[]domain.WorkflowAction")).Run(func(args mock.Arguments) {
		savedActions = args.Get(2).([]domain.WorkflowAction)
	}).Return(nil).Once()
	suite.mockNotifier.On("Notify", ctx, []string{suite.firstApprover}, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	instance, err := suite.service.StartWorkflow(ctx, def, testDocumentType, suite.documentID, suite.initiator, nil)

	suite.Require().NoError(err)
	suite.Require().NotNil(instance)
	suite.Equal(domain.InstanceInProgress, instance.Status)
	suite.Equal(1, instance.CurrentStepOrder)
	suite.Require().Len(savedActions, 2)
	for _, action := range savedActions {
		suite.Equal(domain.ActionPending, action.Status)
	}

	// The second step's approver hears nothing until step one clears.
	suite.mockNotifier.AssertNumberOfCalls(suite.T(), "Notify", 1)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestStartWorkflow_ZeroSteps_ReturnsNil() {
	ctx := context.Background()
	def := &domain.WorkflowDefinition{DefinitionID: uuid.NewString(), DocumentType: testDocumentType, IsActive: true}

	instance, err := suite.service.StartWorkflow(ctx, def, testDocumentType, suite.documentID, suite.initiator, nil)

	suite.Require().NoError(err)
	suite.Nil(instance)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveInstance", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestStartWorkflow_ZeroEligibleApprovers_Fails() {
	ctx := context.Background()
	permission := "journal:approve"
	defID := uuid.NewString()
	def := &domain.WorkflowDefinition{
		DefinitionID: defID,
		DocumentType: testDocumentType,
		IsActive:     true,
		Steps: []domain.WorkflowStep{
			{StepID: uuid.NewString(), DefinitionID: defID, StepOrder: 1, StepType: domain.StepPermission, PermissionName: &permission},
		},
	}

	suite.mockRepo.On("SaveInstance", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockDirectory.On("UsersWithPermission", ctx, permission).Return([]string{}, nil).Once()

	_, err := suite.service.StartWorkflow(ctx, def, testDocumentType, suite.documentID, suite.initiator, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConfiguration)
	suite.mockNotifier.AssertNotCalled(suite.T(), "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestProcessAction_ApproveAdvancesAndNotifiesNextStep() {
	ctx := context.Background()
	def := suite.twoStepDefinition()
	instance := suite.pendingWorkflow(def, 1)
	action := suite.actionForStep(instance, 1)

	suite.mockRepo.On("FindActionByID", ctx, action.ActionID).Return(action, nil).Once()
	suite.mockRepo.On("FindInstanceByID", ctx, instance.InstanceID).Return(instance, nil).Once()
	suite.mockRepo.On("FindDefinitionByID", ctx, def.DefinitionID).Return(def, nil).Once()
	suite.mockRepo.On("MarkActionIfPending", ctx, action.ActionID, domain.ActionApproved, suite.firstApprover, "looks right", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("ClearForUserAction", ctx, suite.firstApprover, action.ActionID).Return(nil).Once()
	suite.mockRepo.On("UpdateInstance", ctx, mock.MatchedBy(func(i domain.WorkflowInstance) bool {
		return i.Status == domain.InstanceInProgress && i.CurrentStepOrder == 2
	})).Return(nil).Once()
	suite.mockNotifier.On("Notify", ctx, []string{suite.secondApprover}, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	updated, err := suite.service.ProcessAction(ctx, action.ActionID, suite.firstApprover, true, "looks right")

	suite.Require().NoError(err)
	suite.Equal(domain.InstanceInProgress, updated.Status)
	suite.Equal(2, updated.CurrentStepOrder)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestProcessAction_FinalApprovalFinalizesDocument() {
	ctx := context.Background()
	def := suite.twoStepDefinition()
	instance := suite.pendingWorkflow(def, 2)
	action := suite.actionForStep(instance, 2)

	suite.mockRepo.On("FindActionByID", ctx, action.ActionID).Return(action, nil).Once()
	suite.mockRepo.On("FindInstanceByID", ctx, instance.InstanceID).Return(instance, nil).Once()
	suite.mockRepo.On("FindDefinitionByID", ctx, def.DefinitionID).Return(def, nil).Once()
	suite.mockRepo.On("MarkActionIfPending", ctx, action.ActionID, domain.ActionApproved, suite.secondApprover, "", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("ClearForUserAction", ctx, suite.secondApprover, action.ActionID).Return(nil).Once()
	suite.mockRepo.On("UpdateInstance", ctx, mock.MatchedBy(func(i domain.WorkflowInstance) bool {
		return i.Status == domain.InstanceApproved && i.CompletedAt != nil
	})).Return(nil).Once()
	suite.mockFinalizer.On("Finalize", ctx, suite.documentID, suite.secondApprover).Return(nil).Once()

	updated, err := suite.service.ProcessAction(ctx, action.ActionID, suite.secondApprover, true, "")

	suite.Require().NoError(err)
	suite.Equal(domain.InstanceApproved, updated.Status)
	suite.mockFinalizer.AssertExpectations(suite.T())
	suite.mockNotifier.AssertNotCalled(suite.T(), "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestProcessAction_RejectionSkipsRemainingSteps() {
	ctx := context.Background()
	def := suite.twoStepDefinition()
	instance := suite.pendingWorkflow(def, 1)
	action := suite.actionForStep(instance, 1)

	suite.mockRepo.On("FindActionByID", ctx, action.ActionID).Return(action, nil).Once()
	suite.mockRepo.On("FindInstanceByID", ctx, instance.InstanceID).Return(instance, nil).Once()
	suite.mockRepo.On("FindDefinitionByID", ctx, def.DefinitionID).Return(def, nil).Once()
	suite.mockRepo.On("MarkActionIfPending", ctx, action.ActionID, domain.ActionRejected, suite.firstApprover, "wrong account", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("ClearForUserAction", ctx, suite.firstApprover, action.ActionID).Return(nil).Once()
	suite.mockRepo.On("UpdateInstance", ctx, mock.MatchedBy(func(i domain.WorkflowInstance) bool {
		return i.Status == domain.InstanceRejected && i.CompletedAt != nil
	})).Return(nil).Once()
	suite.mockRepo.On("SkipPendingActions", ctx, instance.InstanceID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockFinalizer.On("Reject", ctx, suite.documentID).Return(nil).Once()

	updated, err := suite.service.ProcessAction(ctx, action.ActionID, suite.firstApprover, false, "wrong account")

	suite.Require().NoError(err)
	suite.Equal(domain.InstanceRejected, updated.Status)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockFinalizer.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestProcessAction_IneligibleUser_Fails() {
	ctx := context.Background()
	def := suite.twoStepDefinition()
	instance := suite.pendingWorkflow(def, 1)
	action := suite.actionForStep(instance, 1)
	outsider := uuid.NewString()

	suite.mockRepo.On("FindActionByID", ctx, action.ActionID).Return(action, nil).Once()
	suite.mockRepo.On("FindInstanceByID", ctx, instance.InstanceID).Return(instance, nil).Once()
	suite.mockRepo.On("FindDefinitionByID", ctx, def.DefinitionID).Return(def, nil).Once()

	_, err := suite.service.ProcessAction(ctx, action.ActionID, outsider, true, "")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockRepo.AssertNotCalled(suite.T(), "MarkActionIfPending", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestProcessAction_AlreadyProcessed_Fails() {
	ctx := context.Background()
	actedAt := time.Now()
	action := &domain.WorkflowAction{
		ActionID:  uuid.NewString(),
		Status:    domain.ActionApproved,
		ActedBy:   &suite.firstApprover,
		ActedAt:   &actedAt,
		StepOrder: 1,
	}
	suite.mockRepo.On("FindActionByID", ctx, action.ActionID).Return(action, nil).Once()

	_, err := suite.service.ProcessAction(ctx, action.ActionID, suite.firstApprover, true, "")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *WorkflowServiceTestSuite) TestProcessAction_LaterStepCannotActEarly() {
	ctx := context.Background()
	def := suite.twoStepDefinition()
	instance := suite.pendingWorkflow(def, 1)
	laterAction := suite.actionForStep(instance, 2)

	suite.mockRepo.On("FindActionByID", ctx, laterAction.ActionID).Return(laterAction, nil).Once()
	suite.mockRepo.On("FindInstanceByID", ctx, instance.InstanceID).Return(instance, nil).Once()

	_, err := suite.service.ProcessAction(ctx, laterAction.ActionID, suite.secondApprover, true, "")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockRepo.AssertNotCalled(suite.T(), "MarkActionIfPending", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockFinalizer.AssertNotCalled(suite.T(), "Finalize", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestProcessAction_ConcurrentApproverLosesRace() {
	ctx := context.Background()
	def := suite.twoStepDefinition()
	instance := suite.pendingWorkflow(def, 1)
	action := suite.actionForStep(instance, 1)

	suite.mockRepo.On("FindActionByID", ctx, action.ActionID).Return(action, nil).Once()
	suite.mockRepo.On("FindInstanceByID", ctx, instance.InstanceID).Return(instance, nil).Once()
	suite.mockRepo.On("FindDefinitionByID", ctx, def.DefinitionID).Return(def, nil).Once()
	suite.mockRepo.On("MarkActionIfPending", ctx, action.ActionID, domain.ActionApproved, suite.firstApprover, "", mock.AnythingOfType("time.Time")).Return(apperrors.ErrInvalidState).Once()

	_, err := suite.service.ProcessAction(ctx, action.ActionID, suite.firstApprover, true, "")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateInstance", mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestProcessAction_BranchStepFallsBackToDocumentBranch() {
	ctx := context.Background()
	documentBranch := uuid.NewString()
	defID := uuid.NewString()
	def := &domain.WorkflowDefinition{
		DefinitionID: defID,
		DocumentType: testDocumentType,
		IsActive:     true,
		Steps: []domain.WorkflowStep{
			{StepID: uuid.NewString(), DefinitionID: defID, StepOrder: 1, StepType: domain.StepBranch},
		},
	}
	instance := suite.pendingWorkflow(def, 1)
	action := suite.actionForStep(instance, 1)

	suite.mockRepo.On("FindActionByID", ctx, action.ActionID).Return(action, nil).Once()
	suite.mockRepo.On("FindInstanceByID", ctx, instance.InstanceID).Return(instance, nil).Once()
	suite.mockRepo.On("FindDefinitionByID", ctx, def.DefinitionID).Return(def, nil).Once()
	suite.mockFinalizer.On("DocumentBranch", ctx, suite.documentID).Return(documentBranch, nil).Once()
	suite.mockDirectory.On("IsUserInBranch", ctx, suite.firstApprover, documentBranch).Return(true, nil).Once()
	suite.mockRepo.On("MarkActionIfPending", ctx, action.ActionID, domain.ActionApproved, suite.firstApprover, "", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("ClearForUserAction", ctx, suite.firstApprover, action.ActionID).Return(nil).Once()
	suite.mockRepo.On("UpdateInstance", ctx, mock.Anything).Return(nil).Once()
	suite.mockFinalizer.On("Finalize", ctx, suite.documentID, suite.firstApprover).Return(nil).Once()

	updated, err := suite.service.ProcessAction(ctx, action.ActionID, suite.firstApprover, true, "")

	suite.Require().NoError(err)
	suite.Equal(domain.InstanceApproved, updated.Status)
	suite.mockDirectory.AssertExpectations(suite.T())
}

func TestWorkflowServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkflowServiceTestSuite))
}
