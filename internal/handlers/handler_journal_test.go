package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fincore/backoffice/internal/apperrors"
	"github.com/fincore/backoffice/internal/core/domain"
	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
	"github.com/fincore/backoffice/internal/core/services"
	"github.com/fincore/backoffice/internal/dto"
	"github.com/fincore/backoffice/internal/handlers"
	"github.com/fincore/backoffice/internal/middleware"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockLedgerService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockLedgerService) ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListJournalEntriesResponse), args.Error(1)
}
func (m *MockLedgerService) VerifyConfig(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock WorkflowService ---
type MockWorkflowService struct {
	mock.Mock
}

func (m *MockWorkflowService) GetActiveDefinition(ctx context.Context, documentType string, branchID *string) (*domain.WorkflowDefinition, error) {
	args := m.Called(ctx, documentType, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkflowDefinition), args.Error(1)
}
func (m *MockWorkflowService) StartWorkflow(ctx context.Context, def *domain.WorkflowDefinition, documentType, documentID, initiatorUserID string, branchID *string) (*domain.WorkflowInstance, error) {
	args := m.Called(ctx, def, documentType, documentID, initiatorUserID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkflowInstance), args.Error(1)
}
func (m *MockWorkflowService) ProcessAction(ctx context.Context, actionID, actingUserID string, approve bool, notes string) (*domain.WorkflowInstance, error) {
	args := m.Called(ctx, actionID, actingUserID, approve, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkflowInstance), args.Error(1)
}
func (m *MockWorkflowService) GetInstanceByID(ctx context.Context, instanceID string) (*domain.WorkflowInstance, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkflowInstance), args.Error(1)
}

var _ portssvc.WorkflowSvcFacade = (*MockWorkflowService)(nil)

// --- Mock DocumentFinalizer ---
type MockDocumentFinalizer struct {
	mock.Mock
}

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

var _ portssvc.DocumentFinalizer = (*MockDocumentFinalizer)(nil)

// --- Test Suite ---
type JournalHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockLedgerService   *MockLedgerService
	mockWorkflowService *MockWorkflowService
	mockFinalizer       *MockDocumentFinalizer
	jwtSecret           string
	userID              string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *JournalHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "backoffice-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *JournalHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.userID = uuid.NewString()

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockLedgerService = new(MockLedgerService)
	suite.mockWorkflowService = new(MockWorkflowService)
	suite.mockFinalizer = new(MockDocumentFinalizer)

	finalizers := portssvc.FinalizerRegistry{
		services.DocumentTypeJournalEntry: suite.mockFinalizer,
	}

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterJournalRoutes(v1, suite.mockLedgerService, suite.mockWorkflowService, finalizers)
}

func (suite *JournalHandlerTestSuite) performRequest(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		err := json.NewEncoder(&buf).Encode(body)
		suite.Require().NoError(err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *JournalHandlerTestSuite) draftEntry(entryID string) *domain.JournalEntry {
	return &domain.JournalEntry{
		EntryID:     entryID,
		EntryNumber: "JE2026042",
		EntryDate:   time.Now().UTC(),
		BranchID:    "branch-1",
		Status:      domain.Draft,
		TotalDebit:  decimal.NewFromInt(100),
		TotalCredit: decimal.NewFromInt(100),
	}
}

// --- Test Cases ---

func (suite *JournalHandlerTestSuite) TestCreateEntry_Success() {
	createReq := dto.CreateJournalEntryRequest{
		Date:     time.Now().UTC(),
		BranchID: "branch-1",
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: uuid.NewString(), Debit: decimal.NewFromInt(100)},
			{AccountID: uuid.NewString(), Credit: decimal.NewFromInt(100)},
		},
	}
	entry := suite.draftEntry(uuid.NewString())
	suite.mockLedgerService.On("CreateJournalEntry", mock.Anything, mock.AnythingOfType("dto.CreateJournalEntryRequest"), suite.userID).
		Return(entry, nil).Once()

	w := suite.performRequest(http.MethodPost, "/api/v1/entries", createReq)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.JournalEntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(entry.EntryID, resp.EntryID)
	suite.Equal("JE2026042", resp.EntryNumber)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *JournalHandlerTestSuite) TestCreateEntry_ValidationErrorMapsTo400() {
	createReq := dto.CreateJournalEntryRequest{
		Date:     time.Now().UTC(),
		BranchID: "branch-1",
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: uuid.NewString(), Debit: decimal.NewFromInt(100)},
		},
	}
	suite.mockLedgerService.On("CreateJournalEntry", mock.Anything, mock.Anything, suite.userID).
		Return(nil, fmt.Errorf("%w: mixed currencies", apperrors.ErrValidation)).Once()

	w := suite.performRequest(http.MethodPost, "/api/v1/entries", createReq)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *JournalHandlerTestSuite) TestCreateEntry_MissingTokenIsUnauthorized() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "CreateJournalEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalHandlerTestSuite) TestGetEntry_NotFoundMapsTo404() {
	entryID := uuid.NewString()
	suite.mockLedgerService.On("GetEntryByID", mock.Anything, entryID).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.performRequest(http.MethodGet, "/api/v1/entries/"+entryID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *JournalHandlerTestSuite) TestSubmitEntry_NoWorkflowPostsDirectly() {
	entryID := uuid.NewString()
	draft := suite.draftEntry(entryID)
	posted := suite.draftEntry(entryID)
	posted.Status = domain.Posted

	suite.mockLedgerService.On("GetEntryByID", mock.Anything, entryID).Return(draft, nil).Once()
	suite.mockWorkflowService.On("GetActiveDefinition", mock.Anything, services.DocumentTypeJournalEntry, &draft.BranchID).
		Return(nil, nil).Once()
	suite.mockFinalizer.On("Finalize", mock.Anything, entryID, suite.userID).Return(nil).Once()
	suite.mockLedgerService.On("GetEntryByID", mock.Anything, entryID).Return(posted, nil).Once()

	w := suite.performRequest(http.MethodPost, "/api/v1/entries/"+entryID+"/submit", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.JournalEntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.Posted, resp.Status)
	suite.mockFinalizer.AssertExpectations(suite.T())
}

func (suite *JournalHandlerTestSuite) TestSubmitEntry_RoutedForApproval() {
	entryID := uuid.NewString()
	draft := suite.draftEntry(entryID)
	def := &domain.WorkflowDefinition{DefinitionID: uuid.NewString(), DocumentType: services.DocumentTypeJournalEntry, IsActive: true}
	instance := &domain.WorkflowInstance{
		InstanceID:   uuid.NewString(),
		DefinitionID: def.DefinitionID,
		DocumentID:   entryID,
		Status:       domain.InstanceInProgress,
	}

	suite.mockLedgerService.On("GetEntryByID", mock.Anything, entryID).Return(draft, nil).Once()
	suite.mockWorkflowService.On("GetActiveDefinition", mock.Anything, services.DocumentTypeJournalEntry, &draft.BranchID).
		Return(def, nil).Once()
	suite.mockWorkflowService.On("StartWorkflow", mock.Anything, def, services.DocumentTypeJournalEntry, entryID, suite.userID, &draft.BranchID).
		Return(instance, nil).Once()

	w := suite.performRequest(http.MethodPost, "/api/v1/entries/"+entryID+"/submit", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp domain.WorkflowInstance
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(instance.InstanceID, resp.InstanceID)
	suite.mockFinalizer.AssertNotCalled(suite.T(), "Finalize", mock.Anything, mock.Anything, mock.Anything)
	suite.mockWorkflowService.AssertExpectations(suite.T())
}

func (suite *JournalHandlerTestSuite) TestSubmitEntry_NonDraftIsConflict() {
	entryID := uuid.NewString()
	posted := suite.draftEntry(entryID)
	posted.Status = domain.Posted

	suite.mockLedgerService.On("GetEntryByID", mock.Anything, entryID).Return(posted, nil).Once()

	w := suite.performRequest(http.MethodPost, "/api/v1/entries/"+entryID+"/submit", nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockWorkflowService.AssertNotCalled(suite.T(), "GetActiveDefinition", mock.Anything, mock.Anything, mock.Anything)
}

func TestJournalHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(JournalHandlerTestSuite))
}
