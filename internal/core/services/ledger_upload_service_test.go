package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/recon_workbench/internal/apperrors"
	"github.com/SscSPs/recon_workbench/internal/core/domain"
	portsrepo "github.com/SscSPs/recon_workbench/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/recon_workbench/internal/core/ports/services"
	"github.com/SscSPs/recon_workbench/internal/core/services"
	"github.com/SscSPs/recon_workbench/internal/dto"
	"github.com/SscSPs/recon_workbench/internal/middleware"
	"github.com/SscSPs/recon_workbench/internal/platform/metrics"
	"github.com/SscSPs/recon_workbench/internal/utils"
	"github.com/SscSPs/recon_workbench/internal/utils/accounting"
	"github.com/SscSPs/recon_workbench/internal/utils/glparser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

// Ensure MockLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) FindCurrentUpload(ctx context.Context, clientID string) (*domain.LedgerUpload, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerUpload), args.Error(1)
}

func (m *MockLedgerRepository) GetAccountAggregates(ctx context.Context, uploadID string) (map[string]domain.AccountAggregate, error) {
	args := m.Called(ctx, uploadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.AccountAggregate), args.Error(1)
}

func (m *MockLedgerRepository) ListTransactions(ctx context.Context, uploadID string, accountName *string, limit int, nextToken *string) ([]domain.LedgerTransaction, *string, error) {
	args := m.Called(ctx, uploadID, accountName, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.LedgerTransaction), returnedNextToken, args.Error(2)
}

func (m *MockLedgerRepository) ReplaceAll(ctx context.Context, clientID string, upload domain.LedgerUpload, rows []domain.LedgerTransactionRow) (*domain.LedgerUpload, error) {
	args := m.Called(ctx, clientID, upload, rows)
	if fn, ok := args.Get(0).(func(context.Context, string, domain.LedgerUpload, []domain.LedgerTransactionRow) *domain.LedgerUpload); ok {
		return fn(ctx, clientID, upload, rows), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerUpload), args.Error(1)
}

func (m *MockLedgerRepository) DeleteCurrentUpload(ctx context.Context, clientID string) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

// --- Mock ClientRepository ---
type MockClientRepository struct {
	mock.Mock
}

var _ portsrepo.ClientReader = (*MockClientRepository)(nil)

func (m *MockClientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

// --- Mock Parser ---
type MockLedgerFileParser struct {
	mock.Mock
}

var _ portssvc.LedgerFileParser = (*MockLedgerFileParser)(nil)

func (m *MockLedgerFileParser) Parse(content []byte, fileName string) (*domain.ParseResult, error) {
	args := m.Called(content, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParseResult), args.Error(1)
}

// --- Mock Notifier ---
type MockLedgerChangeNotifier struct {
	mock.Mock
}

var _ portssvc.LedgerChangeNotifier = (*MockLedgerChangeNotifier)(nil)

func (m *MockLedgerChangeNotifier) NotifyLedgerChanged(ctx context.Context, event domain.LedgerChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

const sampleGL = "Account,Date,Description,Debit,Credit\n" +
	"Bank,2024-01-05,Deposit,100.00,\n" +
	"Sales,2024-01-05,Invoice 1,,100.00\n" +
	"Bank,2024-01-20,Deposit,40.10,\n" +
	"Sales,2024-01-20,Invoice 2,,40.10\n"

// --- Test Suite Setup ---
type LedgerUploadServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo *MockLedgerRepository
	mockClientRepo *MockClientRepository
	mockNotifier   *MockLedgerChangeNotifier
	metrics        *metrics.Metrics
	service        portssvc.LedgerSvcFacade
	clientID       string
	userID         string
	ctx            context.Context
	file           domain.UploadedFile
}

func (suite *LedgerUploadServiceTestSuite) SetupTest() {
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockClientRepo = new(MockClientRepository)
	suite.mockNotifier = new(MockLedgerChangeNotifier)
	suite.metrics = metrics.New(prometheus.NewRegistry())
	suite.service = services.NewLedgerUploadService(
		suite.mockLedgerRepo,
		suite.mockClientRepo,
		glparser.New(glparser.Options{DayFirst: true}),
		services.WithRoleAuthorizer(services.NewContextRoleAuthorizer()),
		services.WithChangeNotifier(suite.mockNotifier),
		services.WithMetrics(suite.metrics),
	)

	suite.clientID = "client-acme"
	suite.userID = "user-1"
	suite.ctx = middleware.WithActor(context.Background(), suite.userID, domain.RoleManager)
	suite.file = domain.UploadedFile{Name: "acme_gl_jan.csv", Content: []byte(sampleGL)}

	suite.mockClientRepo.On("FindClientByID", mock.Anything, suite.clientID).
		Return(&domain.Client{ClientID: suite.clientID, Name: "Acme Ltd", IsActive: true}, nil).Maybe()
}

func TestLedgerUploadServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerUploadServiceTestSuite))
}

// storedSnapshot returns an upload and aggregates matching sampleGL as if it had been committed.
func (suite *LedgerUploadServiceTestSuite) storedSnapshot() (*domain.LedgerUpload, map[string]domain.AccountAggregate) {
	parsed, err := glparser.New(glparser.Options{DayFirst: true}).Parse([]byte(sampleGL), "acme_gl_jan.csv")
	suite.Require().NoError(err)
	aggregates, _ := accounting.GroupRows(parsed.Rows)

	upload := &domain.LedgerUpload{
		UploadID:     "upload-1",
		ClientID:     suite.clientID,
		FileName:     "acme_gl_jan.csv",
		FileHash:     utils.FileHash([]byte(sampleGL)),
		RowCount:     len(parsed.Rows),
		AccountCount: parsed.AccountCount,
		AuditFields:  domain.AuditFields{CreatedAt: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), CreatedBy: "user-0"},
	}
	return upload, aggregates
}

// --- Preview ---

func (suite *LedgerUploadServiceTestSuite) TestPreviewReupload_FirstUploadSkipsAggregates() {
	suite.mockLedgerRepo.On("FindCurrentUpload", mock.Anything, suite.clientID).Return(nil, apperrors.ErrNotFound).Once()

	result, err := suite.service.PreviewReupload(suite.ctx, suite.clientID, suite.file)

	suite.Require().NoError(err)
	suite.True(result.IsFirstUpload)
	suite.False(result.IsReupload)
	suite.Equal(4, result.NewRowCount)
	suite.Equal(2, result.NewAccountCount)
	suite.Empty(result.Changes)
	suite.Require().NotNil(result.NewDateFrom)
	suite.Equal("2024-01-05", result.NewDateFrom.Format("2006-01-02"))
	suite.Equal("2024-01-20", result.NewDateTo.Format("2006-01-02"))
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "GetAccountAggregates", mock.Anything, mock.Anything)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ReplaceAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerUploadServiceTestSuite) TestPreviewReupload_SameFileIsIdempotent() {
	current, aggregates := suite.storedSnapshot()
	suite.mockLedgerRepo.On("FindCurrentUpload", mock.Anything, suite.clientID).Return(current, nil)
	suite.mockLedgerRepo.On("GetAccountAggregates", mock.Anything, current.UploadID).Return(aggregates, nil)

	first, err := suite.service.PreviewReupload(suite.ctx, suite.clientID, suite.file)
	suite.Require().NoError(err)
	second, err := suite.service.PreviewReupload(suite.ctx, suite.clientID, suite.file)
	suite.Require().NoError(err)

	suite.Equal(first, second)
	suite.True(first.IsReupload)
	suite.False(first.IsFirstUpload)
	suite.True(first.SameFileAsCurrent)
	suite.Empty(first.Changes)
	suite.Equal(2, first.UnchangedCount)

	body, err := json.Marshal(first)
	suite.Require().NoError(err)
	suite.Contains(string(body), `"changes":[]`)
	suite.Equal(current.UploadID, first.PriorUploadID)
	suite.Equal(4, first.PriorRowCount)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ReplaceAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerUploadServiceTestSuite) TestPreviewReupload_ReportsChangedAccounts() {
	current, aggregates := suite.storedSnapshot()
	suite.mockLedgerRepo.On("FindCurrentUpload", mock.Anything, suite.clientID).Return(current, nil)
	suite.mockLedgerRepo.On("GetAccountAggregates", mock.Anything, current.UploadID).Return(aggregates, nil)

	revised := "Account,Date,Description,Debit,Credit\n" +
		"Bank,2024-01-05,Deposit,100.00,\n" +
		"Bank,2024-01-20,Deposit,40.105,\n" +
		"Revenue,2024-01-05,Invoice 1,,100.00\n" +
		"Revenue,2024-01-20,Invoice 2,,40.10\n" +
		"Wages,2024-01-31,Payroll,25.00,\n"
	file := domain.UploadedFile{Name: "acme_gl_jan_v2.csv", Content: []byte(revised)}

	result, err := suite.service.PreviewReupload(suite.ctx, suite.clientID, file)

	suite.Require().NoError(err)
	suite.False(result.SameFileAsCurrent)
	suite.Equal(2, result.AddedCount)
	suite.Equal(1, result.RemovedCount)
	suite.Equal(0, result.ModifiedCount)
	suite.Equal(1, result.UnchangedCount)
	suite.Require().Len(result.Changes, 3)
	suite.Equal("Revenue", result.Changes[0].AccountName)
	suite.Equal(domain.ChangeAdded, result.Changes[0].ChangeType)
	suite.Equal("Wages", result.Changes[1].AccountName)
	suite.Equal("Sales", result.Changes[2].AccountName)
	suite.Equal(domain.ChangeRemoved, result.Changes[2].ChangeType)
	suite.True(result.Changes[2].OldNetTotal.Equal(decimal.RequireFromString("-140.10")))
}

func (suite *LedgerUploadServiceTestSuite) TestPreviewReupload_ForbiddenBeforeParsing() {
	ctx := middleware.WithActor(context.Background(), suite.userID, domain.RolePreparer)
	parser := new(MockLedgerFileParser)
	svc := services.NewLedgerUploadService(suite.mockLedgerRepo, suite.mockClientRepo, parser,
		services.WithRoleAuthorizer(services.NewContextRoleAuthorizer()))

	_, err := svc.PreviewReupload(ctx, suite.clientID, suite.file)

	suite.ErrorIs(err, apperrors.ErrForbidden)
	parser.AssertNotCalled(suite.T(), "Parse", mock.Anything, mock.Anything)
	suite.mockClientRepo.AssertNotCalled(suite.T(), "FindClientByID", mock.Anything, mock.Anything)
}

func (suite *LedgerUploadServiceTestSuite) TestAuthorizeUpload() {
	svc := services.NewLedgerUploadService(suite.mockLedgerRepo, suite.mockClientRepo, new(MockLedgerFileParser),
		services.WithRoleAuthorizer(services.NewContextRoleAuthorizer()))

	suite.NoError(svc.AuthorizeUpload(suite.ctx))
	suite.ErrorIs(svc.AuthorizeUpload(middleware.WithActor(context.Background(), suite.userID, domain.RoleReviewer)), apperrors.ErrForbidden)
	suite.ErrorIs(svc.AuthorizeUpload(context.Background()), apperrors.ErrUnauthorized)
}

func (suite *LedgerUploadServiceTestSuite) TestPreviewReupload_NoActorIsUnauthorized() {
	_, err := suite.service.PreviewReupload(context.Background(), suite.clientID, suite.file)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *LedgerUploadServiceTestSuite) TestPreviewReupload_RejectsBadRequests() {
	suite.mockClientRepo.On("FindClientByID", mock.Anything, "ghost").Return(nil, apperrors.NewNotFoundError("client ghost")).Once()
	suite.mockClientRepo.On("FindClientByID", mock.Anything, "dormant").
		Return(&domain.Client{ClientID: "dormant", IsActive: false}, nil).Once()

	small := services.NewLedgerUploadService(suite.mockLedgerRepo, suite.mockClientRepo, glparser.New(glparser.Options{}),
		services.WithRoleAuthorizer(services.NewContextRoleAuthorizer()),
		services.WithMaxUploadBytes(16))

	cases := []struct {
		name     string
		svc      portssvc.LedgerSvcFacade
		clientID string
		file     domain.UploadedFile
		wantErr  error
	}{
		{name: "missing client id", svc: suite.service, clientID: " ", file: suite.file, wantErr: apperrors.ErrValidation},
		{name: "empty file", svc: suite.service, clientID: suite.clientID, file: domain.UploadedFile{Name: "gl.csv"}, wantErr: apperrors.ErrValidation},
		{name: "too large", svc: small, clientID: suite.clientID, file: suite.file, wantErr: apperrors.ErrValidation},
		{name: "unknown client", svc: suite.service, clientID: "ghost", file: suite.file, wantErr: apperrors.ErrValidation},
		{name: "inactive client", svc: suite.service, clientID: "dormant", file: suite.file, wantErr: apperrors.ErrValidation},
		{name: "not a GL export", svc: suite.service, clientID: suite.clientID, file: domain.UploadedFile{Name: "notes.csv", Content: []byte("Name,Amount\nA,1\n")}, wantErr: apperrors.ErrFormat},
		{name: "header only", svc: suite.service, clientID: suite.clientID, file: domain.UploadedFile{Name: "gl.csv", Content: []byte("Account,Date,Debit,Credit\n")}, wantErr: apperrors.ErrFormat},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			_, err := tc.svc.PreviewReupload(suite.ctx, tc.clientID, tc.file)
			suite.ErrorIs(err, tc.wantErr)
		})
	}
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "FindCurrentUpload", mock.Anything, mock.Anything)
}

func (suite *LedgerUploadServiceTestSuite) TestPreviewReupload_ParserErrorSurfaces() {
	parser := new(MockLedgerFileParser)
	parseErr := apperrors.NewFormatError("legacy .xls workbooks are not supported")
	parser.On("Parse", []byte(sampleGL), "acme_gl_jan.csv").Return(nil, parseErr)
	svc := services.NewLedgerUploadService(suite.mockLedgerRepo, suite.mockClientRepo, parser,
		services.WithRoleAuthorizer(services.NewContextRoleAuthorizer()))

	_, err := svc.PreviewReupload(suite.ctx, suite.clientID, suite.file)

	suite.ErrorIs(err, apperrors.ErrFormat)
	parser.AssertExpectations(suite.T())
}

// --- Commit ---

func (suite *LedgerUploadServiceTestSuite) TestCommitUpload_ReplacesSnapshotAndNotifies() {
	current, _ := suite.storedSnapshot()
	suite.mockLedgerRepo.On("FindCurrentUpload", mock.Anything, suite.clientID).Return(current, nil).Once()

	var captured domain.LedgerUpload
	suite.mockLedgerRepo.On("ReplaceAll", mock.Anything, suite.clientID, mock.AnythingOfType("domain.LedgerUpload"), mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(domain.LedgerUpload)
			rows := args.Get(3).([]domain.LedgerTransactionRow)
			suite.Len(rows, 4)
		}).
		Return(func(_ context.Context, _ string, u domain.LedgerUpload, _ []domain.LedgerTransactionRow) *domain.LedgerUpload {
			return &u
		}, nil).Once()
	suite.mockNotifier.On("NotifyLedgerChanged", mock.Anything, mock.MatchedBy(func(e domain.LedgerChangeEvent) bool {
		return e.ClientID == suite.clientID && e.Kind == domain.LedgerReplaced && e.RowCount == 4
	})).Return(nil).Once()

	result, err := suite.service.CommitUpload(suite.ctx, suite.clientID, suite.file)

	suite.Require().NoError(err)
	suite.Equal(captured.UploadID, result.UploadID)
	suite.NotEqual(current.UploadID, result.UploadID)
	suite.Require().NotNil(result.ReplacedUploadID)
	suite.Equal(current.UploadID, *result.ReplacedUploadID)
	suite.Equal(4, result.RowCount)
	suite.Equal(2, result.AccountCount)
	suite.Equal(suite.userID, captured.CreatedBy)
	suite.Equal(utils.FileHash([]byte(sampleGL)), captured.FileHash)
	suite.Equal("acme_gl_jan.csv", captured.FileName)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *LedgerUploadServiceTestSuite) TestCommitUpload_FirstUploadHasNoReplacedID() {
	suite.mockLedgerRepo.On("FindCurrentUpload", mock.Anything, suite.clientID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockLedgerRepo.On("ReplaceAll", mock.Anything, suite.clientID, mock.Anything, mock.Anything).
		Return(&domain.LedgerUpload{UploadID: "upload-2", FileName: "acme_gl_jan.csv", RowCount: 4, AccountCount: 2}, nil).Once()
	suite.mockNotifier.On("NotifyLedgerChanged", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := suite.service.CommitUpload(suite.ctx, suite.clientID, suite.file)

	suite.Require().NoError(err)
	suite.Nil(result.ReplacedUploadID)
	suite.Equal("upload-2", result.UploadID)
}

func (suite *LedgerUploadServiceTestSuite) TestCommitUpload_SurvivesCallerCancellation() {
	suite.mockLedgerRepo.On("FindCurrentUpload", mock.Anything, suite.clientID).Return(nil, apperrors.ErrNotFound).Once()

	ctx, cancel := context.WithCancel(suite.ctx)
	suite.mockLedgerRepo.On("ReplaceAll", mock.MatchedBy(func(c context.Context) bool {
		cancel()
		return c.Err() == nil
	}), suite.clientID, mock.Anything, mock.Anything).
		Return(&domain.LedgerUpload{UploadID: "upload-3", RowCount: 4, AccountCount: 2}, nil).Once()
	suite.mockNotifier.On("NotifyLedgerChanged", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := suite.service.CommitUpload(ctx, suite.clientID, suite.file)

	suite.Require().NoError(err)
	suite.Equal("upload-3", result.UploadID)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerUploadServiceTestSuite) TestCommitUpload_EmptyParseNeverReplaces() {
	file := domain.UploadedFile{Name: "gl.csv", Content: []byte("Account,Date,Debit,Credit\n")}

	_, err := suite.service.CommitUpload(suite.ctx, suite.clientID, file)

	suite.ErrorIs(err, apperrors.ErrFormat)
	suite.Contains(err.Error(), "General Ledger")
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ReplaceAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockNotifier.AssertNotCalled(suite.T(), "NotifyLedgerChanged", mock.Anything, mock.Anything)
}

func (suite *LedgerUploadServiceTestSuite) TestCommitUpload_PersistenceFailureIsReturned() {
	suite.mockLedgerRepo.On("FindCurrentUpload", mock.Anything, suite.clientID).Return(nil, apperrors.ErrNotFound).Once()
	storeErr := apperrors.NewAppError(500, "transaction chunk 2 aborted", errors.New("connection reset"))
	suite.mockLedgerRepo.On("ReplaceAll", mock.Anything, suite.clientID, mock.Anything, mock.Anything).Return(nil, storeErr).Once()

	_, err := suite.service.CommitUpload(suite.ctx, suite.clientID, suite.file)

	suite.ErrorIs(err, apperrors.ErrPersistence)
	suite.mockNotifier.AssertNotCalled(suite.T(), "NotifyLedgerChanged", mock.Anything, mock.Anything)
}

func (suite *LedgerUploadServiceTestSuite) TestCommitUpload_ClientRemovedDuringCommit() {
	suite.mockLedgerRepo.On("FindCurrentUpload", mock.Anything, suite.clientID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockLedgerRepo.On("ReplaceAll", mock.Anything, suite.clientID, mock.Anything, mock.Anything).
		Return(nil, apperrors.NewNotFoundError("client "+suite.clientID)).Once()

	_, err := suite.service.CommitUpload(suite.ctx, suite.clientID, suite.file)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerUploadServiceTestSuite) TestCommitUpload_NotifyFailureDoesNotFailCommit() {
	suite.mockLedgerRepo.On("FindCurrentUpload", mock.Anything, suite.clientID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockLedgerRepo.On("ReplaceAll", mock.Anything, suite.clientID, mock.Anything, mock.Anything).
		Return(&domain.LedgerUpload{UploadID: "upload-4", RowCount: 4, AccountCount: 2}, nil).Once()
	suite.mockNotifier.On("NotifyLedgerChanged", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	result, err := suite.service.CommitUpload(suite.ctx, suite.clientID, suite.file)

	suite.Require().NoError(err)
	suite.Equal("upload-4", result.UploadID)
	suite.mockNotifier.AssertExpectations(suite.T())
}

// --- Read / maintenance ---

func (suite *LedgerUploadServiceTestSuite) TestGetCurrentUpload_ReadOnlyAllowed() {
	ctx := middleware.WithActor(context.Background(), suite.userID, domain.RoleReadOnly)
	current, _ := suite.storedSnapshot()
	suite.mockLedgerRepo.On("FindCurrentUpload", mock.Anything, suite.clientID).Return(current, nil).Once()

	upload, err := suite.service.GetCurrentUpload(ctx, suite.clientID)

	suite.Require().NoError(err)
	suite.Equal(current.UploadID, upload.UploadID)
}

func (suite *LedgerUploadServiceTestSuite) TestListLedgerTransactions_PassesPagingThrough() {
	current, _ := suite.storedSnapshot()
	account := "Bank"
	token := "cursor-1"
	params := dto.ListLedgerTransactionsParams{Limit: 2, NextToken: &token, Account: &account}
	txns := []domain.LedgerTransaction{{
		TransactionID: "txn-1",
		UploadID:      current.UploadID,
		ClientID:      suite.clientID,
		LedgerTransactionRow: domain.LedgerTransactionRow{
			LineNumber:      2,
			AccountName:     "Bank",
			TransactionDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Debit:           decimal.RequireFromString("100.00"),
			Credit:          decimal.Zero,
		},
	}}
	suite.mockLedgerRepo.On("FindCurrentUpload", mock.Anything, suite.clientID).Return(current, nil).Once()
	suite.mockLedgerRepo.On("ListTransactions", mock.Anything, current.UploadID, &account, 2, &token).Return(txns, "cursor-2", nil).Once()

	resp, err := suite.service.ListLedgerTransactions(suite.ctx, suite.clientID, params)

	suite.Require().NoError(err)
	suite.Equal(current.UploadID, resp.UploadID)
	suite.Require().Len(resp.Transactions, 1)
	suite.Equal("2024-01-05", resp.Transactions[0].TransactionDate)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal("cursor-2", *resp.NextToken)
}

func (suite *LedgerUploadServiceTestSuite) TestDeleteCurrentUpload() {
	suite.mockLedgerRepo.On("DeleteCurrentUpload", mock.Anything, suite.clientID).Return(nil).Once()
	suite.mockNotifier.On("NotifyLedgerChanged", mock.Anything, mock.MatchedBy(func(e domain.LedgerChangeEvent) bool {
		return e.Kind == domain.LedgerDeleted && e.ClientID == suite.clientID
	})).Return(nil).Once()

	suite.Require().NoError(suite.service.DeleteCurrentUpload(suite.ctx, suite.clientID))
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *LedgerUploadServiceTestSuite) TestDeleteCurrentUpload_NothingToDelete() {
	suite.mockLedgerRepo.On("DeleteCurrentUpload", mock.Anything, suite.clientID).Return(apperrors.NewNotFoundError("no ledger upload")).Once()

	err := suite.service.DeleteCurrentUpload(suite.ctx, suite.clientID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockNotifier.AssertNotCalled(suite.T(), "NotifyLedgerChanged", mock.Anything, mock.Anything)
}

func TestLedgerUploadService_WithoutAuthorizerDenies(t *testing.T) {
	svc := services.NewLedgerUploadService(new(MockLedgerRepository), new(MockClientRepository), glparser.New(glparser.Options{}))
	ctx := middleware.WithActor(context.Background(), "user-1", domain.RoleAdmin)

	_, err := svc.GetCurrentUpload(ctx, "client-acme")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestContextRoleAuthorizer(t *testing.T) {
	authorizer := services.NewContextRoleAuthorizer()

	cases := []struct {
		name     string
		ctx      context.Context
		required domain.UserRole
		wantErr  error
	}{
		{name: "no actor", ctx: context.Background(), required: domain.RoleReadOnly, wantErr: apperrors.ErrUnauthorized},
		{name: "admin passes manager", ctx: middleware.WithActor(context.Background(), "u", domain.RoleAdmin), required: domain.RoleManager},
		{name: "manager passes manager", ctx: middleware.WithActor(context.Background(), "u", domain.RoleManager), required: domain.RoleManager},
		{name: "reviewer below manager", ctx: middleware.WithActor(context.Background(), "u", domain.RoleReviewer), required: domain.RoleManager, wantErr: apperrors.ErrForbidden},
		{name: "unknown role", ctx: middleware.WithActor(context.Background(), "u", domain.UserRole("OWNER")), required: domain.RoleReadOnly, wantErr: apperrors.ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := authorizer.RequireRole(tc.ctx, tc.required)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
