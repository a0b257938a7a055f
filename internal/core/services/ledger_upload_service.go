package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/SscSPs/recon_workbench/internal/apperrors"
	"github.com/SscSPs/recon_workbench/internal/core/domain"
	portsrepo "github.com/SscSPs/recon_workbench/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/recon_workbench/internal/core/ports/services"
	"github.com/SscSPs/recon_workbench/internal/dto"
	"github.com/SscSPs/recon_workbench/internal/middleware"
	"github.com/SscSPs/recon_workbench/internal/platform/metrics"
	"github.com/SscSPs/recon_workbench/internal/utils"
	"github.com/SscSPs/recon_workbench/internal/utils/accounting"
	"github.com/SscSPs/recon_workbench/internal/utils/glparser"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultMaxUploadBytes is the largest export accepted when no limit is configured.
const DefaultMaxUploadBytes int64 = 50 << 20

const notifyTimeout = 5 * time.Second

// ledgerUploadService implements the LedgerSvcFacade interface
type ledgerUploadService struct {
	BaseService
	ledgerRepo     portsrepo.LedgerRepositoryFacade
	clientRepo     portsrepo.ClientReader
	parser         portssvc.LedgerFileParser
	notifier       portssvc.LedgerChangeNotifier
	metrics        *metrics.Metrics
	validate       *validator.Validate
	maxUploadBytes int64
}

// LedgerServiceOption is a functional option for configuring the ledger upload service
type LedgerServiceOption func(*ledgerUploadService)

// WithRoleAuthorizer adds the role authorizer dependency
func WithRoleAuthorizer(authorizer portssvc.RoleAuthorizer) LedgerServiceOption {
	return func(s *ledgerUploadService) {
		s.RoleAuthorizer = authorizer
	}
}

// WithChangeNotifier adds the downstream cache invalidation dependency
func WithChangeNotifier(notifier portssvc.LedgerChangeNotifier) LedgerServiceOption {
	return func(s *ledgerUploadService) {
		s.notifier = notifier
	}
}

// WithMetrics adds upload instrumentation
func WithMetrics(m *metrics.Metrics) LedgerServiceOption {
	return func(s *ledgerUploadService) {
		s.metrics = m
	}
}

// WithMaxUploadBytes overrides the upload size limit
func WithMaxUploadBytes(n int64) LedgerServiceOption {
	return func(s *ledgerUploadService) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// NewLedgerUploadService creates a new ledger upload service with the provided options
func NewLedgerUploadService(ledgerRepo portsrepo.LedgerRepositoryFacade, clientRepo portsrepo.ClientReader, parser portssvc.LedgerFileParser, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerUploadService{
		ledgerRepo:     ledgerRepo,
		clientRepo:     clientRepo,
		parser:         parser,
		validate:       validator.New(),
		maxUploadBytes: DefaultMaxUploadBytes,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure ledgerUploadService implements the LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerUploadService)(nil)

// AuthorizeUpload requires the manager role for preview and commit.
func (s *ledgerUploadService) AuthorizeUpload(ctx context.Context) error {
	return s.AuthorizeRole(ctx, domain.RoleManager)
}

func (s *ledgerUploadService) PreviewReupload(ctx context.Context, clientID string, file domain.UploadedFile) (result *dto.PreviewResult, err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveUpload(metrics.StagePreview, started, err) }()

	if err := s.AuthorizeUpload(ctx); err != nil {
		return nil, err
	}

	parsed, fileHash, err := s.parseUpload(ctx, clientID, file)
	if err != nil {
		return nil, err
	}
	s.metrics.AddRows(metrics.StagePreview, len(parsed.Rows), len(parsed.SkippedRows))

	result = &dto.PreviewResult{
		NewFileName:     uploadFileName(file.Name),
		NewRowCount:     len(parsed.Rows),
		NewAccountCount: parsed.AccountCount,
		NewDateFrom:     parsed.DateFrom,
		NewDateTo:       parsed.DateTo,
		SkippedRowCount: len(parsed.SkippedRows),
		SkippedRows:     dto.TruncateSkippedRows(parsed.SkippedRows),
		Changes:         []domain.AccountChange{},
	}

	current, err := s.ledgerRepo.FindCurrentUpload(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			result.IsFirstUpload = true
			s.LogInfo(ctx, "Previewed first ledger upload",
				slog.String("client_id", clientID),
				slog.Int("row_count", result.NewRowCount))
			return result, nil
		}
		s.LogError(ctx, err, "Failed to load current ledger upload", slog.String("client_id", clientID))
		return nil, err
	}

	oldAggregates, err := s.ledgerRepo.GetAccountAggregates(ctx, current.UploadID)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate current ledger", slog.String("client_id", clientID), slog.String("upload_id", current.UploadID))
		return nil, err
	}

	diff := accounting.DiffLedger(oldAggregates, parsed.Rows)

	uploadedAt := current.CreatedAt
	result.IsReupload = true
	result.PriorUploadID = current.UploadID
	result.PriorFileName = current.FileName
	result.PriorRowCount = current.RowCount
	result.PriorAccountCount = current.AccountCount
	result.PriorUploadedAt = &uploadedAt
	result.Changes = diff.Changes
	result.UnchangedCount = diff.UnchangedCount
	result.SameFileAsCurrent = current.FileHash == fileHash
	for _, change := range diff.Changes {
		switch change.ChangeType {
		case domain.ChangeAdded:
			result.AddedCount++
		case domain.ChangeRemoved:
			result.RemovedCount++
		case domain.ChangeModified:
			result.ModifiedCount++
		}
	}
	s.metrics.AddAccountChange(string(domain.ChangeAdded), result.AddedCount)
	s.metrics.AddAccountChange(string(domain.ChangeRemoved), result.RemovedCount)
	s.metrics.AddAccountChange(string(domain.ChangeModified), result.ModifiedCount)

	s.LogInfo(ctx, "Previewed ledger re-upload",
		slog.String("client_id", clientID),
		slog.String("prior_upload_id", current.UploadID),
		slog.Int("changed_accounts", len(diff.Changes)),
		slog.Int("unchanged_accounts", diff.UnchangedCount),
		slog.Bool("same_file", result.SameFileAsCurrent))
	return result, nil
}

func (s *ledgerUploadService) CommitUpload(ctx context.Context, clientID string, file domain.UploadedFile) (result *dto.CommitResult, err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveUpload(metrics.StageCommit, started, err) }()

	if err := s.AuthorizeUpload(ctx); err != nil {
		return nil, err
	}

	parsed, fileHash, err := s.parseUpload(ctx, clientID, file)
	if err != nil {
		return nil, err
	}
	s.metrics.AddRows(metrics.StageCommit, len(parsed.Rows), len(parsed.SkippedRows))

	var replacedUploadID *string
	current, err := s.ledgerRepo.FindCurrentUpload(ctx, clientID)
	switch {
	case err == nil:
		replacedUploadID = &current.UploadID
	case !errors.Is(err, apperrors.ErrNotFound):
		s.LogError(ctx, err, "Failed to load current ledger upload", slog.String("client_id", clientID))
		return nil, err
	}

	userID, ok := middleware.GetUserIDFromCtx(ctx)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}

	upload := domain.LedgerUpload{
		UploadID:     uuid.NewString(),
		ClientID:     clientID,
		FileName:     uploadFileName(file.Name),
		FileHash:     fileHash,
		RowCount:     len(parsed.Rows),
		AccountCount: parsed.AccountCount,
		DateFrom:     parsed.DateFrom,
		DateTo:       parsed.DateTo,
		AuditFields: domain.AuditFields{
			CreatedAt: time.Now().UTC(),
			CreatedBy: userID,
		},
	}
	if err := s.validate.Struct(upload); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	// The replace runs to completion even if the caller goes away.
	saved, err := s.ledgerRepo.ReplaceAll(context.WithoutCancel(ctx), clientID, upload, parsed.Rows)
	if err != nil {
		s.LogError(ctx, err, "Failed to replace ledger snapshot",
			slog.String("client_id", clientID),
			slog.String("upload_id", upload.UploadID),
			slog.Int("row_count", upload.RowCount))
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError("client " + clientID + " not found")
		}
		return nil, err
	}

	s.notifyChange(ctx, domain.LedgerChangeEvent{
		ClientID:   clientID,
		UploadID:   saved.UploadID,
		Kind:       domain.LedgerReplaced,
		RowCount:   saved.RowCount,
		OccurredAt: saved.CreatedAt,
	})

	s.LogInfo(ctx, "Ledger snapshot replaced",
		slog.String("client_id", clientID),
		slog.String("upload_id", saved.UploadID),
		slog.Int("row_count", saved.RowCount),
		slog.Int("account_count", saved.AccountCount),
		slog.Int("skipped_rows", len(parsed.SkippedRows)))

	return &dto.CommitResult{
		UploadID:         saved.UploadID,
		ClientID:         clientID,
		FileName:         saved.FileName,
		RowCount:         saved.RowCount,
		AccountCount:     saved.AccountCount,
		DateFrom:         saved.DateFrom,
		DateTo:           saved.DateTo,
		SkippedRowCount:  len(parsed.SkippedRows),
		SkippedRows:      dto.TruncateSkippedRows(parsed.SkippedRows),
		ReplacedUploadID: replacedUploadID,
	}, nil
}

func (s *ledgerUploadService) GetCurrentUpload(ctx context.Context, clientID string) (*domain.LedgerUpload, error) {
	if err := s.AuthorizeRole(ctx, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if strings.TrimSpace(clientID) == "" {
		return nil, apperrors.NewValidationError("clientID is required")
	}

	upload, err := s.ledgerRepo.FindCurrentUpload(ctx, clientID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load current ledger upload", slog.String("client_id", clientID))
		}
		return nil, err
	}
	return upload, nil
}

func (s *ledgerUploadService) ListLedgerTransactions(ctx context.Context, clientID string, params dto.ListLedgerTransactionsParams) (*dto.ListLedgerTransactionsResponse, error) {
	upload, err := s.GetCurrentUpload(ctx, clientID)
	if err != nil {
		return nil, err
	}

	txns, nextToken, err := s.ledgerRepo.ListTransactions(ctx, upload.UploadID, params.Account, params.Limit, params.NextToken)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list ledger transactions", slog.String("client_id", clientID), slog.String("upload_id", upload.UploadID))
		}
		return nil, err
	}

	return &dto.ListLedgerTransactionsResponse{
		UploadID:     upload.UploadID,
		Transactions: dto.ToLedgerTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

func (s *ledgerUploadService) DeleteCurrentUpload(ctx context.Context, clientID string) (err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveUpload(metrics.StageDelete, started, err) }()

	if err := s.AuthorizeRole(ctx, domain.RoleManager); err != nil {
		return err
	}
	if strings.TrimSpace(clientID) == "" {
		return apperrors.NewValidationError("clientID is required")
	}

	if err := s.ledgerRepo.DeleteCurrentUpload(context.WithoutCancel(ctx), clientID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete ledger snapshot", slog.String("client_id", clientID))
		}
		return err
	}

	s.notifyChange(ctx, domain.LedgerChangeEvent{
		ClientID:   clientID,
		Kind:       domain.LedgerDeleted,
		OccurredAt: time.Now().UTC(),
	})
	s.LogInfo(ctx, "Ledger snapshot deleted", slog.String("client_id", clientID))
	return nil
}

// parseUpload enforces the request preconditions and parses the export.
// It returns the parsed rows and the file fingerprint.
func (s *ledgerUploadService) parseUpload(ctx context.Context, clientID string, file domain.UploadedFile) (*domain.ParseResult, string, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, "", apperrors.NewValidationError("clientID is required")
	}
	if file.Size() == 0 {
		return nil, "", apperrors.NewValidationError("file is required")
	}
	if file.Size() > s.maxUploadBytes {
		return nil, "", apperrors.NewValidationError(fmt.Sprintf("file is %d bytes; the limit is %d MiB", file.Size(), s.maxUploadBytes>>20))
	}

	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.NewValidationError("client " + clientID + " not found")
		}
		s.LogError(ctx, err, "Failed to look up client", slog.String("client_id", clientID))
		return nil, "", err
	}
	if !client.IsActive {
		return nil, "", apperrors.NewValidationError("client " + clientID + " is inactive")
	}

	parsed, err := s.parser.Parse(file.Content, file.Name)
	if err != nil {
		s.LogInfo(ctx, "Rejected ledger export", slog.String("client_id", clientID), slog.String("file_name", file.Name), slog.String("reason", err.Error()))
		return nil, "", err
	}
	if len(parsed.Rows) == 0 {
		return nil, "", apperrors.NewFormatError("file contains no ledger transactions; " + glparser.ExpectedExportHint)
	}

	return parsed, utils.FileHash(file.Content), nil
}

// notifyChange is fire-and-forget: failures are logged and counted, never returned.
func (s *ledgerUploadService) notifyChange(ctx context.Context, event domain.LedgerChangeEvent) {
	if s.notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.notifier.NotifyLedgerChanged(notifyCtx, event); err != nil {
		s.metrics.IncNotifyFailure()
		s.LogError(ctx, err, "Failed to notify ledger change",
			slog.String("client_id", event.ClientID),
			slog.String("kind", string(event.Kind)))
	}
}

func uploadFileName(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "ledger-export"
	}
	return name
}
