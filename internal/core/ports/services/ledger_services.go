package services

import (
	"context"

	"github.com/SscSPs/recon_workbench/internal/core/domain"
	"github.com/SscSPs/recon_workbench/internal/dto"
)

// LedgerUploadSvc defines the re-upload workflow: a read-only preview and an atomic commit.
type LedgerUploadSvc interface {
	// AuthorizeUpload checks that the caller may preview or commit uploads. It needs no file,
	// so callers can reject a request before reading its body.
	AuthorizeUpload(ctx context.Context) error

	// PreviewReupload parses file and reports what committing it would change. No mutation.
	PreviewReupload(ctx context.Context, clientID string, file domain.UploadedFile) (*dto.PreviewResult, error)

	// CommitUpload parses file and atomically replaces the client's ledger snapshot with it.
	CommitUpload(ctx context.Context, clientID string, file domain.UploadedFile) (*dto.CommitResult, error)
}

// LedgerReaderSvc defines read operations over the committed snapshot.
type LedgerReaderSvc interface {
	// GetCurrentUpload returns the client's current upload or apperrors.ErrNotFound.
	GetCurrentUpload(ctx context.Context, clientID string) (*domain.LedgerUpload, error)

	// ListLedgerTransactions returns a page of the current upload's transactions.
	ListLedgerTransactions(ctx context.Context, clientID string, params dto.ListLedgerTransactionsParams) (*dto.ListLedgerTransactionsResponse, error)
}

// LedgerMaintenanceSvc defines destructive maintenance operations.
type LedgerMaintenanceSvc interface {
	// DeleteCurrentUpload removes the client's snapshot.
	DeleteCurrentUpload(ctx context.Context, clientID string) error
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerUploadSvc
	LedgerReaderSvc
	LedgerMaintenanceSvc
}

// LedgerFileParser turns an uploaded export into typed rows.
type LedgerFileParser interface {
	Parse(content []byte, fileName string) (*domain.ParseResult, error)
}

// RoleAuthorizer resolves the current actor and fails with apperrors.ErrForbidden (or
// apperrors.ErrUnauthorized when there is no actor) if their role is below minimum.
type RoleAuthorizer interface {
	RequireRole(ctx context.Context, minimum domain.UserRole) error
}

// LedgerChangeNotifier signals downstream consumers that a client's ledger changed.
// Delivery is best effort.
type LedgerChangeNotifier interface {
	NotifyLedgerChanged(ctx context.Context, event domain.LedgerChangeEvent) error
}
