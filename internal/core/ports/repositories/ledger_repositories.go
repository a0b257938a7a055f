package repositories

import (
	"context"

	"github.com/SscSPs/recon_workbench/internal/core/domain"
)

// LedgerReader defines read operations over a client's current ledger snapshot.
type LedgerReader interface {
	// FindCurrentUpload returns the client's current upload, or apperrors.ErrNotFound when none exists.
	FindCurrentUpload(ctx context.Context, clientID string) (*domain.LedgerUpload, error)

	// GetAccountAggregates returns per-account counts and debit/credit totals for an upload,
	// keyed by account name.
	GetAccountAggregates(ctx context.Context, uploadID string) (map[string]domain.AccountAggregate, error)

	// ListTransactions returns a page of an upload's transactions ordered by transaction date
	// then line number, optionally filtered to one account name.
	ListTransactions(ctx context.Context, uploadID string, accountName *string, limit int, nextToken *string) ([]domain.LedgerTransaction, *string, error)
}

// LedgerWriter defines write operations on the ledger snapshot. Implementations are the only
// writers of the ledger tables.
type LedgerWriter interface {
	// ReplaceAll atomically supersedes the client's current upload and transactions with
	// upload and rows. Readers observe either the old snapshot or the new one, never a mix.
	ReplaceAll(ctx context.Context, clientID string, upload domain.LedgerUpload, rows []domain.LedgerTransactionRow) (*domain.LedgerUpload, error)

	// DeleteCurrentUpload removes the client's upload and its transactions.
	// Returns apperrors.ErrNotFound when the client has no upload.
	DeleteCurrentUpload(ctx context.Context, clientID string) error
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}

// LedgerRepositoryWithTx extends LedgerRepositoryFacade with transaction capabilities
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	TransactionManager
}
