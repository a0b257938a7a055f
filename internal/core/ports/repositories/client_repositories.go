package repositories

import (
	"context"

	"github.com/SscSPs/recon_workbench/internal/core/domain"
)

// ClientReader resolves the firm's clients. The clients table is owned by the practice
// management side of the product; this service only reads and locks it.
type ClientReader interface {
	// FindClientByID returns apperrors.ErrNotFound for unknown clients.
	FindClientByID(ctx context.Context, clientID string) (*domain.Client, error)
}

// ClientRepositoryFacade combines all client-related repository interfaces
type ClientRepositoryFacade interface {
	ClientReader
}
