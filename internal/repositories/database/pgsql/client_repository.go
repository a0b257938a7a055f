package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/recon_workbench/internal/apperrors"
	"github.com/SscSPs/recon_workbench/internal/core/domain"
	portsrepo "github.com/SscSPs/recon_workbench/internal/core/ports/repositories"
	"github.com/SscSPs/recon_workbench/internal/models"
	"github.com/SscSPs/recon_workbench/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxClientRepository struct {
	BaseRepository
}

func newPgxClientRepository(pool *pgxpool.Pool) portsrepo.ClientRepositoryFacade {
	return &PgxClientRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ClientRepositoryFacade = (*PgxClientRepository)(nil)

// FindClientByID retrieves a client by its ID.
func (r *PgxClientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	query := `SELECT client_id, name, is_active FROM clients WHERE client_id = $1;`

	var m models.Client
	err := r.Pool.QueryRow(ctx, query, clientID).Scan(&m.ClientID, &m.Name, &m.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("client " + clientID)
		}
		return nil, apperrors.NewAppError(500, "failed to find client "+clientID, err)
	}

	client := mapping.ToDomainClient(m)
	return &client, nil
}
