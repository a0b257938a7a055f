package pgsql

import (
	portsrepo "github.com/SscSPs/recon_workbench/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the Postgres-backed repositories. insertBatchSize bounds the
// number of ledger rows sent per batch inside a replace.
func NewRepositoryProvider(dbPool *pgxpool.Pool, insertBatchSize int) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo: newPgxLedgerRepository(dbPool, insertBatchSize),
		ClientRepo: newPgxClientRepository(dbPool),
	}
}
