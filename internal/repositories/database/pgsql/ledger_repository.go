package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/SscSPs/recon_workbench/internal/apperrors"
	"github.com/SscSPs/recon_workbench/internal/core/domain"
	portsrepo "github.com/SscSPs/recon_workbench/internal/core/ports/repositories"
	"github.com/SscSPs/recon_workbench/internal/models"
	"github.com/SscSPs/recon_workbench/internal/utils/mapping"
	"github.com/SscSPs/recon_workbench/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	defaultInsertBatchSize = 500
	maxReplaceAttempts     = 3
	replaceRetryBackoff    = 50 * time.Millisecond

	defaultTransactionPageSize = 50
	maxTransactionPageSize     = 500
)

type PgxLedgerRepository struct {
	BaseRepository
	insertBatchSize int

	// beforeChunk runs before each transaction chunk is sent inside a replace.
	// A non-nil error aborts the replace. Nil outside tests.
	beforeChunk func(chunk int) error
}

// newPgxLedgerRepository creates a new repository for ledger uploads and their transactions.
func newPgxLedgerRepository(pool *pgxpool.Pool, insertBatchSize int) portsrepo.LedgerRepositoryWithTx {
	if insertBatchSize <= 0 {
		insertBatchSize = defaultInsertBatchSize
	}
	return &PgxLedgerRepository{
		BaseRepository:  BaseRepository{Pool: pool},
		insertBatchSize: insertBatchSize,
	}
}

var _ portsrepo.LedgerRepositoryWithTx = (*PgxLedgerRepository)(nil)

// FindCurrentUpload retrieves the client's current upload.
func (r *PgxLedgerRepository) FindCurrentUpload(ctx context.Context, clientID string) (*domain.LedgerUpload, error) {
	query := `
		SELECT upload_id, client_id, file_name, file_hash, row_count, account_count,
		       date_from, date_to, created_at, created_by
		FROM ledger_uploads
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT 1;
	`
	var m models.LedgerUpload
	err := r.Pool.QueryRow(ctx, query, clientID).Scan(
		&m.UploadID,
		&m.ClientID,
		&m.FileName,
		&m.FileHash,
		&m.RowCount,
		&m.AccountCount,
		&m.DateFrom,
		&m.DateTo,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find current upload for client "+clientID, err)
	}

	upload := mapping.ToDomainLedgerUpload(m)
	return &upload, nil
}

// GetAccountAggregates rolls an upload's transactions up per account name in the database.
func (r *PgxLedgerRepository) GetAccountAggregates(ctx context.Context, uploadID string) (map[string]domain.AccountAggregate, error) {
	query := `
		SELECT account_name, COUNT(*), COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
		FROM ledger_transactions
		WHERE upload_id = $1
		GROUP BY account_name;
	`
	rows, err := r.Pool.Query(ctx, query, uploadID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to aggregate transactions for upload "+uploadID, err)
	}
	defer rows.Close()

	aggregates := make(map[string]domain.AccountAggregate)
	for rows.Next() {
		var agg domain.AccountAggregate
		var count int64
		var totalDebit, totalCredit decimal.Decimal
		if err := rows.Scan(&agg.AccountName, &count, &totalDebit, &totalCredit); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan aggregate row for upload "+uploadID, err)
		}
		agg.TransactionCount = int(count)
		agg.TotalDebit = totalDebit
		agg.TotalCredit = totalCredit
		aggregates[agg.AccountName] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating aggregate rows for upload "+uploadID, err)
	}

	return aggregates, nil
}

// ReplaceAll supersedes the client's snapshot inside one transaction. Transient failures
// restart the whole transaction; partial inserts are never retried on their own.
func (r *PgxLedgerRepository) ReplaceAll(ctx context.Context, clientID string, upload domain.LedgerUpload, rows []domain.LedgerTransactionRow) (*domain.LedgerUpload, error) {
	upload.ClientID = clientID

	var err error
	for attempt := 1; attempt <= maxReplaceAttempts; attempt++ {
		err = r.replaceOnce(ctx, clientID, upload, rows)
		if err == nil {
			return &upload, nil
		}
		if !isTransientTxError(err) || attempt == maxReplaceAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, apperrors.NewAppError(500, "replace ledger for client "+clientID+" cancelled", ctx.Err())
		case <-time.After(time.Duration(attempt) * replaceRetryBackoff):
		}
	}
	return nil, err
}

func (r *PgxLedgerRepository) replaceOnce(ctx context.Context, clientID string, upload domain.LedgerUpload, rows []domain.LedgerTransactionRow) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := lockClient(ctx, tx, clientID); err != nil {
		return err
	}

	// Cascade removes transactions of prior uploads; the explicit delete also clears any
	// transactions left behind without an upload row.
	if _, err := tx.Exec(ctx, `DELETE FROM ledger_transactions WHERE client_id = $1;`, clientID); err != nil {
		return apperrors.NewAppError(500, "failed to delete prior transactions for client "+clientID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM ledger_uploads WHERE client_id = $1;`, clientID); err != nil {
		return apperrors.NewAppError(500, "failed to delete prior upload for client "+clientID, err)
	}

	m := mapping.ToModelLedgerUpload(upload)
	uploadQuery := `
		INSERT INTO ledger_uploads (
			upload_id, client_id, file_name, file_hash, row_count, account_count,
			date_from, date_to, created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, uploadQuery,
		m.UploadID,
		m.ClientID,
		m.FileName,
		m.FileHash,
		m.RowCount,
		m.AccountCount,
		m.DateFrom,
		m.DateTo,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert upload "+m.UploadID, err)
	}

	txnQuery := `
		INSERT INTO ledger_transactions (
			transaction_id, upload_id, client_id, line_number, account_code, account_name,
			transaction_date, source, description, reference, contact, debit, credit
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	for chunk, start := 0, 0; start < len(rows); chunk, start = chunk+1, start+r.insertBatchSize {
		end := start + r.insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}

		if r.beforeChunk != nil {
			if err := r.beforeChunk(chunk); err != nil {
				return apperrors.NewAppError(500, "transaction chunk "+strconv.Itoa(chunk)+" aborted", err)
			}
		}

		batch := &pgx.Batch{}
		for _, row := range rows[start:end] {
			t := mapping.ToModelLedgerTransaction(uuid.NewString(), m.UploadID, clientID, row)
			batch.Queue(txnQuery,
				t.TransactionID,
				t.UploadID,
				t.ClientID,
				t.LineNumber,
				t.AccountCode,
				t.AccountName,
				t.TransactionDate,
				t.Source,
				t.Description,
				t.Reference,
				t.Contact,
				t.Debit,
				t.Credit,
			)
		}

		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to insert transaction chunk "+strconv.Itoa(chunk)+" for upload "+m.UploadID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// DeleteCurrentUpload removes the client's snapshot under the same client lock ReplaceAll uses.
func (r *PgxLedgerRepository) DeleteCurrentUpload(ctx context.Context, clientID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := lockClient(ctx, tx, clientID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM ledger_transactions WHERE client_id = $1;`, clientID); err != nil {
		return apperrors.NewAppError(500, "failed to delete transactions for client "+clientID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM ledger_uploads WHERE client_id = $1;`, clientID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete upload for client "+clientID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("ledger upload for client " + clientID)
	}

	return r.Commit(ctx, tx)
}

// ListTransactions retrieves a page of an upload's transactions using token-based pagination.
// It returns the transactions, a token for the next page, and an error.
func (r *PgxLedgerRepository) ListTransactions(ctx context.Context, uploadID string, accountName *string, limit int, nextToken *string) ([]domain.LedgerTransaction, *string, error) {
	if limit <= 0 {
		limit = defaultTransactionPageSize
	}
	if limit > maxTransactionPageSize {
		limit = maxTransactionPageSize
	}
	// One extra row tells us whether another page exists.
	fetchLimit := limit + 1

	query := `
		SELECT transaction_id, upload_id, client_id, line_number, account_code, account_name,
		       transaction_date, source, description, reference, contact, debit, credit
		FROM ledger_transactions
		WHERE upload_id = $1
	`
	args := []interface{}{uploadID}

	if accountName != nil && *accountName != "" {
		args = append(args, *accountName)
		query += " AND account_name = $" + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastLine, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewValidationError("invalid nextToken: " + decodeErr.Error())
		}
		args = append(args, lastDate, lastLine)
		query += " AND (transaction_date, line_number) > ($" + strconv.Itoa(len(args)-1) + ", $" + strconv.Itoa(len(args)) + ")"
	}

	args = append(args, fetchLimit)
	query += " ORDER BY transaction_date ASC, line_number ASC LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions for upload "+uploadID, err)
	}
	defer rows.Close()

	results := make([]models.LedgerTransaction, 0, fetchLimit)
	for rows.Next() {
		var t models.LedgerTransaction
		err := rows.Scan(
			&t.TransactionID,
			&t.UploadID,
			&t.ClientID,
			&t.LineNumber,
			&t.AccountCode,
			&t.AccountName,
			&t.TransactionDate,
			&t.Source,
			&t.Description,
			&t.Reference,
			&t.Contact,
			&t.Debit,
			&t.Credit,
		)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row for upload "+uploadID, err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows for upload "+uploadID, err)
	}

	var nextTokenVal *string
	if len(results) > limit {
		last := results[limit-1]
		token := pagination.EncodeToken(last.TransactionDate, last.LineNumber)
		nextTokenVal = &token
		results = results[:limit]
	}

	return mapping.ToDomainLedgerTransactionSlice(results), nextTokenVal, nil
}

// lockClient takes the per-client row lock that serializes snapshot writes, including the
// first upload for a client.
func lockClient(ctx context.Context, tx pgx.Tx, clientID string) error {
	var locked string
	err := tx.QueryRow(ctx, `SELECT client_id FROM clients WHERE client_id = $1 FOR UPDATE;`, clientID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("client " + clientID)
		}
		return apperrors.NewAppError(500, "failed to lock client "+clientID, err)
	}
	return nil
}
