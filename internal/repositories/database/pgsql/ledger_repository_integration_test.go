//go:build integration

package pgsql

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/recon_workbench/internal/apperrors"
	"github.com/SscSPs/recon_workbench/internal/core/domain"
	"github.com/SscSPs/recon_workbench/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	url := os.Getenv("PGSQL_TEST_URL")
	if url == "" {
		fmt.Println("PGSQL_TEST_URL not set, skipping ledger repository integration tests")
		os.Exit(0)
	}

	if _, err := database.RunMigrations(url, "file://../../../../migrations"); err != nil {
		panic("failed to migrate test database: " + err.Error())
	}

	var err error
	testPool, err = database.NewPgxPool(context.Background(), url, true)
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}

	code := m.Run()
	testPool.Close()
	os.Exit(code)
}

func setupTest(t *testing.T, batchSize int) (*PgxLedgerRepository, context.Context, string) {
	ctx := context.Background()
	_, err := testPool.Exec(ctx, `TRUNCATE ledger_transactions, ledger_uploads;`)
	require.NoError(t, err)

	clientID := "client-" + uuid.NewString()[:8]
	_, err = testPool.Exec(ctx, `INSERT INTO clients (client_id, name) VALUES ($1, $2);`, clientID, "Test Client "+clientID)
	require.NoError(t, err)

	repo := newPgxLedgerRepository(testPool, batchSize).(*PgxLedgerRepository)
	return repo, ctx, clientID
}

func buildRows(n int, account string, debit string) []domain.LedgerTransactionRow {
	rows := make([]domain.LedgerTransactionRow, n)
	for i := range rows {
		rows[i] = domain.LedgerTransactionRow{
			LineNumber:      i + 2,
			AccountName:     account,
			TransactionDate: time.Date(2024, 1, 1+i%28, 0, 0, 0, 0, time.UTC),
			Description:     "line",
			Debit:           decimal.RequireFromString(debit),
			Credit:          decimal.Zero,
		}
	}
	return rows
}

func buildUpload(fileName string, rowCount int) domain.LedgerUpload {
	return domain.LedgerUpload{
		UploadID:     uuid.NewString(),
		FileName:     fileName,
		FileHash:     fmt.Sprintf("%064x", rowCount),
		RowCount:     rowCount,
		AccountCount: 1,
		AuditFields:  domain.AuditFields{CreatedAt: time.Now().UTC(), CreatedBy: "user-1"},
	}
}

func countTransactions(t *testing.T, ctx context.Context, clientID string) int {
	var n int
	require.NoError(t, testPool.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_transactions WHERE client_id = $1;`, clientID).Scan(&n))
	return n
}

func TestLedgerRepository_FindCurrentUpload_NoneIsNotFound(t *testing.T) {
	repo, ctx, clientID := setupTest(t, 0)

	_, err := repo.FindCurrentUpload(ctx, clientID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLedgerRepository_ReplaceAll_SupersedesPriorSnapshot(t *testing.T) {
	repo, ctx, clientID := setupTest(t, 3)

	first := buildUpload("jan.xlsx", 7)
	_, err := repo.ReplaceAll(ctx, clientID, first, buildRows(7, "Bank", "10.00"))
	require.NoError(t, err)

	second := buildUpload("feb.xlsx", 4)
	saved, err := repo.ReplaceAll(ctx, clientID, second, buildRows(4, "Sales", "2.50"))
	require.NoError(t, err)
	assert.Equal(t, clientID, saved.ClientID)

	current, err := repo.FindCurrentUpload(ctx, clientID)
	require.NoError(t, err)
	assert.Equal(t, second.UploadID, current.UploadID)
	assert.Equal(t, "feb.xlsx", current.FileName)
	assert.Equal(t, 4, countTransactions(t, ctx, clientID))

	aggregates, err := repo.GetAccountAggregates(ctx, current.UploadID)
	require.NoError(t, err)
	require.Len(t, aggregates, 1)
	assert.Equal(t, 4, aggregates["Sales"].TransactionCount)
	assert.True(t, aggregates["Sales"].TotalDebit.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, aggregates["Sales"].TotalCredit.IsZero())
}

func TestLedgerRepository_ReplaceAll_FailedChunkLeavesPriorSnapshot(t *testing.T) {
	repo, ctx, clientID := setupTest(t, 2)

	prior := buildUpload("prior.csv", 5)
	_, err := repo.ReplaceAll(ctx, clientID, prior, buildRows(5, "Bank", "1.00"))
	require.NoError(t, err)

	injected := errors.New("connection lost")
	repo.beforeChunk = func(chunk int) error {
		if chunk == 2 {
			return injected
		}
		return nil
	}

	_, err = repo.ReplaceAll(ctx, clientID, buildUpload("new.csv", 9), buildRows(9, "Wages", "3.00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, injected)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)

	current, err := repo.FindCurrentUpload(ctx, clientID)
	require.NoError(t, err)
	assert.Equal(t, prior.UploadID, current.UploadID)
	assert.Equal(t, 5, countTransactions(t, ctx, clientID))
}

func TestLedgerRepository_ReplaceAll_RetriesWholeTransactionOnSerializationFailure(t *testing.T) {
	repo, ctx, clientID := setupTest(t, 2)

	prior := buildUpload("prior.csv", 3)
	_, err := repo.ReplaceAll(ctx, clientID, prior, buildRows(3, "Bank", "1.00"))
	require.NoError(t, err)

	calls := 0
	repo.beforeChunk = func(chunk int) error {
		calls++
		if calls == 2 {
			return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
		}
		return nil
	}

	upload := buildUpload("new.csv", 7)
	_, err = repo.ReplaceAll(ctx, clientID, upload, buildRows(7, "Wages", "3.00"))
	require.NoError(t, err)
	assert.Greater(t, calls, 4, "the whole transaction runs again after the failed chunk")

	current, err := repo.FindCurrentUpload(ctx, clientID)
	require.NoError(t, err)
	assert.Equal(t, upload.UploadID, current.UploadID)
	assert.Equal(t, 7, countTransactions(t, ctx, clientID))

	var distinctLines int
	require.NoError(t, testPool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT line_number) FROM ledger_transactions WHERE upload_id = $1;`, upload.UploadID).Scan(&distinctLines))
	assert.Equal(t, 7, distinctLines)
}

func TestLedgerRepository_ReplaceAll_StoresLongTextAndExactAmounts(t *testing.T) {
	repo, ctx, clientID := setupTest(t, 0)

	rows := buildRows(2, strings.Repeat("Long Account ", 30), "0.000001")
	rows[0].Reference = strings.Repeat("R", 300)
	rows[0].AccountCode = strings.Repeat("9", 80)
	rows[1].Debit = decimal.RequireFromString("1234567890123456789.123456")

	upload := buildUpload(strings.Repeat("f", 300)+".csv", len(rows))
	_, err := repo.ReplaceAll(ctx, clientID, upload, rows)
	require.NoError(t, err)

	stored, _, err := repo.ListTransactions(ctx, upload.UploadID, nil, 10, nil)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, rows[0].Reference, stored[0].Reference)
	assert.Equal(t, rows[0].AccountCode, stored[0].AccountCode)
	assert.True(t, stored[0].Debit.Equal(decimal.RequireFromString("0.000001")), stored[0].Debit.String())
	assert.True(t, stored[1].Debit.Equal(rows[1].Debit), stored[1].Debit.String())
}

func TestLedgerRepository_ReplaceAll_UnknownClient(t *testing.T) {
	repo, ctx, _ := setupTest(t, 0)

	_, err := repo.ReplaceAll(ctx, "missing-client", buildUpload("x.csv", 1), buildRows(1, "Bank", "1.00"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLedgerRepository_ListTransactions_Paginates(t *testing.T) {
	repo, ctx, clientID := setupTest(t, 0)

	rows := append(buildRows(3, "Bank", "1.00"), buildRows(2, "Sales", "4.00")...)
	for i := range rows {
		rows[i].LineNumber = i + 2
	}
	upload := buildUpload("ledger.csv", len(rows))
	upload.AccountCount = 2
	_, err := repo.ReplaceAll(ctx, clientID, upload, rows)
	require.NoError(t, err)

	page1, next, err := repo.ListTransactions(ctx, upload.UploadID, nil, 2, nil)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, next)

	page2, next, err := repo.ListTransactions(ctx, upload.UploadID, nil, 2, next)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.NotNil(t, next)

	page3, next, err := repo.ListTransactions(ctx, upload.UploadID, nil, 2, next)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
	assert.Nil(t, next)

	seen := map[string]struct{}{}
	for _, txn := range append(append(page1, page2...), page3...) {
		seen[txn.TransactionID] = struct{}{}
	}
	assert.Len(t, seen, 5)

	account := "Sales"
	sales, _, err := repo.ListTransactions(ctx, upload.UploadID, &account, 10, nil)
	require.NoError(t, err)
	assert.Len(t, sales, 2)

	bad := "not-a-token"
	_, _, err = repo.ListTransactions(ctx, upload.UploadID, nil, 2, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLedgerRepository_DeleteCurrentUpload(t *testing.T) {
	repo, ctx, clientID := setupTest(t, 0)

	assert.ErrorIs(t, repo.DeleteCurrentUpload(ctx, clientID), apperrors.ErrNotFound)

	_, err := repo.ReplaceAll(ctx, clientID, buildUpload("x.csv", 3), buildRows(3, "Bank", "1.00"))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCurrentUpload(ctx, clientID))
	_, err = repo.FindCurrentUpload(ctx, clientID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, countTransactions(t, ctx, clientID))
}
