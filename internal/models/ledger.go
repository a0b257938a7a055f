package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerUpload is the ledger_uploads row. One row per client at most.
type LedgerUpload struct {
	UploadID     string     `db:"upload_id"`
	ClientID     string     `db:"client_id"`
	FileName     string     `db:"file_name"`
	FileHash     string     `db:"file_hash"`
	RowCount     int        `db:"row_count"`
	AccountCount int        `db:"account_count"`
	DateFrom     *time.Time `db:"date_from"`
	DateTo       *time.Time `db:"date_to"`
	AuditFields
}

// LedgerTransaction is the ledger_transactions row.
// Debit and credit are NUMERIC columns; never binary floats.
type LedgerTransaction struct {
	TransactionID   string          `db:"transaction_id"`
	UploadID        string          `db:"upload_id"`
	ClientID        string          `db:"client_id"`
	LineNumber      int             `db:"line_number"`
	AccountCode     *string         `db:"account_code"`
	AccountName     string          `db:"account_name"`
	TransactionDate time.Time       `db:"transaction_date"`
	Source          *string         `db:"source"`
	Description     *string         `db:"description"`
	Reference       *string         `db:"reference"`
	Contact         *string         `db:"contact"`
	Debit           decimal.Decimal `db:"debit"`
	Credit          decimal.Decimal `db:"credit"`
}

// Client is the subset of the clients row this service reads.
type Client struct {
	ClientID string `db:"client_id"`
	Name     string `db:"name"`
	IsActive bool   `db:"is_active"`
}
