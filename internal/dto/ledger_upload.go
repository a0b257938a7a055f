package dto

import (
	"time"

	"github.com/SscSPs/recon_workbench/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MaxSkippedRowsInResponse bounds how many skipped-row details a result carries.
// SkippedRowCount always reports the full number.
const MaxSkippedRowsInResponse = 50

// PreviewResult is the dry-run outcome of uploading a GL export for a client.
// Exactly one of IsFirstUpload and IsReupload is set.
type PreviewResult struct {
	IsFirstUpload bool `json:"isFirstUpload"`
	IsReupload    bool `json:"isReupload"`

	PriorUploadID     string     `json:"priorUploadID,omitempty"`
	PriorFileName     string     `json:"priorFileName,omitempty"`
	PriorRowCount     int        `json:"priorRowCount,omitempty"`
	PriorAccountCount int        `json:"priorAccountCount,omitempty"`
	PriorUploadedAt   *time.Time `json:"priorUploadedAt,omitempty"`

	NewFileName     string     `json:"newFileName"`
	NewRowCount     int        `json:"newRowCount"`
	NewAccountCount int        `json:"newAccountCount"`
	NewDateFrom     *time.Time `json:"newDateFrom"`
	NewDateTo       *time.Time `json:"newDateTo"`

	// Empty for first uploads.
	Changes        []domain.AccountChange `json:"changes"`
	UnchangedCount int                    `json:"unchangedCount"`
	AddedCount     int                    `json:"addedCount"`
	RemovedCount   int                    `json:"removedCount"`
	ModifiedCount  int                    `json:"modifiedCount"`

	SkippedRowCount   int                 `json:"skippedRowCount"`
	SkippedRows       []domain.SkippedRow `json:"skippedRows,omitempty"`
	SameFileAsCurrent bool                `json:"sameFileAsCurrent"`
}

// CommitResult describes the ledger snapshot that replaced the client's previous one.
type CommitResult struct {
	UploadID         string              `json:"uploadID"`
	ClientID         string              `json:"clientID"`
	FileName         string              `json:"fileName"`
	RowCount         int                 `json:"rowCount"`
	AccountCount     int                 `json:"accountCount"`
	DateFrom         *time.Time          `json:"dateFrom"`
	DateTo           *time.Time          `json:"dateTo"`
	SkippedRowCount  int                 `json:"skippedRowCount"`
	SkippedRows      []domain.SkippedRow `json:"skippedRows,omitempty"`
	ReplacedUploadID *string             `json:"replacedUploadID,omitempty"`
}

// LedgerUploadResponse defines the data returned for a client's current upload.
type LedgerUploadResponse struct {
	UploadID     string     `json:"uploadID"`
	ClientID     string     `json:"clientID"`
	FileName     string     `json:"fileName"`
	FileHash     string     `json:"fileHash"`
	RowCount     int        `json:"rowCount"`
	AccountCount int        `json:"accountCount"`
	DateFrom     *time.Time `json:"dateFrom"`
	DateTo       *time.Time `json:"dateTo"`
	CreatedAt    time.Time  `json:"createdAt"`
	CreatedBy    string     `json:"createdBy"`
}

// LedgerTransactionResponse defines the data returned for a stored ledger line.
type LedgerTransactionResponse struct {
	TransactionID   string          `json:"transactionID"`
	LineNumber      int             `json:"lineNumber"`
	AccountCode     string          `json:"accountCode,omitempty"`
	AccountName     string          `json:"accountName"`
	TransactionDate string          `json:"transactionDate"` // YYYY-MM-DD
	Source          string          `json:"source,omitempty"`
	Description     string          `json:"description,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	Contact         string          `json:"contact,omitempty"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
}

// ListLedgerTransactionsParams defines query parameters for listing stored ledger lines.
type ListLedgerTransactionsParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=500"`
	NextToken *string `form:"nextToken"`
	Account   *string `form:"account"`
}

// ListLedgerTransactionsResponse wraps a page of ledger lines.
type ListLedgerTransactionsResponse struct {
	UploadID     string                      `json:"uploadID"`
	Transactions []LedgerTransactionResponse `json:"transactions"`
	NextToken    *string                     `json:"nextToken,omitempty"`
}

// ToLedgerUploadResponse converts a domain.LedgerUpload to LedgerUploadResponse DTO.
func ToLedgerUploadResponse(u *domain.LedgerUpload) LedgerUploadResponse {
	return LedgerUploadResponse{
		UploadID:     u.UploadID,
		ClientID:     u.ClientID,
		FileName:     u.FileName,
		FileHash:     u.FileHash,
		RowCount:     u.RowCount,
		AccountCount: u.AccountCount,
		DateFrom:     u.DateFrom,
		DateTo:       u.DateTo,
		CreatedAt:    u.CreatedAt,
		CreatedBy:    u.CreatedBy,
	}
}

// ToLedgerTransactionResponses converts stored ledger lines to response DTOs.
func ToLedgerTransactionResponses(txns []domain.LedgerTransaction) []LedgerTransactionResponse {
	responses := make([]LedgerTransactionResponse, len(txns))
	for i, t := range txns {
		responses[i] = LedgerTransactionResponse{
			TransactionID:   t.TransactionID,
			LineNumber:      t.LineNumber,
			AccountCode:     t.AccountCode,
			AccountName:     t.AccountName,
			TransactionDate: t.TransactionDate.Format("2006-01-02"),
			Source:          t.Source,
			Description:     t.Description,
			Reference:       t.Reference,
			Contact:         t.Contact,
			Debit:           t.Debit,
			Credit:          t.Credit,
		}
	}
	return responses
}

// TruncateSkippedRows caps skipped-row details at MaxSkippedRowsInResponse.
func TruncateSkippedRows(rows []domain.SkippedRow) []domain.SkippedRow {
	if len(rows) > MaxSkippedRowsInResponse {
		return rows[:MaxSkippedRowsInResponse]
	}
	return rows
}
