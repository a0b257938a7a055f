package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerTransactionRow is one typed transaction line parsed from a GL export.
type LedgerTransactionRow struct {
	LineNumber      int             `json:"lineNumber"` // 1-based row in the source sheet
	AccountCode     string          `json:"accountCode,omitempty"`
	AccountName     string          `json:"accountName"` // Grouping key for diffs (Not Null)
	TransactionDate time.Time       `json:"transactionDate"`
	Source          string          `json:"source,omitempty"`
	Description     string          `json:"description,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	Contact         string          `json:"contact,omitempty"`
	Debit           decimal.Decimal `json:"debit"`  // Non-negative
	Credit          decimal.Decimal `json:"credit"` // Non-negative
}

// NetAmount returns debit minus credit.
func (r LedgerTransactionRow) NetAmount() decimal.Decimal {
	return r.Debit.Sub(r.Credit)
}

// LedgerAccountRef is a distinct account observed in an export.
type LedgerAccountRef struct {
	AccountCode string `json:"accountCode,omitempty"`
	AccountName string `json:"accountName"`
}

// SkippedRow records a data row the parser could not map to a LedgerTransactionRow.
type SkippedRow struct {
	LineNumber int    `json:"lineNumber"`
	Reason     string `json:"reason"`
}

// ParseResult is the typed output of parsing a GL export.
type ParseResult struct {
	Rows         []LedgerTransactionRow
	AccountCount int
	DateFrom     *time.Time
	DateTo       *time.Time
	Accounts     []LedgerAccountRef
	SkippedRows  []SkippedRow
}

// LedgerUpload is the single current ledger dataset stored for a client.
type LedgerUpload struct {
	UploadID     string     `json:"uploadID" validate:"required"`
	ClientID     string     `json:"clientID" validate:"required"`
	FileName     string     `json:"fileName" validate:"required"`
	FileHash     string     `json:"fileHash" validate:"required,hexadecimal,len=64"`
	RowCount     int        `json:"rowCount" validate:"gte=1"`
	AccountCount int        `json:"accountCount" validate:"gte=1,ltefield=RowCount"`
	DateFrom     *time.Time `json:"dateFrom"`
	DateTo       *time.Time `json:"dateTo"`
	AuditFields  `validate:"-"`
}

// LedgerTransaction is a persisted ledger line owned by a LedgerUpload.
type LedgerTransaction struct {
	TransactionID string `json:"transactionID"`
	UploadID      string `json:"uploadID"`
	ClientID      string `json:"clientID"`
	LedgerTransactionRow
}

// AccountAggregate is the per-account rollup used for diffing.
type AccountAggregate struct {
	AccountName      string          `json:"accountName"`
	TransactionCount int             `json:"transactionCount"`
	TotalDebit       decimal.Decimal `json:"totalDebit"`
	TotalCredit      decimal.Decimal `json:"totalCredit"`
}

// NetTotal returns total debit minus total credit.
func (a AccountAggregate) NetTotal() decimal.Decimal {
	return a.TotalDebit.Sub(a.TotalCredit)
}

// ChangeType classifies how an account differs between two ledger snapshots.
type ChangeType string

const (
	ChangeAdded     ChangeType = "added"
	ChangeRemoved   ChangeType = "removed"
	ChangeModified  ChangeType = "modified"
	ChangeUnchanged ChangeType = "unchanged"
)

// AccountChange describes one account's delta between the stored and the new ledger.
type AccountChange struct {
	AccountName         string          `json:"accountName"`
	ChangeType          ChangeType      `json:"changeType"`
	OldTransactionCount int             `json:"oldTransactionCount"`
	NewTransactionCount int             `json:"newTransactionCount"`
	OldNetTotal         decimal.Decimal `json:"oldNetTotal"`
	NewNetTotal         decimal.Decimal `json:"newNetTotal"`
}

// LedgerDiff is the change-set between two ledger snapshots.
type LedgerDiff struct {
	Changes        []AccountChange `json:"changes"`
	UnchangedCount int             `json:"unchangedCount"`
}

// LedgerChangeKind describes what happened to a client's ledger snapshot.
type LedgerChangeKind string

const (
	LedgerReplaced LedgerChangeKind = "replaced"
	LedgerDeleted  LedgerChangeKind = "deleted"
)

// LedgerChangeEvent is published after a snapshot is replaced or removed so downstream
// caches (trial balance, reconciliation views) can be invalidated.
type LedgerChangeEvent struct {
	ClientID   string           `json:"clientID"`
	UploadID   string           `json:"uploadID,omitempty"`
	Kind       LedgerChangeKind `json:"kind"`
	RowCount   int              `json:"rowCount"`
	OccurredAt time.Time        `json:"occurredAt"`
}
