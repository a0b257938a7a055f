package mapping

import (
	"github.com/SscSPs/recon_workbench/internal/core/domain"
	"github.com/SscSPs/recon_workbench/internal/models"
)

// ToModelLedgerUpload converts a domain LedgerUpload to a model LedgerUpload
func ToModelLedgerUpload(d domain.LedgerUpload) models.LedgerUpload {
	return models.LedgerUpload{
		UploadID:     d.UploadID,
		ClientID:     d.ClientID,
		FileName:     d.FileName,
		FileHash:     d.FileHash,
		RowCount:     d.RowCount,
		AccountCount: d.AccountCount,
		DateFrom:     d.DateFrom,
		DateTo:       d.DateTo,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLedgerUpload converts a model LedgerUpload to a domain LedgerUpload
func ToDomainLedgerUpload(m models.LedgerUpload) domain.LedgerUpload {
	return domain.LedgerUpload{
		UploadID:     m.UploadID,
		ClientID:     m.ClientID,
		FileName:     m.FileName,
		FileHash:     m.FileHash,
		RowCount:     m.RowCount,
		AccountCount: m.AccountCount,
		DateFrom:     m.DateFrom,
		DateTo:       m.DateTo,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLedgerTransaction builds the row to insert for a parsed line.
func ToModelLedgerTransaction(transactionID, uploadID, clientID string, row domain.LedgerTransactionRow) models.LedgerTransaction {
	return models.LedgerTransaction{
		TransactionID:   transactionID,
		UploadID:        uploadID,
		ClientID:        clientID,
		LineNumber:      row.LineNumber,
		AccountCode:     nullableString(row.AccountCode),
		AccountName:     row.AccountName,
		TransactionDate: row.TransactionDate,
		Source:          nullableString(row.Source),
		Description:     nullableString(row.Description),
		Reference:       nullableString(row.Reference),
		Contact:         nullableString(row.Contact),
		Debit:           row.Debit,
		Credit:          row.Credit,
	}
}

// ToDomainLedgerTransaction converts a model LedgerTransaction to a domain LedgerTransaction
func ToDomainLedgerTransaction(m models.LedgerTransaction) domain.LedgerTransaction {
	return domain.LedgerTransaction{
		TransactionID: m.TransactionID,
		UploadID:      m.UploadID,
		ClientID:      m.ClientID,
		LedgerTransactionRow: domain.LedgerTransactionRow{
			LineNumber:      m.LineNumber,
			AccountCode:     stringValue(m.AccountCode),
			AccountName:     m.AccountName,
			TransactionDate: m.TransactionDate,
			Source:          stringValue(m.Source),
			Description:     stringValue(m.Description),
			Reference:       stringValue(m.Reference),
			Contact:         stringValue(m.Contact),
			Debit:           m.Debit,
			Credit:          m.Credit,
		},
	}
}

// ToDomainLedgerTransactionSlice converts a slice of model rows to domain transactions
func ToDomainLedgerTransactionSlice(ms []models.LedgerTransaction) []domain.LedgerTransaction {
	ds := make([]domain.LedgerTransaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedgerTransaction(m)
	}
	return ds
}

// ToDomainClient converts a model Client to a domain Client
func ToDomainClient(m models.Client) domain.Client {
	return domain.Client{
		ClientID: m.ClientID,
		Name:     m.Name,
		IsActive: m.IsActive,
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
