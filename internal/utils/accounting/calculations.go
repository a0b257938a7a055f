package accounting

import (
	"github.com/SscSPs/recon_workbench/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CurrencyTolerance is the largest net difference treated as a rounding artefact
// when comparing two-decimal accounting figures.
var CurrencyTolerance = decimal.RequireFromString("0.01")

// WithinTolerance reports whether |a - b| <= CurrencyTolerance, in exact decimal arithmetic.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(CurrencyTolerance)
}

// NormalizeDebitCredit keeps both sides non-negative while preserving the net amount.
// A negative debit is moved to the credit side and vice versa.
func NormalizeDebitCredit(debit, credit decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if debit.IsNegative() {
		credit = credit.Add(debit.Neg())
		debit = decimal.Zero
	}
	if credit.IsNegative() {
		debit = debit.Add(credit.Neg())
		credit = decimal.Zero
	}
	return debit, credit
}

// GroupRows rolls rows up per account name in a single pass.
// The returned order lists account names by first appearance.
func GroupRows(rows []domain.LedgerTransactionRow) (map[string]domain.AccountAggregate, []string) {
	groups := make(map[string]domain.AccountAggregate)
	order := make([]string, 0)
	for _, row := range rows {
		agg, ok := groups[row.AccountName]
		if !ok {
			agg = domain.AccountAggregate{
				AccountName: row.AccountName,
				TotalDebit:  decimal.Zero,
				TotalCredit: decimal.Zero,
			}
			order = append(order, row.AccountName)
		}
		agg.TransactionCount++
		agg.TotalDebit = agg.TotalDebit.Add(row.Debit)
		agg.TotalCredit = agg.TotalCredit.Add(row.Credit)
		groups[row.AccountName] = agg
	}
	return groups, order
}
