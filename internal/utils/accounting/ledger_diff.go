package accounting

import (
	"sort"

	"github.com/SscSPs/recon_workbench/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DiffLedger compares the stored per-account aggregates with freshly parsed rows.
//
// An account only in newRows is added, only in old is removed. Accounts in both are
// modified when the transaction counts differ or the net totals differ by more than
// CurrencyTolerance. Changes are ordered by first appearance in newRows, followed by
// removed accounts in name order. Unchanged accounts are only counted.
func DiffLedger(old map[string]domain.AccountAggregate, newRows []domain.LedgerTransactionRow) domain.LedgerDiff {
	current, order := GroupRows(newRows)

	removed := make([]string, 0)
	for name := range old {
		if _, ok := current[name]; !ok {
			removed = append(removed, name)
		}
	}
	sort.Strings(removed)

	union := len(order) + len(removed)
	changes := make([]domain.AccountChange, 0)

	for _, name := range order {
		next := current[name]
		prev, existed := old[name]
		if !existed {
			changes = append(changes, domain.AccountChange{
				AccountName:         name,
				ChangeType:          domain.ChangeAdded,
				OldTransactionCount: 0,
				NewTransactionCount: next.TransactionCount,
				OldNetTotal:         decimal.Zero,
				NewNetTotal:         next.NetTotal(),
			})
			continue
		}

		oldNet, newNet := prev.NetTotal(), next.NetTotal()
		if prev.TransactionCount == next.TransactionCount && WithinTolerance(oldNet, newNet) {
			continue
		}
		changes = append(changes, domain.AccountChange{
			AccountName:         name,
			ChangeType:          domain.ChangeModified,
			OldTransactionCount: prev.TransactionCount,
			NewTransactionCount: next.TransactionCount,
			OldNetTotal:         oldNet,
			NewNetTotal:         newNet,
		})
	}

	for _, name := range removed {
		prev := old[name]
		changes = append(changes, domain.AccountChange{
			AccountName:         name,
			ChangeType:          domain.ChangeRemoved,
			OldTransactionCount: prev.TransactionCount,
			NewTransactionCount: 0,
			OldNetTotal:         prev.NetTotal(),
			NewNetTotal:         decimal.Zero,
		})
	}

	return domain.LedgerDiff{
		Changes:        changes,
		UnchangedCount: union - len(changes),
	}
}
