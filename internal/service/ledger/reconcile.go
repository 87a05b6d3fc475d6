package ledger

import (
	"github.com/google/uuid"

	"github.com/aminus007/fintrack/internal/finance"
)

// Reconciliation: every transaction mutation yields a set of balance
// adjustments that the store applies atomically with the transaction write.
// No other code path may touch Account.Balance.

// createDeltas returns the effect of posting t: income adds, expense
// subtracts, exactly once.
func createDeltas(t finance.Transaction) []finance.BalanceAdjustment {
	return []finance.BalanceAdjustment{{AccountID: t.AccountID, DeltaMinor: t.SignedMinor()}}
}

// deleteDeltas returns the reversal of t's effect.
func deleteDeltas(t finance.Transaction) []finance.BalanceAdjustment {
	return []finance.BalanceAdjustment{{AccountID: t.AccountID, DeltaMinor: -t.SignedMinor()}}
}

// updateDeltas reverses old against the old account and applies new against
// the new account. The two legs are independent: when the account changed,
// the old account only sees the reversal.
func updateDeltas(old, updated finance.Transaction) []finance.BalanceAdjustment {
	return mergeDeltas([]finance.BalanceAdjustment{
		{AccountID: old.AccountID, DeltaMinor: -old.SignedMinor()},
		{AccountID: updated.AccountID, DeltaMinor: updated.SignedMinor()},
	})
}

// mergeDeltas folds adjustments targeting the same account into one leg,
// dropping zero legs. Order of first appearance is preserved.
func mergeDeltas(adjs []finance.BalanceAdjustment) []finance.BalanceAdjustment {
	byAccount := make(map[uuid.UUID]int, len(adjs))
	order := make([]uuid.UUID, 0, len(adjs))
	sums := make(map[uuid.UUID]int64, len(adjs))
	for _, a := range adjs {
		if _, ok := byAccount[a.AccountID]; !ok {
			byAccount[a.AccountID] = len(order)
			order = append(order, a.AccountID)
		}
		sums[a.AccountID] += a.DeltaMinor
	}
	out := make([]finance.BalanceAdjustment, 0, len(order))
	for _, id := range order {
		if sums[id] == 0 {
			continue
		}
		out = append(out, finance.BalanceAdjustment{AccountID: id, DeltaMinor: sums[id]})
	}
	return out
}
