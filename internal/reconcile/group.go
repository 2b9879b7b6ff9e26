// Package reconcile groups transactions pending settlement against named
// counterparts and closes balanced selections.
package reconcile

import (
	"sort"

	"github.com/mkrogh/ledger/internal/transaction"
)

// Group is a derived set of transactions awaiting reconciliation against
// one counterpart, with its signed running total.
type Group struct {
	Key          string
	Transactions []*transaction.Transaction
	Count        int
	Total        int64
}

// inScope reports whether a transaction takes part in reconciliation
// grouping: parked for reconciliation or carrying a counterpart entity.
func inScope(tx *transaction.Transaction) bool {
	if tx.Status.PendingReconciliation() {
		return true
	}

	return tx.Entity != nil && *tx.Entity != ""
}

// Groups partitions the in-scope transactions by resolved counterpart key.
// Groups come back sorted by key for stable presentation; members keep
// input order.
func Groups(txs []*transaction.Transaction) []Group {
	byKey := make(map[string]*Group)

	for _, tx := range txs {
		if !inScope(tx) {
			continue
		}

		key := tx.ReconciliationKey()

		g, ok := byKey[key]
		if !ok {
			g = &Group{Key: key}
			byKey[key] = g
		}

		g.Transactions = append(g.Transactions, tx)
		g.Count++
		g.Total += tx.Amount
	}

	groups := make([]Group, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, *g)
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })

	return groups
}

// Subtotal is the signed sum of a user-toggled selection within a group.
func Subtotal(selection []*transaction.Transaction) int64 {
	var sum int64
	for _, tx := range selection {
		sum += tx.Amount
	}

	return sum
}

// Balanced reports whether a non-empty selection nets out to zero. With
// cent amounts, "within 0.01" means exactly zero.
func Balanced(selection []*transaction.Transaction) bool {
	return len(selection) > 0 && Subtotal(selection) == 0
}
