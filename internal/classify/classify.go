// Package classify derives triage buckets from transaction fields. It is
// pure: no storage, no HTTP, just functions over the full transaction
// list, cheap enough to re-run on every read.
package classify

import (
	"strings"

	"github.com/mkrogh/ledger/internal/transaction"
)

// Bucket is the single derived triage state a transaction falls into.
type Bucket string

const (
	BucketDuplicate             Bucket = "duplicate"
	BucketPendingSource         Bucket = "pending_source"
	BucketPendingCategory       Bucket = "pending_category"
	BucketPendingValidation     Bucket = "pending_validation"
	BucketPendingReconciliation Bucket = "pending_reconciliation"
	BucketComplete              Bucket = "complete"
	BucketExcluded              Bucket = "excluded"
)

// DupKey identifies a duplicate-import candidate group. Source matching is
// case-insensitive: banks are not consistent about it between exports.
type DupKey struct {
	Date   string
	Amount int64
	Source string
}

func dupKeyOf(tx *transaction.Transaction) DupKey {
	return DupKey{
		Date:   tx.Date.Format("2006-01-02"),
		Amount: tx.Amount,
		Source: strings.ToLower(tx.Source),
	}
}

// DuplicateGroup is a derived set of transactions sharing a DupKey.
type DuplicateGroup struct {
	Key          DupKey
	Transactions []*transaction.Transaction
}

// DuplicateGroups finds every group of two or more transactions sharing
// (date, amount, source). Groups keep the input ordering of their members;
// group ordering follows first appearance in the input.
func DuplicateGroups(txs []*transaction.Transaction) []DuplicateGroup {
	byKey := make(map[DupKey][]*transaction.Transaction)

	var order []DupKey

	for _, tx := range txs {
		k := dupKeyOf(tx)
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}

		byKey[k] = append(byKey[k], tx)
	}

	var groups []DuplicateGroup

	for _, k := range order {
		members := byKey[k]
		if len(members) < 2 {
			continue
		}

		groups = append(groups, DuplicateGroup{Key: k, Transactions: members})
	}

	return groups
}

// duplicateKeys returns the set of keys shared by more than one transaction.
func duplicateKeys(txs []*transaction.Transaction) map[DupKey]struct{} {
	counts := make(map[DupKey]int, len(txs))
	for _, tx := range txs {
		counts[dupKeyOf(tx)]++
	}

	dups := make(map[DupKey]struct{})

	for k, n := range counts {
		if n > 1 {
			dups[k] = struct{}{}
		}
	}

	return dups
}

// Classify places one transaction in its bucket. Duplicate membership wins
// over everything else, so bucket assignment stays disjoint no matter what
// the other fields say.
func Classify(tx *transaction.Transaction, dups map[DupKey]struct{}) Bucket {
	if _, isDup := dups[dupKeyOf(tx)]; isDup {
		return BucketDuplicate
	}

	switch {
	case tx.Excluded || tx.Status == transaction.StatusExcluded || tx.Status == transaction.StatusReconciled:
		return BucketExcluded
	case tx.Status == transaction.StatusComplete:
		return BucketComplete
	case tx.Status.PendingReconciliation():
		return BucketPendingReconciliation
	case tx.Confidence <= 0:
		return BucketPendingSource
	case tx.Category == nil || tx.SubCategory == nil:
		return BucketPendingCategory
	default:
		return BucketPendingValidation
	}
}

// Buckets is the disjoint partition of a transaction list. Every
// transaction appears in exactly one slice.
type Buckets struct {
	Duplicates            []DuplicateGroup
	PendingSource         []*transaction.Transaction
	PendingCategory       []*transaction.Transaction
	PendingValidation     []*transaction.Transaction
	PendingReconciliation []*transaction.Transaction
	Complete              []*transaction.Transaction
	Excluded              []*transaction.Transaction
}

// Partition classifies the full list in one pass, duplicates first.
func Partition(txs []*transaction.Transaction) *Buckets {
	dups := duplicateKeys(txs)

	b := &Buckets{}

	var dupMembers []*transaction.Transaction

	for _, tx := range txs {
		switch Classify(tx, dups) {
		case BucketDuplicate:
			dupMembers = append(dupMembers, tx)
		case BucketPendingSource:
			b.PendingSource = append(b.PendingSource, tx)
		case BucketPendingCategory:
			b.PendingCategory = append(b.PendingCategory, tx)
		case BucketPendingValidation:
			b.PendingValidation = append(b.PendingValidation, tx)
		case BucketPendingReconciliation:
			b.PendingReconciliation = append(b.PendingReconciliation, tx)
		case BucketComplete:
			b.Complete = append(b.Complete, tx)
		case BucketExcluded:
			b.Excluded = append(b.Excluded, tx)
		}
	}

	b.Duplicates = DuplicateGroups(dupMembers)

	return b
}
