package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mkrogh/ledger/internal/transaction"
)

var (
	ErrEmptySelection = errors.New("nothing selected to reconcile")
	ErrUnbalanced     = errors.New("selection does not balance")
)

// noteRefLimit caps how many counterpart ids a cross-reference note lists
// before truncating with an ellipsis.
const noteRefLimit = 3

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=reconcile
type Repository interface {
	GetTransactions(ctx context.Context, ids []uuid.UUID) ([]*transaction.Transaction, error)
	// MarkReconciled settles one transaction: status Complete, excluded,
	// budget lane Exclude, and the given replacement notes.
	MarkReconciled(ctx context.Context, id uuid.UUID, notes string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Close settles a balanced selection. Every selected transaction is marked
// complete and removed from budget totals, and gains a cross-reference
// note naming the transactions it was reconciled against, appended after
// any existing notes. A selection that does not net to zero is rejected
// before anything is written.
func (s *Service) Close(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return ErrEmptySelection
	}

	txs, err := s.repo.GetTransactions(ctx, ids)
	if err != nil {
		return fmt.Errorf("load selection: %w", err)
	}

	if len(txs) != len(ids) {
		return fmt.Errorf("load selection: %w", transaction.ErrNotFound)
	}

	if !Balanced(txs) {
		return fmt.Errorf("%w: subtotal %d", ErrUnbalanced, Subtotal(txs))
	}

	for _, tx := range txs {
		notes := appendNote(tx.Notes, crossReference(tx.ID, txs))

		if err := s.repo.MarkReconciled(ctx, tx.ID, notes); err != nil {
			return fmt.Errorf("mark reconciled %s: %w", tx.ID, err)
		}
	}

	return nil
}

// crossReference lists the ids this transaction was reconciled against,
// truncated after noteRefLimit with an ellipsis marker.
func crossReference(self uuid.UUID, txs []*transaction.Transaction) string {
	var refs []string

	for _, tx := range txs {
		if tx.ID == self {
			continue
		}

		if len(refs) == noteRefLimit {
			refs = append(refs, "…")
			break
		}

		refs = append(refs, tx.ID.String())
	}

	return "Reconciled with " + strings.Join(refs, ", ")
}

// appendNote preserves existing note content; notes are append-only by
// convention so the audit trail survives.
func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}

	return existing + "\n" + note
}
