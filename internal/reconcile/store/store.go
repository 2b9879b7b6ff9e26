package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkrogh/ledger/internal/transaction"
	txstore "github.com/mkrogh/ledger/internal/transaction/store"
)

type Store struct {
	db  *sql.DB
	txs *txstore.Store
}

func New(db *sql.DB) *Store {
	return &Store{db: db, txs: txstore.New(db)}
}

func (s *Store) GetTransactions(ctx context.Context, ids []uuid.UUID) ([]*transaction.Transaction, error) {
	return s.txs.GetTransactions(ctx, ids)
}

// MarkReconciled closes one transaction's budget visibility and replaces
// its notes with the caller-built audit trail.
func (s *Store) MarkReconciled(ctx context.Context, id uuid.UUID, notes string) error {
	query := `
		UPDATE transactions
		SET status = $1, excluded = TRUE, budget = $2, notes = $3,
			updated_at = NOW()
		WHERE id = $4 AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query,
		transaction.StatusComplete, transaction.BudgetExclude, notes, id,
	)
	if err != nil {
		return fmt.Errorf("marking reconciled: %w", err)
	}

	return nil
}
