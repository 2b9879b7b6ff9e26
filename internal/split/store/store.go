package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkrogh/ledger/internal/split"
	"github.com/mkrogh/ledger/internal/transaction"
	txstore "github.com/mkrogh/ledger/internal/transaction/store"
)

// Store commits splits atomically: all children plus the parent demotion
// in one database transaction.
type Store struct {
	db  *sql.DB
	txs *txstore.Store
}

func New(db *sql.DB) *Store {
	return &Store{db: db, txs: txstore.New(db)}
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return s.txs.GetTransaction(ctx, id)
}

type splitTx struct {
	tx *sql.Tx
}

func (s *Store) BeginSplit(ctx context.Context) (split.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning split tx: %w", err)
	}

	return &splitTx{tx: dbTx}, nil
}

func (stx *splitTx) Commit() error   { return stx.tx.Commit() }
func (stx *splitTx) Rollback() error { return stx.tx.Rollback() }

func (stx *splitTx) InsertChildren(ctx context.Context, children []*transaction.Transaction) error {
	query := `
		INSERT INTO transactions (
			user_id, date, source, clean_source, amount, account, category,
			sub_category, status, confidence, planned, recurring, excluded,
			budget, entity, notes, fingerprint, parent_id, is_split,
			budget_month, budget_year, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	for _, child := range children {
		err := stx.tx.QueryRowContext(ctx, query,
			child.UserID, child.Date, child.Source, child.CleanSource,
			child.Amount, child.Account, child.Category, child.SubCategory,
			child.Status, child.Confidence, child.Planned, child.Recurring,
			child.Excluded, child.Budget, child.Entity, child.Notes,
			child.Fingerprint, child.ParentID, child.IsSplit,
			child.BudgetMonth, child.BudgetYear,
		).Scan(&child.ID, &child.CreatedAt, &child.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting split child: %w", err)
		}
	}

	return nil
}

func (stx *splitTx) UpdateParent(ctx context.Context, parent *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET is_split = $1, status = $2, budget = $3, category = NULL,
			sub_category = NULL, updated_at = NOW()
		WHERE id = $4 AND deleted_at IS NULL
	`

	_, err := stx.tx.ExecContext(ctx, query,
		parent.IsSplit, parent.Status, parent.Budget, parent.ID,
	)
	if err != nil {
		return fmt.Errorf("updating split parent: %w", err)
	}

	return nil
}
