package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mkrogh/ledger/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectColumns = `
	t.id, t.user_id, t.date, t.source, t.clean_source, t.amount, t.account,
	t.category, t.sub_category, t.status, t.confidence, t.planned, t.recurring,
	t.excluded, t.budget, t.entity, t.notes, t.fingerprint, t.parent_id,
	t.is_split, t.budget_month, t.budget_year, t.created_at, t.updated_at, t.deleted_at
`

func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var statusStr, recurringStr, budgetStr string

	var notes sql.NullString

	if err := s.Scan(
		&tx.ID, &tx.UserID, &tx.Date, &tx.Source, &tx.CleanSource, &tx.Amount, &tx.Account,
		&tx.Category, &tx.SubCategory, &statusStr, &tx.Confidence, &tx.Planned, &recurringStr,
		&tx.Excluded, &budgetStr, &tx.Entity, &notes, &tx.Fingerprint, &tx.ParentID,
		&tx.IsSplit, &tx.BudgetMonth, &tx.BudgetYear, &tx.CreatedAt, &tx.UpdatedAt, &tx.DeletedAt,
	); err != nil {
		return nil, err
	}

	tx.Status = transaction.Status(statusStr)
	tx.Recurring = transaction.Recurring(recurringStr)
	tx.Budget = transaction.Budget(budgetStr)
	tx.Notes = notes.String

	return &tx, nil
}

const insertColumns = `
	user_id, date, source, clean_source, amount, account, category, sub_category,
	status, confidence, planned, recurring, excluded, budget, entity, notes,
	fingerprint, parent_id, is_split, budget_month, budget_year, created_at, updated_at
`

func insertArgs(tx *transaction.Transaction) []any {
	return []any{
		tx.UserID, tx.Date, tx.Source, tx.CleanSource, tx.Amount, tx.Account,
		tx.Category, tx.SubCategory, tx.Status, tx.Confidence, tx.Planned,
		tx.Recurring, tx.Excluded, tx.Budget, tx.Entity, tx.Notes,
		tx.Fingerprint, tx.ParentID, tx.IsSplit, tx.BudgetMonth, tx.BudgetYear,
	}
}

// placeholders renders "($n, $n+1, ...)" groups for multi-row inserts.
func placeholders(rows, cols int) string {
	var sb strings.Builder

	arg := 1

	for r := range rows {
		if r > 0 {
			sb.WriteString(", ")
		}

		sb.WriteByte('(')

		for c := range cols {
			if c > 0 {
				sb.WriteString(", ")
			}

			fmt.Fprintf(&sb, "$%d", arg)
			arg++
		}

		sb.WriteString(", NOW(), NOW())")
	}

	return sb.String()
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (` + insertColumns + `)
		VALUES (` + argList(1, 21) + `, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, insertArgs(tx)...).
		Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

// argList renders "$start, $start+1, ... $start+n-1".
func argList(start, n int) string {
	parts := make([]string, n)
	for i := range n {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}

	return strings.Join(parts, ", ")
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectColumns + `
		FROM transactions t
		WHERE t.id = $1 AND t.deleted_at IS NULL`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) GetTransactions(ctx context.Context, ids []uuid.UUID) ([]*transaction.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + selectColumns + `
		FROM transactions t
		WHERE t.deleted_at IS NULL AND t.id IN (` + argList(1, len(ids)) + `)`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return s.queryTransactions(ctx, query, args...)
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectColumns + `
		FROM transactions t
		WHERE t.deleted_at IS NULL AND t.user_id = $1`

	args := []any{filter.UserID}

	argIdx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND t.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Account != nil {
		query += fmt.Sprintf(" AND t.account = $%d", argIdx)

		args = append(args, *filter.Account)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY t.date DESC, t.created_at DESC"

	return s.queryTransactions(ctx, query, args...)
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET date = $1, clean_source = $2, amount = $3, account = $4,
			category = $5, sub_category = $6, status = $7, confidence = $8,
			planned = $9, recurring = $10, excluded = $11, budget = $12,
			entity = $13, notes = $14, fingerprint = $15,
			budget_month = $16, budget_year = $17, updated_at = NOW()
		WHERE id = $18 AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query,
		tx.Date, tx.CleanSource, tx.Amount, tx.Account,
		tx.Category, tx.SubCategory, tx.Status, tx.Confidence,
		tx.Planned, tx.Recurring, tx.Excluded, tx.Budget,
		tx.Entity, tx.Notes, tx.Fingerprint,
		tx.BudgetMonth, tx.BudgetYear,
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status transaction.Status) error {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	return nil
}

// UpsertByFingerprint merges one batch of imported records on the
// fingerprint unique index. A second import of the same bank row updates
// the mutable columns instead of inserting a twin.
func (s *Store) UpsertByFingerprint(ctx context.Context, txs []*transaction.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	query := `
		INSERT INTO transactions (` + insertColumns + `)
		VALUES ` + placeholders(len(txs), 21) + `
		ON CONFLICT (fingerprint) DO UPDATE
		SET date = EXCLUDED.date, amount = EXCLUDED.amount,
			account = EXCLUDED.account, updated_at = NOW()
	`

	args := make([]any, 0, len(txs)*21)
	for _, tx := range txs {
		args = append(args, insertArgs(tx)...)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting transactions: %w", err)
	}

	return nil
}

// ApplyRule writes a resolved rule's fields onto the listed transactions.
func (s *Store) ApplyRule(ctx context.Context, ids []uuid.UUID, app transaction.RuleApplication) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE transactions
		SET clean_source = $1, category = $2, sub_category = $3, recurring = $4,
			planned = $5, excluded = $6, status = $7, confidence = 1,
			updated_at = NOW()
		WHERE deleted_at IS NULL AND id IN (` + argList(8, len(ids)) + `)
	`

	args := []any{
		app.CleanSource, app.Category, app.SubCategory, app.Recurring,
		app.Planned, app.Excluded, app.Status,
	}
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("applying rule: %w", err)
	}

	return nil
}

// SetValidated settles a pending-validation group in one statement.
func (s *Store) SetValidated(ctx context.Context, ids []uuid.UUID, status transaction.Status) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE transactions
		SET status = $1, confidence = 1, updated_at = NOW()
		WHERE deleted_at IS NULL AND id IN (` + argList(2, len(ids)) + `)
	`

	args := make([]any, 0, len(ids)+1)
	args = append(args, status)

	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("validating transactions: %w", err)
	}

	return nil
}

func (s *Store) DeleteTransactions(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE transactions
		SET deleted_at = NOW()
		WHERE id IN (` + argList(1, len(ids)) + `)
	`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting transactions: %w", err)
	}

	return nil
}
