package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkrogh/ledger/internal/matching"
	"github.com/mkrogh/ledger/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const ruleColumns = `
	id, user_id, raw_name, clean_name, category, sub_category, recurring,
	planned_default, exclude_default, skip_triage, created_at, updated_at
`

func (s *Store) GetRule(ctx context.Context, userID uuid.UUID, rawName string) (*matching.Rule, error) {
	query := `SELECT ` + ruleColumns + `
		FROM source_rules
		WHERE user_id = $1 AND raw_name = $2`

	var r matching.Rule

	var recurringStr string

	err := s.db.QueryRowContext(ctx, query, userID, rawName).Scan(
		&r.ID, &r.UserID, &r.RawName, &r.CleanName, &r.Category, &r.SubCategory,
		&recurringStr, &r.PlannedDefault, &r.ExcludeDefault, &r.SkipTriage,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("getting rule: %w", err)
	}

	r.Recurring = transaction.Recurring(recurringStr)

	return &r, nil
}

func (s *Store) UpsertRule(ctx context.Context, rule *matching.Rule) error {
	query := `
		INSERT INTO source_rules (
			user_id, raw_name, clean_name, category, sub_category, recurring,
			planned_default, exclude_default, skip_triage, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (user_id, raw_name) DO UPDATE
		SET clean_name = EXCLUDED.clean_name,
			category = EXCLUDED.category,
			sub_category = EXCLUDED.sub_category,
			recurring = EXCLUDED.recurring,
			planned_default = EXCLUDED.planned_default,
			exclude_default = EXCLUDED.exclude_default,
			skip_triage = EXCLUDED.skip_triage,
			updated_at = NOW()
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		rule.UserID, rule.RawName, rule.CleanName, rule.Category, rule.SubCategory,
		rule.Recurring, rule.PlannedDefault, rule.ExcludeDefault, rule.SkipTriage,
	).Scan(&rule.ID, &rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting rule: %w", err)
	}

	return nil
}

func (s *Store) ListCleanNames(ctx context.Context, userID uuid.UUID) (map[string]struct{}, error) {
	query := `SELECT DISTINCT clean_name FROM source_rules WHERE user_id = $1`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing clean names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]struct{})

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning clean name: %w", err)
		}

		names[name] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clean names: %w", err)
	}

	return names, nil
}
