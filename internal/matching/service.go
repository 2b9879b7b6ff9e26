package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkrogh/ledger/internal/transaction"
)

var ErrEmptyRule = errors.New("rule needs a raw name and a clean name")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// GetRule looks a rule up by its exact (user, raw name) key. A missing
	// rule is (nil, nil), not an error.
	GetRule(ctx context.Context, userID uuid.UUID, rawName string) (*Rule, error)
	UpsertRule(ctx context.Context, rule *Rule) error
	ListCleanNames(ctx context.Context, userID uuid.UUID) (map[string]struct{}, error)
}

// Transactions is the slice of the transaction store rule application
// needs: one bulk field write over a list of ids.
type Transactions interface {
	ApplyRule(ctx context.Context, ids []uuid.UUID, app transaction.RuleApplication) error
}

type Service struct {
	rules   Repository
	txs     Transactions
	matcher *Matcher
}

func NewService(rules Repository, txs Transactions, matcher *Matcher) *Service {
	if matcher == nil {
		matcher = NewMatcher(0, 0, nil)
	}

	return &Service{rules: rules, txs: txs, matcher: matcher}
}

// Resolve finds the rule for a raw source string, or nil when the source
// is still unknown.
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID, rawName string) (*Rule, error) {
	return s.rules.GetRule(ctx, userID, rawName)
}

// Apply upserts the rule under its (user, raw name) key and writes its
// fields onto every listed transaction in one call: clean source,
// categories, cadence, planned/excluded defaults, confidence 1, and the
// completion status the rule derives. All-or-nothing from the caller's
// perspective.
func (s *Service) Apply(ctx context.Context, rule *Rule, ids []uuid.UUID) error {
	if rule.RawName == "" || rule.CleanName == "" {
		return ErrEmptyRule
	}

	if rule.Recurring == "" {
		rule.Recurring = transaction.RecurringNone
	}

	if err := s.rules.UpsertRule(ctx, rule); err != nil {
		return fmt.Errorf("upsert rule: %w", err)
	}

	if len(ids) == 0 {
		return nil
	}

	if err := s.txs.ApplyRule(ctx, ids, rule.Application()); err != nil {
		return fmt.Errorf("apply rule to transactions: %w", err)
	}

	return nil
}

// FindSimilar scores the pool against the reference for bulk rule
// application previews. See Matcher.FindSimilar.
func (s *Service) FindSimilar(ref *transaction.Transaction, pool []*transaction.Transaction, nameHint string) []Match {
	return s.matcher.FindSimilar(ref, pool, nameHint)
}

// KnownCleanNames returns the resolved-rule index. A transaction whose
// clean source appears in the set displays as resolved; the property is
// derived here, never stored per transaction.
func (s *Service) KnownCleanNames(ctx context.Context, userID uuid.UUID) (map[string]struct{}, error) {
	return s.rules.ListCleanNames(ctx, userID)
}

// IsResolved reports whether the transaction's clean source is backed by a
// known rule.
func IsResolved(tx *transaction.Transaction, known map[string]struct{}) bool {
	if tx.CleanSource == nil {
		return false
	}

	_, ok := known[*tx.CleanSource]

	return ok
}
