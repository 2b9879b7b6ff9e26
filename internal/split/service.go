// Package split decomposes one transaction into balanced child
// transactions. The parent keeps the linkage but loses its budget weight;
// all monetary truth moves to the children.
package split

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkrogh/ledger/internal/transaction"
)

var (
	ErrNoItems    = errors.New("split needs at least one item")
	ErrSplitChild = errors.New("cannot split a split child")
	ErrUnbalanced = errors.New("split items do not sum to the parent amount")
)

// balanceToleranceCents is how far the item sum may drift from the parent
// amount. One cent absorbs rounding from percentage-based splits.
const balanceToleranceCents = 1

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=split
type Repository interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	BeginSplit(ctx context.Context) (Tx, error)
}

// Tx is one atomic split commit: children inserted and parent demoted
// together, or neither.
type Tx interface {
	InsertChildren(ctx context.Context, children []*transaction.Transaction) error
	UpdateParent(ctx context.Context, parent *transaction.Transaction) error
	Commit() error
	Rollback() error
}

// Item is one requested child transaction.
type Item struct {
	Name        string
	Amount      int64
	Category    *string
	SubCategory *string
	Excluded    bool
	Pending     bool
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Split replaces one transaction's budget weight with the given items.
// Preconditions are checked before anything is written: the target must
// not itself be a split child, at least one item is required, and the
// items must sum to the parent amount within one cent. On success the
// children carry the parent's date, account and budget period, and the
// parent becomes a non-budget header row.
func (s *Service) Split(ctx context.Context, id uuid.UUID, items []Item) ([]*transaction.Transaction, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	parent, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if parent.ParentID != nil {
		return nil, ErrSplitChild
	}

	var sum int64
	for _, item := range items {
		sum += item.Amount
	}

	if diff := sum - parent.Amount; diff > balanceToleranceCents || diff < -balanceToleranceCents {
		return nil, fmt.Errorf("%w: items %d, parent %d", ErrUnbalanced, sum, parent.Amount)
	}

	children := make([]*transaction.Transaction, len(items))
	for i, item := range items {
		children[i] = childOf(parent, item)
	}

	stx, err := s.repo.BeginSplit(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin split: %w", err)
	}
	defer stx.Rollback()

	if err := stx.InsertChildren(ctx, children); err != nil {
		return nil, fmt.Errorf("insert children: %w", err)
	}

	demote(parent)

	if err := stx.UpdateParent(ctx, parent); err != nil {
		return nil, fmt.Errorf("update parent: %w", err)
	}

	if err := stx.Commit(); err != nil {
		return nil, fmt.Errorf("commit split: %w", err)
	}

	return children, nil
}

func childOf(parent *transaction.Transaction, item Item) *transaction.Transaction {
	child := &transaction.Transaction{
		UserID:      parent.UserID,
		Date:        parent.Date,
		Source:      parent.Source,
		CleanSource: &item.Name,
		Amount:      item.Amount,
		Account:     parent.Account,
		Category:    item.Category,
		SubCategory: item.SubCategory,
		Confidence:  parent.Confidence,
		Recurring:   transaction.RecurringNone,
		Budget:      parent.Budget,
		ParentID:    &parent.ID,
		BudgetMonth: parent.BudgetMonth,
		BudgetYear:  parent.BudgetYear,
	}

	// Children need fingerprints of their own; the item name keeps them
	// distinct from the parent and from sibling items of equal amount.
	child.Fingerprint = transaction.Fingerprint(
		child.Date, parent.Source+" / "+item.Name, child.Amount, child.Account,
	)

	switch {
	case item.Excluded:
		child.Status = transaction.StatusComplete
		child.Excluded = true
		child.Budget = transaction.BudgetExclude
	case item.Pending || item.Category == nil || item.SubCategory == nil:
		child.Status = transaction.StatusPendingTriage
	default:
		child.Status = transaction.StatusComplete
	}

	child.EnsureBudgetPeriod()

	return child
}

// demote turns the parent into a non-budget header row.
func demote(parent *transaction.Transaction) {
	parent.IsSplit = true
	parent.Status = transaction.StatusComplete
	parent.Budget = transaction.BudgetExclude
	parent.Category = nil
	parent.SubCategory = nil
}
