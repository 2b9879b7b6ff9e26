package matching

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkrogh/ledger/internal/transaction"
)

// Rule is a learned mapping from a raw bank string to a clean display name
// plus default classification fields. Rules are keyed by (user, raw name).
type Rule struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	RawName        string
	CleanName      string
	Category       *string
	SubCategory    *string
	Recurring      transaction.Recurring
	PlannedDefault bool
	ExcludeDefault bool
	SkipTriage     bool // auto-complete on apply regardless of categorisation
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// CompletionStatus derives the status a transaction lands on when this
// rule is applied: skip-triage and excluded sources settle immediately, a
// fully categorised rule settles too, anything else stays in triage.
func (r *Rule) CompletionStatus() transaction.Status {
	if r.SkipTriage || r.ExcludeDefault {
		return transaction.StatusComplete
	}

	if r.Category != nil && r.SubCategory != nil {
		return transaction.StatusComplete
	}

	return transaction.StatusPendingTriage
}

// Application converts the rule into the field set written onto matched
// transactions.
func (r *Rule) Application() transaction.RuleApplication {
	return transaction.RuleApplication{
		CleanSource: r.CleanName,
		Category:    r.Category,
		SubCategory: r.SubCategory,
		Recurring:   r.Recurring,
		Planned:     r.PlannedDefault,
		Excluded:    r.ExcludeDefault,
		Status:      r.CompletionStatus(),
	}
}
