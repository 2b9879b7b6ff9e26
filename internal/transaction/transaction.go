package transaction

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("transaction not found")

// Status represents the lifecycle state of a transaction. Only the terminal
// states and the pending-reconciliation markers carry meaning when persisted;
// triage buckets are derived at read time (see the classify package).
type Status string

const (
	StatusPendingTriage         Status = "Pending Triage"
	StatusPendingReconciliation Status = "Pending Reconciliation"
	StatusComplete              Status = "Complete"
	StatusExcluded              Status = "Excluded"
	StatusReconciled            Status = "Reconciled"
)

// PendingEntityPrefix marks a status of the form "Pending: <entity>",
// used to park a transaction against a named counterpart.
const PendingEntityPrefix = "Pending: "

// Terminal reports whether the status ends triage for the transaction.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusExcluded || s == StatusReconciled
}

// PendingEntity extracts the counterpart name from a "Pending: X" status.
func (s Status) PendingEntity() (string, bool) {
	name, ok := strings.CutPrefix(string(s), PendingEntityPrefix)
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}

	return strings.TrimSpace(name), true
}

// PendingReconciliation reports whether the status parks the transaction
// for reconciliation, either via the explicit status or the entity form.
func (s Status) PendingReconciliation() bool {
	if s == StatusPendingReconciliation {
		return true
	}

	_, ok := s.PendingEntity()

	return ok
}

// Budget is the classification lane controlling aggregate visibility.
type Budget string

const (
	BudgetBudgeted     Budget = "Budgeted"
	BudgetSpecial      Budget = "Special"
	BudgetKlintemarken Budget = "Klintemarken"
	BudgetExclude      Budget = "Exclude"
)

// Recurring is the cadence label of a recurring source.
type Recurring string

const (
	RecurringNone    Recurring = "N/A"
	RecurringWeekly  Recurring = "Weekly"
	RecurringMonthly Recurring = "Monthly"
	RecurringYearly  Recurring = "Yearly"
)

// Transaction is a single bank posting. Amount is in signed cents:
// positive is an inflow, negative an outflow.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Date        time.Time
	Source      string // raw bank string, immutable once imported
	CleanSource *string
	Amount      int64
	Account     string
	Category    *string
	SubCategory *string
	Status      Status
	Confidence  int // 0 = no rule resolved for the source yet
	Planned     bool
	Recurring   Recurring
	Excluded    bool
	Budget      Budget
	Entity      *string
	Notes       string
	Fingerprint string
	ParentID    *uuid.UUID
	IsSplit     bool
	BudgetMonth int
	BudgetYear  int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
}

// RuleApplication is the set of fields a resolved source rule writes onto
// its matched transactions. Confidence always flips to 1 on apply.
type RuleApplication struct {
	CleanSource string
	Category    *string
	SubCategory *string
	Recurring   Recurring
	Planned     bool
	Excluded    bool
	Status      Status
}

// EnsureBudgetPeriod fills in the budget month/year from the posting date
// when they are missing. Older imports predate these columns, so they are
// healed at read time instead of rejected.
func (t *Transaction) EnsureBudgetPeriod() {
	if t.BudgetMonth == 0 {
		t.BudgetMonth = int(t.Date.Month())
	}

	if t.BudgetYear == 0 {
		t.BudgetYear = t.Date.Year()
	}
}

// ReconciliationKey resolves the group key used when balancing against a
// counterpart: the entity if set, the "Pending: X" name otherwise, or
// "Unassigned".
func (t *Transaction) ReconciliationKey() string {
	if t.Entity != nil && *t.Entity != "" {
		return *t.Entity
	}

	if name, ok := t.Status.PendingEntity(); ok {
		return name
	}

	return "Unassigned"
}
