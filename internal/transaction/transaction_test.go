package transaction_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkrogh/ledger/internal/transaction"
)

func TestStatus_PendingEntity(t *testing.T) {
	type testCase struct {
		name     string
		status   transaction.Status
		wantName string
		wantOK   bool
	}

	tests := []testCase{
		{
			name:     "EntityForm",
			status:   transaction.Status("Pending: Landlord"),
			wantName: "Landlord",
			wantOK:   true,
		},
		{
			name:     "TrimsWhitespace",
			status:   transaction.Status("Pending:   Landlord  "),
			wantName: "Landlord",
			wantOK:   true,
		},
		{
			name:   "EmptyName",
			status: transaction.Status("Pending: "),
			wantOK: false,
		},
		{
			name:   "PlainPendingTriage",
			status: transaction.StatusPendingTriage,
			wantOK: false,
		},
		{
			name:   "Complete",
			status: transaction.StatusComplete,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := tt.status.PendingEntity()

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestStatus_PendingReconciliation(t *testing.T) {
	assert.True(t, transaction.StatusPendingReconciliation.PendingReconciliation())
	assert.True(t, transaction.Status("Pending: Insurance").PendingReconciliation())
	assert.False(t, transaction.StatusPendingTriage.PendingReconciliation())
	assert.False(t, transaction.StatusComplete.PendingReconciliation())
}

func TestTransaction_ReconciliationKey(t *testing.T) {
	entity := "Landlord"

	type testCase struct {
		name string
		tx   transaction.Transaction
		want string
	}

	tests := []testCase{
		{
			name: "EntityWins",
			tx: transaction.Transaction{
				Entity: &entity,
				Status: transaction.Status("Pending: Insurance"),
			},
			want: "Landlord",
		},
		{
			name: "PendingStatusName",
			tx:   transaction.Transaction{Status: transaction.Status("Pending: Insurance")},
			want: "Insurance",
		},
		{
			name: "Fallback",
			tx:   transaction.Transaction{Status: transaction.StatusPendingReconciliation},
			want: "Unassigned",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tx.ReconciliationKey())
		})
	}
}

func TestTransaction_EnsureBudgetPeriod(t *testing.T) {
	tx := transaction.Transaction{Date: time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC)}
	tx.EnsureBudgetPeriod()

	assert.Equal(t, 11, tx.BudgetMonth)
	assert.Equal(t, 2024, tx.BudgetYear)

	// Explicit values survive: a December posting booked onto January.
	tx = transaction.Transaction{
		Date:        time.Date(2024, 12, 28, 0, 0, 0, 0, time.UTC),
		BudgetMonth: 1,
		BudgetYear:  2025,
	}
	tx.EnsureBudgetPeriod()

	assert.Equal(t, 1, tx.BudgetMonth)
	assert.Equal(t, 2025, tx.BudgetYear)
}

func TestTransaction_RecomputeStatus(t *testing.T) {
	cat := "Groceries"
	sub := "Supermarket"

	type testCase struct {
		name string
		tx   transaction.Transaction
		want transaction.Status
	}

	tests := []testCase{
		{
			name: "FullyCategorised",
			tx: transaction.Transaction{
				Status:      transaction.StatusPendingTriage,
				Category:    &cat,
				SubCategory: &sub,
			},
			want: transaction.StatusComplete,
		},
		{
			name: "MissingSubCategory",
			tx: transaction.Transaction{
				Status:   transaction.StatusComplete,
				Category: &cat,
			},
			want: transaction.StatusPendingTriage,
		},
		{
			name: "ExcludedCompletesRegardless",
			tx: transaction.Transaction{
				Status:   transaction.StatusPendingTriage,
				Excluded: true,
			},
			want: transaction.StatusComplete,
		},
		{
			name: "ReconciliationParkingLeftAlone",
			tx: transaction.Transaction{
				Status:      transaction.Status("Pending: Landlord"),
				Category:    &cat,
				SubCategory: &sub,
			},
			want: transaction.Status("Pending: Landlord"),
		},
		{
			name: "ReconciledLeftAlone",
			tx:   transaction.Transaction{Status: transaction.StatusReconciled},
			want: transaction.StatusReconciled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.tx.RecomputeStatus()
			assert.Equal(t, tt.want, tt.tx.Status)
		})
	}
}
