package matching_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mkrogh/ledger/internal/matching"
	"github.com/mkrogh/ledger/internal/transaction"
)

func TestService_Resolve(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rules := matching.NewMockRepository(ctrl)
	txs := matching.NewMockTransactions(ctrl)
	svc := matching.NewService(rules, txs, nil)

	userID := uuid.New()
	rule := &matching.Rule{UserID: userID, RawName: "NETTO KBH", CleanName: "Netto"}

	rules.EXPECT().GetRule(gomock.Any(), userID, "NETTO KBH").Return(rule, nil)
	rules.EXPECT().GetRule(gomock.Any(), userID, "UNKNOWN").Return(nil, nil)

	got, err := svc.Resolve(context.Background(), userID, "NETTO KBH")
	require.NoError(t, err)
	assert.Equal(t, rule, got)

	got, err = svc.Resolve(context.Background(), userID, "UNKNOWN")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_Apply(t *testing.T) {
	cat := "Groceries"
	sub := "Supermarket"

	type testCase struct {
		name       string
		rule       *matching.Rule
		ids        []uuid.UUID
		setupMock  func(rules *matching.MockRepository, txs *matching.MockTransactions)
		wantErr    error
		wantStatus transaction.Status
	}

	ids := []uuid.UUID{uuid.New(), uuid.New()}

	tests := []testCase{
		{
			name: "FullyCategorisedCompletes",
			rule: &matching.Rule{
				RawName:     "NETTO KBH",
				CleanName:   "Netto",
				Category:    &cat,
				SubCategory: &sub,
			},
			ids:        ids,
			wantStatus: transaction.StatusComplete,
		},
		{
			name: "UncategorisedStaysInTriage",
			rule: &matching.Rule{
				RawName:   "NETTO KBH",
				CleanName: "Netto",
			},
			ids:        ids,
			wantStatus: transaction.StatusPendingTriage,
		},
		{
			name: "SkipTriageCompletesWithoutCategories",
			rule: &matching.Rule{
				RawName:    "ATM WITHDRAWAL",
				CleanName:  "Cash",
				SkipTriage: true,
			},
			ids:        ids,
			wantStatus: transaction.StatusComplete,
		},
		{
			name: "ExcludeDefaultCompletes",
			rule: &matching.Rule{
				RawName:        "Overførsel opsparing",
				CleanName:      "Savings transfer",
				ExcludeDefault: true,
			},
			ids:        ids,
			wantStatus: transaction.StatusComplete,
		},
		{
			name:    "MissingRawName",
			rule:    &matching.Rule{CleanName: "Netto"},
			ids:     ids,
			wantErr: matching.ErrEmptyRule,
		},
		{
			name:    "MissingCleanName",
			rule:    &matching.Rule{RawName: "NETTO KBH"},
			ids:     ids,
			wantErr: matching.ErrEmptyRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			rules := matching.NewMockRepository(ctrl)
			txs := matching.NewMockTransactions(ctrl)

			if tt.wantErr == nil {
				rules.EXPECT().UpsertRule(gomock.Any(), tt.rule).Return(nil)
				txs.EXPECT().
					ApplyRule(gomock.Any(), tt.ids, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ []uuid.UUID, app transaction.RuleApplication) error {
						assert.Equal(t, tt.rule.CleanName, app.CleanSource)
						assert.Equal(t, tt.wantStatus, app.Status)
						return nil
					})
			}

			svc := matching.NewService(rules, txs, nil)
			err := svc.Apply(context.Background(), tt.rule, tt.ids)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, transaction.RecurringNone, tt.rule.Recurring)
		})
	}
}

func TestService_Apply_NoTargets(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rules := matching.NewMockRepository(ctrl)
	txs := matching.NewMockTransactions(ctrl)
	svc := matching.NewService(rules, txs, nil)

	rule := &matching.Rule{RawName: "NETTO KBH", CleanName: "Netto"}
	rules.EXPECT().UpsertRule(gomock.Any(), rule).Return(nil)

	// The rule is learned even when no transactions are selected.
	assert.NoError(t, svc.Apply(context.Background(), rule, nil))
}

func TestService_Apply_UpsertError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rules := matching.NewMockRepository(ctrl)
	txs := matching.NewMockTransactions(ctrl)
	svc := matching.NewService(rules, txs, nil)

	rule := &matching.Rule{RawName: "NETTO KBH", CleanName: "Netto"}
	rules.EXPECT().UpsertRule(gomock.Any(), rule).Return(errors.New("db error"))

	assert.Error(t, svc.Apply(context.Background(), rule, []uuid.UUID{uuid.New()}))
}

func TestService_Apply_KeepsExplicitRecurring(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rules := matching.NewMockRepository(ctrl)
	txs := matching.NewMockTransactions(ctrl)
	svc := matching.NewService(rules, txs, nil)

	rule := &matching.Rule{
		RawName:   "Spotify AB",
		CleanName: "Spotify",
		Recurring: transaction.RecurringMonthly,
	}

	rules.EXPECT().UpsertRule(gomock.Any(), rule).Return(nil)

	require.NoError(t, svc.Apply(context.Background(), rule, nil))
	assert.Equal(t, transaction.RecurringMonthly, rule.Recurring)
}

func TestIsResolved(t *testing.T) {
	netto := "Netto"
	unknown := "Corner shop"
	known := map[string]struct{}{"Netto": {}, "Spotify": {}}

	assert.True(t, matching.IsResolved(&transaction.Transaction{CleanSource: &netto}, known))
	assert.False(t, matching.IsResolved(&transaction.Transaction{CleanSource: &unknown}, known))
	assert.False(t, matching.IsResolved(&transaction.Transaction{}, known))
}

func TestRule_CompletionStatus(t *testing.T) {
	cat := "Transport"
	sub := "Fuel"

	assert.Equal(t, transaction.StatusPendingTriage, (&matching.Rule{}).CompletionStatus())
	assert.Equal(t, transaction.StatusPendingTriage, (&matching.Rule{Category: &cat}).CompletionStatus())
	assert.Equal(t, transaction.StatusComplete, (&matching.Rule{Category: &cat, SubCategory: &sub}).CompletionStatus())
	assert.Equal(t, transaction.StatusComplete, (&matching.Rule{SkipTriage: true}).CompletionStatus())
	assert.Equal(t, transaction.StatusComplete, (&matching.Rule{ExcludeDefault: true}).CompletionStatus())
}
