package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mkrogh/ledger/internal/transaction"
)

func importRows(n int) []*transaction.Transaction {
	userID := uuid.New()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	txs := make([]*transaction.Transaction, n)
	for i := range txs {
		txs[i] = transaction.FromImportRow(userID, transaction.ImportRow{
			Date:    date.AddDate(0, 0, i),
			Source:  "NETTO KBH",
			Amount:  int64(-100 * (i + 1)),
			Account: "Budget",
		})
	}

	return txs
}

func TestFromImportRow(t *testing.T) {
	userID := uuid.New()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tx := transaction.FromImportRow(userID, transaction.ImportRow{
		Date:    date,
		Source:  "NETTO KBH",
		Amount:  -12550,
		Account: "Budget",
	})

	assert.Equal(t, userID, tx.UserID)
	assert.Equal(t, transaction.StatusPendingTriage, tx.Status)
	assert.Equal(t, transaction.RecurringNone, tx.Recurring)
	assert.Equal(t, transaction.BudgetBudgeted, tx.Budget)
	assert.Zero(t, tx.Confidence)
	assert.Equal(t, 1, tx.BudgetMonth)
	assert.Equal(t, 2024, tx.BudgetYear)
	assert.Equal(t, transaction.Fingerprint(date, "NETTO KBH", -12550, "Budget"), tx.Fingerprint)
}

func TestService_Import_Chunking(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	txs := importRows(1200)

	gomock.InOrder(
		repo.EXPECT().UpsertByFingerprint(gomock.Any(), gomock.Len(500)).Return(nil),
		repo.EXPECT().UpsertByFingerprint(gomock.Any(), gomock.Len(500)).Return(nil),
		repo.EXPECT().UpsertByFingerprint(gomock.Any(), gomock.Len(200)).Return(nil),
	)

	written, err := svc.Import(context.Background(), txs)
	require.NoError(t, err)
	assert.Equal(t, 1200, written)
}

func TestService_Import_PartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo).WithChunkSizes(100, 0)

	txs := importRows(250)

	gomock.InOrder(
		repo.EXPECT().UpsertByFingerprint(gomock.Any(), gomock.Len(100)).Return(nil),
		repo.EXPECT().UpsertByFingerprint(gomock.Any(), gomock.Len(100)).Return(errors.New("payload too large")),
	)

	written, err := svc.Import(context.Background(), txs)
	require.Error(t, err)
	assert.Equal(t, 100, written)

	var batchErr *transaction.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 100, batchErr.Written)
}

func TestService_Import_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	written, err := svc.Import(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, written)
}

func TestService_Create_FillsDerivedFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	tx := &transaction.Transaction{
		UserID:  uuid.New(),
		Date:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Source:  "Manual entry",
		Amount:  -5000,
		Account: "Budget",
		Status:  transaction.StatusPendingTriage,
	}

	repo.EXPECT().
		CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, got *transaction.Transaction) error {
			got.ID = uuid.New()
			return nil
		})

	require.NoError(t, svc.Create(context.Background(), tx))
	assert.NotEmpty(t, tx.Fingerprint)
	assert.Equal(t, 6, tx.BudgetMonth)
	assert.Equal(t, 2024, tx.BudgetYear)
}

func TestService_UpdateStatus(t *testing.T) {
	type testCase struct {
		name      string
		status    transaction.Status
		setupMock func(m *transaction.MockRepository, id uuid.UUID)
		wantErr   bool
	}

	tests := []testCase{
		{
			name:   "PlainStatusChange",
			status: transaction.StatusComplete,
			setupMock: func(m *transaction.MockRepository, id uuid.UUID) {
				m.EXPECT().
					UpdateStatus(gomock.Any(), id, transaction.StatusComplete).
					Return(nil)
			},
		},
		{
			name:   "ReconciledClosesBudgetVisibility",
			status: transaction.StatusReconciled,
			setupMock: func(m *transaction.MockRepository, id uuid.UUID) {
				m.EXPECT().
					GetTransaction(gomock.Any(), id).
					Return(&transaction.Transaction{
						ID:     id,
						Status: transaction.StatusPendingReconciliation,
						Budget: transaction.BudgetBudgeted,
					}, nil)
				m.EXPECT().
					UpdateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						assert.Equal(t, transaction.StatusReconciled, tx.Status)
						assert.True(t, tx.Excluded)
						assert.Equal(t, transaction.BudgetExclude, tx.Budget)
						return nil
					})
			},
		},
		{
			name:   "ReconciledLoadError",
			status: transaction.StatusReconciled,
			setupMock: func(m *transaction.MockRepository, id uuid.UUID) {
				m.EXPECT().
					GetTransaction(gomock.Any(), id).
					Return(nil, transaction.ErrNotFound)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			id := uuid.New()
			tt.setupMock(repo, id)

			svc := transaction.NewService(repo)
			err := svc.UpdateStatus(context.Background(), id, tt.status)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_ValidateGroup(t *testing.T) {
	type testCase struct {
		name             string
		ids              []uuid.UUID
		toReconciliation bool
		wantStatus       transaction.Status
	}

	ids := []uuid.UUID{uuid.New(), uuid.New()}

	tests := []testCase{
		{
			name:       "ToComplete",
			ids:        ids,
			wantStatus: transaction.StatusComplete,
		},
		{
			name:             "ParkedForReconciliation",
			ids:              ids,
			toReconciliation: true,
			wantStatus:       transaction.StatusPendingReconciliation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			repo.EXPECT().
				SetValidated(gomock.Any(), tt.ids, tt.wantStatus).
				Return(nil)

			svc := transaction.NewService(repo)
			assert.NoError(t, svc.ValidateGroup(context.Background(), tt.ids, tt.toReconciliation))
		})
	}
}

func TestService_ValidateGroup_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	assert.NoError(t, svc.ValidateGroup(context.Background(), nil, false))
}

func TestService_DeleteBatch_Chunking(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo).WithChunkSizes(0, 100)

	ids := make([]uuid.UUID, 250)
	for i := range ids {
		ids[i] = uuid.New()
	}

	gomock.InOrder(
		repo.EXPECT().DeleteTransactions(gomock.Any(), gomock.Len(100)).Return(nil),
		repo.EXPECT().DeleteTransactions(gomock.Any(), gomock.Len(100)).Return(nil),
		repo.EXPECT().DeleteTransactions(gomock.Any(), gomock.Len(50)).Return(nil),
	)

	deleted, err := svc.DeleteBatch(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 250, deleted)
}

func TestService_KeepBoth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	id := uuid.New()
	date := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	original := &transaction.Transaction{
		ID:          id,
		Date:        date,
		Source:      "NETTO KBH",
		Amount:      -12550,
		Account:     "Budget",
		Fingerprint: transaction.Fingerprint(date, "NETTO KBH", -12550, "Budget"),
	}
	oldFingerprint := original.Fingerprint

	repo.EXPECT().GetTransaction(gomock.Any(), id).Return(original, nil)
	repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

	got, err := svc.KeepBoth(context.Background(), id)
	require.NoError(t, err)

	// The calendar day survives; only the identity hash diverges.
	assert.Equal(t, date.Year(), got.Date.Year())
	assert.Equal(t, date.Month(), got.Date.Month())
	assert.Equal(t, date.Day(), got.Date.Day())
	assert.NotEqual(t, oldFingerprint, got.Fingerprint)
}
