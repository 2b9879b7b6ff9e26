package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetTransactions(ctx context.Context, ids []uuid.UUID) ([]*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	// UpsertByFingerprint merges one batch of records on the fingerprint
	// unique key. Callers are responsible for chunking against backend
	// payload limits.
	UpsertByFingerprint(ctx context.Context, txs []*Transaction) error
	SetValidated(ctx context.Context, ids []uuid.UUID, status Status) error
	DeleteTransactions(ctx context.Context, ids []uuid.UUID) error
}

// Default chunk sizes for bulk writes against the store. The backend
// rejects larger payloads, so bulk operations are fed in slices.
const (
	DefaultUpsertChunk = 500
	DefaultDeleteChunk = 100
)

// BatchError reports a bulk operation that failed partway through. Chunks
// written before the failure are not rolled back; Written says how many
// records made it.
type BatchError struct {
	Written int
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch failed after %d records: %v", e.Written, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

type Service struct {
	repo        Repository
	upsertChunk int
	deleteChunk int
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:        repo,
		upsertChunk: DefaultUpsertChunk,
		deleteChunk: DefaultDeleteChunk,
	}
}

// WithChunkSizes overrides the bulk write chunk sizes. Zero keeps the default.
func (s *Service) WithChunkSizes(upsert, del int) *Service {
	if upsert > 0 {
		s.upsertChunk = upsert
	}

	if del > 0 {
		s.deleteChunk = del
	}

	return s
}

type ListFilter struct {
	UserID    uuid.UUID
	Status    *Status
	Account   *string
	StartDate *time.Time
	EndDate   *time.Time
}

// ImportRow is the minimal shape a bank feed supplies for one posting.
type ImportRow struct {
	Date    time.Time
	Source  string
	Amount  int64
	Account string
}

// FromImportRow builds a new transaction in its post-import state:
// pending triage, zero confidence, fingerprinted for the merge upsert.
func FromImportRow(userID uuid.UUID, row ImportRow) *Transaction {
	tx := &Transaction{
		UserID:      userID,
		Date:        row.Date,
		Source:      row.Source,
		Amount:      row.Amount,
		Account:     row.Account,
		Status:      StatusPendingTriage,
		Recurring:   RecurringNone,
		Budget:      BudgetBudgeted,
		Fingerprint: Fingerprint(row.Date, row.Source, row.Amount, row.Account),
	}
	tx.EnsureBudgetPeriod()

	return tx
}

// Import merges a batch of transactions into the store keyed by
// fingerprint, so re-importing the same bank export is a no-op update
// rather than a duplicate insert. Writes go out in chunks; a failing
// chunk aborts the rest and the returned BatchError carries how many
// records were written before it.
func (s *Service) Import(ctx context.Context, txs []*Transaction) (int, error) {
	written := 0

	for chunk := range chunks(txs, s.upsertChunk) {
		if err := s.repo.UpsertByFingerprint(ctx, chunk); err != nil {
			return written, &BatchError{Written: written, Err: fmt.Errorf("upsert chunk: %w", err)}
		}

		written += len(chunk)
	}

	return written, nil
}

func (s *Service) Create(ctx context.Context, tx *Transaction) error {
	if tx.Fingerprint == "" {
		tx.Fingerprint = Fingerprint(tx.Date, tx.Source, tx.Amount, tx.Account)
	}

	tx.EnsureBudgetPeriod()

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	txs, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}

	for _, tx := range txs {
		tx.EnsureBudgetPeriod()
	}

	return txs, nil
}

func (s *Service) Update(ctx context.Context, tx *Transaction) error {
	tx.RecomputeStatus()

	return s.repo.UpdateTransaction(ctx, tx)
}

// UpdateStatus persists a status change. Setting Reconciled closes the
// transaction's budget visibility as a side effect.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if status != StatusReconciled {
		return s.repo.UpdateStatus(ctx, id, status)
	}

	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	tx.Status = StatusReconciled
	tx.Excluded = true
	tx.Budget = BudgetExclude

	return s.repo.UpdateTransaction(ctx, tx)
}

// ValidateGroup settles every transaction in a pending-validation group:
// confidence flips to 1 and the status lands on Complete, or on Pending
// Reconciliation when the caller parks the group instead.
func (s *Service) ValidateGroup(ctx context.Context, ids []uuid.UUID, toReconciliation bool) error {
	if len(ids) == 0 {
		return nil
	}

	status := StatusComplete
	if toReconciliation {
		status = StatusPendingReconciliation
	}

	if err := s.repo.SetValidated(ctx, ids, status); err != nil {
		return fmt.Errorf("validate group: %w", err)
	}

	return nil
}

// DeleteBatch removes the listed transactions, chunked against the
// backend's delete payload limit. Same partial-failure contract as Import.
func (s *Service) DeleteBatch(ctx context.Context, ids []uuid.UUID) (int, error) {
	deleted := 0

	for chunk := range chunks(ids, s.deleteChunk) {
		if err := s.repo.DeleteTransactions(ctx, chunk); err != nil {
			return deleted, &BatchError{Written: deleted, Err: fmt.Errorf("delete chunk: %w", err)}
		}

		deleted += len(chunk)
	}

	return deleted, nil
}

// KeepBoth resolves a duplicate group by keeping this record as a genuine
// separate posting: the date gains the current wall-clock time-of-day so
// the fingerprint diverges from its twin. Two keep-both calls within the
// same second collide again; the operation is a manual escape hatch, not
// a uniqueness guarantee.
func (s *Service) KeepBoth(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tx.Date = time.Date(
		tx.Date.Year(), tx.Date.Month(), tx.Date.Day(),
		now.Hour(), now.Minute(), now.Second(), 0,
		tx.Date.Location(),
	)
	tx.Fingerprint = Fingerprint(tx.Date, tx.Source, tx.Amount, tx.Account)

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("keep both: %w", err)
	}

	return tx, nil
}

// RecomputeStatus re-derives completability after a manual edit, the same
// way rule application does: complete when excluded or fully categorised,
// otherwise back to triage. Reconciliation parking is left alone.
func (t *Transaction) RecomputeStatus() {
	if t.Status.PendingReconciliation() || t.Status == StatusReconciled || t.Status == StatusExcluded {
		return
	}

	if t.Excluded || (t.Category != nil && t.SubCategory != nil) {
		t.Status = StatusComplete
	} else {
		t.Status = StatusPendingTriage
	}
}

// chunks yields non-empty sub-slices of at most size elements.
func chunks[T any](items []T, size int) func(func([]T) bool) {
	return func(yield func([]T) bool) {
		for start := 0; start < len(items); start += size {
			end := min(start+size, len(items))
			if !yield(items[start:end]) {
				return
			}
		}
	}
}
