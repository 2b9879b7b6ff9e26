package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkrogh/ledger/internal/classify"
	"github.com/mkrogh/ledger/internal/transaction"
)

type transactionResponse struct {
	ID          uuid.UUID             `json:"id"`
	Date        time.Time             `json:"date"`
	Source      string                `json:"source"`
	CleanSource *string               `json:"clean_source,omitempty"`
	Amount      int64                 `json:"amount"`
	Account     string                `json:"account"`
	Category    *string               `json:"category,omitempty"`
	SubCategory *string               `json:"sub_category,omitempty"`
	Status      transaction.Status    `json:"status"`
	Confidence  int                   `json:"confidence"`
	Planned     bool                  `json:"planned"`
	Recurring   transaction.Recurring `json:"recurring"`
	Excluded    bool                  `json:"excluded"`
	Budget      transaction.Budget    `json:"budget"`
	Entity      *string               `json:"entity,omitempty"`
	Notes       string                `json:"notes,omitempty"`
	Fingerprint string                `json:"fingerprint"`
	ParentID    *uuid.UUID            `json:"parent_id,omitempty"`
	IsSplit     bool                  `json:"is_split"`
	BudgetMonth int                   `json:"budget_month"`
	BudgetYear  int                   `json:"budget_year"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   *time.Time            `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Date:        tx.Date,
		Source:      tx.Source,
		CleanSource: tx.CleanSource,
		Amount:      tx.Amount,
		Account:     tx.Account,
		Category:    tx.Category,
		SubCategory: tx.SubCategory,
		Status:      tx.Status,
		Confidence:  tx.Confidence,
		Planned:     tx.Planned,
		Recurring:   tx.Recurring,
		Excluded:    tx.Excluded,
		Budget:      tx.Budget,
		Entity:      tx.Entity,
		Notes:       tx.Notes,
		Fingerprint: tx.Fingerprint,
		ParentID:    tx.ParentID,
		IsSplit:     tx.IsSplit,
		BudgetMonth: tx.BudgetMonth,
		BudgetYear:  tx.BudgetYear,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

type duplicateGroupResponse struct {
	Date         string                `json:"date"`
	Amount       int64                 `json:"amount"`
	Source       string                `json:"source"`
	Transactions []transactionResponse `json:"transactions"`
}

type bucketsResponse struct {
	Duplicates            []duplicateGroupResponse `json:"duplicates"`
	PendingSource         []transactionResponse    `json:"pending_source"`
	PendingCategory       []transactionResponse    `json:"pending_category"`
	PendingValidation     []transactionResponse    `json:"pending_validation"`
	PendingReconciliation []transactionResponse    `json:"pending_reconciliation"`
	Complete              []transactionResponse    `json:"complete"`
	Excluded              []transactionResponse    `json:"excluded"`
}

func toBucketsResponse(b *classify.Buckets) bucketsResponse {
	resp := bucketsResponse{
		PendingSource:         toResponseList(b.PendingSource),
		PendingCategory:       toResponseList(b.PendingCategory),
		PendingValidation:     toResponseList(b.PendingValidation),
		PendingReconciliation: toResponseList(b.PendingReconciliation),
		Complete:              toResponseList(b.Complete),
		Excluded:              toResponseList(b.Excluded),
	}

	for _, g := range b.Duplicates {
		resp.Duplicates = append(resp.Duplicates, duplicateGroupResponse{
			Date:         g.Key.Date,
			Amount:       g.Key.Amount,
			Source:       g.Key.Source,
			Transactions: toResponseList(g.Transactions),
		})
	}

	return resp
}
