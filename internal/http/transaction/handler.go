package transaction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mkrogh/ledger/internal/classify"
	"github.com/mkrogh/ledger/internal/http/auth"
	"github.com/mkrogh/ledger/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/buckets", h.buckets)
	r.Get("/duplicates", h.duplicates)
	r.Post("/duplicates/{id}/keep-both", h.keepBoth)
	r.Post("/validate", h.validate)
	r.Post("/delete", h.deleteBatch)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Patch("/{id}/status", h.updateStatus)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	Date        time.Time `json:"date"`
	Source      string    `json:"source"`
	Amount      int64     `json:"amount"`
	Account     string    `json:"account"`
	Category    *string   `json:"category,omitempty"`
	SubCategory *string   `json:"sub_category,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx := &transaction.Transaction{
		UserID:      auth.UserID(r.Context()),
		Date:        req.Date,
		Source:      req.Source,
		Amount:      req.Amount,
		Account:     req.Account,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Status:      transaction.StatusPendingTriage,
		Recurring:   transaction.RecurringNone,
		Budget:      transaction.BudgetBudgeted,
	}
	tx.RecomputeStatus()

	if err := h.svc.Create(r.Context(), tx); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) listFilter(r *http.Request) transaction.ListFilter {
	filter := transaction.ListFilter{UserID: auth.UserID(r.Context())}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(transaction.Status(s))
	}

	if s := r.URL.Query().Get("account"); s != "" {
		filter.Account = new(s)
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = new(t)
		}
	}

	return filter
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.List(r.Context(), h.listFilter(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// buckets serves the derived triage partition over the user's full
// transaction list. Recomputed per request; classification is pure.
func (h *Handler) buckets(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.List(r.Context(), h.listFilter(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toBucketsResponse(classify.Partition(txs))); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) duplicates(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.List(r.Context(), h.listFilter(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	groups := classify.DuplicateGroups(txs)

	resp := make([]duplicateGroupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, duplicateGroupResponse{
			Date:         g.Key.Date,
			Amount:       g.Key.Amount,
			Source:       g.Key.Source,
			Transactions: toResponseList(g.Transactions),
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) keepBoth(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.KeepBoth(r.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type validateRequest struct {
	IDs              []uuid.UUID `json:"ids"`
	ToReconciliation bool        `json:"to_reconciliation"`
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.ValidateGroup(r.Context(), req.IDs, req.ToReconciliation); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type deleteBatchRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type deleteBatchResponse struct {
	Deleted int `json:"deleted"`
}

func (h *Handler) deleteBatch(w http.ResponseWriter, r *http.Request) {
	var req deleteBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	deleted, err := h.svc.DeleteBatch(r.Context(), req.IDs)
	if err != nil {
		// Earlier chunks are not rolled back; report how far we got.
		slog.Error("bulk delete failed", "deleted", deleted, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(deleteBatchResponse{Deleted: deleted}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateTransactionRequest struct {
	CleanSource *string                `json:"clean_source,omitempty"`
	Category    *string                `json:"category,omitempty"`
	SubCategory *string                `json:"sub_category,omitempty"`
	Planned     *bool                  `json:"planned,omitempty"`
	Recurring   *transaction.Recurring `json:"recurring,omitempty"`
	Excluded    *bool                  `json:"excluded,omitempty"`
	Budget      *transaction.Budget    `json:"budget,omitempty"`
	Entity      *string                `json:"entity,omitempty"`
	Notes       *string                `json:"notes,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if req.CleanSource != nil {
		tx.CleanSource = req.CleanSource
	}

	if req.Category != nil {
		tx.Category = req.Category
	}

	if req.SubCategory != nil {
		tx.SubCategory = req.SubCategory
	}

	if req.Planned != nil {
		tx.Planned = *req.Planned
	}

	if req.Recurring != nil {
		tx.Recurring = *req.Recurring
	}

	if req.Excluded != nil {
		tx.Excluded = *req.Excluded
	}

	if req.Budget != nil {
		tx.Budget = *req.Budget
	}

	if req.Entity != nil {
		tx.Entity = req.Entity
	}

	if req.Notes != nil {
		tx.Notes = *req.Notes
	}

	if err := h.svc.Update(r.Context(), tx); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateStatusRequest struct {
	Status transaction.Status `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), id, req.Status); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if _, err := h.svc.DeleteBatch(r.Context(), []uuid.UUID{id}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
