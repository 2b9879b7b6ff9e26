package split

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mkrogh/ledger/internal/split"
	"github.com/mkrogh/ledger/internal/transaction"
)

type Handler struct {
	svc *split.Service
}

func NewHandler(svc *split.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/{id}", h.split)
}

type itemDTO struct {
	Name        string  `json:"name"`
	Amount      int64   `json:"amount"`
	Category    *string `json:"category,omitempty"`
	SubCategory *string `json:"sub_category,omitempty"`
	Excluded    bool    `json:"excluded"`
	Pending     bool    `json:"pending"`
}

type splitRequest struct {
	Items []itemDTO `json:"items"`
}

type childResponse struct {
	ID          uuid.UUID          `json:"id"`
	ParentID    *uuid.UUID         `json:"parent_id"`
	CleanSource *string            `json:"clean_source"`
	Amount      int64              `json:"amount"`
	Status      transaction.Status `json:"status"`
}

func (h *Handler) split(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items := make([]split.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, split.Item{
			Name:        item.Name,
			Amount:      item.Amount,
			Category:    item.Category,
			SubCategory: item.SubCategory,
			Excluded:    item.Excluded,
			Pending:     item.Pending,
		})
	}

	children, err := h.svc.Split(r.Context(), id, items)
	if err != nil {
		switch {
		case errors.Is(err, transaction.ErrNotFound):
			http.Error(w, "transaction not found", http.StatusNotFound)
		case errors.Is(err, split.ErrNoItems),
			errors.Is(err, split.ErrSplitChild),
			errors.Is(err, split.ErrUnbalanced):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}

		return
	}

	resp := make([]childResponse, 0, len(children))
	for _, c := range children {
		resp = append(resp, childResponse{
			ID:          c.ID,
			ParentID:    c.ParentID,
			CleanSource: c.CleanSource,
			Amount:      c.Amount,
			Status:      c.Status,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
