package reconcile

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mkrogh/ledger/internal/http/auth"
	"github.com/mkrogh/ledger/internal/reconcile"
	"github.com/mkrogh/ledger/internal/transaction"
)

type Handler struct {
	svc   *reconcile.Service
	txSvc *transaction.Service
}

func NewHandler(svc *reconcile.Service, txSvc *transaction.Service) *Handler {
	return &Handler{svc: svc, txSvc: txSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/groups", h.groups)
	r.Post("/close", h.close)
}

type groupMemberDTO struct {
	ID     uuid.UUID `json:"id"`
	Date   string    `json:"date"`
	Source string    `json:"source"`
	Amount int64     `json:"amount"`
}

type groupDTO struct {
	Key          string           `json:"key"`
	Count        int              `json:"count"`
	Total        int64            `json:"total"`
	Balanced     bool             `json:"balanced"`
	Transactions []groupMemberDTO `json:"transactions"`
}

func (h *Handler) groups(w http.ResponseWriter, r *http.Request) {
	txs, err := h.txSvc.List(r.Context(), transaction.ListFilter{UserID: auth.UserID(r.Context())})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	groups := reconcile.Groups(txs)

	resp := make([]groupDTO, 0, len(groups))

	for _, g := range groups {
		dto := groupDTO{
			Key:      g.Key,
			Count:    g.Count,
			Total:    g.Total,
			Balanced: reconcile.Balanced(g.Transactions),
		}

		for _, tx := range g.Transactions {
			dto.Transactions = append(dto.Transactions, groupMemberDTO{
				ID:     tx.ID,
				Date:   tx.Date.Format("2006-01-02"),
				Source: tx.Source,
				Amount: tx.Amount,
			})
		}

		resp = append(resp, dto)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type closeRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Close(r.Context(), req.IDs); err != nil {
		switch {
		case errors.Is(err, reconcile.ErrEmptySelection),
			errors.Is(err, reconcile.ErrUnbalanced):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, transaction.ErrNotFound):
			http.Error(w, "selection contains unknown transactions", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
