package matching

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mkrogh/ledger/internal/http/auth"
	"github.com/mkrogh/ledger/internal/matching"
	"github.com/mkrogh/ledger/internal/transaction"
)

type Handler struct {
	svc   *matching.Service
	txSvc *transaction.Service
}

func NewHandler(svc *matching.Service, txSvc *transaction.Service) *Handler {
	return &Handler{svc: svc, txSvc: txSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/rules/resolve", h.resolve)
	r.Post("/rules/apply", h.apply)
	r.Get("/rules/clean-names", h.cleanNames)
	r.Get("/similar", h.similar)
}

type ruleDTO struct {
	RawName        string                `json:"raw_name"`
	CleanName      string                `json:"clean_name"`
	Category       *string               `json:"category,omitempty"`
	SubCategory    *string               `json:"sub_category,omitempty"`
	Recurring      transaction.Recurring `json:"recurring"`
	PlannedDefault bool                  `json:"planned_default"`
	ExcludeDefault bool                  `json:"exclude_default"`
	SkipTriage     bool                  `json:"skip_triage"`
}

func toRuleDTO(r *matching.Rule) ruleDTO {
	return ruleDTO{
		RawName:        r.RawName,
		CleanName:      r.CleanName,
		Category:       r.Category,
		SubCategory:    r.SubCategory,
		Recurring:      r.Recurring,
		PlannedDefault: r.PlannedDefault,
		ExcludeDefault: r.ExcludeDefault,
		SkipTriage:     r.SkipTriage,
	}
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	rawName := r.URL.Query().Get("raw_name")
	if rawName == "" {
		http.Error(w, "raw_name query parameter is required", http.StatusBadRequest)
		return
	}

	rule, err := h.svc.Resolve(r.Context(), auth.UserID(r.Context()), rawName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if rule == nil {
		http.Error(w, "no rule for source", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toRuleDTO(rule)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type applyRequest struct {
	Rule           ruleDTO     `json:"rule"`
	TransactionIDs []uuid.UUID `json:"transaction_ids"`
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rule := &matching.Rule{
		UserID:         auth.UserID(r.Context()),
		RawName:        req.Rule.RawName,
		CleanName:      req.Rule.CleanName,
		Category:       req.Rule.Category,
		SubCategory:    req.Rule.SubCategory,
		Recurring:      req.Rule.Recurring,
		PlannedDefault: req.Rule.PlannedDefault,
		ExcludeDefault: req.Rule.ExcludeDefault,
		SkipTriage:     req.Rule.SkipTriage,
	}

	if err := h.svc.Apply(r.Context(), rule, req.TransactionIDs); err != nil {
		if errors.Is(err, matching.ErrEmptyRule) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cleanNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.KnownCleanNames(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	list := make([]string, 0, len(names))
	for name := range names {
		list = append(list, name)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(list); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type matchDTO struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Source        string    `json:"source"`
	Score         int       `json:"score"`
	Confident     bool      `json:"confident"`
}

// similar previews which historic transactions look like the same
// recurring source, for bulk rule application. Confident matches are
// pre-selected by the client; the rest show a partial marker.
func (h *Handler) similar(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "id query parameter is required", http.StatusBadRequest)
		return
	}

	ref, err := h.txSvc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	pool, err := h.txSvc.List(r.Context(), transaction.ListFilter{UserID: auth.UserID(r.Context())})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	matches := h.svc.FindSimilar(ref, pool, r.URL.Query().Get("hint"))

	resp := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		resp = append(resp, matchDTO{
			TransactionID: m.Transaction.ID,
			Source:        m.Transaction.Source,
			Score:         m.Score,
			Confident:     m.Confident,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
