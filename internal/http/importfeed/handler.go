package importfeed

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkrogh/ledger/internal/http/auth"
	"github.com/mkrogh/ledger/internal/importer"
	"github.com/mkrogh/ledger/internal/matching"
	"github.com/mkrogh/ledger/internal/transaction"
)

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
	matchSvc  *matching.Service
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service, matchSvc *matching.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
		matchSvc:  matchSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importFeed)
}

type importResponse struct {
	Imported   int `json:"imported"`
	Prematched int `json:"prematched"`
}

// importFeed parses an uploaded bank export, pre-applies any rules that
// already resolve the raw sources, and merges the rows into the store by
// fingerprint. Re-uploading the same export is harmless.
func (h *Handler) importFeed(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	account := r.FormValue("account")
	if account == "" {
		http.Error(w, "account field is required", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := h.importSvc.Import(importer.FormatFeed, file, account)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := auth.UserID(r.Context())

	txs := make([]*transaction.Transaction, 0, len(rows))
	prematched := 0

	for _, row := range rows {
		tx := transaction.FromImportRow(userID, row)

		rule, err := h.matchSvc.Resolve(r.Context(), userID, row.Source)
		if err == nil && rule != nil {
			app := rule.Application()
			tx.CleanSource = &app.CleanSource
			tx.Category = app.Category
			tx.SubCategory = app.SubCategory
			tx.Recurring = app.Recurring
			tx.Planned = app.Planned
			tx.Excluded = app.Excluded
			tx.Status = app.Status
			tx.Confidence = 1
			prematched++
		}

		txs = append(txs, tx)
	}

	imported, err := h.txSvc.Import(r.Context(), txs)
	if err != nil {
		// Chunks written before the failure stay written.
		slog.Error("feed import failed", "imported", imported, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(importResponse{Imported: imported, Prematched: prematched}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
