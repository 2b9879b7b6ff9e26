package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/mkrogh/ledger/internal/config"
	"github.com/mkrogh/ledger/internal/database"
	ledgerHttp "github.com/mkrogh/ledger/internal/http"
	importHandler "github.com/mkrogh/ledger/internal/http/importfeed"
	matchingHandler "github.com/mkrogh/ledger/internal/http/matching"
	reconcileHandler "github.com/mkrogh/ledger/internal/http/reconcile"
	splitHandler "github.com/mkrogh/ledger/internal/http/split"
	txHandler "github.com/mkrogh/ledger/internal/http/transaction"
	"github.com/mkrogh/ledger/internal/importer"
	"github.com/mkrogh/ledger/internal/matching"
	matchingStore "github.com/mkrogh/ledger/internal/matching/store"
	"github.com/mkrogh/ledger/internal/reconcile"
	reconcileStore "github.com/mkrogh/ledger/internal/reconcile/store"
	"github.com/mkrogh/ledger/internal/split"
	splitStore "github.com/mkrogh/ledger/internal/split/store"
	"github.com/mkrogh/ledger/internal/transaction"
	txStore "github.com/mkrogh/ledger/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	noiseFilters := append(matching.DefaultNoiseFilters, cfg.Matching.NoiseFilters...)
	matcher := matching.NewMatcher(cfg.Matching.Threshold, cfg.Matching.Floor, noiseFilters)

	transactions := txStore.New(db)

	var (
		transactionService = transaction.NewService(transactions).
					WithChunkSizes(cfg.Batch.UpsertChunk, cfg.Batch.DeleteChunk)
		matchingService  = matching.NewService(matchingStore.New(db), transactions, matcher)
		splitService     = split.NewService(splitStore.New(db))
		reconcileService = reconcile.NewService(reconcileStore.New(db))
		importService    = importer.NewService()
	)

	var (
		transactionH = txHandler.NewHandler(transactionService)
		matchingH    = matchingHandler.NewHandler(matchingService, transactionService)
		splitH       = splitHandler.NewHandler(splitService)
		reconcileH   = reconcileHandler.NewHandler(reconcileService, transactionService)
		importH      = importHandler.NewHandler(importService, transactionService, matchingService)
	)

	router := ledgerHttp.New(cfg.Auth.Secret, transactionH, matchingH, splitH, reconcileH, importH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
