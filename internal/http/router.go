package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mkrogh/ledger/internal/http/auth"
	"github.com/mkrogh/ledger/internal/http/importfeed"
	"github.com/mkrogh/ledger/internal/http/matching"
	"github.com/mkrogh/ledger/internal/http/reconcile"
	"github.com/mkrogh/ledger/internal/http/split"
	"github.com/mkrogh/ledger/internal/http/transaction"
)

func New(
	authSecret string,
	transactionsV1 *transaction.Handler,
	matchingV1 *matching.Handler,
	splitV1 *split.Handler,
	reconcileV1 *reconcile.Handler,
	importV1 *importfeed.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(authSecret))

		r.Route("/transactions", func(r chi.Router) {
			transactionsV1.Routes(r)
		})

		r.Route("/matching", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			matchingV1.Routes(r)
		})

		r.Route("/split", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			splitV1.Routes(r)
		})

		r.Route("/reconcile", func(r chi.Router) {
			reconcileV1.Routes(r)
		})

		r.Route("/import", importV1.Routes)
	})

	return router
}
