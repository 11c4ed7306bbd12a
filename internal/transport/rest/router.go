package rest

import (
	"database/sql"
	"log/slog"

	"github.com/diogopimentels/capicash/internal/checkout"
	"github.com/diogopimentels/capicash/internal/provider"
	"github.com/diogopimentels/capicash/internal/transport/middleware"
	"github.com/diogopimentels/capicash/internal/webhook"
	"github.com/diogopimentels/capicash/internal/withdrawal"
	"github.com/go-chi/chi"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, checkoutHandler *checkout.Handler, webhookHandler *webhook.Handler, withdrawalHandler *withdrawal.Handler, providerHandler *provider.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Buyer-facing routes and provider callbacks carry no seller
		// identity.
		if checkoutHandler != nil {
			r.Post("/checkout", checkoutHandler.CreateSession)
			r.Get("/checkout/{sessionID}", checkoutHandler.GetStatus)
		}
		if webhookHandler != nil {
			webhookHandler.RegisterRoutes(r)
		}

		// Seller routes require the identity header.
		r.Group(func(sr chi.Router) {
			sr.Use(middleware.SellerID)

			if withdrawalHandler != nil {
				withdrawalHandler.RegisterRoutes(sr)
			}
			if providerHandler != nil {
				sr.Put("/sellers/me/payout-key", providerHandler.UpdatePayoutKey)
			}
		})
	})
}
