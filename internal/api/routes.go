package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	// Public click redirector; webhook receivers are also unauthenticated
	// (providers sign nothing useful here, and the handlers treat every
	// payload as untrusted).
	r.Get("/track-click/{slug}", h.TrackClick)
	r.Post("/revenuecat-webhook", h.RevenueCatWebhook)
	r.Post("/attribution-webhook", h.AttributionWebhook)

	r.Post("/sync-all", h.SyncAll)
	r.Post("/sync-revenuecat", h.SyncRevenueCat)
	r.Post("/store-credentials", h.StoreCredentials)

	return r
}
