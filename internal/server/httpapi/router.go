// Package httpapi exposes the sync server's HTTP surface: a health probe,
// verifier-based session issuance, and the authenticated envelope endpoints.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

// NewRouter mounts the API:
//
//	GET    /api/v1/health               → liveness probe (public)
//	POST   /api/v1/session              → exchange account_id+verifier for a token (public)
//	GET    /api/v1/envelopes?since=N    → envelopes modified after N (authed)
//	PUT    /api/v1/envelopes/{id}       → upsert one envelope (authed)
//	DELETE /api/v1/envelopes/{id}       → tombstone one envelope (authed)
func NewRouter(h *Handler, logger logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(withRequestLogging(logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Post("/session", h.Session)

		r.Group(func(r chi.Router) {
			r.Use(withTokenAuth(h.sessions))

			r.Get("/envelopes", h.ListEnvelopes)
			r.Put("/envelopes/{id}", h.PutEnvelope)
			r.Delete("/envelopes/{id}", h.DeleteEnvelope)
		})
	})

	return r
}
