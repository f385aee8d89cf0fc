package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/signup", h.signup)
		r.Post("/api/auth/login", h.login)
		r.Get("/api/version/", h.getServerVersion)
	})

	// routes for authenticated and not revoked accounts
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Delete("/api/auth/account", h.deleteAccount)
		r.Patch("/api/sync/bookmarks", h.syncBookmarks)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
