package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterDeps is everything the router mounts
type RouterDeps struct {
	Middleware *Middleware
	Duels      *DuelHandler
	Themes     *ThemeHandler
	// RateLimit wraps state-changing duel routes; nil disables limiting
	RateLimit func(http.Handler) http.Handler
}

// SetupRoutes builds the HTTP API
func SetupRoutes(deps RouterDeps) http.Handler {
	limit := deps.RateLimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Logging)

	// Public routes
	r.Get("/healthz", Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.Middleware.RequireAuth)
		r.Route("/themes", deps.Themes.Routes)
		r.Route("/duels", func(r chi.Router) {
			deps.Duels.Routes(r, limit)
		})
	})
	return r
}

// Healthz reports liveness
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
