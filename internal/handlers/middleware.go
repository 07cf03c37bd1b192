package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const PlayerContextKey ContextKey = "player"

// PlayerVerifier resolves a bearer token to a player id
type PlayerVerifier interface {
	PlayerID(token string) (string, error)
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	verifier PlayerVerifier
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(verifier PlayerVerifier) *Middleware {
	return &Middleware{verifier: verifier}
}

// RequireAuth is middleware that requires a valid bearer token.
// Browsers cannot set headers on websocket upgrades, so a token query parameter is accepted too.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondWithError(w, http.StatusUnauthorized, KindUnauthenticated, ErrUnauthenticated, "", nil)
			return
		}

		playerID, err := m.verifier.PlayerID(token)
		if err != nil {
			slog.Debug("Rejected bearer token", "error", err, "path", r.URL.Path)
			respondWithError(w, http.StatusUnauthorized, KindUnauthenticated, ErrUnauthenticated, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), PlayerContextKey, playerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// GetPlayerFromContext retrieves the authenticated player id from the request context
func GetPlayerFromContext(ctx context.Context) string {
	playerID, _ := ctx.Value(PlayerContextKey).(string)
	return playerID
}

// PlayerKey buckets rate limits by authenticated player
func PlayerKey(r *http.Request) string {
	if id := GetPlayerFromContext(r.Context()); id != "" {
		return id
	}
	return r.RemoteAddr
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
