// Package httphandler serves the JSON endpoints and the HTTP middleware chain.
package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/bestcars/internal/domain/model"
)

// SessionReader resolves a session id to the session marker.
// *application.SessionService satisfies it.
type SessionReader interface {
	Current(ctx context.Context, id string) (*model.Session, error)
}

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	sessions      SessionReader
	sessionCookie string
	metrics       http.Handler
	logger        *slog.Logger
	now           func() time.Time
}

// NewHandler creates a Handler. sessionCookie names the cookie holding the
// session id. metrics may be nil to leave /metrics unregistered.
func NewHandler(sessions SessionReader, sessionCookie string, metrics http.Handler, logger *slog.Logger) *Handler {
	return &Handler{
		sessions:      sessions,
		sessionCookie: sessionCookie,
		metrics:       metrics,
		logger:        logger,
		now:           time.Now,
	}
}

// RegisterAPIRoutes registers the JSON API and metrics routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/session", h.Session)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   h.now().UTC().Format(time.RFC3339),
	})
}

// Session returns the caller's session marker. Backend cookies are never exposed.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	var id string
	if cookie, err := r.Cookie(h.sessionCookie); err == nil {
		id = cookie.Value
	}

	session, err := h.sessions.Current(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load session", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}
