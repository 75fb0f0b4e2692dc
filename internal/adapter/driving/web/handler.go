// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/bestcars/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/bestcars/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/bestcars/internal/application"
	"github.com/ericfisherdev/bestcars/internal/domain/model"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	dealers       *application.DealerService
	sessions      *application.SessionService
	reviews       *application.ReviewService
	views         *application.Registry
	secureCookies bool
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	dealers *application.DealerService,
	sessions *application.SessionService,
	reviews *application.ReviewService,
	views *application.Registry,
	secureCookies bool,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		dealers:       dealers,
		sessions:      sessions,
		reviews:       reviews,
		views:         views,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// currentSession returns the session named by the session cookie, or nil.
// A store failure is logged and treated as logged out.
func (h *Handler) currentSession(r *http.Request) *model.Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	session, err := h.sessions.Current(r.Context(), cookie.Value)
	if err != nil {
		h.logger.Warn("failed to load session", "error", err)
		return nil
	}
	return session
}

// page builds the chrome shared by full pages and returns the session it saw.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, title, nav string) (vm.PageViewModel, *model.Session) {
	session := h.currentSession(r)
	return vm.PageViewModel{
		Title:     title,
		Session:   toSessionViewModel(session),
		CSRFToken: csrfToken(w, r, h.secureCookies),
		Nav:       nav,
	}, session
}

// renderPage renders body inside the layout.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, page vm.PageViewModel, body templ.Component) {
	h.render(w, r, status, templates.Layout(page, body))
}

// render buffers c so a render failure can still become a 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render component", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("failed to write response", "path", r.URL.Path, "error", err)
	}
}

// dealerID parses the {id} path value. It writes a 404 and returns false for
// anything but a positive integer.
func dealerID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

// isHTMX reports whether r was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect navigates to target: HX-Redirect for htmx requests, 303 otherwise.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// load runs one request against res. The returned snapshot is the state to
// render; ok is false when a newer request for the region superseded this
// one, in which case nothing should be swapped into the page.
func load[T any](
	ctx context.Context,
	res *application.Resource[T],
	params string,
	fetch func(context.Context) (T, int, error),
) (application.Snapshot[T], bool) {
	ticket := res.Begin(params)

	value, count, err := fetch(ctx)

	var applied bool
	if err != nil {
		applied = res.Reject(ticket, err)
	} else {
		applied = res.Resolve(ticket, value, count)
	}
	if !applied {
		return application.Snapshot[T]{}, false
	}

	snap := res.Snapshot()
	if snap.Epoch != ticket.Epoch() {
		return application.Snapshot[T]{}, false
	}
	return snap, true
}

// noSwap answers a superseded partial request.
func noSwap(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
