package web

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ericfisherdev/bestcars/internal/application"
)

const (
	// SessionCookieName carries the session marker id.
	SessionCookieName = "bestcars_session"
	// VisitorCookieName keys a browser's view state.
	VisitorCookieName = "bestcars_visitor"
)

// setSessionCookie sets the session marker for the lifetime of the browser session.
func (h *Handler) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies,
	})
}

// clearSessionCookie expires the session marker.
func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies,
	})
}

// visitor returns the view state of the requesting browser, issuing a
// visitor cookie when the request has no valid one.
func (h *Handler) visitor(w http.ResponseWriter, r *http.Request) *application.VisitorViews {
	if cookie, err := r.Cookie(VisitorCookieName); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return h.views.Visitor(cookie.Value)
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     VisitorCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies,
	})
	return h.views.Visitor(id)
}

// viewParam names the page instance a region request belongs to.
const viewParam = "view"

// newPageView mints the id a page shell hands to its regions.
func newPageView() string {
	return uuid.NewString()
}

// pageView returns the page instance named by the request, or "" when it
// carries none or a malformed one.
func pageView(r *http.Request) string {
	view := r.FormValue(viewParam)
	if _, err := uuid.Parse(view); err != nil {
		return ""
	}
	return view
}
