package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Pages serve the HTML shells, /app/* serves the htmx partials that fill
// their data-bound regions, and every POST is CSRF-checked.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.csrfProtect(h.Login))
	mux.HandleFunc("GET /register", h.RegisterPage)
	mux.HandleFunc("POST /register", h.csrfProtect(h.Register))
	mux.HandleFunc("POST /logout", h.csrfProtect(h.Logout))
	mux.HandleFunc("GET /dealers", h.DealersPage)
	mux.HandleFunc("GET /dealer/{id}", h.DealerPage)
	mux.HandleFunc("GET /postreview/{id}", h.PostReviewPage)
	mux.HandleFunc("POST /postreview/{id}", h.csrfProtect(h.SubmitReview))

	// Partial routes.
	mux.HandleFunc("GET /app/dealers", h.DealerListPartial)
	mux.HandleFunc("GET /app/dealers/{id}", h.DealerDetailPartial)
	mux.HandleFunc("GET /app/dealers/{id}/review-form", h.ReviewFormPartial)
}
