package web

import (
	"errors"
	"net/http"

	"github.com/ericfisherdev/bestcars/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/bestcars/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/bestcars/internal/application"
	"github.com/ericfisherdev/bestcars/internal/domain/model"
	"github.com/ericfisherdev/bestcars/internal/domain/port/driven"
)

const (
	msgMissingCredentials = "Username and password are required."
	msgInvalidCredentials = "Invalid username or password."
	msgAlreadyRegistered  = "The user with same username is already registered."
	msgLoginFailed        = "Login failed. Please try again."
	msgRegisterFailed     = "Registration failed. Please try again."
)

// authFailure maps a login or registration error onto a status and notice.
func authFailure(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, application.ErrMissingCredentials):
		return http.StatusUnprocessableEntity, msgMissingCredentials
	case errors.Is(err, driven.ErrNotAuthenticated):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, driven.ErrAlreadyRegistered):
		return http.StatusConflict, msgAlreadyRegistered
	default:
		return http.StatusBadGateway, fallback
	}
}

// Home renders the landing page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	page, _ := h.page(w, r, "Home", "home")
	h.renderPage(w, r, http.StatusOK, page, pages.Home(page.Session))
}

// LoginPage renders the login form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	page, _ := h.page(w, r, "Login", "login")
	h.renderPage(w, r, http.StatusOK, page, pages.Login(vm.LoginViewModel{CSRFToken: page.CSRFToken}))
}

// Login authenticates the posted credentials. Success sets the session marker
// and navigates home; failure re-renders the form with an inline error.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	creds := model.Credentials{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}

	session, err := h.sessions.Login(r.Context(), creds)
	if err != nil {
		status, msg := authFailure(err, msgLoginFailed)
		page, _ := h.page(w, r, "Login", "login")
		h.renderPage(w, r, status, page, pages.Login(vm.LoginViewModel{
			Username:  creds.Username,
			Error:     msg,
			CSRFToken: page.CSRFToken,
		}))
		return
	}

	h.setSessionCookie(w, session.ID)
	redirect(w, r, "/")
}

// RegisterPage renders the registration form.
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	page, _ := h.page(w, r, "Register", "register")
	h.renderPage(w, r, http.StatusOK, page, pages.Register(vm.RegisterViewModel{CSRFToken: page.CSRFToken}))
}

// Register creates an account from the posted form and logs it in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	reg := model.Registration{
		Username:  r.FormValue("username"),
		Password:  r.FormValue("password"),
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Email:     r.FormValue("email"),
	}

	session, err := h.sessions.Register(r.Context(), reg)
	if err != nil {
		status, msg := authFailure(err, msgRegisterFailed)
		page, _ := h.page(w, r, "Register", "register")
		h.renderPage(w, r, status, page, pages.Register(vm.RegisterViewModel{
			Username:  reg.Username,
			FirstName: reg.FirstName,
			LastName:  reg.LastName,
			Email:     reg.Email,
			Error:     msg,
			CSRFToken: page.CSRFToken,
		}))
		return
	}

	h.setSessionCookie(w, session.ID)
	redirect(w, r, "/")
}

// Logout clears the session marker and navigates to the landing page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.sessions.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Error("failed to clear session", "error", err)
		}
	}

	h.clearSessionCookie(w)
	redirect(w, r, "/")
}
