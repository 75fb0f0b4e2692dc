package model

import (
	"net/http"
	"time"
)

// BackendAuth carries the cookies the backend issued on login. They are replayed
// on calls the backend authorizes, such as review submission and logout.
type BackendAuth struct {
	Cookies []*http.Cookie
}

// Session is the advisory marker that a user is authenticated. The backend
// remains the only authority on authorization.
type Session struct {
	ID         string
	Username   string
	FirstName  string
	LastName   string
	Auth       BackendAuth
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// DisplayName returns "First Last" when both names are known, otherwise the username.
func (s Session) DisplayName() string {
	if s.FirstName != "" && s.LastName != "" {
		return s.FirstName + " " + s.LastName
	}
	return s.Username
}

// Credentials holds a login attempt.
type Credentials struct {
	Username string
	Password string
}

// Registration holds a sign-up attempt.
type Registration struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

// LoginResult is the backend's answer to a successful login or registration.
type LoginResult struct {
	Username string
	Auth     BackendAuth
}
