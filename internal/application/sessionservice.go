package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/bestcars/internal/domain/model"
	"github.com/ericfisherdev/bestcars/internal/domain/port/driven"
)

// ErrMissingCredentials is returned before any backend call when the username
// or password is empty.
var ErrMissingCredentials = errors.New("username and password are required")

// SessionService establishes and clears session markers. The marker is an
// advisory UI hint; the backend authorizes every call on its own.
type SessionService struct {
	api    driven.DealershipAPI
	store  driven.SessionStore
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewSessionService creates a SessionService.
func NewSessionService(api driven.DealershipAPI, store driven.SessionStore, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		api:    api,
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Login authenticates against the backend and stores a new session.
func (s *SessionService) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return nil, ErrMissingCredentials
	}

	result, err := s.api.Login(ctx, creds)
	if err != nil {
		s.logger.Warn("login failed", "username", creds.Username, "error", err)
		return nil, fmt.Errorf("login %q: %w", creds.Username, err)
	}

	return s.establish(ctx, model.Session{Username: result.Username, Auth: result.Auth})
}

// Register creates a backend account and stores a session for it.
func (s *SessionService) Register(ctx context.Context, reg model.Registration) (*model.Session, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Username == "" || reg.Password == "" {
		return nil, ErrMissingCredentials
	}

	result, err := s.api.Register(ctx, reg)
	if err != nil {
		s.logger.Warn("registration failed", "username", reg.Username, "error", err)
		return nil, fmt.Errorf("register %q: %w", reg.Username, err)
	}

	return s.establish(ctx, model.Session{
		Username:  result.Username,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Auth:      result.Auth,
	})
}

// establish stores session under a fresh id. A fresh id on every login keeps
// a pre-set cookie from being promoted into an authenticated one.
func (s *SessionService) establish(ctx context.Context, session model.Session) (*model.Session, error) {
	now := s.now().UTC()
	session.ID = s.newID()
	session.CreatedAt = now
	session.LastSeenAt = now

	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.logger.Info("session established", "username", session.Username)
	return &session, nil
}

// Current returns the session with the given id and records activity on it,
// or (nil, nil) when there is none.
func (s *SessionService) Current(ctx context.Context, id string) (*model.Session, error) {
	if id == "" {
		return nil, nil
	}

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	now := s.now().UTC()
	if err := s.store.Touch(ctx, id, now); err != nil {
		s.logger.Warn("touch session failed", "error", err)
	} else {
		session.LastSeenAt = now
	}

	return session, nil
}

// Logout ends the backend session on a best-effort basis and deletes the
// local record. Only a failure to delete the record is returned.
func (s *SessionService) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	session, err := s.store.Get(ctx, id)
	if err != nil {
		s.logger.Warn("load session for logout failed", "error", err)
	}
	if session != nil {
		if err := s.api.Logout(ctx, session.Auth); err != nil {
			s.logger.Warn("backend logout failed", "username", session.Username, "error", err)
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if session != nil {
		s.logger.Info("session cleared", "username", session.Username)
	}
	return nil
}

// ExpireIdle deletes sessions idle for longer than ttl.
func (s *SessionService) ExpireIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	n, err := s.store.DeleteIdle(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("expire idle sessions: %w", err)
	}
	return n, nil
}
