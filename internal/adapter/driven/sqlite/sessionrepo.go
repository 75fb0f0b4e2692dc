package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/bestcars/internal/adapter/driven/sealing"
	"github.com/ericfisherdev/bestcars/internal/domain/model"
	"github.com/ericfisherdev/bestcars/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port interface.
// Backend cookies are sealed with AES-256-GCM before write and opened after read.
// Timestamps are stored as Unix milliseconds so idle sweeps compare integers.
type SessionRepo struct {
	db     *DB
	sealer *sealing.Sealer
}

// NewSessionRepo creates a new SessionRepo backed by the given DB.
func NewSessionRepo(db *DB, sealer *sealing.Sealer) *SessionRepo {
	return &SessionRepo{db: db, sealer: sealer}
}

// Save stores or replaces the session keyed by its ID.
func (r *SessionRepo) Save(ctx context.Context, session model.Session) error {
	sealed, err := r.sealer.SealAuth(session.Auth)
	if err != nil {
		return fmt.Errorf("seal session %s: %w", session.ID, err)
	}

	now := time.Now().UTC()
	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	lastSeenAt := session.LastSeenAt
	if lastSeenAt.IsZero() {
		lastSeenAt = createdAt
	}

	const query = `
		INSERT INTO sessions (id, username, first_name, last_name, backend_auth, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username     = excluded.username,
			first_name   = excluded.first_name,
			last_name    = excluded.last_name,
			backend_auth = excluded.backend_auth,
			created_at   = excluded.created_at,
			last_seen_at = excluded.last_seen_at`

	_, err = r.db.Writer.ExecContext(ctx, query,
		session.ID, session.Username, session.FirstName, session.LastName, sealed,
		createdAt.UnixMilli(), lastSeenAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

// Get returns the session with the given ID, or (nil, nil) if none exists.
func (r *SessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	const query = `
		SELECT id, username, first_name, last_name, backend_auth, created_at, last_seen_at
		FROM sessions WHERE id = ?`

	var (
		s          model.Session
		sealed     string
		createdAt  int64
		lastSeenAt int64
	)
	err := r.db.Reader.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Username, &s.FirstName, &s.LastName, &sealed, &createdAt, &lastSeenAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	s.Auth, err = r.sealer.OpenAuth(sealed)
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", id, err)
	}
	s.CreatedAt = time.UnixMilli(createdAt).UTC()
	s.LastSeenAt = time.UnixMilli(lastSeenAt).UTC()

	return &s, nil
}

// Touch records activity on a session. Touching a missing session is a no-op.
func (r *SessionRepo) Touch(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE sessions SET last_seen_at = ? WHERE id = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, at.UnixMilli(), id); err != nil {
		return fmt.Errorf("touch session %s: %w", id, err)
	}
	return nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// DeleteIdle removes sessions last seen before cutoff.
func (r *SessionRepo) DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE last_seen_at < ?`
	result, err := r.db.Writer.ExecContext(ctx, query, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete idle sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}
	return n, nil
}
