// Package redis stores login sessions in Redis, letting several server
// instances share them.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ericfisherdev/bestcars/internal/adapter/driven/sealing"
	"github.com/ericfisherdev/bestcars/internal/domain/model"
	"github.com/ericfisherdev/bestcars/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionStore)(nil)

const keyPrefix = "bestcars:session:"

// SessionStore is the Redis implementation of the SessionStore port interface.
// Each session is one JSON value whose TTL is refreshed on Save and Touch, so
// Redis expires idle sessions on its own. DeleteIdle sweeps whatever is left.
type SessionStore struct {
	client  *goredis.Client
	sealer  *sealing.Sealer
	idleTTL time.Duration

	// beforeTouchWrite runs between the read and the write of Touch. Tests only.
	beforeTouchWrite func()
}

// NewClient creates a go-redis client for the given address.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
}

// NewSessionStore creates a SessionStore. A zero idleTTL stores sessions without expiry.
func NewSessionStore(client *goredis.Client, sealer *sealing.Sealer, idleTTL time.Duration) *SessionStore {
	return &SessionStore{client: client, sealer: sealer, idleTTL: idleTTL}
}

type sessionRecord struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	BackendAuth string `json:"backend_auth,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	LastSeenAt  int64  `json:"last_seen_at"`
}

// Ping checks connectivity.
func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Save stores or replaces the session keyed by its ID.
func (s *SessionStore) Save(ctx context.Context, session model.Session) error {
	sealed, err := s.sealer.SealAuth(session.Auth)
	if err != nil {
		return fmt.Errorf("seal session %s: %w", session.ID, err)
	}

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.LastSeenAt.IsZero() {
		session.LastSeenAt = session.CreatedAt
	}

	return s.put(ctx, sessionRecord{
		ID:          session.ID,
		Username:    session.Username,
		FirstName:   session.FirstName,
		LastName:    session.LastName,
		BackendAuth: sealed,
		CreatedAt:   session.CreatedAt.UnixMilli(),
		LastSeenAt:  session.LastSeenAt.UnixMilli(),
	})
}

// Get returns the session with the given ID, or (nil, nil) if none exists.
func (s *SessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	rec, err := s.get(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}

	auth, err := s.sealer.OpenAuth(rec.BackendAuth)
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", id, err)
	}

	return &model.Session{
		ID:         rec.ID,
		Username:   rec.Username,
		FirstName:  rec.FirstName,
		LastName:   rec.LastName,
		Auth:       auth,
		CreatedAt:  time.UnixMilli(rec.CreatedAt).UTC(),
		LastSeenAt: time.UnixMilli(rec.LastSeenAt).UTC(),
	}, nil
}

// Touch records activity and restarts the idle TTL. Touching a missing session
// is a no-op, including one deleted while the touch is in flight.
func (s *SessionStore) Touch(ctx context.Context, id string, at time.Time) error {
	rec, err := s.get(ctx, id)
	if err != nil || rec == nil {
		return err
	}
	rec.LastSeenAt = at.UnixMilli()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	if s.beforeTouchWrite != nil {
		s.beforeTouchWrite()
	}
	// XX only replaces a key that still exists.
	if err := s.client.SetXX(ctx, keyPrefix+id, data, s.idleTTL).Err(); err != nil {
		return fmt.Errorf("touch session %s: %w", id, err)
	}
	return nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// DeleteIdle removes sessions last seen before cutoff that Redis has not yet expired.
func (s *SessionStore) DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		rec, err := s.get(ctx, key[len(keyPrefix):])
		if err != nil {
			return removed, err
		}
		if rec == nil || rec.LastSeenAt >= cutoff.UnixMilli() {
			continue
		}

		n, err := s.client.Del(ctx, key).Result()
		if err != nil {
			return removed, fmt.Errorf("delete idle session: %w", err)
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("scan sessions: %w", err)
	}

	return removed, nil
}

func (s *SessionStore) get(ctx context.Context, id string) (*sessionRecord, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &rec, nil
}

func (s *SessionStore) put(ctx context.Context, rec sessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", rec.ID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+rec.ID, data, s.idleTTL).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	return nil
}
