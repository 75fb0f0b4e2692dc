package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/bestcars/internal/domain/model"
)

// SessionStore defines the driven port for session marker persistence.
type SessionStore interface {
	// Save stores or replaces the session keyed by its ID.
	Save(ctx context.Context, session model.Session) error

	// Get returns the session with the given ID, or (nil, nil) if none exists.
	Get(ctx context.Context, id string) (*model.Session, error)

	// Touch records activity on a session so idle collection skips it.
	Touch(ctx context.Context, id string, at time.Time) error

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteIdle removes sessions whose last activity is before cutoff and
	// returns how many were removed.
	DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error)
}
