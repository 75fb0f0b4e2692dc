package application

import (
	"context"
	"log/slog"
	"time"
)

// SessionExpirer deletes idle sessions. *SessionService satisfies it.
type SessionExpirer interface {
	ExpireIdle(ctx context.Context, ttl time.Duration) (int64, error)
}

// SweepResult reports what one janitor pass removed.
type SweepResult struct {
	Visitors int
	Sessions int64
}

// Janitor periodically drops idle view state and expired session records.
type Janitor struct {
	views    *Registry
	sessions SessionExpirer
	viewTTL  time.Duration
	idleTTL  time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// NewJanitor creates a Janitor. sessions may be nil when the session store
// expires records on its own.
func NewJanitor(views *Registry, sessions SessionExpirer, viewTTL, idleTTL, interval time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		views:    views,
		sessions: sessions,
		viewTTL:  viewTTL,
		idleTTL:  idleTTL,
		interval: interval,
		logger:   logger,
	}
}

// Start runs a sweep immediately and then every interval until ctx is
// canceled.
func (j *Janitor) Start(ctx context.Context) {
	j.sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) SweepResult {
	var res SweepResult

	if j.views != nil {
		res.Visitors = j.views.Sweep(j.viewTTL)
	}

	if j.sessions != nil && j.idleTTL > 0 {
		n, err := j.sessions.ExpireIdle(ctx, j.idleTTL)
		if err != nil {
			j.logger.Error("session sweep failed", "error", err)
		}
		res.Sessions = n
	}

	if res.Visitors > 0 || res.Sessions > 0 {
		j.logger.Info("janitor sweep complete", "visitors", res.Visitors, "sessions", res.Sessions)
	}
	return res
}
