package core

// scheduler.go runs background maintenance. Sessions idle for longer than
// the TTL are removed so abandoned uploads do not hold memory. The sweeper is
// context-aware and stops with the server.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often expired sessions are removed.
const DefaultSweepInterval = time.Minute

// StartSessionSweeper removes expired sessions every interval until ctx is
// cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("session sweeper started",
		"interval", interval.String(),
		"session_ttl", s.ttl.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *Service) runSweep(ctx context.Context) {
	start := time.Now()
	removed := s.Sweep(ctx)
	if removed > 0 {
		slog.Info("expired sessions removed",
			"removed", removed,
			"remaining", s.SessionCount(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// Sweep removes every expired session and returns how many were removed.
func (s *Service) Sweep(ctx context.Context) int {
	s.mu.Lock()
	removed := s.evictExpiredLocked(s.now())
	s.mu.Unlock()

	for _, sess := range removed {
		s.record(ctx, newAuditEvent(ctx, ActionSessionExpire, sess.ID, sess.sourceName()))
	}
	return len(removed)
}

// evictExpiredLocked deletes expired sessions. s.mu must be held for writing.
func (s *Service) evictExpiredLocked(now time.Time) []*Session {
	var removed []*Session
	for id, sess := range s.sessions {
		sess.mu.Lock()
		expired := sess.expired(now, s.ttl)
		sess.mu.Unlock()
		if expired {
			delete(s.sessions, id)
			removed = append(removed, sess)
		}
	}
	return removed
}
