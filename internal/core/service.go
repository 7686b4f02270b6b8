package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/PoleMap/internal/logging"
	"github.com/JonMunkholm/PoleMap/internal/poles"
)

// Defaults for ServiceConfig fields left at zero.
const (
	DefaultSessionTTL  = 2 * time.Hour
	DefaultMaxSessions = 1000
)

// ServiceConfig tunes a Service.
type ServiceConfig struct {
	SessionTTL         time.Duration
	MaxSessions        int
	MaxConcurrentLoads int
	MaxLoadWait        time.Duration
	Defaults           Settings
}

// Service is the entry point for every pole map operation. It owns the
// session store; each session owns its own table.
type Service struct {
	limiter  *LoadLimiter
	audit    AuditRecorder
	ttl      time.Duration
	max      int
	defaults Settings
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a Service. A nil recorder disables the audit trail.
func NewService(cfg ServiceConfig, recorder AuditRecorder) (*Service, error) {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.Defaults == (Settings{}) {
		cfg.Defaults = DefaultSettings()
	}
	cfg.Defaults = cfg.Defaults.normalized()
	if err := cfg.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("default settings: %w", err)
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}

	return &Service{
		limiter:  NewLoadLimiter(cfg.MaxConcurrentLoads, cfg.MaxLoadWait),
		audit:    recorder,
		ttl:      cfg.SessionTTL,
		max:      cfg.MaxSessions,
		defaults: cfg.Defaults,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}, nil
}

// Limiter exposes the load limiter for status reporting and shutdown.
func (s *Service) Limiter() *LoadLimiter {
	return s.limiter
}

// Defaults returns the settings new sessions start with.
func (s *Service) Defaults() Settings {
	return s.defaults
}

// Load parses an uploaded file and opens a session for it.
//
// A file that cannot be parsed returns *poles.LoadError. A file with a header
// but no rows returns ErrEmptyTable and opens no session.
func (s *Service) Load(ctx context.Context, name string, r io.Reader) (*SessionSummary, error) {
	logger := logging.WithFields(ctx, "file", name)

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("load refused", "error", err)
		return nil, err
	}
	start := time.Now()
	table, err := poles.Load(name, r)
	s.limiter.Release()

	if err != nil {
		logger.Info("load failed", "error", err)
		ev := newAuditEvent(ctx, ActionLoadRejected, "", name)
		ev.Reason = toPgText(err.Error())
		s.record(ctx, ev)
		return nil, err
	}
	if table.Empty() {
		logger.Info("load produced empty table")
		ev := newAuditEvent(ctx, ActionLoadRejected, "", name)
		ev.Reason = toPgText(ErrEmptyTable.Error())
		s.record(ctx, ev)
		return nil, ErrEmptyTable
	}

	now := s.now()
	sess := newSession(uuid.NewString(), table, s.defaults, now)
	if err := s.put(ctx, sess, now); err != nil {
		logger.Warn("session store full", "error", err)
		return nil, err
	}

	logger.Info("file loaded",
		"session_id", sess.ID,
		"rows", table.Stats.Rows,
		"valid_rows", table.Stats.ValidRows,
		"unparsable_cells", table.Stats.UnparsableCells,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	ev := newAuditEvent(ctx, ActionLoad, sess.ID, name)
	ev.Rows = toPgInt4(table.Stats.Rows)
	ev.ValidRows = toPgInt4(table.Stats.ValidRows)
	s.record(ctx, ev)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sum := sess.summary(s.ttl)
	return &sum, nil
}

// Session returns the summary of session id.
func (s *Service) Session(ctx context.Context, id string) (*SessionSummary, error) {
	var sum SessionSummary
	err := s.withSession(id, func(sess *Session) error {
		sum = sess.summary(s.ttl)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// Close removes session id.
func (s *Service) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.record(ctx, newAuditEvent(ctx, ActionSessionClose, id, sess.sourceName()))
	logging.FromContext(ctx).Info("session closed", "session_id", id)
	return nil
}

// Rows returns every row of the session's table, valid or not.
func (s *Service) Rows(ctx context.Context, id string) ([]RowView, error) {
	var rows []RowView
	err := s.withSession(id, func(sess *Session) error {
		rows = make([]RowView, sess.table.Len())
		for i, rec := range sess.table.Records {
			rows[i] = NewRowView(i, rec)
		}
		return nil
	})
	return rows, err
}

// Row returns a single row; the edit form uses it to pre-fill coordinates.
func (s *Service) Row(ctx context.Context, id string, index int) (RowView, error) {
	var row RowView
	err := s.withSession(id, func(sess *Session) error {
		rec, err := sess.table.At(index)
		if err != nil {
			return err
		}
		row = NewRowView(index, rec)
		return nil
	})
	return row, err
}

// Render runs a placement pass over the session's current table.
func (s *Service) Render(ctx context.Context, id string) (*RenderResult, error) {
	var res *RenderResult
	err := s.withSession(id, func(sess *Session) error {
		res = sess.render()
		return nil
	})
	return res, err
}

// UpdateSettings replaces the session's settings and re-renders. Invalid
// settings return ErrInvalidSettings and leave the session unchanged.
func (s *Service) UpdateSettings(ctx context.Context, id string, settings Settings) (*RenderResult, error) {
	settings = settings.normalized()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	var res *RenderResult
	err := s.withSession(id, func(sess *Session) error {
		sess.settings = settings
		res = sess.render()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, newAuditEvent(ctx, ActionSettings, id, res.Source))
	return res, nil
}

// EditCoordinates moves one pole and re-renders the whole table.
// Out-of-range indices return *poles.IndexError; NaN or infinite coordinates
// return ErrInvalidCoordinate. Either way the table is untouched.
func (s *Service) EditCoordinates(ctx context.Context, id string, index int, lat, lon float64) (*RenderResult, error) {
	if !finite(lat) || !finite(lon) {
		return nil, fmt.Errorf("%w: latitude %v, longitude %v", ErrInvalidCoordinate, lat, lon)
	}

	var (
		res    *RenderResult
		before poles.PoleRecord
	)
	err := s.withSession(id, func(sess *Session) error {
		rec, err := sess.table.At(index)
		if err != nil {
			return err
		}
		before = rec
		if err := sess.table.EditCoordinates(index, lat, lon); err != nil {
			return err
		}
		res = sess.render()
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.WithFields(ctx, "session_id", id).Info("coordinates edited",
		"index", index,
		"latitude", poles.FormatCoordinate(lat),
		"longitude", poles.FormatCoordinate(lon),
	)

	ev := newAuditEvent(ctx, ActionEditCoordinate, id, res.Source)
	ev.RowIndex = toPgInt4(index)
	ev.OldLatitude = before.Latitude
	ev.OldLongitude = before.Longitude
	ev.NewLatitude = pgtype.Float8{Float64: lat, Valid: true}
	ev.NewLongitude = pgtype.Float8{Float64: lon, Valid: true}
	s.record(ctx, ev)

	return res, nil
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// withSession runs fn with the session locked and refreshes its idle timer.
func (s *Service) withSession(id string, fn func(*Session) error) error {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := s.now()
	if sess.expired(now, s.ttl) {
		return ErrSessionNotFound
	}
	sess.touch(now)
	return fn(sess)
}

// put stores sess, evicting expired sessions first when the store is full.
func (s *Service) put(ctx context.Context, sess *Session, now time.Time) error {
	s.mu.Lock()
	var evicted []*Session
	if len(s.sessions) >= s.max {
		evicted = s.evictExpiredLocked(now)
	}
	full := len(s.sessions) >= s.max
	if !full {
		s.sessions[sess.ID] = sess
	}
	s.mu.Unlock()

	for _, old := range evicted {
		s.record(ctx, newAuditEvent(ctx, ActionSessionExpire, old.ID, old.sourceName()))
	}
	if full {
		return ErrTooManySessions
	}
	return nil
}

func (s *Service) record(ctx context.Context, ev AuditEvent) {
	// Audit failures never fail the user's request.
	if err := s.audit.Record(context.WithoutCancel(ctx), ev); err != nil {
		logging.FromContext(ctx).Warn("audit record failed",
			"action", ev.Action,
			"error", err,
		)
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsNotFound reports whether err means the session does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
