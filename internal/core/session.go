package core

import (
	"sync"
	"time"

	"github.com/JonMunkholm/PoleMap/internal/overlay"
	"github.com/JonMunkholm/PoleMap/internal/poles"
)

// Session owns one uploaded table and the settings it is drawn with. Its
// mutex serialises loads, edits and renders so each request sees the table
// either fully before or fully after another request's change.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	table      *poles.PoleTable
	settings   Settings
	lastAccess time.Time
}

func newSession(id string, table *poles.PoleTable, settings Settings, now time.Time) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  now,
		table:      table,
		settings:   settings,
		lastAccess: now,
	}
}

// SessionSummary describes a session without its rows.
type SessionSummary struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	Stats      poles.LoadStats `json:"stats"`
	Settings   Settings        `json:"settings"`
	CreatedAt  time.Time       `json:"created_at"`
	LastAccess time.Time       `json:"last_access"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

// RenderResult is one full placement pass over a session's table.
type RenderResult struct {
	SessionID  string              `json:"session_id"`
	Source     string              `json:"source"`
	View       overlay.MapView     `json:"view"`
	Directives []overlay.Directive `json:"directives"`
	Settings   Settings            `json:"settings"`
	Stats      poles.LoadStats     `json:"stats"`
}

// RowView is one table row as shown by the edit surface. Missing values are
// nil.
type RowView struct {
	Index     int      `json:"index"`
	Number    *string  `json:"number"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Valid     bool     `json:"valid"`
}

// NewRowView converts record i to its display form.
func NewRowView(i int, r poles.PoleRecord) RowView {
	v := RowView{Index: i, Valid: r.Valid()}
	if r.Number.Valid {
		s := r.Number.String
		v.Number = &s
	}
	if r.Latitude.Valid {
		f := r.Latitude.Float64
		v.Latitude = &f
	}
	if r.Longitude.Valid {
		f := r.Longitude.Float64
		v.Longitude = &f
	}
	return v
}

func (s *Session) sourceName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Source
}

// The methods below assume s.mu is held.

func (s *Session) touch(now time.Time) {
	s.lastAccess = now
}

func (s *Session) summary(ttl time.Duration) SessionSummary {
	return SessionSummary{
		ID:         s.ID,
		Source:     s.table.Source,
		Stats:      s.table.Stats,
		Settings:   s.settings,
		CreatedAt:  s.CreatedAt,
		LastAccess: s.lastAccess,
		ExpiresAt:  s.lastAccess.Add(ttl),
	}
}

func (s *Session) render() *RenderResult {
	return &RenderResult{
		SessionID:  s.ID,
		Source:     s.table.Source,
		View:       overlay.NewView(s.table, s.settings.Mode, s.settings.Tiles),
		Directives: overlay.PlaceMarkers(s.table, s.settings.Icon, s.settings.Label),
		Settings:   s.settings,
		Stats:      s.table.Stats,
	}
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.lastAccess) > ttl
}
