package repository

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thuan-cell/thuan-cell/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

type sessionRecord struct {
	session   *models.Session
	exporting bool
}

// SessionStore keeps every evaluation session in memory. Nothing is written to
// disk; a restart starts everyone over.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionRecord
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*sessionRecord)}
}

// Create starts a new empty session and returns a copy of it.
func (s *SessionStore) Create(now time.Time) *models.Session {
	sess := models.NewSession(uuid.NewString(), now)

	s.mu.Lock()
	s.sessions[sess.ID] = &sessionRecord{session: sess}
	s.mu.Unlock()

	return sess.Clone()
}

// Get returns a copy of the session.
func (s *SessionStore) Get(id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return rec.session.Clone(), nil
}

// Touch records activity on the session. It reports false when the session does
// not exist, for instance after it was swept.
func (s *SessionStore) Touch(id string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[id]
	if !ok {
		return false
	}
	rec.session.UpdatedAt = now
	return true
}

// Update runs fn against a copy of the session and stores the copy only when fn
// succeeds, so a failed intent leaves the stored state untouched. The updated
// copy is returned.
func (s *SessionStore) Update(id string, now time.Time, fn func(*models.Session) error) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	next := rec.session.Clone()
	if err := fn(next); err != nil {
		return rec.session.Clone(), err
	}
	next.UpdatedAt = now
	rec.session = next
	return next.Clone(), nil
}

// BeginExport marks the session busy. It reports false when an export is already
// running for this session.
func (s *SessionStore) BeginExport(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[id]
	if !ok {
		return false, ErrSessionNotFound
	}
	if rec.exporting {
		return false, nil
	}
	rec.exporting = true
	return true, nil
}

// EndExport clears the busy flag. It is safe to call for a swept session.
func (s *SessionStore) EndExport(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.sessions[id]; ok {
		rec.exporting = false
	}
}

// Exporting reports whether an export is in flight for the session.
func (s *SessionStore) Exporting(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[id]
	return ok && rec.exporting
}

// Sweep drops sessions untouched for longer than idle. Sessions with an export
// in flight are kept.
func (s *SessionStore) Sweep(idle time.Duration, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, rec := range s.sessions {
		if rec.exporting {
			continue
		}
		if now.Sub(rec.session.UpdatedAt) > idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
