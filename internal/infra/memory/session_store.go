package memory

import (
	"context"
	"sync"
	"time"

	"quiz-report-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Records are cloned on the way in and out so callers never share selections.
// With a TTL, every Save refreshes the expiry and expired records are dropped
// on Get and by a sweep that runs at most once per TTL.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu        sync.RWMutex
	sessions  map[string]storedSession
	lastSweep time.Time
}

type storedSession struct {
	rec       domain.SessionRecord
	expiresAt time.Time
}

// NewSessionStore keeps sessions until they are deleted.
func NewSessionStore() *SessionStore {
	return NewSessionStoreWithTTL(0)
}

// NewSessionStoreWithTTL expires sessions that were not saved for ttl.
// A non-positive ttl disables expiry.
func NewSessionStoreWithTTL(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]storedSession),
	}
}

func (s *SessionStore) Save(_ context.Context, rec domain.SessionRecord) error {
	rec.State = rec.State.Clone()
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	entry := storedSession{rec: rec}
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}
	s.sessions[rec.ID] = entry
	return nil
}

func (s *SessionStore) Get(_ context.Context, sessionID string) (domain.SessionRecord, error) {
	now := s.clock()
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return domain.SessionRecord{}, domain.ErrSessionNotFound
	}
	if entry.expired(now) {
		s.mu.Lock()
		if cur, ok := s.sessions[sessionID]; ok && cur.expired(now) {
			delete(s.sessions, sessionID)
		}
		s.mu.Unlock()
		return domain.SessionRecord{}, domain.ErrSessionNotFound
	}
	rec := entry.rec
	rec.State = rec.State.Clone()
	return rec, nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len reports how many sessions are held, expired ones included until swept.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// sweepLocked drops expired sessions. s.mu must be held.
func (s *SessionStore) sweepLocked(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastSweep) < s.ttl {
		return
	}
	s.lastSweep = now
	for id, entry := range s.sessions {
		if entry.expired(now) {
			delete(s.sessions, id)
		}
	}
}

func (e storedSession) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}
