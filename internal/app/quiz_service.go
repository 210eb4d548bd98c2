package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-report-service/internal/domain"
)

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Save(ctx context.Context, rec domain.SessionRecord) error
	Get(ctx context.Context, sessionID string) (domain.SessionRecord, error)
	Delete(ctx context.Context, sessionID string) error
}

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.Bank, error)
}

// QuizService contains the quiz use cases. Each session is an independent
// SessionRecord; operations load it, run the Machine and save it back.
type QuizService struct {
	sessions SessionRepository
	banks    BankRepository
	now      func() time.Time
	newID    func() string

	locks sync.Map // session id -> *sync.Mutex
}

func NewQuizService(sessions SessionRepository, banks BankRepository) *QuizService {
	return NewQuizServiceWithClock(sessions, banks, time.Now)
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(sessions SessionRepository, banks BankRepository, now func() time.Time) *QuizService {
	return &QuizService{
		sessions: sessions,
		banks:    banks,
		now:      now,
		newID:    uuid.NewString,
	}
}

// CreateSession opens a NotStarted session over the given bank.
func (s *QuizService) CreateSession(ctx context.Context, bankID string) (domain.Snapshot, error) {
	bank, err := s.banks.GetBank(ctx, bankID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	m := NewMachineWithClock(bank, s.now)
	rec := domain.SessionRecord{
		ID:        s.newID(),
		BankID:    bank.ID,
		State:     m.NewState(),
		UpdatedAt: s.now(),
	}
	if err := s.sessions.Save(ctx, rec); err != nil {
		return domain.Snapshot{}, err
	}
	return s.snapshot(m, rec), nil
}

// Start begins the quiz. A repeated Start is rejected with ErrAlreadyStarted
// and leaves the session untouched.
func (s *QuizService) Start(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	return s.mutate(ctx, sessionID, func(m *Machine, st *domain.State) error {
		return m.Start(st)
	})
}

// Select records the user's choice for the current question.
func (s *QuizService) Select(ctx context.Context, sessionID string, choice int) (domain.Snapshot, error) {
	return s.mutate(ctx, sessionID, func(m *Machine, st *domain.State) error {
		return m.Select(st, choice)
	})
}

// Advance moves past the current question or completes the quiz.
func (s *QuizService) Advance(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	return s.mutate(ctx, sessionID, func(m *Machine, st *domain.State) error {
		return m.Advance(st)
	})
}

// Reset returns the session to NotStarted from any phase.
func (s *QuizService) Reset(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	return s.mutate(ctx, sessionID, func(m *Machine, st *domain.State) error {
		m.Reset(st)
		return nil
	})
}

// Reveal returns the correct answer for the current question without changing state.
func (s *QuizService) Reveal(ctx context.Context, sessionID string) (domain.Reveal, error) {
	var reveal domain.Reveal
	err := s.view(ctx, sessionID, func(m *Machine, rec domain.SessionRecord) error {
		var err error
		reveal, err = m.Reveal(&rec.State)
		return err
	})
	return reveal, err
}

// State returns the current render snapshot.
func (s *QuizService) State(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := s.view(ctx, sessionID, func(m *Machine, rec domain.SessionRecord) error {
		snap = s.snapshot(m, rec)
		return nil
	})
	return snap, err
}

// Score returns the live score, valid in any phase.
func (s *QuizService) Score(ctx context.Context, sessionID string) (int, error) {
	var score int
	err := s.view(ctx, sessionID, func(m *Machine, rec domain.SessionRecord) error {
		score = m.Score(rec.State)
		return nil
	})
	return score, err
}

// Report formats the result of a completed session.
func (s *QuizService) Report(ctx context.Context, sessionID string) (domain.Report, error) {
	var report domain.Report
	err := s.view(ctx, sessionID, func(m *Machine, rec domain.SessionRecord) error {
		var err error
		report, err = m.Report(rec.State)
		return err
	})
	return report, err
}

// Close drops the session.
func (s *QuizService) Close(ctx context.Context, sessionID string) error {
	mu := s.lock(sessionID)
	defer mu.Unlock()
	defer s.locks.Delete(sessionID)
	return s.sessions.Delete(ctx, sessionID)
}

// mutate runs fn on a copy of the session state and persists it only when fn
// succeeds, so a rejected operation never changes the stored session.
func (s *QuizService) mutate(ctx context.Context, sessionID string, fn func(*Machine, *domain.State) error) (domain.Snapshot, error) {
	mu := s.lock(sessionID)
	defer mu.Unlock()

	m, rec, err := s.load(ctx, sessionID)
	if err != nil {
		s.forgetMissing(sessionID, err)
		return domain.Snapshot{}, err
	}

	next := rec.State.Clone()
	if err := fn(m, &next); err != nil {
		return s.snapshot(m, rec), err
	}

	rec.State = next
	rec.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, rec); err != nil {
		return domain.Snapshot{}, err
	}
	return s.snapshot(m, rec), nil
}

func (s *QuizService) view(ctx context.Context, sessionID string, fn func(*Machine, domain.SessionRecord) error) error {
	mu := s.lock(sessionID)
	defer mu.Unlock()

	m, rec, err := s.load(ctx, sessionID)
	if err != nil {
		s.forgetMissing(sessionID, err)
		return err
	}
	return fn(m, rec)
}

func (s *QuizService) load(ctx context.Context, sessionID string) (*Machine, domain.SessionRecord, error) {
	rec, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.SessionRecord{}, err
	}
	bank, err := s.banks.GetBank(ctx, rec.BankID)
	if err != nil {
		return nil, domain.SessionRecord{}, err
	}
	m := NewMachineWithClock(bank, s.now)
	if len(rec.State.Selections) != bank.Len() || (rec.State.Phase == domain.PhaseInProgress && rec.State.CurrentIndex >= bank.Len()) {
		// The bank changed under a stored session; its selections no longer line up.
		log.Printf("session %s does not match bank %s, resetting", rec.ID, rec.BankID)
		rec.State = m.NewState()
	}
	return m, rec, nil
}

func (s *QuizService) snapshot(m *Machine, rec domain.SessionRecord) domain.Snapshot {
	snap := m.Snapshot(rec.State)
	snap.SessionID = rec.ID
	return snap
}

// forgetMissing drops the lock of a session the store does not hold, so
// lookups of unknown or expired ids leave nothing behind.
func (s *QuizService) forgetMissing(sessionID string, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		s.locks.Delete(sessionID)
	}
}

func (s *QuizService) lock(sessionID string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu
}
