package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-report-service/internal/domain"
	"quiz-report-service/internal/infra/memory"
)

func TestQuizServiceForgetsLocksOfMissingSessions(t *testing.T) {
	ctx := context.Background()
	banks := memory.NewBankRepository(memory.NewStaticBankLoader(map[string]domain.Bank{
		"bank-1": {
			ID:        "bank-1",
			Questions: []domain.Question{{Text: "Q?", Choices: []string{"a", "b"}, CorrectIndex: 0}},
		},
	}), time.Minute)
	service := NewQuizService(memory.NewSessionStore(), banks)

	for i := 0; i < 100; i++ {
		if _, err := service.State(ctx, "unknown"); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("expected session not found, got %v", err)
		}
		if _, err := service.Start(ctx, "also-unknown"); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("expected session not found, got %v", err)
		}
	}

	snap, err := service.CreateSession(ctx, "bank-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := service.Start(ctx, snap.SessionID); err != nil {
		t.Fatalf("start: %v", err)
	}

	if n := lockCount(service); n != 1 {
		t.Fatalf("expected only the live session to hold a lock, got %d", n)
	}
}

func lockCount(s *QuizService) int {
	n := 0
	s.locks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
