package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-report-service/internal/domain"
)

func TestBankRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string]domain.Bank{
			"bank-1": sampleBank(),
		}),
	}
	repo := NewBankRepository(loader, time.Minute)

	if _, err := repo.GetBank(context.Background(), "bank-1"); err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetBank(context.Background(), "bank-1"); err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestBankRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string]domain.Bank{"bank-1": sampleBank()}),
	}
	repo := NewBankRepository(loader, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetBank(context.Background(), "bank-1")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetBank(context.Background(), "bank-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestBankRepositoryUnknownBank(t *testing.T) {
	repo := NewBankRepository(NewStaticBankLoader(nil), time.Minute)
	if _, err := repo.GetBank(context.Background(), "missing"); !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected bank not found, got %v", err)
	}
}

type countingLoader struct {
	BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, bankID string) (domain.Bank, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx, bankID)
}

func sampleBank() domain.Bank {
	return domain.Bank{
		ID: "bank-1",
		Questions: []domain.Question{
			{
				Text:         "What is 2 + 2?",
				Choices:      []string{"3", "4"},
				CorrectIndex: 1,
				Explanation:  "Basic arithmetic.",
			},
		},
	}
}
