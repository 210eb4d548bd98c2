package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quiz-report-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	rec := domain.SessionRecord{ID: "s1", BankID: "bank-1", State: domain.NewState(2)}
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec.State.Selections[0] = 1 // must not leak into the store

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State.Selections[0] != domain.NoSelection {
		t.Fatalf("store aliased caller selections: %+v", got.State)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestLogDispatcherRecords(t *testing.T) {
	d := NewLogDispatcher()
	err := d.SendReport(context.Background(), domain.Recipient{Name: "Ada", Email: "ada@example.com"}, domain.Report{Summary: "1 / 2"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	sent := d.Sent()
	if len(sent) != 1 || sent[0].Recipient.Email != "ada@example.com" {
		t.Fatalf("unexpected sent reports %+v", sent)
	}
}

func TestSessionStoreExpiresIdleSessions(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStoreWithTTL(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return now }

	_ = store.Save(ctx, domain.SessionRecord{ID: "idle", State: domain.NewState(1)})
	_ = store.Save(ctx, domain.SessionRecord{ID: "active", State: domain.NewState(1)})

	now = now.Add(45 * time.Second)
	// Saving refreshes the expiry.
	_ = store.Save(ctx, domain.SessionRecord{ID: "active", State: domain.NewState(1)})

	now = now.Add(30 * time.Second)
	if _, err := store.Get(ctx, "idle"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected idle session expired, got %v", err)
	}
	if _, err := store.Get(ctx, "active"); err != nil {
		t.Fatalf("expected active session kept, got %v", err)
	}
}

func TestSessionStoreSweepsAbandonedSessions(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStoreWithTTL(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return now }

	for _, id := range []string{"a", "b", "c"} {
		_ = store.Save(ctx, domain.SessionRecord{ID: id, State: domain.NewState(1)})
	}

	now = now.Add(2 * time.Minute)
	_ = store.Save(ctx, domain.SessionRecord{ID: "fresh", State: domain.NewState(1)})
	if store.Len() != 1 {
		t.Fatalf("expected abandoned sessions swept, %d left", store.Len())
	}
}

func TestLogDispatcherKeepsLatestReports(t *testing.T) {
	d := NewLogDispatcher()
	for i := 0; i < keptReports+5; i++ {
		summary := fmt.Sprintf("%d / %d", i, keptReports+5)
		_ = d.SendReport(context.Background(), domain.Recipient{Email: "ada@example.com"}, domain.Report{Summary: summary})
	}
	sent := d.Sent()
	if len(sent) != keptReports {
		t.Fatalf("expected %d kept reports, got %d", keptReports, len(sent))
	}
	if sent[0].Report.Summary != "5 / 105" || sent[len(sent)-1].Report.Summary != "104 / 105" {
		t.Fatalf("expected the latest reports, got first %q last %q", sent[0].Report.Summary, sent[len(sent)-1].Report.Summary)
	}
}
