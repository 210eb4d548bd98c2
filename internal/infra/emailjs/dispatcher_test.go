package emailjs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quiz-report-service/internal/domain"
)

func TestSendReportPostsTemplateParams(t *testing.T) {
	var got sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	d := NewDispatcher(Config{
		Endpoint:   server.URL,
		ServiceID:  "svc",
		TemplateID: "tpl",
		PublicKey:  "pub",
	})
	report := domain.Report{
		Summary:     "1 / 1",
		CompletedAt: "1/2/2026, 3:04:05 PM",
		Entries: []domain.ReportEntry{
			{Number: 1, Question: "2 + 2?", Correct: true, YourAnswer: "4", CorrectAnswer: "4", Explanation: "math"},
		},
	}
	err := d.SendReport(context.Background(), domain.Recipient{Name: "Ada", Email: "ada@example.com"}, report)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if got.ServiceID != "svc" || got.TemplateID != "tpl" || got.UserID != "pub" {
		t.Fatalf("unexpected identity fields %+v", got)
	}
	params := got.TemplateParams
	if params.UserName != "Ada" || params.UserEmail != "ada@example.com" || params.TotalScore != "1 / 1" {
		t.Fatalf("unexpected template params %+v", params)
	}
	if !strings.Contains(params.Breakdown, "Q1: 2 + 2?") || !strings.Contains(params.Breakdown, "Your: 4 ✓") {
		t.Fatalf("unexpected breakdown %q", params.Breakdown)
	}
}

func TestSendReportSurfacesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "The template ID is invalid", http.StatusBadRequest)
	}))
	defer server.Close()

	d := NewDispatcher(Config{Endpoint: server.URL})
	err := d.SendReport(context.Background(), domain.Recipient{Email: "ada@example.com"}, domain.Report{})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected status error, got %v", err)
	}
}
