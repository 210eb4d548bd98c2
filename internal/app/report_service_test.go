package app_test

import (
	"context"
	"errors"
	"testing"

	"quiz-report-service/internal/app"
	"quiz-report-service/internal/domain"
)

type stubDispatcher struct {
	calls     int
	recipient domain.Recipient
	err       error
}

func (d *stubDispatcher) SendReport(_ context.Context, recipient domain.Recipient, _ domain.Report) error {
	d.calls++
	d.recipient = recipient
	return d.err
}

func TestReportServiceRejectsMalformedEmail(t *testing.T) {
	dispatcher := &stubDispatcher{}
	service := app.NewReportService(dispatcher)

	for _, email := range []string{"not-an-email", "a@b", "a b@c.d", "", "@example.com"} {
		err := service.Send(context.Background(), domain.Recipient{Name: "Ada", Email: email}, domain.Report{})
		if !errors.Is(err, domain.ErrInvalidEmail) || !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", email, err)
		}
	}
	if dispatcher.calls != 0 {
		t.Fatalf("dispatcher must not be called for invalid input, got %d calls", dispatcher.calls)
	}
}

func TestReportServiceTrimsAndSends(t *testing.T) {
	dispatcher := &stubDispatcher{}
	service := app.NewReportService(dispatcher)

	err := service.Send(context.Background(), domain.Recipient{Name: "  Ada ", Email: " ada@example.com "}, domain.Report{})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if dispatcher.calls != 1 {
		t.Fatalf("expected one dispatch, got %d", dispatcher.calls)
	}
	if dispatcher.recipient.Name != "Ada" || dispatcher.recipient.Email != "ada@example.com" {
		t.Fatalf("expected trimmed recipient, got %+v", dispatcher.recipient)
	}
}

func TestReportServiceDispatchFailureIsReportedOnce(t *testing.T) {
	dispatcher := &stubDispatcher{err: errors.New("smtp down")}
	service := app.NewReportService(dispatcher)

	outcome := service.SendAsync(context.Background(), domain.Recipient{Email: "ada@example.com"}, domain.Report{})
	err := <-outcome
	if !errors.Is(err, domain.ErrDispatch) {
		t.Fatalf("expected dispatch error, got %v", err)
	}
	if _, open := <-outcome; open {
		t.Fatalf("expected outcome channel closed after one result")
	}
	if dispatcher.calls != 1 {
		t.Fatalf("expected no retry, got %d calls", dispatcher.calls)
	}
}
