package app

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"quiz-report-service/internal/domain"
)

// ReportDispatcher delivers a formatted report through an external email service.
type ReportDispatcher interface {
	SendReport(ctx context.Context, recipient domain.Recipient, report domain.Report) error
}

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ReportService validates recipients and hands reports to a dispatcher.
// Dispatch is attempted at most once per call and never retried.
type ReportService struct {
	dispatcher ReportDispatcher
}

func NewReportService(dispatcher ReportDispatcher) *ReportService {
	return &ReportService{dispatcher: dispatcher}
}

// NormalizeRecipient trims the fields and checks the address has a local@domain.tld shape.
func NormalizeRecipient(r domain.Recipient) (domain.Recipient, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if !emailShape.MatchString(r.Email) {
		return r, domain.ErrInvalidEmail
	}
	return r, nil
}

// Send rejects malformed recipients locally and otherwise dispatches the report.
func (s *ReportService) Send(ctx context.Context, recipient domain.Recipient, report domain.Report) error {
	recipient, err := NormalizeRecipient(recipient)
	if err != nil {
		return err
	}
	if err := s.dispatcher.SendReport(ctx, recipient, report); err != nil {
		log.Printf("report dispatch to %s failed: %v", recipient.Email, err)
		return fmt.Errorf("%w: %w", domain.ErrDispatch, err)
	}
	return nil
}

// SendAsync runs Send in the background. The returned channel receives exactly
// one outcome (nil on success) and is then closed.
func (s *ReportService) SendAsync(ctx context.Context, recipient domain.Recipient, report domain.Report) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- s.Send(ctx, recipient, report)
	}()
	return done
}
