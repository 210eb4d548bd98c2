package memory

import (
	"context"
	"log"
	"sync"

	"quiz-report-service/internal/domain"
)

// keptReports bounds how many accepted reports LogDispatcher remembers.
const keptReports = 100

// LogDispatcher stands in for the email service when no credentials are
// configured: it logs the summary and keeps the last keptReports reports
// for inspection.
type LogDispatcher struct {
	mu   sync.Mutex
	sent []SentReport
}

// SentReport is one report accepted by LogDispatcher.
type SentReport struct {
	Recipient domain.Recipient
	Report    domain.Report
}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

func (d *LogDispatcher) SendReport(_ context.Context, recipient domain.Recipient, report domain.Report) error {
	d.mu.Lock()
	d.sent = append(d.sent, SentReport{Recipient: recipient, Report: report})
	if over := len(d.sent) - keptReports; over > 0 {
		d.sent = append(d.sent[:0], d.sent[over:]...)
	}
	d.mu.Unlock()
	log.Printf("report for %s <%s>: %s (completed %s)", recipient.Name, recipient.Email, report.Summary, report.CompletedAt)
	return nil
}

// Sent returns a copy of the reports accepted so far.
func (d *LogDispatcher) Sent() []SentReport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]SentReport(nil), d.sent...)
}
