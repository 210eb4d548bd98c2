// Package emailjs sends quiz reports through the EmailJS REST API.
package emailjs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"quiz-report-service/internal/app"
	"quiz-report-service/internal/domain"
)

// DefaultEndpoint is the EmailJS send API.
const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// Config identifies the EmailJS service, template and account keys.
type Config struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
	Timeout    time.Duration
}

// Dispatcher implements app.ReportDispatcher on top of EmailJS.
type Dispatcher struct {
	cfg    Config
	client *http.Client
}

func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Dispatcher{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	AccessToken    string         `json:"accessToken,omitempty"`
	TemplateParams templateParams `json:"template_params"`
}

type templateParams struct {
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	TotalScore  string `json:"total_score"`
	CompletedAt string `json:"completed_at"`
	Breakdown   string `json:"breakdown"`
}

func (d *Dispatcher) SendReport(ctx context.Context, recipient domain.Recipient, report domain.Report) error {
	body, err := json.Marshal(sendRequest{
		ServiceID:   d.cfg.ServiceID,
		TemplateID:  d.cfg.TemplateID,
		UserID:      d.cfg.PublicKey,
		AccessToken: d.cfg.PrivateKey,
		TemplateParams: templateParams{
			UserName:    recipient.Name,
			UserEmail:   recipient.Email,
			TotalScore:  report.Summary,
			CompletedAt: report.CompletedAt,
			Breakdown:   app.Breakdown(report),
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
