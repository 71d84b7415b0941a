// Package mailer delivers transactional emails. Mailgun talks to the
// Mailgun HTTP API; LogMailer only writes the message to the log and is
// used when no API key is configured.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/patric-chuzhbe/contactsapi/internal/logger"
)

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailgun sends messages through POST {baseURL}/v3/{domain}/messages.
type Mailgun struct {
	client *resty.Client
	domain string
	from   string
}

// NewMailgun creates a client for the given Mailgun domain.
func NewMailgun(baseURL, domain, apiKey, from string) *Mailgun {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetBasicAuth("api", apiKey)

	return &Mailgun{
		client: client,
		domain: domain,
		from:   from,
	}
}

// Send posts msg to Mailgun. Any non 2xx answer is an error.
func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	formData := map[string]string{
		"from":    m.from,
		"to":      msg.To,
		"subject": msg.Subject,
	}
	if msg.HTML != "" {
		formData["html"] = msg.HTML
	}
	if msg.Text != "" {
		formData["text"] = msg.Text
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetFormData(formData).
		Post("/v3/" + m.domain + "/messages")
	if err != nil {
		return fmt.Errorf("in internal/mailer/mailer.go/Send(): error while `m.client.R().Post()` calling: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mailgun responded with status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (LogMailer) Send(_ context.Context, msg Message) error {
	logger.Log.Infow("email not sent, no mail gateway configured",
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}
