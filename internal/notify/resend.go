package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"

	"gatherly.org/internal/obs"
)

// ResendSender delivers notifications through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

var _ Sender = (*ResendSender)(nil)

// NewResendSender constructs a sender for the given API key and From address.
func NewResendSender(apiKey, from string) (*ResendSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("notify: resend api key is required")
	}
	if err := validateAddress(from); err != nil {
		return nil, fmt.Errorf("notify: invalid sender address: %w", err)
	}
	return &ResendSender{client: resend.NewClient(apiKey), from: from}, nil
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	if err := validateAddress(to); err != nil {
		return err
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend API error: %w", err)
	}
	obs.LogRequest(map[string]any{
		"ts":       time.Now().UTC().Format(time.RFC3339Nano),
		"level":    "info",
		"msg":      "notification sent",
		"email_id": sent.Id,
		"to":       to,
	})
	return nil
}
