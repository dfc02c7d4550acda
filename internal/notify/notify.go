package notify

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gatherly.org/internal/obs"
)

// Sender delivers an outbound notification. Callers treat delivery as
// best-effort; a failed send must never fail the triggering operation.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender is used when no provider is configured: it records the
// notification as a JSON log line and reports success.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, subject, body string) error {
	if err := validateAddress(to); err != nil {
		return err
	}
	obs.LogRequest(map[string]any{
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		"level":   "info",
		"msg":     "notification skipped (no provider configured)",
		"to":      to,
		"subject": subject,
	})
	return nil
}

// validateAddress rejects malformed recipients and header injection attempts.
func validateAddress(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("invalid email address: contains newline characters")
	}
	return nil
}
