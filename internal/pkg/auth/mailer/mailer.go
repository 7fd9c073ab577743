// Package mailer delivers account emails.
package mailer

import (
	"context"
	"log/slog"
)

// Mailer sends the sign-up confirmation link.
type Mailer interface {
	SendConfirmation(ctx context.Context, to, link string) error
}

// LogMailer writes the confirmation link to the log instead of sending
// mail; development deployments copy the link from there.
type LogMailer struct {
	Logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{Logger: logger}
}

func (m *LogMailer) SendConfirmation(ctx context.Context, to, link string) error {
	m.Logger.InfoContext(ctx, "confirmation email", "to", to, "link", link)
	return nil
}
