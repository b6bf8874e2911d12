package mail

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"fleetcheck/internal/bootstrap/logging"
	"fleetcheck/internal/ports"
)

// SentMessage is a message captured by LogMailer.
type SentMessage struct {
	To      []string
	Subject string
	HTML    string
}

// LogMailer logs messages instead of delivering them. Used for local runs
// where no SMTP relay is available.
type LogMailer struct {
	mu   sync.Mutex
	sent []SentMessage
}

var _ ports.Mailer = (*LogMailer)(nil)

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	if len(to) == 0 {
		return errors.New("at least one recipient is required")
	}

	m.mu.Lock()
	m.sent = append(m.sent, SentMessage{To: append([]string(nil), to...), Subject: subject, HTML: htmlBody})
	m.mu.Unlock()

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "infrastructure.mail")),
		"mail captured",
		slog.String("to", strings.Join(to, ", ")),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(htmlBody)),
	)
	return nil
}

func (m *LogMailer) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.sent...)
}
