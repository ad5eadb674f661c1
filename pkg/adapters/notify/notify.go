// Package notify carries out-of-band notifications over SMTP, or logs them
// when no mail server is configured.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

type SMTPNotifier struct {
	addr string
	from string
}

// NewSMTPNotifier sends mail through the server at addr (host:port),
// unauthenticated. Auth can be added when a real relay needs it.
func NewSMTPNotifier(addr, from string) *SMTPNotifier {
	return &SMTPNotifier{addr: addr, from: from}
}

func (n *SMTPNotifier) Notify(_ context.Context, subject string, recipients []string, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.from, strings.Join(recipients, ", "), subject, body)

	if err := smtp.SendMail(n.addr, nil, n.from, recipients, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogNotifier records notifications instead of delivering them. Used in
// local development and tests.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, subject string, recipients []string, _ string) error {
	n.log.Info().
		Str("subject", subject).
		Strs("recipients", recipients).
		Msg("notification (mail disabled)")
	return nil
}

var (
	_ ports.Notifier = (*SMTPNotifier)(nil)
	_ ports.Notifier = (*LogNotifier)(nil)
)
