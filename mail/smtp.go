/*
Package mail implements the wfh.Notifier interface over SMTP.

PURPOSE:
  Delivers the lifecycle notifications (new request, approved, rejected,
  rescheduled) as plain-text email. Delivery runs on the dispatcher's
  background goroutines, so a slow or down SMTP server never blocks an
  API response.

CONFIGURATION:
  Host, port and credentials come from the environment (see
  cmd/server/main.go). When SMTP is not configured the server falls back
  to wfh.LogNotifier, which just logs the would-be messages.

SEE ALSO:
  - wfh/notify.go: Notifier interface and Dispatcher
*/
package mail

import (
	"context"
	"fmt"
	"net/smtp"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Configured reports whether enough settings are present to send mail.
func (c Config) Configured() bool {
	return c.Host != "" && c.Port != "" && c.From != ""
}

// SMTPNotifier sends notifications via plain SMTP with optional AUTH.
type SMTPNotifier struct {
	cfg Config
}

// NewSMTPNotifier creates a notifier from the given config.
func NewSMTPNotifier(cfg Config) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// Send delivers one message. The context is honored up front; net/smtp
// itself has no context support, so cancellation mid-handshake relies on
// the dispatcher's timeout.
func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		n.cfg.From, to, subject, body)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	addr := n.cfg.Host + ":" + n.cfg.Port
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
