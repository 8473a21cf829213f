// Package mailer sends transactional email over SMTP.
package mailer

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Mailer delivers mail through a configured SMTP relay. A nil Mailer is
// valid and drops every message, so callers never need to branch on
// whether SMTP is configured.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

// Config holds the SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// New creates a Mailer. Returns nil when no SMTP host is configured.
func New(cfg Config, logger *slog.Logger) *Mailer {
	if cfg.Host == "" {
		return nil
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

// Send delivers a single HTML message. A nil receiver is a no-op.
func (m *Mailer) Send(to, subject, htmlBody string) error {
	if m == nil {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mailer: sending to %s: %w", to, err)
	}

	m.logger.Info("email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

// SendWelcome greets a newly registered user. Failures are logged and
// swallowed so registration never fails because the relay is down.
func (m *Mailer) SendWelcome(to, name string) {
	if m == nil {
		return
	}

	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Welcome to the gift registry! Create a wishlist, add the things you're hoping for, and share it with your friends.</p>`,
		name,
	)
	if err := m.Send(to, "Welcome to the gift registry", body); err != nil {
		m.logger.Error("failed to send welcome email", slog.String("error", err.Error()))
	}
}
