package service

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"tripbuddy/internal/config"
)

// Mailer sends outbound email. Delivery failures must never abort the
// caller's primary operation; callers log and carry on.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer returns an SMTP mailer when a host is configured, otherwise a
// log-only mailer so development setups work without a mail relay.
func NewMailer(cfg config.MailConfig) Mailer {
	if cfg.Host == "" {
		return &LogMailer{}
	}
	return &SMTPMailer{cfg: cfg}
}

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg config.MailConfig
}

// Send delivers one message. net/smtp has no context support; the relay's
// own timeouts bound the call.
func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, body)

	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}

// LogMailer writes mail to the log instead of delivering it.
type LogMailer struct{}

// Send logs the message.
func (m *LogMailer) Send(_ context.Context, to, subject, _ string) error {
	logrus.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("mail delivery skipped, SMTP not configured")
	return nil
}
