// Package mailer delivers verification links to registered email addresses.
//
// Two implementations exist: LogMailer writes the link to the process log
// (development and tests), SMTPMailer sends through an SMTP relay.
package mailer

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/freakishcode/Blog-App/internal/config"
)

// Mailer sends a verification message for the given address and token.
type Mailer interface {
	SendVerification(email, token string) error
}

// VerificationLink builds the link embedded in the verification mail.
func VerificationLink(baseURL, token string) string {
	return fmt.Sprintf("%s/verify?token=%s", baseURL, token)
}

func verificationBody(baseURL, token string) string {
	return fmt.Sprintf(
		"Click the link below to verify your account:\n\n%s\n\nThis link will expire in 24 hours.",
		VerificationLink(baseURL, token),
	)
}

// LogMailer logs verification links instead of sending them.
type LogMailer struct {
	BaseURL string
}

// NewLogMailer creates a mailer that only logs.
func NewLogMailer(baseURL string) *LogMailer {
	return &LogMailer{BaseURL: baseURL}
}

func (m *LogMailer) SendVerification(email, token string) error {
	log.Printf("[MAIL] verification link for %s: %s", email, VerificationLink(m.BaseURL, token))
	return nil
}

// SMTPMailer sends verification mail through an SMTP relay.
type SMTPMailer struct {
	cfg config.Mailer
}

// NewSMTPMailer creates a mailer backed by the configured SMTP relay.
func NewSMTPMailer(cfg config.Mailer) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendVerification(email, token string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Verify your email address\r\n\r\n%s\r\n",
		m.cfg.From, email, verificationBody(m.cfg.BaseURL, token),
	)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send verification mail: %w", err)
	}
	return nil
}

// New selects a mailer implementation from configuration.
func New(cfg config.Mailer) Mailer {
	if cfg.Mode == config.MailerModeSMTP && cfg.Host != "" {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(cfg.BaseURL)
}
