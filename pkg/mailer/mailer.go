// Package mailer sends transactional email over SMTP. The server address and
// credentials come from configuration, so a capture service such as Mailtrap
// can stand in during development.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer sends email through a single configured SMTP account.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	sender   string
}

// New creates a Mailer. Returns nil when host or username is empty, which
// callers treat as "email disabled".
func New(host, port, username, password, sender string) *Mailer {
	if host == "" || username == "" {
		return nil
	}
	if port == "" {
		port = "2525"
	}
	return &Mailer{host: host, port: port, username: username, password: password, sender: sender}
}

// Send delivers a single message. The Content-Type is inferred from the body:
// anything containing basic HTML tags is sent as text/html.
func (m *Mailer) Send(recipient, subject, body string) error {
	if recipient == "" {
		return fmt.Errorf("recipient email address cannot be empty")
	}
	if subject == "" {
		return fmt.Errorf("email subject cannot be empty")
	}
	sender := m.sender
	if sender == "" {
		sender = m.username
	}

	contentType := "text/plain; charset=UTF-8"
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<html>") || strings.Contains(lower, "<p>") {
		contentType = "text/html; charset=UTF-8"
	}

	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", recipient, sender, subject, contentType, body))

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := smtp.SendMail(m.host+":"+m.port, auth, sender, []string{recipient}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
