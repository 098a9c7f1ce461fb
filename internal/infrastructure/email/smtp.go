// Package email sends retro summary mail over SMTP.
package email

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"
)

// Sender delivers plain-text mail. Unconfigured senders report so and send
// nothing, keeping mail strictly optional for local setups.
type Sender struct {
	host string
	port string
	from string
	auth smtp.Auth
}

// NewSenderFromEnv reads SMTP_HOST, SMTP_PORT, SMTP_FROM and the optional
// SMTP_USER/SMTP_PASS pair.
func NewSenderFromEnv() *Sender {
	s := &Sender{
		host: os.Getenv("SMTP_HOST"),
		port: os.Getenv("SMTP_PORT"),
		from: os.Getenv("SMTP_FROM"),
	}
	if user := os.Getenv("SMTP_USER"); user != "" {
		s.auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASS"), s.host)
	}
	return s
}

// Configured reports whether the sender has enough configuration to deliver.
func (s *Sender) Configured() bool {
	return s.host != "" && s.port != "" && s.from != ""
}

// Send delivers a plain-text message to the given recipients.
func (s *Sender) Send(to []string, subject, body string) error {
	if !s.Configured() {
		return fmt.Errorf("email: sender not configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("email: no recipients")
	}
	msg := []byte(fmt.Sprintf(
		"To: %s\r\nFrom: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		strings.Join(to, ", "), s.from, subject, body,
	))
	return smtp.SendMail(s.host+":"+s.port, s.auth, s.from, to, msg)
}
