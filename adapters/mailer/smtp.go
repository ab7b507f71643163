package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/openrba/stepgate/core"
	"github.com/openrba/stepgate/ports"
)

// Config holds the outbound SMTP parameters
type Config struct {
	Hostname string
	Port     int
	Username string
	Password string
}

// SMTPMailer sends plain-text mail through an SMTP relay
type SMTPMailer struct {
	config Config
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(config Config) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		send:   smtp.SendMail,
	}
}

// Send composes and dispatches a message. Header fields containing CR or LF
// are rejected with core.ErrBadHeader before anything reaches the wire.
func (m *SMTPMailer) Send(ctx context.Context, subject, body, from string, to []string) error {
	for _, field := range append([]string{subject, from}, to...) {
		if strings.ContainsAny(field, "\r\n") {
			return core.ErrBadHeader
		}
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ","))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.config.Hostname, m.config.Port)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Hostname)
	}

	if err := m.send(addr, auth, from, to, []byte(buf.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

var _ ports.Mailer = (*SMTPMailer)(nil)
