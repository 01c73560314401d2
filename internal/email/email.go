package email

import (
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"scholarbrief/internal/config"
)

// Sender delivers digests over SMTP with PLAIN auth. Gmail-style setups
// (STARTTLS on 587) are the expected case; SendMail negotiates STARTTLS
// when the server offers it.
type Sender struct {
	cfg      config.Email
	password string
}

func NewSender(cfg config.Email, password string) *Sender {
	return &Sender{cfg: cfg, password: password}
}

// Send delivers one digest to the configured recipient.
func (s *Sender) Send(subject, body string) error {
	if s.cfg.Sender == "" || s.cfg.Recipient == "" {
		return fmt.Errorf("email sender and recipient must be configured")
	}
	if s.password == "" {
		return fmt.Errorf("no SMTP password configured")
	}

	addr := s.cfg.SMTPHost + ":" + strconv.Itoa(s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Sender, s.password, s.cfg.SMTPHost)
	msg := buildMessage(s.cfg.Sender, s.cfg.Recipient, subject, body)
	if err := smtp.SendMail(addr, auth, s.cfg.Sender, []string{s.cfg.Recipient}, msg); err != nil {
		return fmt.Errorf("sending digest email: %w", err)
	}
	return nil
}

// buildMessage assembles an RFC 5322 message with CRLF line endings and a
// blank line between headers and body.
func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
