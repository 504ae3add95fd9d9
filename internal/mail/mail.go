// Package mail sends plain-text notification emails over SMTP.
package mail

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPSender sends through host:port without authentication, which is what
// local relays and MailHog-style catchers expect.
func NewSMTPSender(host, port, from string) *SMTPSender {
	return &SMTPSender{addr: net.JoinHostPort(host, port), from: from}
}

// WithAuth enables PLAIN authentication.
func (s *SMTPSender) WithAuth(username, password, host string) *SMTPSender {
	s.auth = smtp.PlainAuth("", username, password, host)
	return s
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtp.SendMail(s.addr, s.auth, s.from, msg.To, Build(s.from, msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// Build renders msg as an RFC 5322 message. Recipients go in Bcc-style
// envelope only; the To header names the sender so addresses are not shared.
func Build(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", from)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", sanitizeHeader(msg.Subject)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
