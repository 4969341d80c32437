package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"alertaUtec/internal/modules/notifications/application/port"
	"alertaUtec/internal/modules/notifications/domain"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends plain-text UTF-8 mail through one relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	send sendFunc
	now  func() time.Time
}

func NewSMTPMailer(addr, username, password string) (*SMTPMailer, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_ADDR %q: %w", addr, err)
	}
	m := &SMTPMailer{addr: addr, send: smtp.SendMail, now: time.Now}
	if username != "" {
		m.auth = smtp.PlainAuth("", username, password, host)
	}
	return m, nil
}

func (m *SMTPMailer) Send(ctx context.Context, email domain.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(email.To) == 0 {
		return fmt.Errorf("send %q: no recipients", email.Subject)
	}
	if err := m.send(m.addr, m.auth, email.From, email.To, buildMessage(email, m.now())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", strings.Join(email.To, ","), err)
	}
	return nil
}

func buildMessage(email domain.Email, now time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", email.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(email.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(strings.ReplaceAll(email.Body, "\n", "\r\n"))
	return b.Bytes()
}

// LogMailer writes mail to the log instead of sending it, used when SMTP_ADDR is unset.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, email domain.Email) error {
	slog.Info("e-mail (log only)",
		slog.String("from", email.From),
		slog.Any("to", email.To),
		slog.String("subject", email.Subject),
	)
	return nil
}

var (
	_ port.Mailer = (*SMTPMailer)(nil)
	_ port.Mailer = LogMailer{}
)
