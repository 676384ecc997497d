package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prepdash/backend/internal/metrics"
	"github.com/prepdash/backend/internal/models"
)

type Sender interface {
	Send(ctx context.Context, msg models.EmailRequest) error
}

// SMTPSender delivers plain text mail with PLAIN auth when a username is set.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string

	// send is swapped in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	if port == "" {
		port = "587"
	}
	return &SMTPSender{Host: host, Port: port, Username: username, Password: password, From: from, send: smtp.SendMail}
}

func (s *SMTPSender) Send(ctx context.Context, msg models.EmailRequest) error {
	if s.Host == "" {
		return errors.New("smtp host not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	send := s.send
	if send == nil {
		send = smtp.SendMail
	}
	err := send(net.JoinHostPort(s.Host, s.Port), auth, s.From, []string{msg.Recipient}, BuildMessage(s.From, msg))
	record(err)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// BuildMessage renders an RFC 5322 message with CRLF line endings.
func BuildMessage(from string, msg models.EmailRequest) []byte {
	var b strings.Builder
	b.WriteString("From: " + sanitizeHeader(from) + "\r\n")
	b.WriteString("To: " + sanitizeHeader(msg.Recipient) + "\r\n")
	b.WriteString("Subject: " + sanitizeHeader(msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(msg.Message, "\r\n", "\n"), "\n", "\r\n"))
	return []byte(b.String())
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// LogSender only logs. It is used when SMTP is not configured.
type LogSender struct {
	Logger zerolog.Logger
}

func (s LogSender) Send(ctx context.Context, msg models.EmailRequest) error {
	s.Logger.Info().
		Str("recipient", msg.Recipient).
		Str("subject", msg.Subject).
		Int("bytes", len(msg.Message)).
		Msg("email not sent, smtp disabled")
	record(nil)
	return nil
}

func record(err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	metrics.EmailsTotal.WithLabelValues(result).Inc()
}
