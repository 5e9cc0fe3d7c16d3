package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"mime/quotedprintable"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
)

// Message is a single HTML email.
type Message struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Addr        string // host:port
	Username    string
	Password    string
	ImplicitTLS bool // true for port 465 style servers; otherwise STARTTLS when offered
}

type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender { return &SMTPSender{cfg: cfg} }

func (s *SMTPSender) auth() sasl.Client {
	if s.cfg.Username == "" {
		return nil
	}
	return sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)
}

// Send delivers msg. The SMTP exchange itself is not cancellable, so on
// ctx expiry Send returns early and the exchange finishes in the background.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	body, err := Render(msg, time.Now())
	if err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		if s.cfg.ImplicitTLS {
			done <- smtp.SendMailTLS(s.cfg.Addr, s.auth(), msg.From, []string{msg.To}, bytes.NewReader(body))
			return
		}
		done <- smtp.SendMail(s.cfg.Addr, s.auth(), msg.From, []string{msg.To}, bytes.NewReader(body))
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSender records that a message would have been sent. Used when no SMTP
// server is configured. Bodies carry tokens and are never logged.
type LogSender struct {
	Logger *slog.Logger
}

func (l LogSender) Send(ctx context.Context, msg Message) error {
	log := l.Logger
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "email not sent (no smtp configured)",
		"to", msg.To,
		"subject", msg.Subject,
		"body_bytes", len(msg.HTMLBody),
	)
	return nil
}

// Render produces the RFC 5322 message with a quoted-printable HTML body.
func Render(msg Message, now time.Time) ([]byte, error) {
	for _, h := range []string{msg.From, msg.To, msg.Subject} {
		if strings.ContainsAny(h, "\r\n") {
			return nil, fmt.Errorf("header contains line break")
		}
	}
	var buf bytes.Buffer
	domain := "localhost"
	if at := strings.LastIndex(msg.From, "@"); at >= 0 {
		domain = strings.Trim(msg.From[at+1:], "<> ")
	}
	fmt.Fprintf(&buf, "From: %s\r\n", msg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s@%s>\r\n", uuid.NewString(), domain)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(msg.HTMLBody)); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
