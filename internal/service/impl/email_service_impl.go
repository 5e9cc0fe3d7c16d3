package impl

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"worklog-auth/internal/observability/metrics"
	"worklog-auth/pkg/mailer"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type EmailConfig struct {
	AppName              string
	From                 string
	Timeout              time.Duration // per message
	EmailVerificationTTL time.Duration
	PasswordResetTTL     time.Duration
	MfaCodeTTL           time.Duration
}

type EmailServiceImpl struct {
	cfg    EmailConfig
	sender mailer.Sender
}

func NewEmailService(cfg EmailConfig, sender mailer.Sender) *EmailServiceImpl {
	return &EmailServiceImpl{cfg: cfg, sender: sender}
}

type emailData struct {
	AppName   string
	Link      string
	Code      string
	ExpiresIn string
}

func (e *EmailServiceImpl) SendVerification(ctx context.Context, to, link string) error {
	return e.send(ctx, "verification", to, fmt.Sprintf("Verify your %s email", e.cfg.AppName),
		"verify_email.html", emailData{AppName: e.cfg.AppName, Link: link, ExpiresIn: humanDuration(e.cfg.EmailVerificationTTL)})
}

func (e *EmailServiceImpl) SendPasswordReset(ctx context.Context, to, link string) error {
	return e.send(ctx, "password_reset", to, fmt.Sprintf("Reset your %s password", e.cfg.AppName),
		"reset_password.html", emailData{AppName: e.cfg.AppName, Link: link, ExpiresIn: humanDuration(e.cfg.PasswordResetTTL)})
}

func (e *EmailServiceImpl) SendMfaCode(ctx context.Context, to, code string) error {
	return e.send(ctx, "mfa_code", to, fmt.Sprintf("Your %s verification code", e.cfg.AppName),
		"mfa_code.html", emailData{AppName: e.cfg.AppName, Code: code, ExpiresIn: humanDuration(e.cfg.MfaCodeTTL)})
}

func (e *EmailServiceImpl) send(ctx context.Context, kind, to, subject, tpl string, data emailData) (err error) {
	defer func() {
		metrics.NotificationsTotal.WithLabelValues(kind, metrics.Result(err)).Inc()
	}()

	var body bytes.Buffer
	if err = emailTemplates.ExecuteTemplate(&body, tpl, data); err != nil {
		return fmt.Errorf("render %s: %w", tpl, err)
	}
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}
	err = e.sender.Send(ctx, mailer.Message{
		From:     e.cfg.From,
		To:       to,
		Subject:  subject,
		HTMLBody: body.String(),
	})
	if err != nil {
		slog.WarnContext(ctx, "email delivery failed", logAttrs(ctx, "kind", kind, "err", err)...)
	}
	return err
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short while"
	case d%time.Hour == 0 && d >= time.Hour:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	case d%time.Minute == 0:
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	default:
		return d.String()
	}
}
