package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRenderHeadersAndBody(t *testing.T) {
	raw, err := Render(Message{
		From:     "Worklog <no-reply@worklog.test>",
		To:       "a@x.io",
		Subject:  "Verify your email",
		HTMLBody: "<p>héllo</p>",
	}, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	s := string(raw)
	for _, want := range []string{
		"To: a@x.io\r\n",
		"Subject: Verify your email\r\n",
		"Date: Fri, 02 Jan 2026 03:04:05 +0000\r\n",
		"@worklog.test>\r\n",
		"Content-Transfer-Encoding: quoted-printable\r\n\r\n",
		"h=C3=A9llo",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("rendered message missing %q:\n%s", want, s)
		}
	}
}

func TestRenderRejectsHeaderInjection(t *testing.T) {
	_, err := Render(Message{From: "a@x.io", To: "b@x.io\r\nBcc: c@x.io", Subject: "s"}, time.Now())
	if err == nil {
		t.Fatal("expected header injection to be rejected")
	}
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := LogSender{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	if err := s.Send(context.Background(), Message{To: "a@x.io", Subject: "hi", HTMLBody: "token=secret"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(buf.String(), "a@x.io") {
		t.Fatalf("expected recipient in log, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "secret") {
		t.Fatalf("body leaked into log: %q", buf.String())
	}
}
