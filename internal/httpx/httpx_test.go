package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/dto"
)

func TestBind(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"email":"a@example.com","password":"longenough"}`},
		{name: "malformed", body: `{"email":`, wantErr: "malformed json body"},
		{name: "bad email", body: `{"email":"nope","password":"longenough"}`, wantErr: "email is not a valid email address"},
		{name: "short password", body: `{"email":"a@example.com","password":"short"}`, wantErr: "password is shorter than 8 characters"},
		{name: "empty", body: ``, wantErr: "email is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var req dto.RegisterRequest
			err := Bind(httptest.NewRecorder(), r, &req)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Bind: %v", err)
				}
				return
			}
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("want ErrInvalidRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q missing %q", err, tc.wantErr)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"ok": "yes"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"ok":"yes"}` {
		t.Fatalf("body = %s", got)
	}
}
