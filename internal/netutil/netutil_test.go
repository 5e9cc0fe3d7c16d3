package netutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizeIP(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{name: "ipv4 with port", input: "192.0.2.4:8080", expected: "192.0.2.4", ok: true},
		{name: "ipv6 with port", input: "[2001:db8::1]:443", expected: "2001:db8::1", ok: true},
		{name: "ipv6 textual port", input: "[::1]:port", expected: "::1", ok: true},
		{name: "plain ipv4", input: "203.0.113.9", expected: "203.0.113.9", ok: true},
		{name: "plain ipv6", input: "2001:db8::5", expected: "2001:db8::5", ok: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeIP(tc.input)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestNormalizeIPRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not-an-ip", "host.example:80", "[]:1"} {
		if got, ok := NormalizeIP(raw); ok {
			t.Fatalf("NormalizeIP(%q) = %q, want failure", raw, got)
		}
	}
}

func TestTruncateUserAgent(t *testing.T) {
	truncated := TruncateUserAgent(strings.Repeat("é", MaxUserAgentLength+10))
	if n := len([]rune(truncated)); n != MaxUserAgentLength {
		t.Fatalf("got %d runes, want %d", n, MaxUserAgentLength)
	}
	if short := "curl/8.5.0"; TruncateUserAgent(short) != short {
		t.Fatal("short user agent changed")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := ClientIP(r, false); got != "10.0.0.1" {
		t.Fatalf("untrusted proxy: got %q", got)
	}
	if got := ClientIP(r, true); got != "203.0.113.7" {
		t.Fatalf("trusted proxy: got %q", got)
	}

	r.Header.Del("X-Forwarded-For")
	r.Header.Set("X-Real-IP", "198.51.100.2")
	if got := ClientIP(r, true); got != "198.51.100.2" {
		t.Fatalf("x-real-ip: got %q", got)
	}
}
