package netutil

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"unicode/utf8"
)

const MaxUserAgentLength = 512

// NormalizeIP strips any port and zone from raw and returns the canonical
// address. ok is false when no IP could be recovered, in which case raw is
// returned trimmed.
func NormalizeIP(raw string) (ip string, ok bool) {
	raw = strings.TrimSpace(raw)
	for _, host := range hostCandidates(raw) {
		if addr, err := netip.ParseAddr(host); err == nil {
			return addr.WithZone("").String(), true
		}
	}
	return raw, false
}

func hostCandidates(raw string) []string {
	if raw == "" {
		return nil
	}
	out := []string{raw}
	if host, _, err := net.SplitHostPort(raw); err == nil {
		out = append(out, host)
	}
	if strings.HasPrefix(raw, "[") {
		if end := strings.IndexByte(raw, ']'); end > 1 {
			out = append(out, raw[1:end])
		}
	}
	if i := strings.LastIndexByte(raw, ':'); i > 0 {
		out = append(out, raw[:i])
	}
	return out
}

// TruncateUserAgent caps ua at MaxUserAgentLength runes for audit rows.
func TruncateUserAgent(ua string) string {
	if utf8.RuneCountInString(ua) <= MaxUserAgentLength {
		return ua
	}
	n := 0
	for i := range ua {
		if n == MaxUserAgentLength {
			return ua[:i]
		}
		n++
	}
	return ua
}

// ClientIP resolves the caller's address. With trustProxy set, the left-most
// X-Forwarded-For entry (or X-Real-IP) wins over the socket peer.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip, ok := NormalizeIP(first); ok {
				return ip
			}
		}
		if ip, ok := NormalizeIP(r.Header.Get("X-Real-IP")); ok {
			return ip
		}
	}
	if ip, ok := NormalizeIP(r.RemoteAddr); ok {
		return ip
	}
	return strings.TrimSpace(r.RemoteAddr)
}
