package impl

import (
	"errors"
	"testing"
	"time"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/jwtsigner"

	"github.com/golang-jwt/jwt/v5"
)

func newTestSigner(t *testing.T) *jwtsigner.Signer {
	t.Helper()
	s, err := jwtsigner.New(jwtsigner.Config{Algorithm: "HS256", Secret: "test-secret-0123456789abcdef", Issuer: "worklog"})
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return s
}

func TestSessionTokenIssueDecode(t *testing.T) {
	ts := NewSessionTokenService(newTestSigner(t))

	for _, auth := range []bool{true, false} {
		tok, exp, err := ts.Issue(42, 5*time.Minute, auth)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		claims, err := ts.Decode(tok)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if claims.UserID != 42 || claims.Authenticated != auth {
			t.Fatalf("unexpected claims %+v", claims)
		}
		if !claims.ExpiresAt.Equal(exp.Truncate(time.Second)) {
			t.Fatalf("expiry mismatch: %v vs %v", claims.ExpiresAt, exp)
		}
		if claims.ID == "" {
			t.Fatal("missing jti")
		}
	}
}

func TestSessionTokenDecodeFailuresAreUnauthorized(t *testing.T) {
	ts := NewSessionTokenService(newTestSigner(t))
	expiredSvc := NewSessionTokenService(newTestSigner(t))
	expiredSvc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _, err := expiredSvc.Issue(1, time.Minute, true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other, _ := jwtsigner.New(jwtsigner.Config{Secret: "another-secret-0123456789abcdef", Issuer: "worklog"})
	forged, _, _ := NewSessionTokenService(other).Issue(1, time.Minute, true)

	signer := newTestSigner(t)
	now := time.Now()
	registered := jwt.RegisteredClaims{
		Issuer:    signer.Issuer,
		Subject:   "42",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}
	noAuth, err := signer.Sign(registered)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	yes := true
	noSubject, err := signer.Sign(AccessClaims{Auth: &yes, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    signer.Issuer,
		IssuedAt:  registered.IssuedAt,
		ExpiresAt: registered.ExpiresAt,
	}})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	for name, tok := range map[string]string{
		"empty":      "",
		"garbage":    "not.a.jwt",
		"expired":    expired,
		"forged":     forged,
		"no auth":    noAuth,
		"no subject": noSubject,
	} {
		if _, err := ts.Decode(tok); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

func TestSessionTokenIssueRejectsNonPositiveTTL(t *testing.T) {
	ts := NewSessionTokenService(newTestSigner(t))
	if _, _, err := ts.Issue(1, 0, true); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
