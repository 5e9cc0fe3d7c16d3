package impl

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/events"
	"worklog-auth/internal/security"
)

func TestCompleteSecondFactorPersistsHashedRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerVerified(t, "a@x.io", "pw123456")

	sess, err := env.sessions.CompleteSecondFactor(ctx, u)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if sess.RefreshToken == "" || sess.Access.AccessToken == "" {
		t.Fatalf("incomplete session %+v", sess)
	}
	if got := sess.RefreshExpiresAt.Sub(time.Now()); got < 7*24*time.Hour-time.Minute || got > 7*24*time.Hour {
		t.Fatalf("refresh ttl off: %v", got)
	}

	row, err := env.store.RefreshTokens().GetByHash(ctx, security.HashToken(sess.RefreshToken))
	if err != nil {
		t.Fatalf("refresh row: %v", err)
	}
	if row.UserID != u.ID || row.TokenHash == sess.RefreshToken {
		t.Fatalf("unexpected row %+v", row)
	}

	got, err := env.sessions.Authenticate(ctx, sess.Access.AccessToken, true)
	if err != nil || got.ID != u.ID {
		t.Fatalf("full token rejected: %v", err)
	}
	if _, err := env.sessions.Authenticate(ctx, sess.Access.AccessToken, false); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("full token accepted as pending: %v", err)
	}
}

func TestRefreshKeepsRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerVerified(t, "a@x.io", "pw123456")
	sess, err := env.sessions.CompleteSecondFactor(ctx, u)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	for i := 0; i < 2; i++ {
		tok, err := env.sessions.Refresh(ctx, sess.RefreshToken)
		if err != nil {
			t.Fatalf("refresh %d: %v", i, err)
		}
		claims, err := env.tokens.Decode(tok.AccessToken)
		if err != nil || !claims.Authenticated || claims.UserID != u.ID {
			t.Fatalf("refresh %d: bad token %+v %v", i, claims, err)
		}
	}
	if n := env.countRows(t, &domain.RefreshToken{}, u.ID); n != 1 {
		t.Fatalf("expected refresh row kept, got %d", n)
	}
}

func TestRefreshRejectsUnknownAndExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerVerified(t, "a@x.io", "pw123456")
	sess, err := env.sessions.CompleteSecondFactor(ctx, u)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := env.sessions.Refresh(ctx, ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("empty: %v", err)
	}
	if _, err := env.sessions.Refresh(ctx, "unknown"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("unknown: %v", err)
	}

	env.sessions.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	if _, err := env.sessions.Refresh(ctx, sess.RefreshToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expired: %v", err)
	}
	if n := env.countRows(t, &domain.RefreshToken{}, u.ID); n != 0 {
		t.Fatalf("expired row not purged, %d left", n)
	}
}

func TestLogoutDeletesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerVerified(t, "a@x.io", "pw123456")
	other := env.registerVerified(t, "b@x.io", "pw123456")
	sess, err := env.sessions.CompleteSecondFactor(ctx, u)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	// another user's logout leaves the row alone
	if err := env.sessions.Logout(ctx, sess.RefreshToken, other.ID); err != nil {
		t.Fatalf("logout other: %v", err)
	}
	if n := env.countRows(t, &domain.RefreshToken{}, u.ID); n != 1 {
		t.Fatalf("row deleted by another user")
	}

	if err := env.sessions.Logout(ctx, sess.RefreshToken, u.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if n := env.countRows(t, &domain.RefreshToken{}, u.ID); n != 0 {
		t.Fatalf("row not deleted")
	}
	if _, err := env.sessions.Refresh(ctx, sess.RefreshToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("refresh after logout: %v", err)
	}
	if err := env.sessions.Logout(ctx, "", u.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("logout without token: %v", err)
	}
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerVerified(t, "a@x.io", "pw123456")
	tok, _, err := env.tokens.Issue(u.ID, time.Minute, true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := env.store.DeleteUserData(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.sessions.Authenticate(ctx, tok, true); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLogoutAuditsRemainingSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerVerified(t, "a@x.io", "pw123456")
	laptop, err := env.sessions.CompleteSecondFactor(ctx, u)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := env.sessions.CompleteSecondFactor(ctx, u); err != nil {
		t.Fatalf("complete second: %v", err)
	}

	if err := env.sessions.Logout(ctx, laptop.RefreshToken, u.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	audits, err := env.store.Audit().ListForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	var revoked []events.SessionRevoked
	for _, a := range audits {
		if a.Action != events.ActionSessionRevoked {
			continue
		}
		var ev events.SessionRevoked
		if err := json.Unmarshal([]byte(a.Metadata), &ev); err != nil {
			t.Fatalf("metadata: %v", err)
		}
		revoked = append(revoked, ev)
	}
	if len(revoked) != 1 || revoked[0].Remaining != 1 {
		t.Fatalf("unexpected revocation audit %+v", revoked)
	}
}
