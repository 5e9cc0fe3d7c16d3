package impl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/dto"
	"worklog-auth/internal/events"
	"worklog-auth/internal/observability/metrics"
	"worklog-auth/internal/security"
	"worklog-auth/internal/service"
	"worklog-auth/internal/store"
)

type SessionConfig struct {
	AccessTTL    time.Duration // e.g. 30 * time.Minute
	TemporaryTTL time.Duration // pending-MFA token, e.g. 5 * time.Minute
	RefreshTTL   time.Duration // e.g. 7 * 24h
}

type SessionServiceImpl struct {
	cfg    SessionConfig
	store  *store.Store
	tokens service.SessionTokenService
	now    func() time.Time
}

func NewSessionService(cfg SessionConfig, st *store.Store, tokens service.SessionTokenService) *SessionServiceImpl {
	return &SessionServiceImpl{cfg: cfg, store: st, tokens: tokens, now: time.Now}
}

func (s *SessionServiceImpl) IssueTemporary(ctx context.Context, user *domain.User) (*dto.TokenResponse, error) {
	result := metrics.ResultSuccess
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("temporary", result).Inc()
	}()

	token, exp, err := s.tokens.Issue(user.ID, s.cfg.TemporaryTTL, false)
	if err != nil {
		result = metrics.ResultFailure
		return nil, internalError(ctx, "sign temporary token", err)
	}
	resp := dto.NewTokenResponse(token, exp, s.now().UTC())
	return &resp, nil
}

func (s *SessionServiceImpl) CompleteSecondFactor(ctx context.Context, user *domain.User) (*service.FullSession, error) {
	var out *service.FullSession
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		sess, err := s.completeInTx(ctx, tx, user, "")
		out = sess
		return err
	})
	if err != nil {
		return nil, internalError(ctx, "complete second factor", err)
	}
	return out, nil
}

// completeInTx issues the full access token and persists the refresh row
// through tx, so callers can commit it together with their own writes.
func (s *SessionServiceImpl) completeInTx(ctx context.Context, tx *store.Store, user *domain.User, method string) (*service.FullSession, error) {
	result := metrics.ResultSuccess
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("full", result).Inc()
	}()
	now := s.now().UTC()

	access, exp, err := s.tokens.Issue(user.ID, s.cfg.AccessTTL, true)
	if err != nil {
		result = metrics.ResultFailure
		return nil, err
	}
	refresh, err := security.GenerateSecureToken()
	if err != nil {
		result = metrics.ResultFailure
		return nil, err
	}
	row := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: security.HashToken(refresh),
		ExpiresAt: now.Add(s.cfg.RefreshTTL),
		CreatedAt: now,
	}
	if err := tx.RefreshTokens().Create(ctx, row); err != nil {
		result = metrics.ResultFailure
		return nil, err
	}
	if err := recordAudit(ctx, tx, user.ID, events.ActionSessionIssued, events.SessionIssued{
		UserID: userIDString(user.ID),
		Method: method,
		At:     now,
	}); err != nil {
		result = metrics.ResultFailure
		return nil, err
	}

	slog.InfoContext(ctx, "issued full session", logAttrs(ctx, "user_id", user.ID, "method", method)...)

	return &service.FullSession{
		Access:           dto.NewTokenResponse(access, exp, now),
		RefreshToken:     refresh,
		RefreshExpiresAt: row.ExpiresAt,
	}, nil
}

// Refresh mints a new full access token. The refresh token itself is not
// rotated; an expired one purges the user's stale rows.
func (s *SessionServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	result := metrics.ResultSuccess
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("refresh", result).Inc()
	}()
	now := s.now().UTC()

	if refreshToken == "" {
		result = metrics.ResultFailure
		return nil, domain.ErrUnauthorized
	}
	row, err := s.store.RefreshTokens().GetByHash(ctx, security.HashToken(refreshToken))
	if err != nil {
		result = metrics.ResultFailure
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, internalError(ctx, "lookup refresh token", err)
	}
	if row.Expired(now) {
		result = metrics.ResultFailure
		if _, err := s.store.RefreshTokens().DeleteExpiredForUser(ctx, row.UserID, now); err != nil {
			slog.WarnContext(ctx, "purge expired refresh tokens", logAttrs(ctx, "user_id", row.UserID, "err", err)...)
		}
		return nil, domain.ErrUnauthorized
	}

	token, exp, err := s.tokens.Issue(row.UserID, s.cfg.AccessTTL, true)
	if err != nil {
		result = metrics.ResultFailure
		return nil, internalError(ctx, "sign refreshed token", err)
	}

	slog.InfoContext(ctx, "refreshed access token", logAttrs(ctx, "user_id", row.UserID)...)

	resp := dto.NewTokenResponse(token, exp, now)
	return &resp, nil
}

// Logout deletes the caller's refresh token. A token that is already gone is
// not an error.
func (s *SessionServiceImpl) Logout(ctx context.Context, refreshToken string, userID domain.UserID) error {
	if refreshToken == "" {
		return domain.ErrUnauthorized
	}
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		n, err := tx.RefreshTokens().Delete(ctx, security.HashToken(refreshToken), userID)
		if err != nil || n == 0 {
			return err
		}
		remaining, err := tx.RefreshTokens().CountForUser(ctx, userID)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "session revoked", logAttrs(ctx, "user_id", userID, "sessions_remaining", remaining)...)
		return recordAudit(ctx, tx, userID, events.ActionSessionRevoked, events.SessionRevoked{
			UserID:    userIDString(userID),
			Remaining: remaining,
			At:        s.now().UTC(),
		})
	})
	if err != nil {
		return internalError(ctx, "logout", err)
	}
	return nil
}

func (s *SessionServiceImpl) Authenticate(ctx context.Context, accessToken string, requireFull bool) (*domain.User, error) {
	claims, err := s.tokens.Decode(accessToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if claims.Authenticated != requireFull {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.store.Users().GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, internalError(ctx, "load session user", err)
	}
	return user, nil
}
