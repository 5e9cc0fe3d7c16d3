package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/events"
	"worklog-auth/internal/security"
	"worklog-auth/internal/service"
	"worklog-auth/internal/store"
)

const minPasswordLength = 8

type VerificationConfig struct {
	AppURL               string        // links point at <AppURL>/verify-email and <AppURL>/reset-password
	EmailVerificationTTL time.Duration // e.g. 24h
	PasswordResetTTL     time.Duration // e.g. 1h
}

type VerificationServiceImpl struct {
	cfg       VerificationConfig
	store     *store.Store
	passwords service.PasswordService
	email     service.EmailService
	now       func() time.Time
}

func NewVerificationService(cfg VerificationConfig, st *store.Store, passwords service.PasswordService, email service.EmailService) *VerificationServiceImpl {
	return &VerificationServiceImpl{cfg: cfg, store: st, passwords: passwords, email: email, now: time.Now}
}

// issue replaces every outstanding token of the user, whatever its purpose,
// with a fresh one and returns the plaintext.
func (v *VerificationServiceImpl) issue(ctx context.Context, userID domain.UserID, purpose domain.TokenPurpose, ttl time.Duration) (string, error) {
	token, err := security.GenerateSecureToken()
	if err != nil {
		return "", err
	}
	now := v.now().UTC()
	err = v.store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := tx.VerificationTokens().DeleteForUser(ctx, userID); err != nil {
			return err
		}
		return tx.VerificationTokens().Create(ctx, &domain.VerificationToken{
			UserID:    userID,
			TokenHash: security.HashToken(token),
			Purpose:   purpose,
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
		})
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (v *VerificationServiceImpl) link(path, token string) string {
	return strings.TrimRight(v.cfg.AppURL, "/") + path + "?token=" + url.QueryEscape(token)
}

func (v *VerificationServiceImpl) IssueEmailVerification(ctx context.Context, user *domain.User) error {
	token, err := v.issue(ctx, user.ID, domain.PurposeEmailVerification, v.cfg.EmailVerificationTTL)
	if err != nil {
		return internalError(ctx, "issue verification token", err)
	}
	if err := v.email.SendVerification(ctx, user.Email, v.link("/verify-email", token)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	return nil
}

// RequestEmailVerification never reveals whether the address is registered or
// already verified.
func (v *VerificationServiceImpl) RequestEmailVerification(ctx context.Context, email string) error {
	user, err := v.store.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil
		}
		return internalError(ctx, "lookup user", err)
	}
	if user.IsVerified {
		return nil
	}
	if err := v.IssueEmailVerification(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDeliveryFailed) {
			slog.WarnContext(ctx, "verification email not delivered", logAttrs(ctx, "user_id", user.ID, "err", err)...)
			return nil
		}
		return err
	}
	return nil
}

// consume looks up a live token of the given purpose and runs apply inside
// the same transaction. An expired token is deleted and reported as invalid.
func (v *VerificationServiceImpl) consume(ctx context.Context, token string, purpose domain.TokenPurpose, apply func(tx *store.Store, userID domain.UserID, now time.Time) error) error {
	if token == "" {
		return domain.ErrInvalidOrExpiredToken
	}
	now := v.now().UTC()
	expired := false
	err := v.store.WithTx(ctx, func(tx *store.Store) error {
		vt, err := tx.VerificationTokens().GetByHash(ctx, security.HashToken(token), purpose)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return domain.ErrInvalidOrExpiredToken
			}
			return err
		}
		if vt.Expired(now) {
			// commit the purge, report failure after the transaction
			expired = true
			_, err := tx.VerificationTokens().DeleteForUser(ctx, vt.UserID)
			return err
		}
		if err := apply(tx, vt.UserID, now); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return domain.ErrInvalidOrExpiredToken
			}
			return err
		}
		_, err = tx.VerificationTokens().DeleteForUser(ctx, vt.UserID)
		return err
	})
	if err != nil {
		return internalError(ctx, "consume "+string(purpose)+" token", err)
	}
	if expired {
		return domain.ErrInvalidOrExpiredToken
	}
	return nil
}

func (v *VerificationServiceImpl) ConfirmEmailVerification(ctx context.Context, token string) error {
	return v.consume(ctx, token, domain.PurposeEmailVerification, func(tx *store.Store, userID domain.UserID, now time.Time) error {
		verified := true
		if err := tx.Users().Update(ctx, userID, domain.UserUpdate{IsVerified: &verified}); err != nil {
			return err
		}
		return recordAudit(ctx, tx, userID, events.ActionEmailVerified, events.EmailVerified{
			UserID: userIDString(userID),
			At:     now,
		})
	})
}

// RequestPasswordReset answers the same way whether or not the address exists.
func (v *VerificationServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := v.store.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil
		}
		return internalError(ctx, "lookup user", err)
	}
	token, err := v.issue(ctx, user.ID, domain.PurposePasswordReset, v.cfg.PasswordResetTTL)
	if err != nil {
		return internalError(ctx, "issue reset token", err)
	}
	if err := v.email.SendPasswordReset(ctx, user.Email, v.link("/reset-password", token)); err != nil {
		slog.WarnContext(ctx, "password reset email not delivered", logAttrs(ctx, "user_id", user.ID, "err", err)...)
	}
	return nil
}

func (v *VerificationServiceImpl) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domain.ErrInvalidRequest
	}
	hash, err := v.passwords.Hash(newPassword)
	if err != nil {
		return internalError(ctx, "hash password", err)
	}
	return v.consume(ctx, token, domain.PurposePasswordReset, func(tx *store.Store, userID domain.UserID, now time.Time) error {
		if err := tx.Users().Update(ctx, userID, domain.UserUpdate{PasswordHash: &hash}); err != nil {
			return err
		}
		return recordAudit(ctx, tx, userID, events.ActionPasswordReset, events.PasswordReset{
			UserID: userIDString(userID),
			At:     now,
		})
	})
}
