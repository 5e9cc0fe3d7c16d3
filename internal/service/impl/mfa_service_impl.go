package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/dto"
	"worklog-auth/internal/events"
	"worklog-auth/internal/observability/metrics"
	"worklog-auth/internal/security"
	"worklog-auth/internal/service"
	"worklog-auth/internal/store"
)

const RecoveryCodeCount = 10

type MFAConfig struct {
	Issuer       string        // shown in authenticator apps
	EmailCodeTTL time.Duration // e.g. 5 * time.Minute
}

type MFAServiceImpl struct {
	cfg      MFAConfig
	store    *store.Store
	box      *security.SecretBox
	sessions *SessionServiceImpl
	email    service.EmailService
	now      func() time.Time
}

func NewMFAService(cfg MFAConfig, st *store.Store, box *security.SecretBox, sessions *SessionServiceImpl, email service.EmailService) *MFAServiceImpl {
	return &MFAServiceImpl{cfg: cfg, store: st, box: box, sessions: sessions, email: email, now: time.Now}
}

// reload fetches the current row so decisions never rest on the copy loaded
// by the auth middleware.
func reload(ctx context.Context, st *store.Store, userID domain.UserID) (*domain.User, error) {
	u, err := st.Users().GetByID(ctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, domain.ErrUnauthorized
	}
	return u, err
}

// SetupAuthenticator stores a fresh encrypted secret. MFA stays disabled
// until the first successful VerifyAuthenticator.
func (m *MFAServiceImpl) SetupAuthenticator(ctx context.Context, user *domain.User) (*dto.MfaSetupResponse, error) {
	u, err := reload(ctx, m.store, user.ID)
	if err != nil {
		return nil, internalError(ctx, "load user", err)
	}
	if u.MfaEnabled {
		return nil, domain.ErrMfaAlreadyEnabled
	}

	enrollment, err := security.GenerateTotpSecret(m.cfg.Issuer, u.Email)
	if err != nil {
		return nil, internalError(ctx, "generate totp secret", err)
	}
	sealed, err := m.box.Encrypt(enrollment.Secret)
	if err != nil {
		return nil, internalError(ctx, "encrypt totp secret", err)
	}
	qr, err := security.ProvisioningQR(enrollment.URI)
	if err != nil {
		return nil, internalError(ctx, "render qr code", err)
	}
	if err := m.store.Users().Update(ctx, u.ID, domain.UserUpdate{MfaSecret: &sealed}); err != nil {
		return nil, internalError(ctx, "store totp secret", err)
	}

	slog.InfoContext(ctx, "authenticator setup started", logAttrs(ctx, "user_id", u.ID)...)

	return &dto.MfaSetupResponse{Secret: enrollment.Secret, URI: enrollment.URI, QRCode: qr}, nil
}

func (m *MFAServiceImpl) checkTotp(ctx context.Context, u *domain.User, code string) error {
	if !u.HasMfaSecret() {
		return domain.ErrMfaNotSetUp
	}
	secret, err := m.box.Decrypt(*u.MfaSecret)
	if err != nil {
		slog.ErrorContext(ctx, "totp secret unreadable", logAttrs(ctx, "user_id", u.ID, "err", err)...)
		return domain.ErrInternal
	}
	if !security.VerifyTotp(secret, code, m.now()) {
		return domain.ErrInvalidMfaCode
	}
	return nil
}

// VerifyAuthenticator completes login with an authenticator code. The first
// success also enables MFA and returns the initial recovery codes; the flag,
// the codes and the refresh token commit together.
func (m *MFAServiceImpl) VerifyAuthenticator(ctx context.Context, user *domain.User, code string) (out *service.MfaVerification, err error) {
	defer func() {
		metrics.MfaVerificationsTotal.WithLabelValues("totp", metrics.Result(err)).Inc()
	}()

	out = &service.MfaVerification{}
	err = m.store.WithTx(ctx, func(tx *store.Store) error {
		u, err := reload(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		if err := m.checkTotp(ctx, u, code); err != nil {
			return err
		}
		if !u.MfaEnabled {
			enabled, err := tx.Users().EnableMfa(ctx, u.ID)
			if err != nil {
				return err
			}
			if enabled {
				codes, err := m.issueRecoveryCodes(ctx, tx, u.ID)
				if err != nil {
					return err
				}
				out.RecoveryCodes = codes
				if err := recordAudit(ctx, tx, u.ID, events.ActionMfaEnabled, events.MfaEnabled{
					UserID: userIDString(u.ID),
					At:     m.now().UTC(),
				}); err != nil {
					return err
				}
			}
		}
		sess, err := m.sessions.completeInTx(ctx, tx, u, "totp")
		if err != nil {
			return err
		}
		out.Session = *sess
		return nil
	})
	if err != nil {
		return nil, internalError(ctx, "verify authenticator", err)
	}
	return out, nil
}

// issueRecoveryCodes replaces the user's recovery codes with a new batch and
// returns the plaintexts, which are never stored.
func (m *MFAServiceImpl) issueRecoveryCodes(ctx context.Context, tx *store.Store, userID domain.UserID) ([]string, error) {
	if _, err := tx.RecoveryCodes().DeleteForUser(ctx, userID); err != nil {
		return nil, err
	}
	codes, err := security.GenerateRecoveryCodes(RecoveryCodeCount)
	if err != nil {
		return nil, err
	}
	hashes := make([]string, len(codes))
	for i, c := range codes {
		hashes[i] = security.HashToken(c)
	}
	if _, err := tx.RecoveryCodes().CreateBatch(ctx, userID, hashes); err != nil {
		return nil, err
	}
	n, err := tx.RecoveryCodes().CountForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n != RecoveryCodeCount {
		slog.ErrorContext(ctx, "recovery code batch incomplete", logAttrs(ctx, "user_id", userID, "stored", n)...)
		return nil, domain.ErrInternal
	}
	return codes, nil
}

// SendEmailCode replaces any outstanding emailed code. Delivery failure is
// reported to the caller.
func (m *MFAServiceImpl) SendEmailCode(ctx context.Context, user *domain.User) error {
	code, err := security.GenerateEmailMfaCode()
	if err != nil {
		return internalError(ctx, "generate email code", err)
	}
	row := &domain.EmailMfaCode{
		UserID:    user.ID,
		CodeHash:  security.HashToken(code),
		ExpiresAt: m.now().UTC().Add(m.cfg.EmailCodeTTL),
	}
	if err := m.store.EmailMfaCodes().Replace(ctx, row); err != nil {
		return internalError(ctx, "store email code", err)
	}
	if err := m.email.SendMfaCode(ctx, user.Email, code); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	return nil
}

func (m *MFAServiceImpl) VerifyEmailCode(ctx context.Context, user *domain.User, code string) (sess *service.FullSession, err error) {
	defer func() {
		metrics.MfaVerificationsTotal.WithLabelValues("email", metrics.Result(err)).Inc()
	}()

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidMfaCode
	}
	matched := false
	err = m.store.WithTx(ctx, func(tx *store.Store) error {
		ok, err := tx.EmailMfaCodes().Consume(ctx, user.ID, code, m.now())
		if err != nil || !ok {
			// an expired code was purged; keep that committed
			return err
		}
		matched = true
		sess, err = m.sessions.completeInTx(ctx, tx, user, "email")
		return err
	})
	if err != nil {
		return nil, internalError(ctx, "verify email code", err)
	}
	if !matched {
		return nil, domain.ErrInvalidMfaCode
	}
	return sess, nil
}

// NormalizeRecoveryCode accepts codes typed in lower case or with spaces.
func NormalizeRecoveryCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), " ", ""))
}

func (m *MFAServiceImpl) VerifyRecoveryCode(ctx context.Context, user *domain.User, code string) (sess *service.FullSession, err error) {
	defer func() {
		metrics.MfaVerificationsTotal.WithLabelValues("recovery", metrics.Result(err)).Inc()
	}()

	code = NormalizeRecoveryCode(code)
	err = m.store.WithTx(ctx, func(tx *store.Store) error {
		u, err := reload(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		if !u.MfaEnabled {
			return domain.ErrMfaNotSetUp
		}
		if code == "" {
			return domain.ErrInvalidMfaCode
		}
		ok, err := tx.RecoveryCodes().Consume(ctx, u.ID, security.HashToken(code))
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidMfaCode
		}
		remaining, err := tx.RecoveryCodes().CountForUser(ctx, u.ID)
		if err != nil {
			return err
		}
		if err := recordAudit(ctx, tx, u.ID, events.ActionRecoveryCodeUsed, events.RecoveryCodeUsed{
			UserID:    userIDString(u.ID),
			Remaining: remaining,
			At:        m.now().UTC(),
		}); err != nil {
			return err
		}
		sess, err = m.sessions.completeInTx(ctx, tx, u, "recovery")
		return err
	})
	if err != nil {
		return nil, internalError(ctx, "verify recovery code", err)
	}
	return sess, nil
}

func (m *MFAServiceImpl) RegenerateRecoveryCodes(ctx context.Context, user *domain.User) (codes []string, err error) {
	err = m.store.WithTx(ctx, func(tx *store.Store) error {
		u, err := reload(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		if !u.MfaEnabled {
			return domain.ErrMfaNotSetUp
		}
		codes, err = m.issueRecoveryCodes(ctx, tx, u.ID)
		if err != nil {
			return err
		}
		return recordAudit(ctx, tx, u.ID, events.ActionRecoveryCodesRegenerated, events.RecoveryCodesRegenerated{
			UserID: userIDString(u.ID),
			Count:  len(codes),
			At:     m.now().UTC(),
		})
	})
	if err != nil {
		return nil, internalError(ctx, "regenerate recovery codes", err)
	}
	return codes, nil
}

// Disable needs a current authenticator code. It clears the flag, the secret
// and all recovery codes in one transaction.
func (m *MFAServiceImpl) Disable(ctx context.Context, user *domain.User, code string) error {
	err := m.store.WithTx(ctx, func(tx *store.Store) error {
		u, err := reload(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		if !u.HasMfaSecret() {
			return domain.ErrMfaAlreadyDisabled
		}
		if err := m.checkTotp(ctx, u, code); err != nil {
			return err
		}
		disabled := false
		if err := tx.Users().Update(ctx, u.ID, domain.UserUpdate{MfaEnabled: &disabled, ClearMfaSecret: true}); err != nil {
			return err
		}
		if _, err := tx.RecoveryCodes().DeleteForUser(ctx, u.ID); err != nil {
			return err
		}
		return recordAudit(ctx, tx, u.ID, events.ActionMfaDisabled, events.MfaDisabled{
			UserID: userIDString(u.ID),
			At:     m.now().UTC(),
		})
	})
	if err != nil {
		return internalError(ctx, "disable mfa", err)
	}
	slog.InfoContext(ctx, "mfa disabled", logAttrs(ctx, "user_id", user.ID)...)
	return nil
}
