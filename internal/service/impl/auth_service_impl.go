package impl

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/dto"
	"worklog-auth/internal/events"
	"worklog-auth/internal/observability/metrics"
	"worklog-auth/internal/service"
	"worklog-auth/internal/store"
)

const registerMessage = "Registration successful. Please check your email to verify your account."

type AuthServiceImpl struct {
	Store           *store.Store
	PasswordService service.PasswordService
	Sessions        service.SessionService
	Verification    service.VerificationService

	now       func() time.Time
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthServiceImpl(st *store.Store, passwordService service.PasswordService, sessions service.SessionService, verification service.VerificationService) *AuthServiceImpl {
	return &AuthServiceImpl{
		Store:           st,
		PasswordService: passwordService,
		Sessions:        sessions,
		Verification:    verification,
		now:             time.Now,
	}
}

func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (resp *dto.RegisterResponse, err error) {
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	email := normalizeEmail(r.Email)
	if email == "" || len(r.Password) < minPasswordLength {
		return nil, domain.ErrInvalidRequest
	}
	if _, err := a.Store.Users().GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, internalError(ctx, "lookup user", err)
	}

	hash, err := a.PasswordService.Hash(r.Password)
	if err != nil {
		return nil, internalError(ctx, "hash password", err)
	}

	now := a.now().UTC()
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		IsVerified:   false, // stays false until the emailed token is confirmed
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = a.Store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return domain.ErrAlreadyExists // lost a race with a concurrent registration
			}
			return err
		}
		return recordAudit(ctx, tx, user.ID, events.ActionUserRegistered, events.UserRegistered{
			UserID: userIDString(user.ID),
			Email:  user.Email,
			At:     now,
		})
	})
	if err != nil {
		return nil, internalError(ctx, "create user", err)
	}

	slog.InfoContext(ctx, "user registered", logAttrs(ctx, "user_id", user.ID)...)

	if err := a.Verification.IssueEmailVerification(ctx, user); err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{
		UserID:                    userIDString(user.ID),
		RequiresEmailVerification: true,
		Message:                   registerMessage,
	}, nil
}

// Login checks the password and hands out a pending-MFA token. The full
// session is only issued after a second factor.
func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest) (resp *dto.LoginResponse, err error) {
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	user, rehashNeeded, err := a.checkPassword(ctx, r.Email, r.Password)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		return nil, domain.ErrEmailNotVerified
	}

	now := a.now().UTC()
	upd := domain.UserUpdate{LastLogin: &now}
	if rehashNeeded {
		if hash := a.rehash(ctx, user, r.Password); hash != "" {
			upd.PasswordHash = &hash
		}
	}
	err = a.Store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.Users().Update(ctx, user.ID, upd); err != nil {
			return err
		}
		return recordAudit(ctx, tx, user.ID, events.ActionLoginSucceeded, events.LoginSucceeded{
			UserID:      userIDString(user.ID),
			MfaRequired: true,
			At:          now,
		})
	})
	if err != nil {
		return nil, internalError(ctx, "record login", err)
	}

	tok, err := a.Sessions.IssueTemporary(ctx, user)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "password login", logAttrs(ctx, "user_id", user.ID, "mfa_enabled", user.MfaEnabled)...)

	return &dto.LoginResponse{
		AccessToken:           tok.AccessToken,
		TokenType:             tok.TokenType,
		ExpiresAt:             tok.ExpiresAt,
		ExpiresIn:             tok.ExpiresIn,
		MfaRequired:           true,
		AuthenticatorMfaSetup: user.MfaEnabled,
	}, nil
}

// DeleteAccount removes the user and everything keyed by them after
// re-checking the password.
func (a *AuthServiceImpl) DeleteAccount(ctx context.Context, r dto.DeleteUserRequest) (map[string]int64, error) {
	user, _, err := a.checkPassword(ctx, r.Email, r.Password)
	if err != nil {
		return nil, err
	}
	deleted, err := a.Store.DeleteUserData(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, internalError(ctx, "delete user", err)
	}
	slog.InfoContext(ctx, "user deleted", logAttrs(ctx, "user_id", user.ID, "deleted", deleted)...)
	return deleted, nil
}

// checkPassword returns the same error for an unknown email and a wrong
// password, and spends the same hashing effort on both.
func (a *AuthServiceImpl) checkPassword(ctx context.Context, email, password string) (*domain.User, bool, error) {
	user, err := a.Store.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			a.PasswordService.Verify(password, a.dummy())
			return nil, false, domain.ErrInvalidCredentials
		}
		return nil, false, internalError(ctx, "lookup user", err)
	}
	ok, rehashNeeded := a.PasswordService.Verify(password, user.PasswordHash)
	if !ok {
		return nil, false, domain.ErrInvalidCredentials
	}
	return user, rehashNeeded, nil
}

// rehash returns the password encoded under the current policy, or "" on
// failure, which leaves the old hash in place.
func (a *AuthServiceImpl) rehash(ctx context.Context, user *domain.User, password string) string {
	hash, err := a.PasswordService.Hash(password)
	if err != nil {
		slog.WarnContext(ctx, "password rehash failed", logAttrs(ctx, "user_id", user.ID, "err", err)...)
		return ""
	}
	return hash
}

func (a *AuthServiceImpl) dummy() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = a.PasswordService.Hash("dummy-password-for-timing")
	})
	return a.dummyHash
}
