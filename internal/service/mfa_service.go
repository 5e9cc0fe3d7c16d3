package service

import (
	"context"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/dto"
)

// MfaVerification is returned by a successful authenticator verification.
// RecoveryCodes is set only on the call that enabled MFA.
type MfaVerification struct {
	Session       FullSession
	RecoveryCodes []string
}

type MFAService interface {
	SetupAuthenticator(ctx context.Context, user *domain.User) (*dto.MfaSetupResponse, error)
	VerifyAuthenticator(ctx context.Context, user *domain.User, code string) (*MfaVerification, error)
	SendEmailCode(ctx context.Context, user *domain.User) error
	VerifyEmailCode(ctx context.Context, user *domain.User, code string) (*FullSession, error)
	VerifyRecoveryCode(ctx context.Context, user *domain.User, code string) (*FullSession, error)
	RegenerateRecoveryCodes(ctx context.Context, user *domain.User) ([]string, error)
	Disable(ctx context.Context, user *domain.User, code string) error
}
