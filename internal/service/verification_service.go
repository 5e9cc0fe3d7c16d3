package service

import (
	"context"

	"worklog-auth/internal/domain"
)

// VerificationService owns single-use email verification and password reset
// tokens.
type VerificationService interface {
	IssueEmailVerification(ctx context.Context, user *domain.User) error
	RequestEmailVerification(ctx context.Context, email string) error
	ConfirmEmailVerification(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}
