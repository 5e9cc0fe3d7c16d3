package service

import (
	"context"
	"time"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/dto"
)

// FullSession is the result of a completed second factor: an authenticated
// access token plus the plaintext refresh token for the cookie.
type FullSession struct {
	Access           dto.TokenResponse
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type SessionService interface {
	IssueTemporary(ctx context.Context, user *domain.User) (*dto.TokenResponse, error)
	CompleteSecondFactor(ctx context.Context, user *domain.User) (*FullSession, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string, userID domain.UserID) error
	// Authenticate resolves the user behind an access token. requireFull
	// selects between full (true) and pending-MFA (false) tokens; the other
	// kind is rejected.
	Authenticate(ctx context.Context, accessToken string, requireFull bool) (*domain.User, error)
}
