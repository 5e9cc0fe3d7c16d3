package service

import (
	"time"

	"worklog-auth/internal/domain"
)

// SessionClaims is the decoded payload of an access token.
type SessionClaims struct {
	UserID        domain.UserID
	Authenticated bool
	IssuedAt      time.Time
	ExpiresAt     time.Time
	ID            string
}

type SessionTokenService interface {
	Issue(userID domain.UserID, ttl time.Duration, authenticated bool) (token string, expiresAt time.Time, err error)
	Decode(token string) (*SessionClaims, error)
}
