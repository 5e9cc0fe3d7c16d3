package impl

import (
	"errors"
	"strconv"
	"time"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/jwtsigner"
	"worklog-auth/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims is the wire form of an access token. Auth is false for the
// pending-MFA token handed out by login and must always be present.
type AccessClaims struct {
	Auth *bool `json:"auth"`
	jwt.RegisteredClaims
}

type SessionTokenServiceImpl struct {
	signer *jwtsigner.Signer
	now    func() time.Time
}

func NewSessionTokenService(signer *jwtsigner.Signer) *SessionTokenServiceImpl {
	return &SessionTokenServiceImpl{signer: signer, now: time.Now}
}

func (t *SessionTokenServiceImpl) Issue(userID domain.UserID, ttl time.Duration, authenticated bool) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, errors.New("token ttl must be positive")
	}
	now := t.now().UTC()
	exp := now.Add(ttl)
	claims := AccessClaims{
		Auth: &authenticated,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.signer.Issuer,
			Subject:   strconv.FormatUint(userID, 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(), // unique per access token
		},
	}
	token, err := t.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Decode never says why a token was rejected.
func (t *SessionTokenServiceImpl) Decode(token string) (*service.SessionClaims, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	var claims AccessClaims
	if err := t.signer.Parse(token, &claims); err != nil {
		return nil, domain.ErrUnauthorized
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || claims.ExpiresAt == nil || claims.Auth == nil {
		return nil, domain.ErrUnauthorized
	}
	out := &service.SessionClaims{
		UserID:        userID,
		Authenticated: *claims.Auth,
		ExpiresAt:     claims.ExpiresAt.Time,
		ID:            claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
