package dto

import "time"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginResponse carries a pending-MFA token only; a full session needs a
// second factor.
type LoginResponse struct {
	AccessToken           string    `json:"accessToken"`
	TokenType             string    `json:"tokenType"`
	ExpiresAt             time.Time `json:"expiresAt"`
	ExpiresIn             int64     `json:"expiresIn"`
	MfaRequired           bool      `json:"mfaRequired"`
	AuthenticatorMfaSetup bool      `json:"authenticatorMfaSetup"`
}

type MfaCodeRequest struct {
	Code string `json:"code" validate:"required,max=16"`
}
