package dto

import "time"

const TokenTypeBearer = "bearer"

type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	ExpiresIn   int64     `json:"expiresIn"`
}

func NewTokenResponse(token string, expiresAt, now time.Time) TokenResponse {
	return TokenResponse{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
		ExpiresIn:   int64(expiresAt.Sub(now).Seconds()),
	}
}

type MfaSetupResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qrCode"` // data:image/png;base64,...
}

type MfaVerifiedResponse struct {
	TokenResponse
	RecoveryCodes []string `json:"recoveryCodes,omitempty"`
}

type RecoveryCodesResponse struct {
	RecoveryCodes []string `json:"recoveryCodes"`
}
