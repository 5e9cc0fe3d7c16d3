package domain

import "errors"

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrEmailNotVerified      = errors.New("please verify your email first")
	ErrAlreadyExists         = errors.New("email already registered")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrInvalidMfaCode        = errors.New("invalid mfa code")
	ErrUnauthorized          = errors.New("invalid authentication credentials")
	ErrMfaNotSetUp           = errors.New("authenticator mfa not set up")
	ErrMfaAlreadyEnabled     = errors.New("authenticator mfa is already enabled")
	ErrMfaAlreadyDisabled    = errors.New("mfa is not enabled")
	ErrDeliveryFailed        = errors.New("failed to send email")
	ErrInternal              = errors.New("internal error")
)
