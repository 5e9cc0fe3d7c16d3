package events

import "time"

const (
	ActionUserRegistered = "user_registered"
	ActionEmailVerified  = "email_verified"
	ActionPasswordReset  = "password_reset"
	ActionLoginSucceeded = "login_succeeded"
)

type UserRegistered struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

type EmailVerified struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

type PasswordReset struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

type LoginSucceeded struct {
	UserID      string    `json:"userId"`
	MfaRequired bool      `json:"mfaRequired"`
	At          time.Time `json:"at"`
}
