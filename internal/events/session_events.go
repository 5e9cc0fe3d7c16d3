package events

import "time"

const (
	ActionSessionIssued  = "session_issued"
	ActionSessionRevoked = "session_revoked"
)

type SessionIssued struct {
	UserID string    `json:"userId"`
	Method string    `json:"method"` // totp, email or recovery
	At     time.Time `json:"at"`
}

type SessionRevoked struct {
	UserID    string    `json:"userId"`
	Remaining int64     `json:"remaining"` // refresh tokens still live for the user
	At        time.Time `json:"at"`
}
