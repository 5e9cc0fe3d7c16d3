package events

import "time"

const (
	ActionMfaEnabled               = "mfa_enabled"
	ActionMfaDisabled              = "mfa_disabled"
	ActionRecoveryCodeUsed         = "recovery_code_used"
	ActionRecoveryCodesRegenerated = "recovery_codes_regenerated"
)

type MfaEnabled struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

type MfaDisabled struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

type RecoveryCodeUsed struct {
	UserID    string    `json:"userId"`
	Remaining int64     `json:"remaining"`
	At        time.Time `json:"at"`
}

type RecoveryCodesRegenerated struct {
	UserID string    `json:"userId"`
	Count  int       `json:"count"`
	At     time.Time `json:"at"`
}
