package domain

import "time"

type RecoveryCode struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" db:"id"`
	UserID    UserID    `gorm:"index:ix_recovery_codes_user_hash,priority:1;not null" db:"user_id"`
	CodeHash  string    `gorm:"type:char(64);index:ix_recovery_codes_user_hash,priority:2;not null" db:"code_hash"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
}

func (RecoveryCode) TableName() string { return "recovery_codes" }

// EmailMfaCode is the single active emailed second-factor code of a user.
type EmailMfaCode struct {
	UserID    UserID    `gorm:"primaryKey;autoIncrement:false" db:"user_id"`
	CodeHash  string    `gorm:"type:char(64);not null" db:"code_hash"`
	ExpiresAt time.Time `gorm:"not null" db:"expires_at"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
}

func (EmailMfaCode) TableName() string { return "email_mfa_codes" }
