package domain

import "time"

// RefreshToken is a persisted session continuation capability. Only the
// SHA-256 hex digest of the opaque cookie value is stored.
type RefreshToken struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" db:"id"`
	UserID    UserID    `gorm:"index;not null" db:"user_id"`
	TokenHash string    `gorm:"type:char(64);uniqueIndex:ux_refresh_tokens_hash;not null" db:"token_hash"`
	ExpiresAt time.Time `gorm:"not null" db:"expires_at"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.UTC().Before(t.ExpiresAt.UTC())
}

type VerificationToken struct {
	ID        uint64       `gorm:"primaryKey;autoIncrement" db:"id"`
	UserID    UserID       `gorm:"index;not null" db:"user_id"`
	TokenHash string       `gorm:"type:char(64);uniqueIndex:ux_verification_tokens_hash;not null" db:"token_hash"`
	Purpose   TokenPurpose `gorm:"column:token_type;type:varchar(32);not null" db:"token_type"`
	ExpiresAt time.Time    `gorm:"not null" db:"expires_at"`
	CreatedAt time.Time    `gorm:"not null" db:"created_at"`
}

func (VerificationToken) TableName() string { return "verification_tokens" }

func (t *VerificationToken) Expired(now time.Time) bool {
	return !now.UTC().Before(t.ExpiresAt.UTC())
}
