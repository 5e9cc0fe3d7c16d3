package domain

import "time"

type User struct {
	ID           UserID     `gorm:"primaryKey;autoIncrement" db:"id" json:"id"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex:ux_users_email;not null" db:"email" json:"email"`
	PasswordHash string     `gorm:"type:text;not null" db:"password_hash" json:"-"`
	MfaEnabled   bool       `gorm:"not null;default:false" db:"mfa_enabled" json:"mfaEnabled"`
	MfaSecret    *string    `gorm:"type:text" db:"mfa_secret" json:"-"` // AES-GCM ciphertext, base64
	IsVerified   bool       `gorm:"not null;default:false" db:"is_verified" json:"isVerified"`
	CreatedAt    time.Time  `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"not null" db:"updated_at" json:"updatedAt"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin"`
}

func (User) TableName() string { return "users" }

// HasMfaSecret reports whether an authenticator setup was ever started and not disabled since.
func (u *User) HasMfaSecret() bool {
	return u.MfaSecret != nil && *u.MfaSecret != ""
}

// UserUpdate is a partial update; nil fields are left untouched.
// ClearMfaSecret writes NULL to mfa_secret and wins over MfaSecret.
type UserUpdate struct {
	Email          *string
	PasswordHash   *string
	MfaEnabled     *bool
	MfaSecret      *string
	ClearMfaSecret bool
	IsVerified     *bool
	LastLogin      *time.Time
}

func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.PasswordHash == nil && u.MfaEnabled == nil &&
		u.MfaSecret == nil && !u.ClearMfaSecret && u.IsVerified == nil && u.LastLogin == nil
}
