package store

import (
	"context"
	"time"

	"worklog-auth/internal/domain"

	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	now := time.Now().UTC()
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = now
	}
	usr.UpdatedAt = now
	return translateError(u.db.WithContext(ctx).Create(usr).Error)
}

func (u *UserStore) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// Update applies the non-nil fields of upd. It returns ErrRecordNotFound when
// no row matched.
func (u *UserStore) Update(ctx context.Context, id domain.UserID, upd domain.UserUpdate) error {
	if upd.Empty() {
		return nil
	}
	cols := map[string]any{"updated_at": time.Now().UTC()}
	if upd.Email != nil {
		cols["email"] = *upd.Email
	}
	if upd.PasswordHash != nil {
		cols["password_hash"] = *upd.PasswordHash
	}
	if upd.MfaEnabled != nil {
		cols["mfa_enabled"] = *upd.MfaEnabled
	}
	if upd.ClearMfaSecret {
		cols["mfa_secret"] = nil
	} else if upd.MfaSecret != nil {
		cols["mfa_secret"] = *upd.MfaSecret
	}
	if upd.IsVerified != nil {
		cols["is_verified"] = *upd.IsVerified
	}
	if upd.LastLogin != nil {
		cols["last_login"] = upd.LastLogin.UTC()
	}
	res := u.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// EnableMfa flips mfa_enabled from false to true. It reports false when the
// flag was already set, so concurrent verifications enable exactly once.
func (u *UserStore) EnableMfa(ctx context.Context, id domain.UserID) (bool, error) {
	res := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND mfa_enabled = ? AND mfa_secret IS NOT NULL", id, false).
		Updates(map[string]any{"mfa_enabled": true, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (u *UserStore) Delete(ctx context.Context, id domain.UserID) error {
	res := u.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
