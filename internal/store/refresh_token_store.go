package store

import (
	"context"
	"time"

	"worklog-auth/internal/domain"

	"gorm.io/gorm"
)

type RefreshTokenStore struct{ db *gorm.DB }

func (s *Store) RefreshTokens() *RefreshTokenStore { return &RefreshTokenStore{db: s.DB} }

func (rs *RefreshTokenStore) Create(ctx context.Context, t *domain.RefreshToken) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	return translateError(rs.db.WithContext(ctx).Create(t).Error)
}

func (rs *RefreshTokenStore) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	if err := rs.db.WithContext(ctx).First(&t, "token_hash = ?", hash).Error; err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

// Delete removes the token only if it belongs to userID.
func (rs *RefreshTokenStore) Delete(ctx context.Context, hash string, userID domain.UserID) (int64, error) {
	res := rs.db.WithContext(ctx).Delete(&domain.RefreshToken{}, "token_hash = ? AND user_id = ?", hash, userID)
	return res.RowsAffected, translateError(res.Error)
}

func (rs *RefreshTokenStore) DeleteExpiredForUser(ctx context.Context, userID domain.UserID, now time.Time) (int64, error) {
	res := rs.db.WithContext(ctx).Delete(&domain.RefreshToken{}, "user_id = ? AND expires_at <= ?", userID, now.UTC())
	return res.RowsAffected, translateError(res.Error)
}

func (rs *RefreshTokenStore) CountForUser(ctx context.Context, userID domain.UserID) (int64, error) {
	var n int64
	err := rs.db.WithContext(ctx).Model(&domain.RefreshToken{}).Where("user_id = ?", userID).Count(&n).Error
	return n, translateError(err)
}
