package store

import (
	"context"
	"time"

	"worklog-auth/internal/domain"

	"gorm.io/gorm"
)

type VerificationTokenStore struct{ db *gorm.DB }

func (s *Store) VerificationTokens() *VerificationTokenStore {
	return &VerificationTokenStore{db: s.DB}
}

func (vs *VerificationTokenStore) Create(ctx context.Context, t *domain.VerificationToken) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	return translateError(vs.db.WithContext(ctx).Create(t).Error)
}

func (vs *VerificationTokenStore) GetByHash(ctx context.Context, hash string, purpose domain.TokenPurpose) (*domain.VerificationToken, error) {
	var t domain.VerificationToken
	err := vs.db.WithContext(ctx).First(&t, "token_hash = ? AND token_type = ?", hash, purpose).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

// DeleteForUser drops every verification token of the user, whatever its purpose.
func (vs *VerificationTokenStore) DeleteForUser(ctx context.Context, userID domain.UserID) (int64, error) {
	res := vs.db.WithContext(ctx).Delete(&domain.VerificationToken{}, "user_id = ?", userID)
	return res.RowsAffected, translateError(res.Error)
}
