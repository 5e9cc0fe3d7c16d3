package store

import (
	"context"
	"time"

	"worklog-auth/internal/domain"
	"worklog-auth/internal/security"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmailMfaCodeStore struct{ db *gorm.DB }

func (s *Store) EmailMfaCodes() *EmailMfaCodeStore { return &EmailMfaCodeStore{db: s.DB} }

// Replace stores c as the only active code of its user.
func (es *EmailMfaCodeStore) Replace(ctx context.Context, c *domain.EmailMfaCode) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.ExpiresAt = c.ExpiresAt.UTC()

	// Requires user_id to be the primary key (see domain tag).
	return translateError(es.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code_hash", "expires_at", "created_at"}),
	}).Create(c).Error)
}

// Consume reports whether code matches the user's live code hash and deletes
// it on a match. An expired code is deleted and never matches.
func (es *EmailMfaCodeStore) Consume(ctx context.Context, userID domain.UserID, code string, now time.Time) (bool, error) {
	var row domain.EmailMfaCode
	if err := es.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		if err = translateError(err); err == ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	if !now.UTC().Before(row.ExpiresAt.UTC()) {
		err := es.db.WithContext(ctx).Delete(&domain.EmailMfaCode{}, "user_id = ?", userID).Error
		return false, translateError(err)
	}
	if !security.TokenMatches(code, row.CodeHash) {
		return false, nil
	}
	res := es.db.WithContext(ctx).Delete(&domain.EmailMfaCode{}, "user_id = ? AND code_hash = ?", userID, row.CodeHash)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}
