package store

import (
	"context"

	"worklog-auth/internal/domain"

	"gorm.io/gorm"
)

// DeleteUserData removes the user's record and everything keyed by it and
// returns counts of affected rows captured before deletion. Audit rows are
// kept with their user reference cleared.
func (s *Store) DeleteUserData(ctx context.Context, userID domain.UserID) (map[string]int64, error) {
	deleted := map[string]int64{}

	err := s.WithTx(ctx, func(tx *Store) error {
		db := tx.DB.WithContext(ctx)

		count := func(label string, query *gorm.DB) error {
			var total int64
			if err := query.Count(&total).Error; err != nil {
				return err
			}
			deleted[label] = total
			return nil
		}

		if err := count("users", db.Model(&domain.User{}).Where("id = ?", userID)); err != nil {
			return err
		}
		if deleted["users"] == 0 {
			return ErrRecordNotFound
		}

		owned := []struct {
			label string
			model any
		}{
			{"refreshTokens", &domain.RefreshToken{}},
			{"verificationTokens", &domain.VerificationToken{}},
			{"recoveryCodes", &domain.RecoveryCode{}},
			{"emailMfaCodes", &domain.EmailMfaCode{}},
		}
		for _, o := range owned {
			if err := count(o.label, db.Model(o.model).Where("user_id = ?", userID)); err != nil {
				return err
			}
			if err := db.Where("user_id = ?", userID).Delete(o.model).Error; err != nil {
				return translateError(err)
			}
		}

		if err := db.Model(&domain.AuditLog{}).Where("user_id = ?", userID).Update("user_id", nil).Error; err != nil {
			return translateError(err)
		}

		return translateError(db.Where("id = ?", userID).Delete(&domain.User{}).Error)
	})

	return deleted, err
}
