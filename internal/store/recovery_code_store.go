package store

import (
	"context"
	"time"

	"worklog-auth/internal/domain"

	"gorm.io/gorm"
)

type RecoveryCodeStore struct{ db *gorm.DB }

func (s *Store) RecoveryCodes() *RecoveryCodeStore { return &RecoveryCodeStore{db: s.DB} }

// CreateBatch inserts one row per hash and returns the number of rows written.
func (rs *RecoveryCodeStore) CreateBatch(ctx context.Context, userID domain.UserID, hashes []string) (int64, error) {
	if len(hashes) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	rows := make([]domain.RecoveryCode, 0, len(hashes))
	for _, h := range hashes {
		rows = append(rows, domain.RecoveryCode{UserID: userID, CodeHash: h, CreatedAt: now})
	}
	res := rs.db.WithContext(ctx).Create(&rows)
	return res.RowsAffected, translateError(res.Error)
}

// Consume deletes one matching code and reports whether it existed.
func (rs *RecoveryCodeStore) Consume(ctx context.Context, userID domain.UserID, hash string) (bool, error) {
	var row domain.RecoveryCode
	err := rs.db.WithContext(ctx).
		Where("user_id = ? AND code_hash = ?", userID, hash).
		Order("id").
		First(&row).Error
	if err != nil {
		if err = translateError(err); err == ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	res := rs.db.WithContext(ctx).Delete(&domain.RecoveryCode{}, "id = ?", row.ID)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (rs *RecoveryCodeStore) DeleteForUser(ctx context.Context, userID domain.UserID) (int64, error) {
	res := rs.db.WithContext(ctx).Delete(&domain.RecoveryCode{}, "user_id = ?", userID)
	return res.RowsAffected, translateError(res.Error)
}

func (rs *RecoveryCodeStore) CountForUser(ctx context.Context, userID domain.UserID) (int64, error) {
	var n int64
	err := rs.db.WithContext(ctx).Model(&domain.RecoveryCode{}).Where("user_id = ?", userID).Count(&n).Error
	return n, translateError(err)
}
