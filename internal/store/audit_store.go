package store

import (
	"context"
	"encoding/json"
	"time"

	"worklog-auth/internal/domain"

	"gorm.io/gorm"
)

type AuditStore struct{ db *gorm.DB }

func (s *Store) Audit() *AuditStore { return &AuditStore{db: s.DB} }

// Record appends an audit row; event is stored as JSON.
func (as *AuditStore) Record(ctx context.Context, userID *domain.UserID, action string, event any, ip, ua string) error {
	meta, err := json.Marshal(event)
	if err != nil {
		return err
	}
	row := &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Metadata:  string(meta),
		IP:        ip,
		UserAgent: ua,
		CreatedAt: time.Now().UTC(),
	}
	return translateError(as.db.WithContext(ctx).Create(row).Error)
}

func (as *AuditStore) ListForUser(ctx context.Context, userID domain.UserID) ([]domain.AuditLog, error) {
	var rows []domain.AuditLog
	err := as.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&rows).Error
	return rows, translateError(err)
}
