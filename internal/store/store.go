package store

import (
	"context"

	"worklog-auth/internal/domain"

	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{DB: db} }

// WithTx runs fn inside one database transaction. Any error returned by fn
// (or a panic) rolls back every write made through tx.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx})
	})
}

// Models lists every table owned by the service, in dependency order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.RefreshToken{},
		&domain.VerificationToken{},
		&domain.RecoveryCode{},
		&domain.EmailMfaCode{},
		&domain.AuditLog{},
	}
}

func (s *Store) AutoMigrate(ctx context.Context) error {
	return s.DB.WithContext(ctx).AutoMigrate(Models()...)
}
