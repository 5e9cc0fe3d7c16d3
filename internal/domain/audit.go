package domain

import "time"

type AuditLog struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" db:"id"`
	UserID    *UserID   `gorm:"index" db:"user_id"`
	Action    string    `gorm:"type:varchar(64);not null" db:"action"`
	Metadata  string    `gorm:"type:text" db:"metadata"` // JSON encoded event
	IP        string    `gorm:"type:varchar(64)" db:"ip"`
	UserAgent string    `gorm:"type:text" db:"user_agent"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
