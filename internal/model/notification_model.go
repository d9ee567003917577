package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification rows are broadcast banners. They are written once and
// never updated or deleted.
type Notification struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title     string    `gorm:"type:varchar(200);not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_notifications_created" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
