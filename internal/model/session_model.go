package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Session struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Token          string         `gorm:"type:varchar(9);not null;uniqueIndex:uq_sessions_token" json:"token"`
	Email          string         `gorm:"type:varchar(255);not null;index:idx_sessions_email" json:"email"`
	Issue          string         `gorm:"type:text;not null" json:"issue"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP;index:idx_sessions_active_created,priority:2" json:"created_at"`
	ExpiresAt      time.Time      `gorm:"not null" json:"expires_at"`
	Active         bool           `gorm:"not null;default:true;index:idx_sessions_active_created,priority:1" json:"active"`
	PlanType       string         `gorm:"type:varchar(20);not null;default:'basic'" json:"plan_type"`
	TransactionRef *string        `gorm:"type:varchar(255)" json:"transaction_ref,omitempty"`
	Plan           datatypes.JSON `gorm:"type:jsonb" json:"plan,omitempty"`
}

func (Session) TableName() string {
	return "sessions"
}
