package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnalyticsEvent rows are append-only. The nullable columns carry
// whatever context the caller had at hand; only event_type is required.
type AnalyticsEvent struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EventType string         `gorm:"type:varchar(50);not null;index:idx_analytics_type_created,priority:1" json:"event_type"`
	Email     *string        `gorm:"type:varchar(255);index:idx_analytics_email" json:"email,omitempty"`
	Token     *string        `gorm:"type:varchar(9)" json:"token,omitempty"`
	Issue     *string        `gorm:"type:text" json:"issue,omitempty"`
	Error     *string        `gorm:"type:text" json:"error,omitempty"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	UserAgent *string        `gorm:"type:text" json:"user_agent,omitempty"`
	IpAddress *string        `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP;index:idx_analytics_type_created,priority:2" json:"created_at"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics"
}

// AnalyticsSummary holds one row per (date, event_type), maintained by
// the rollup job. Re-running a rollup overwrites the counts in place.
type AnalyticsSummary struct {
	Date        time.Time `gorm:"type:date;primaryKey" json:"date"`
	EventType   string    `gorm:"type:varchar(50);primaryKey" json:"event_type"`
	Count       int64     `gorm:"not null;default:0" json:"count"`
	UniqueUsers int64     `gorm:"not null;default:0" json:"unique_users"`
}

func (AnalyticsSummary) TableName() string {
	return "analytics_summary"
}
