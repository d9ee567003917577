package specification

import (
	"time"

	"gorm.io/gorm"
)

// ByEventType filters analytics events by their type name.
type ByEventType struct {
	EventType string
}

func (s ByEventType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("event_type = ?", s.EventType)
}

// CreatedFrom is an inclusive lower bound on created_at.
type CreatedFrom struct {
	From time.Time
}

func (s CreatedFrom) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.From)
}

// CreatedUntil is an exclusive upper bound on created_at.
type CreatedUntil struct {
	Until time.Time
}

func (s CreatedUntil) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at < ?", s.Until)
}

// DateFrom is an inclusive lower bound on a summary's date column.
type DateFrom struct {
	From time.Time
}

func (s DateFrom) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("date >= ?", s.From)
}

// DateUntil is an inclusive upper bound on a summary's date column.
type DateUntil struct {
	Until time.Time
}

func (s DateUntil) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("date <= ?", s.Until)
}
