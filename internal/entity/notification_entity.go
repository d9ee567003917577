package entity

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	Id        uuid.UUID
	Title     string
	Message   string
	CreatedAt time.Time
}
