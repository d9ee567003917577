package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNotificationRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required"`
}

type ListNotificationsRequest struct {
	// Ascending flips the default newest-first ordering.
	Ascending bool `json:"ascending"`
	Limit     int  `json:"limit" validate:"omitempty,min=1,max=200"`
	Offset    int  `json:"offset" validate:"omitempty,min=0"`
}

type NotificationResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
