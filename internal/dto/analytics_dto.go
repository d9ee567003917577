package dto

import (
	"time"

	"github.com/google/uuid"
)

// RecordEventRequest carries one analytics event. Only the event type is
// mandatory; empty optional fields are stored as NULL.
type RecordEventRequest struct {
	EventType string                 `json:"event_type" validate:"required,max=50"`
	Email     string                 `json:"email" validate:"omitempty,email"`
	Token     string                 `json:"token" validate:"omitempty,max=16"`
	Issue     string                 `json:"issue"`
	Error     string                 `json:"error"`
	Metadata  map[string]interface{} `json:"metadata"`
	UserAgent string                 `json:"user_agent"`
	IpAddress string                 `json:"ip_address" validate:"omitempty,ip"`
}

type QueryEventsRequest struct {
	EventType string     `json:"event_type" validate:"omitempty,max=50"`
	From      *time.Time `json:"from"`
	To        *time.Time `json:"to"`
	Limit     int        `json:"limit" validate:"omitempty,min=1,max=1000"`
	Offset    int        `json:"offset" validate:"omitempty,min=0"`
}

type AnalyticsEventResponse struct {
	Id        uuid.UUID              `json:"id"`
	EventType string                 `json:"event_type"`
	Email     *string                `json:"email,omitempty"`
	Token     *string                `json:"token,omitempty"`
	Issue     *string                `json:"issue,omitempty"`
	Error     *string                `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	UserAgent *string                `json:"user_agent,omitempty"`
	IpAddress *string                `json:"ip_address,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type AnalyticsSummaryResponse struct {
	Date        time.Time `json:"date"`
	EventType   string    `json:"event_type"`
	Count       int64     `json:"count"`
	UniqueUsers int64     `json:"unique_users"`
}

// TrackMessage is the wire form of a tracked event on the bus. AuthToken
// is only meaningful on transports that cross process boundaries.
type TrackMessage struct {
	EventType  string                 `json:"event_type"`
	Email      string                 `json:"email,omitempty"`
	Token      string                 `json:"token,omitempty"`
	Issue      string                 `json:"issue,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	UserAgent  string                 `json:"user_agent,omitempty"`
	IpAddress  string                 `json:"ip_address,omitempty"`
	AuthToken  string                 `json:"auth_token,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}
