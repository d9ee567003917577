package entity

import (
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the product's own services. The event_type
// column accepts any name; these are the ones the system itself knows.
const (
	EventTokenGenerated   = "token_generated"
	EventAIRequest        = "ai_request"
	EventAgentDownload    = "agent_download"
	EventAIError          = "ai_error"
	EventHumanHelpRequest = "human_help_request"
	EventCleanupCompleted = "cleanup_completed"
)

type Metadata map[string]interface{}

type AnalyticsEvent struct {
	Id        uuid.UUID
	EventType string
	Email     *string
	Token     *string
	Issue     *string
	Error     *string
	Metadata  Metadata
	UserAgent *string
	IpAddress *string
	CreatedAt time.Time
}

type AnalyticsSummary struct {
	Date        time.Time
	EventType   string
	Count       int64
	UniqueUsers int64
}
