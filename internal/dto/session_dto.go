package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Token    string     `json:"token" validate:"required"`
	Email    string     `json:"email" validate:"required,email"`
	Issue    string     `json:"issue" validate:"required"`
	PlanType string     `json:"plan_type" validate:"omitempty,oneof=basic bundle pro"`
	// ExpiresAt overrides the configured default TTL when set.
	ExpiresAt *time.Time `json:"expires_at" validate:"omitempty"`
}

type AttachPlanRequest struct {
	Token string                 `json:"token" validate:"required"`
	Plan  map[string]interface{} `json:"plan" validate:"required"`
}

type SessionResponse struct {
	Id             uuid.UUID              `json:"id"`
	Token          string                 `json:"token"`
	Email          string                 `json:"email"`
	Issue          string                 `json:"issue"`
	CreatedAt      time.Time              `json:"created_at"`
	ExpiresAt      time.Time              `json:"expires_at"`
	Active         bool                   `json:"active"`
	PlanType       string                 `json:"plan_type"`
	TransactionRef *string                `json:"transaction_ref,omitempty"`
	Plan           map[string]interface{} `json:"plan,omitempty"`
}
