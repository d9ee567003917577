package entity

import (
	"time"

	"github.com/google/uuid"
)

type PlanType string

const (
	PlanTypeBasic  PlanType = "basic"
	PlanTypeBundle PlanType = "bundle"
	PlanTypePro    PlanType = "pro"
)

func (p PlanType) Valid() bool {
	switch p {
	case PlanTypeBasic, PlanTypeBundle, PlanTypePro:
		return true
	}
	return false
}

// PlanDocument is the repair plan produced by the planning service. Its
// shape is owned by that service, so the store keeps it opaque.
type PlanDocument map[string]interface{}

type Session struct {
	Id             uuid.UUID
	Token          string
	Email          string
	Issue          string
	CreatedAt      time.Time
	ExpiresAt      time.Time
	Active         bool
	PlanType       PlanType
	TransactionRef *string
	Plan           PlanDocument
}

// IsExpired reports whether the session has passed its expiry at the
// given instant. Expiry does not flip Active by itself; a sweep does.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
