package contract

import (
	"context"
	"time"

	"techfix-tracking-be/internal/entity"
	"techfix-tracking-be/internal/repository/specification"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	AttachPlan(ctx context.Context, token string, plan entity.PlanDocument) error
	AttachTransaction(ctx context.Context, token string, ref string) error
	MarkInactive(ctx context.Context, token string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// DeleteExpiredInactive removes sessions that are both inactive and
	// created before the cutoff. Active rows are never deleted.
	DeleteExpiredInactive(ctx context.Context, cutoff time.Time) (int64, error)

	// DeactivateExpired clears the active flag on sessions whose expiry
	// has passed. It never deletes anything.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}
