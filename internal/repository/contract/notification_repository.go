package contract

import (
	"context"

	"techfix-tracking-be/internal/entity"
	"techfix-tracking-be/internal/repository/specification"
)

// NotificationRepository is append-and-read only. Broadcasts are never
// edited after publication.
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Notification, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notification, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
