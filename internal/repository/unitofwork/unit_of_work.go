package unitofwork

import (
	"context"

	"techfix-tracking-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	NotificationRepository() contract.NotificationRepository
	AnalyticsRepository() contract.AnalyticsRepository
}
