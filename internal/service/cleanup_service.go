package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"techfix-tracking-be/internal/dto"
	"techfix-tracking-be/internal/entity"
	"techfix-tracking-be/internal/pkg/authz"
	"techfix-tracking-be/internal/pkg/logger"
	"techfix-tracking-be/internal/repository/unitofwork"

	"go.opentelemetry.io/otel"
)

// ErrCleanupRunning is returned when a pass is triggered while a previous
// one is still in flight. The scheduler just tries again next interval.
var ErrCleanupRunning = errors.New("cleanup pass already running")

type ICleanupService interface {
	// Run performs one pass and returns how many sessions were removed.
	Run(ctx context.Context) (int64, error)

	// Start runs passes on the given interval until ctx is canceled.
	Start(ctx context.Context, interval time.Duration)
}

type cleanupService struct {
	uowFactory   unitofwork.RepositoryFactory
	guard        *authz.Guard
	analytics    IAnalyticsService
	logger       logger.ILogger
	retention    time.Duration
	sweepExpired bool
	running      atomic.Bool
}

func NewCleanupService(
	uowFactory unitofwork.RepositoryFactory,
	guard *authz.Guard,
	analytics IAnalyticsService,
	log logger.ILogger,
	retention time.Duration,
	sweepExpired bool,
) ICleanupService {
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &cleanupService{
		uowFactory:   uowFactory,
		guard:        guard,
		analytics:    analytics,
		logger:       log,
		retention:    retention,
		sweepExpired: sweepExpired,
	}
}

// Run deletes sessions that are both inactive and older than the
// retention window. Active rows are never deleted, whatever their age.
// When sweepExpired is on, expired-but-active rows are deactivated first
// so they start aging toward deletion.
func (s *cleanupService) Run(ctx context.Context) (int64, error) {
	if err := s.guard.Require(ctx, authz.CapSessionPurge); err != nil {
		return 0, err
	}
	if !s.running.CompareAndSwap(false, true) {
		return 0, ErrCleanupRunning
	}
	defer s.running.Store(false)

	ctx, span := otel.Tracer("cleanup-service").Start(ctx, "cleanup.run")
	defer span.End()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if s.sweepExpired {
		swept, err := uow.SessionRepository().DeactivateExpired(ctx, time.Now())
		if err != nil {
			return 0, err
		}
		if swept > 0 {
			s.logger.Info("CleanupService", "Deactivated expired sessions", map[string]interface{}{
				"count": swept,
			})
		}
	}

	cutoff := time.Now().Add(-s.retention)
	deleted, err := uow.SessionRepository().DeleteExpiredInactive(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.logger.Info("CleanupService", "Cleanup pass finished", map[string]interface{}{
		"deleted": deleted,
		"cutoff":  cutoff,
	})

	s.analytics.Record(ctx, &dto.RecordEventRequest{
		EventType: entity.EventCleanupCompleted,
		Metadata:  map[string]interface{}{"deleted": deleted},
	})

	return deleted, nil
}

func (s *cleanupService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("CleanupService", "Cleanup loop stopped", nil)
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil && !errors.Is(err, ErrCleanupRunning) {
				s.logger.Error("CleanupService", "Cleanup pass failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}
