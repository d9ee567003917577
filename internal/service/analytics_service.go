package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"techfix-tracking-be/internal/dto"
	"techfix-tracking-be/internal/entity"
	"techfix-tracking-be/internal/pkg/authz"
	"techfix-tracking-be/internal/pkg/logger"
	"techfix-tracking-be/internal/pkg/validate"
	"techfix-tracking-be/internal/repository/specification"
	"techfix-tracking-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

type IAnalyticsService interface {
	// Record appends one event. It has no error return on purpose:
	// analytics is diagnostic and must never abort the caller's
	// primary operation. Failures are logged and swallowed.
	Record(ctx context.Context, req *dto.RecordEventRequest)

	Query(ctx context.Context, req *dto.QueryEventsRequest) ([]*dto.AnalyticsEventResponse, error)
	RollupDay(ctx context.Context, day time.Time) (int, error)
	Summaries(ctx context.Context, from, to time.Time) ([]*dto.AnalyticsSummaryResponse, error)
	StartRollup(ctx context.Context, interval time.Duration)
}

type analyticsService struct {
	uowFactory unitofwork.RepositoryFactory
	guard      *authz.Guard
	logger     logger.ILogger
}

func NewAnalyticsService(uowFactory unitofwork.RepositoryFactory, guard *authz.Guard, log logger.ILogger) IAnalyticsService {
	return &analyticsService{
		uowFactory: uowFactory,
		guard:      guard,
		logger:     log,
	}
}

func (s *analyticsService) Record(ctx context.Context, req *dto.RecordEventRequest) {
	if err := s.record(ctx, req); err != nil {
		s.logger.Warn("AnalyticsService", "Dropping analytics event", map[string]interface{}{
			"event_type": req.EventType,
			"error":      err.Error(),
		})
	}
}

func (s *analyticsService) record(ctx context.Context, req *dto.RecordEventRequest) error {
	if err := s.guard.Require(ctx, authz.CapAnalyticsRecord); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	event, err := buildAnalyticsEvent(req)
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.AnalyticsRepository().Create(ctx, event)
}

func (s *analyticsService) Query(ctx context.Context, req *dto.QueryEventsRequest) ([]*dto.AnalyticsEventResponse, error) {
	if err := s.guard.Require(ctx, authz.CapAnalyticsRead); err != nil {
		return nil, err
	}
	if req == nil {
		req = &dto.QueryEventsRequest{}
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if req.EventType != "" {
		specs = append(specs, specification.ByEventType{EventType: req.EventType})
	}
	if req.From != nil {
		specs = append(specs, specification.CreatedFrom{From: *req.From})
	}
	if req.To != nil {
		specs = append(specs, specification.CreatedUntil{Until: *req.To})
	}
	if req.Limit > 0 {
		specs = append(specs, specification.Pagination{Limit: req.Limit, Offset: req.Offset})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	events, err := uow.AnalyticsRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.AnalyticsEventResponse, len(events))
	for i, e := range events {
		responses[i] = toAnalyticsEventResponse(e)
	}
	return responses, nil
}

// RollupDay re-aggregates one calendar day into analytics_summary. It is
// idempotent: existing (date, event_type) rows are overwritten, so
// re-running a day never double-counts.
func (s *analyticsService) RollupDay(ctx context.Context, day time.Time) (int, error) {
	if err := s.guard.Require(ctx, authz.CapAnalyticsAggregate); err != nil {
		return 0, err
	}

	ctx, span := otel.Tracer("analytics-service").Start(ctx, "analytics.rollup_day")
	defer span.End()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	summaries, err := uow.AnalyticsRepository().AggregateDay(ctx, day)
	if err != nil {
		return 0, err
	}
	if len(summaries) == 0 {
		return 0, nil
	}

	if err := uow.AnalyticsRepository().UpsertSummaries(ctx, summaries); err != nil {
		return 0, err
	}
	return len(summaries), nil
}

func (s *analyticsService) Summaries(ctx context.Context, from, to time.Time) ([]*dto.AnalyticsSummaryResponse, error) {
	if err := s.guard.Require(ctx, authz.CapAnalyticsRead); err != nil {
		return nil, err
	}

	var specs []specification.Specification
	if !from.IsZero() {
		specs = append(specs, specification.DateFrom{From: from})
	}
	if !to.IsZero() {
		specs = append(specs, specification.DateUntil{Until: to})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	summaries, err := uow.AnalyticsRepository().FindSummaries(ctx, specs...)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.AnalyticsSummaryResponse, len(summaries))
	for i, sum := range summaries {
		responses[i] = &dto.AnalyticsSummaryResponse{
			Date:        sum.Date,
			EventType:   sum.EventType,
			Count:       sum.Count,
			UniqueUsers: sum.UniqueUsers,
		}
	}
	return responses, nil
}

// StartRollup re-rolls the current day on the given interval until ctx is
// canceled. Just after midnight it also finalizes the previous day.
func (s *analyticsService) StartRollup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("AnalyticsService", "Rollup loop stopped", nil)
			return
		case <-ticker.C:
			now := time.Now()
			if _, err := s.RollupDay(ctx, now); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("AnalyticsService", "Rollup failed", map[string]interface{}{"error": err.Error()})
			}
			if now.Hour() == 0 {
				if _, err := s.RollupDay(ctx, now.AddDate(0, 0, -1)); err != nil && !errors.Is(err, context.Canceled) {
					s.logger.Error("AnalyticsService", "Previous-day rollup failed", map[string]interface{}{"error": err.Error()})
				}
			}
		}
	}
}

// buildAnalyticsEvent converts the request into an entity, turning empty
// optional fields into NULLs. Shared with the ingest consumer.
func buildAnalyticsEvent(req *dto.RecordEventRequest) (*entity.AnalyticsEvent, error) {
	if req.Metadata != nil {
		if _, err := json.Marshal(req.Metadata); err != nil {
			return nil, fmt.Errorf("%w: metadata is not serializable", entity.ErrConstraintViolation)
		}
	}

	return &entity.AnalyticsEvent{
		Id:        uuid.New(),
		EventType: req.EventType,
		Email:     optional(req.Email),
		Token:     optional(req.Token),
		Issue:     optional(req.Issue),
		Error:     optional(req.Error),
		Metadata:  entity.Metadata(req.Metadata),
		UserAgent: optional(req.UserAgent),
		IpAddress: optional(req.IpAddress),
		CreatedAt: time.Now(),
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toAnalyticsEventResponse(e *entity.AnalyticsEvent) *dto.AnalyticsEventResponse {
	return &dto.AnalyticsEventResponse{
		Id:        e.Id,
		EventType: e.EventType,
		Email:     e.Email,
		Token:     e.Token,
		Issue:     e.Issue,
		Error:     e.Error,
		Metadata:  e.Metadata,
		UserAgent: e.UserAgent,
		IpAddress: e.IpAddress,
		CreatedAt: e.CreatedAt,
	}
}
