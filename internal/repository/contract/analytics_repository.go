package contract

import (
	"context"
	"time"

	"techfix-tracking-be/internal/entity"
	"techfix-tracking-be/internal/repository/specification"
)

type AnalyticsRepository interface {
	Create(ctx context.Context, event *entity.AnalyticsEvent) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalyticsEvent, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// AggregateDay computes per-event-type totals and unique-user counts
	// for the calendar day containing the given instant.
	AggregateDay(ctx context.Context, day time.Time) ([]*entity.AnalyticsSummary, error)

	// UpsertSummaries writes rollup rows, replacing counts for any
	// (date, event_type) pair that already exists.
	UpsertSummaries(ctx context.Context, summaries []*entity.AnalyticsSummary) error

	FindSummaries(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalyticsSummary, error)
}
