package implementation

import (
	"context"
	"time"

	"techfix-tracking-be/internal/entity"
	"techfix-tracking-be/internal/mapper"
	"techfix-tracking-be/internal/model"
	"techfix-tracking-be/internal/repository/contract"
	"techfix-tracking-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalyticsRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnalyticsMapper
}

func NewAnalyticsRepository(db *gorm.DB) contract.AnalyticsRepository {
	return &AnalyticsRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnalyticsMapper(),
	}
}

func (r *AnalyticsRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AnalyticsRepositoryImpl) Create(ctx context.Context, event *entity.AnalyticsEvent) error {
	m := r.mapper.ToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*event = *r.mapper.ToEntity(m)
	return nil
}

func (r *AnalyticsRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalyticsEvent, error) {
	var ms []model.AnalyticsEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&ms).Error; err != nil {
		return nil, translateError(err)
	}

	events := make([]*entity.AnalyticsEvent, len(ms))
	for i := range ms {
		events[i] = r.mapper.ToEntity(&ms[i])
	}
	return events, nil
}

func (r *AnalyticsRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AnalyticsEvent{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (r *AnalyticsRepositoryImpl) AggregateDay(ctx context.Context, day time.Time) ([]*entity.AnalyticsSummary, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	// COUNT(DISTINCT email) skips NULLs, so anonymous events contribute
	// to count but not to unique_users.
	type aggregateRow struct {
		EventType   string
		Count       int64
		UniqueUsers int64
	}
	var rows []aggregateRow

	err := r.db.WithContext(ctx).Model(&model.AnalyticsEvent{}).
		Select("event_type, COUNT(*) AS count, COUNT(DISTINCT email) AS unique_users").
		Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	summaries := make([]*entity.AnalyticsSummary, len(rows))
	for i, row := range rows {
		summaries[i] = &entity.AnalyticsSummary{
			Date:        dayStart,
			EventType:   row.EventType,
			Count:       row.Count,
			UniqueUsers: row.UniqueUsers,
		}
	}
	return summaries, nil
}

func (r *AnalyticsRepositoryImpl) UpsertSummaries(ctx context.Context, summaries []*entity.AnalyticsSummary) error {
	if len(summaries) == 0 {
		return nil
	}

	ms := make([]*model.AnalyticsSummary, len(summaries))
	for i, s := range summaries {
		ms[i] = r.mapper.SummaryToModel(s)
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "event_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"count", "unique_users"}),
	}).Create(&ms).Error
	return translateError(err)
}

func (r *AnalyticsRepositoryImpl) FindSummaries(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalyticsSummary, error) {
	var ms []model.AnalyticsSummary
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("date DESC, event_type ASC").Find(&ms).Error; err != nil {
		return nil, translateError(err)
	}

	summaries := make([]*entity.AnalyticsSummary, len(ms))
	for i := range ms {
		summaries[i] = r.mapper.SummaryToEntity(&ms[i])
	}
	return summaries, nil
}
