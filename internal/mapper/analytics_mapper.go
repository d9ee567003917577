package mapper

import (
	"encoding/json"

	"techfix-tracking-be/internal/entity"
	"techfix-tracking-be/internal/model"

	"gorm.io/datatypes"
)

type AnalyticsMapper struct{}

func NewAnalyticsMapper() *AnalyticsMapper {
	return &AnalyticsMapper{}
}

func (m *AnalyticsMapper) ToEntity(e *model.AnalyticsEvent) *entity.AnalyticsEvent {
	if e == nil {
		return nil
	}

	var metadata entity.Metadata
	if len(e.Metadata) > 0 {
		_ = json.Unmarshal(e.Metadata, &metadata)
	}

	return &entity.AnalyticsEvent{
		Id:        e.Id,
		EventType: e.EventType,
		Email:     e.Email,
		Token:     e.Token,
		Issue:     e.Issue,
		Error:     e.Error,
		Metadata:  metadata,
		UserAgent: e.UserAgent,
		IpAddress: e.IpAddress,
		CreatedAt: e.CreatedAt,
	}
}

func (m *AnalyticsMapper) ToModel(e *entity.AnalyticsEvent) *model.AnalyticsEvent {
	if e == nil {
		return nil
	}

	var metadata datatypes.JSON
	if e.Metadata != nil {
		if raw, err := json.Marshal(e.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	return &model.AnalyticsEvent{
		Id:        e.Id,
		EventType: e.EventType,
		Email:     e.Email,
		Token:     e.Token,
		Issue:     e.Issue,
		Error:     e.Error,
		Metadata:  metadata,
		UserAgent: e.UserAgent,
		IpAddress: e.IpAddress,
		CreatedAt: e.CreatedAt,
	}
}

func (m *AnalyticsMapper) SummaryToEntity(s *model.AnalyticsSummary) *entity.AnalyticsSummary {
	if s == nil {
		return nil
	}
	return &entity.AnalyticsSummary{
		Date:        s.Date,
		EventType:   s.EventType,
		Count:       s.Count,
		UniqueUsers: s.UniqueUsers,
	}
}

func (m *AnalyticsMapper) SummaryToModel(s *entity.AnalyticsSummary) *model.AnalyticsSummary {
	if s == nil {
		return nil
	}
	return &model.AnalyticsSummary{
		Date:        s.Date,
		EventType:   s.EventType,
		Count:       s.Count,
		UniqueUsers: s.UniqueUsers,
	}
}
