package mapper

import (
	"encoding/json"

	"techfix-tracking-be/internal/entity"
	"techfix-tracking-be/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	var plan entity.PlanDocument
	if len(s.Plan) > 0 {
		// A row whose plan column holds invalid JSON still reads back,
		// just with a nil plan.
		_ = json.Unmarshal(s.Plan, &plan)
	}

	return &entity.Session{
		Id:             s.Id,
		Token:          s.Token,
		Email:          s.Email,
		Issue:          s.Issue,
		CreatedAt:      s.CreatedAt,
		ExpiresAt:      s.ExpiresAt,
		Active:         s.Active,
		PlanType:       entity.PlanType(s.PlanType),
		TransactionRef: s.TransactionRef,
		Plan:           plan,
	}
}

func (m *SessionMapper) ToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	var plan datatypes.JSON
	if s.Plan != nil {
		if raw, err := json.Marshal(s.Plan); err == nil {
			plan = datatypes.JSON(raw)
		}
	}

	return &model.Session{
		Id:             s.Id,
		Token:          s.Token,
		Email:          s.Email,
		Issue:          s.Issue,
		CreatedAt:      s.CreatedAt,
		ExpiresAt:      s.ExpiresAt,
		Active:         s.Active,
		PlanType:       string(s.PlanType),
		TransactionRef: s.TransactionRef,
		Plan:           plan,
	}
}
