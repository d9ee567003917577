package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"techfix-tracking-be/internal/entity"
	"techfix-tracking-be/internal/mapper"
	"techfix-tracking-be/internal/model"
	"techfix-tracking-be/internal/repository/contract"
	"techfix-tracking-be/internal/repository/specification"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	// Write back DB-populated fields (id, created_at defaults).
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *SessionRepositoryImpl) AttachPlan(ctx context.Context, token string, plan entity.PlanDocument) error {
	raw, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("%w: plan document is not serializable", entity.ErrConstraintViolation)
	}

	result := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("token = ?", token).
		Update("plan", datatypes.JSON(raw))
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return entity.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepositoryImpl) AttachTransaction(ctx context.Context, token string, ref string) error {
	result := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("token = ?", token).
		Update("transaction_ref", ref)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return entity.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepositoryImpl) MarkInactive(ctx context.Context, token string) error {
	result := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("token = ?", token).
		Update("active", false)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return entity.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	var m model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	var ms []model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&ms).Error; err != nil {
		return nil, translateError(err)
	}

	sessions := make([]*entity.Session, len(ms))
	for i := range ms {
		sessions[i] = r.mapper.ToEntity(&ms[i])
	}
	return sessions, nil
}

func (r *SessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Session{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (r *SessionRepositoryImpl) DeleteExpiredInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	// Only terminal rows qualify. The active guard stays in the WHERE
	// clause so a concurrent reactivation can never race a delete.
	result := r.db.WithContext(ctx).
		Where("active = ? AND created_at < ?", false, cutoff).
		Delete(&model.Session{})
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *SessionRepositoryImpl) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("active = ? AND expires_at < ?", true, now).
		Update("active", false)
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}
