package service

import (
	"context"
	"time"

	"techfix-tracking-be/internal/dto"
	"techfix-tracking-be/internal/entity"
	"techfix-tracking-be/internal/pkg/authz"
	"techfix-tracking-be/internal/pkg/validate"
	"techfix-tracking-be/internal/repository/specification"
	"techfix-tracking-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type INotificationService interface {
	Create(ctx context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error)
	ListAll(ctx context.Context, req *dto.ListNotificationsRequest) ([]*dto.NotificationResponse, error)
}

type notificationService struct {
	uowFactory unitofwork.RepositoryFactory
	guard      *authz.Guard
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, guard *authz.Guard) INotificationService {
	return &notificationService{
		uowFactory: uowFactory,
		guard:      guard,
	}
}

func (s *notificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error) {
	if err := s.guard.Require(ctx, authz.CapNotificationCreate); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	notification := &entity.Notification{
		Id:        uuid.New(),
		Title:     req.Title,
		Message:   req.Message,
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationRepository().Create(ctx, notification); err != nil {
		return nil, err
	}

	return toNotificationResponse(notification), nil
}

// ListAll returns every broadcast. Notifications are global, so there is
// no per-user filter; newest first unless the caller asks for ascending.
func (s *notificationService) ListAll(ctx context.Context, req *dto.ListNotificationsRequest) ([]*dto.NotificationResponse, error) {
	if err := s.guard.Require(ctx, authz.CapNotificationRead); err != nil {
		return nil, err
	}
	if req == nil {
		req = &dto.ListNotificationsRequest{}
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: !req.Ascending},
	}
	if req.Limit > 0 {
		specs = append(specs, specification.Pagination{Limit: req.Limit, Offset: req.Offset})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	notifications, err := uow.NotificationRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = toNotificationResponse(n)
	}
	return responses, nil
}

func toNotificationResponse(n *entity.Notification) *dto.NotificationResponse {
	return &dto.NotificationResponse{
		Id:        n.Id,
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	}
}
