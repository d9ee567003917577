package service

import (
	"context"
	"fmt"
	"time"

	"techfix-tracking-be/internal/dto"
	"techfix-tracking-be/internal/entity"
	"techfix-tracking-be/internal/pkg/authz"
	"techfix-tracking-be/internal/pkg/validate"
	"techfix-tracking-be/internal/repository/cache"
	"techfix-tracking-be/internal/repository/specification"
	"techfix-tracking-be/internal/repository/unitofwork"
	"techfix-tracking-be/pkg/token"

	"github.com/google/uuid"
)

type ISessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	FindByToken(ctx context.Context, tokenStr string) (*dto.SessionResponse, error)
	AttachPlan(ctx context.Context, req *dto.AttachPlanRequest) error
	AttachTransaction(ctx context.Context, tokenStr string, ref string) error
	MarkInactive(ctx context.Context, tokenStr string) error
}

type sessionService struct {
	uowFactory   unitofwork.RepositoryFactory
	guard        *authz.Guard
	sessionCache cache.SessionCache
	tracker      ITrackerService
	defaultTTL   time.Duration
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	guard *authz.Guard,
	sessionCache cache.SessionCache,
	tracker ITrackerService,
	defaultTTL time.Duration,
) ISessionService {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}
	return &sessionService{
		uowFactory:   uowFactory,
		guard:        guard,
		sessionCache: sessionCache,
		tracker:      tracker,
		defaultTTL:   defaultTTL,
	}
}

func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	if err := s.guard.Require(ctx, authz.CapSessionCreate); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if !token.Valid(req.Token) {
		return nil, fmt.Errorf("%w: token must match XXXX-XXXX", entity.ErrConstraintViolation)
	}

	now := time.Now()
	expiresAt := now.Add(s.defaultTTL)
	if req.ExpiresAt != nil {
		expiresAt = *req.ExpiresAt
	}
	if !expiresAt.After(now) {
		return nil, fmt.Errorf("%w: expires_at must be after created_at", entity.ErrConstraintViolation)
	}

	planType := entity.PlanType(req.PlanType)
	if req.PlanType == "" {
		planType = entity.PlanTypeBasic
	}

	session := &entity.Session{
		Id:        uuid.New(),
		Token:     req.Token,
		Email:     req.Email,
		Issue:     req.Issue,
		CreatedAt: now,
		ExpiresAt: expiresAt,
		Active:    true,
		PlanType:  planType,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	// Diagnostic trail only. Track never fails the create.
	s.tracker.Track(ctx, &dto.RecordEventRequest{
		EventType: entity.EventTokenGenerated,
		Email:     session.Email,
		Token:     session.Token,
		Issue:     session.Issue,
	})

	return toSessionResponse(session), nil
}

func (s *sessionService) FindByToken(ctx context.Context, tokenStr string) (*dto.SessionResponse, error) {
	if err := s.guard.Require(ctx, authz.CapSessionRead); err != nil {
		return nil, err
	}

	if cached, found := s.sessionCache.Get(ctx, tokenStr); found {
		return toSessionResponse(cached), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByToken{Token: tokenStr})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, entity.ErrSessionNotFound
	}

	s.sessionCache.Set(ctx, session)
	return toSessionResponse(session), nil
}

func (s *sessionService) AttachPlan(ctx context.Context, req *dto.AttachPlanRequest) error {
	if err := s.guard.Require(ctx, authz.CapSessionAttachPlan); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}
	if len(req.Plan) == 0 {
		return fmt.Errorf("%w: plan document is empty", entity.ErrConstraintViolation)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().AttachPlan(ctx, req.Token, entity.PlanDocument(req.Plan)); err != nil {
		return err
	}

	s.sessionCache.Invalidate(ctx, req.Token)
	return nil
}

func (s *sessionService) AttachTransaction(ctx context.Context, tokenStr string, ref string) error {
	if err := s.guard.Require(ctx, authz.CapSessionAttachTransaction); err != nil {
		return err
	}
	if ref == "" {
		return fmt.Errorf("%w: transaction reference is empty", entity.ErrConstraintViolation)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().AttachTransaction(ctx, tokenStr, ref); err != nil {
		return err
	}

	s.sessionCache.Invalidate(ctx, tokenStr)
	return nil
}

func (s *sessionService) MarkInactive(ctx context.Context, tokenStr string) error {
	if err := s.guard.Require(ctx, authz.CapSessionDeactivate); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().MarkInactive(ctx, tokenStr); err != nil {
		return err
	}

	s.sessionCache.Invalidate(ctx, tokenStr)
	return nil
}

func toSessionResponse(session *entity.Session) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:             session.Id,
		Token:          session.Token,
		Email:          session.Email,
		Issue:          session.Issue,
		CreatedAt:      session.CreatedAt,
		ExpiresAt:      session.ExpiresAt,
		Active:         session.Active,
		PlanType:       string(session.PlanType),
		TransactionRef: session.TransactionRef,
		Plan:           session.Plan,
	}
}
