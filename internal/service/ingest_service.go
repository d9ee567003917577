package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"techfix-tracking-be/internal/dto"
	"techfix-tracking-be/internal/entity"
	"techfix-tracking-be/internal/pkg/authz"
	"techfix-tracking-be/internal/pkg/logger"
	"techfix-tracking-be/internal/pkg/validate"
	"techfix-tracking-be/internal/repository/unitofwork"
	"techfix-tracking-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IIngestService drains the tracking bus into the analytics table. It
// has two entry points: Consume for the in-process channel transport and
// HandleTrackEvent for the NATS durable consumer.
type IIngestService interface {
	Consume(ctx context.Context) error
	HandleTrackEvent(ctx context.Context, event events.Event) error
}

type ingestService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	uowFactory  unitofwork.RepositoryFactory
	tokenSecret []byte
	logger      logger.ILogger
}

func NewIngestService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	tokenSecret []byte,
	log logger.ILogger,
) IIngestService {
	return &ingestService{
		pubSub:      pubSub,
		topicName:   topicName,
		uowFactory:  uowFactory,
		tokenSecret: tokenSecret,
		logger:      log,
	}
}

// Consume subscribes to the channel transport and processes messages
// until ctx is canceled.
func (s *ingestService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", s.topicName, err)
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	s.logger.Info("IngestService", "Analytics ingest consumer started", map[string]interface{}{
		"topic": s.topicName,
	})
	return nil
}

func (s *ingestService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.TrackMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("IngestService", "Failed to unmarshal tracking message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // poison message, retrying cannot fix it
		return
	}

	// The channel transport never leaves the process, so the message
	// does not need to carry a service token.
	if err := s.persist(ctx, &payload, false); err != nil {
		if isDroppable(err) {
			s.logger.Warn("IngestService", "Dropping tracking event", map[string]interface{}{
				"event_type": payload.EventType,
				"error":      err.Error(),
			})
			msg.Ack()
			return
		}
		s.logger.Error("IngestService", "Failed to store tracking event", map[string]interface{}{
			"event_type": payload.EventType,
			"error":      err.Error(),
		})
		msg.Nack() // transient store failure, redeliver
		return
	}

	msg.Ack()
}

// HandleTrackEvent adapts NATS deliveries. Returning an error Naks the
// message for redelivery, so only transient failures may return one.
func (s *ingestService) HandleTrackEvent(ctx context.Context, event events.Event) error {
	raw, err := json.Marshal(event.Payload())
	if err != nil {
		s.logger.Error("IngestService", "Failed to re-marshal event payload", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
		return nil
	}

	var payload dto.TrackMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.logger.Error("IngestService", "Malformed tracking payload", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
		return nil
	}
	if payload.EventType == "" {
		payload.EventType = strings.TrimPrefix(event.EventType(), "track.")
	}

	// NATS messages cross process boundaries; the sender must prove who
	// it is or the event gets dropped.
	if err := s.persist(ctx, &payload, true); err != nil {
		if isDroppable(err) {
			s.logger.Warn("IngestService", "Dropping tracking event", map[string]interface{}{
				"event_type": payload.EventType,
				"error":      err.Error(),
			})
			return nil
		}
		return err
	}
	return nil
}

func (s *ingestService) persist(ctx context.Context, payload *dto.TrackMessage, requireToken bool) error {
	if requireToken || payload.AuthToken != "" {
		principal, err := authz.VerifyToken(s.tokenSecret, payload.AuthToken)
		if err != nil {
			return err
		}
		if !principal.Can(authz.CapAnalyticsRecord) {
			return fmt.Errorf("%w: role %q lacks %q", authz.ErrPermissionDenied, principal.Role, authz.CapAnalyticsRecord)
		}
	}

	req := &dto.RecordEventRequest{
		EventType: payload.EventType,
		Email:     payload.Email,
		Token:     payload.Token,
		Issue:     payload.Issue,
		Error:     payload.Error,
		Metadata:  payload.Metadata,
		UserAgent: payload.UserAgent,
		IpAddress: payload.IpAddress,
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	event, err := buildAnalyticsEvent(req)
	if err != nil {
		return err
	}
	if !payload.OccurredAt.IsZero() {
		event.CreatedAt = payload.OccurredAt
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.AnalyticsRepository().Create(ctx, event)
}

// isDroppable separates events that can never succeed from transient
// store failures that deserve redelivery.
func isDroppable(err error) bool {
	return errors.Is(err, entity.ErrConstraintViolation) || errors.Is(err, authz.ErrPermissionDenied)
}
