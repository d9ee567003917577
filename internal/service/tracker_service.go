package service

import (
	"context"
	"encoding/json"
	"time"

	"techfix-tracking-be/internal/dto"
	"techfix-tracking-be/internal/pkg/authz"
	"techfix-tracking-be/internal/pkg/logger"
	"techfix-tracking-be/pkg/events"
	pktNats "techfix-tracking-be/pkg/nats" // Renamed to avoid collision

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ITrackerService puts analytics events on the tracking bus. Publishing
// is fire-and-forget: failures are logged, never returned, so tracking
// can't break the operation being tracked.
type ITrackerService interface {
	Track(ctx context.Context, req *dto.RecordEventRequest)
}

// trackerService publishes over the in-process watermill channel.
type trackerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewTrackerService(pubSub *gochannel.GoChannel, topicName string, log logger.ILogger) ITrackerService {
	return &trackerService{
		pubSub:    pubSub,
		topicName: topicName,
		logger:    log,
	}
}

func (t *trackerService) Track(ctx context.Context, req *dto.RecordEventRequest) {
	payload := dto.TrackMessage{
		EventType:  req.EventType,
		Email:      req.Email,
		Token:      req.Token,
		Issue:      req.Issue,
		Error:      req.Error,
		Metadata:   req.Metadata,
		UserAgent:  req.UserAgent,
		IpAddress:  req.IpAddress,
		OccurredAt: time.Now(),
	}

	msgJson, err := json.Marshal(payload)
	if err != nil {
		t.logger.Warn("TrackerService", "Dropping unserializable tracking event", map[string]interface{}{
			"event_type": req.EventType,
			"error":      err.Error(),
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), msgJson)
	if err := t.pubSub.Publish(t.topicName, msg); err != nil {
		t.logger.Warn("TrackerService", "Failed to publish tracking event", map[string]interface{}{
			"event_type": req.EventType,
			"error":      err.Error(),
		})
	}
}

// natsTrackerService publishes to JetStream for cross-process ingest. It
// mints a short-lived service token per event so the consumer can verify
// who sent it.
type natsTrackerService struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
	secret    []byte
	service   string
	role      authz.Role
}

func NewNatsTrackerService(publisher *pktNats.Publisher, log logger.ILogger, secret []byte, service string, role authz.Role) ITrackerService {
	return &natsTrackerService{
		publisher: publisher,
		logger:    log,
		secret:    secret,
		service:   service,
		role:      role,
	}
}

func (t *natsTrackerService) Track(ctx context.Context, req *dto.RecordEventRequest) {
	payload := map[string]interface{}{
		"event_type":  req.EventType,
		"occurred_at": time.Now(),
	}
	if req.Email != "" {
		payload["email"] = req.Email
	}
	if req.Token != "" {
		payload["token"] = req.Token
	}
	if req.Issue != "" {
		payload["issue"] = req.Issue
	}
	if req.Error != "" {
		payload["error"] = req.Error
	}
	if req.Metadata != nil {
		payload["metadata"] = req.Metadata
	}
	if req.UserAgent != "" {
		payload["user_agent"] = req.UserAgent
	}
	if req.IpAddress != "" {
		payload["ip_address"] = req.IpAddress
	}

	if len(t.secret) > 0 {
		authToken, err := authz.MintToken(t.secret, t.service, t.role, 5*time.Minute)
		if err != nil {
			t.logger.Warn("TrackerService", "Failed to mint service token for tracking event", map[string]interface{}{
				"event_type": req.EventType,
				"error":      err.Error(),
			})
			return
		}
		payload["auth_token"] = authToken
	}

	if err := t.publisher.Publish(ctx, events.New(req.EventType, payload)); err != nil {
		t.logger.Warn("TrackerService", "Failed to publish tracking event", map[string]interface{}{
			"event_type": req.EventType,
			"error":      err.Error(),
		})
	}
}
