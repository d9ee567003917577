package bootstrap

import (
	"log"
	"time"

	"techfix-tracking-be/internal/config"
	"techfix-tracking-be/internal/pkg/authz"
	"techfix-tracking-be/internal/pkg/logger"
	"techfix-tracking-be/internal/repository/cache"
	"techfix-tracking-be/internal/repository/unitofwork"
	"techfix-tracking-be/internal/service"
	pktNats "techfix-tracking-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	Config *config.Config
	Logger logger.ILogger

	SessionService      service.ISessionService
	NotificationService service.INotificationService
	AnalyticsService    service.IAnalyticsService
	CleanupService      service.ICleanupService
	TrackerService      service.ITrackerService
	IngestService       service.IIngestService

	// NatsSubscriber is nil unless the nats transport is configured and
	// reachable. The worker wires the durable ingest consumer onto it.
	NatsSubscriber *pktNats.Subscriber
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	guard := authz.NewGuard()

	// 2. Event Bus (in-process transport, always available)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// 3. Session Cache
	sessionCache, err := cache.New(cache.Options{
		Driver:    cfg.Session.CacheDriver,
		TTL:       time.Duration(cfg.Session.CacheTTLMinutes) * time.Minute,
		RedisAddr: cfg.App.RedisAddr,
	})
	if err != nil {
		log.Printf("[WARN] Session cache unavailable: %v. Continuing without cache.", err)
		sessionCache = cache.NewNoopCache()
	}

	// 4. Tracking Transport
	var trackerService service.ITrackerService
	var natsSubscriber *pktNats.Subscriber
	if cfg.Analytics.Transport == "nats" {
		natsPublisher, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect NATS publisher: %v. Falling back to channel transport.", err)
		} else {
			trackerService = service.NewNatsTrackerService(
				natsPublisher,
				sysLogger,
				[]byte(cfg.Authz.TokenSecret),
				"session-store",
				authz.RoleScheduler,
			)
		}

		natsSubscriber, err = pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect NATS subscriber: %v. Ingest limited to channel transport.", err)
			natsSubscriber = nil
		}
	}
	if trackerService == nil {
		trackerService = service.NewTrackerService(pubSub, cfg.Analytics.TrackTopic, sysLogger)
	}

	// 5. Services
	analyticsService := service.NewAnalyticsService(uowFactory, guard, sysLogger)
	sessionService := service.NewSessionService(
		uowFactory,
		guard,
		sessionCache,
		trackerService,
		time.Duration(cfg.Session.DefaultTTLMinutes)*time.Minute,
	)
	notificationService := service.NewNotificationService(uowFactory, guard)
	cleanupService := service.NewCleanupService(
		uowFactory,
		guard,
		analyticsService,
		sysLogger,
		time.Duration(cfg.Cleanup.RetentionDays)*24*time.Hour,
		cfg.Cleanup.SweepExpired,
	)
	ingestService := service.NewIngestService(
		pubSub,
		cfg.Analytics.TrackTopic,
		uowFactory,
		[]byte(cfg.Authz.TokenSecret),
		sysLogger,
	)

	return &Container{
		Config:              cfg,
		Logger:              sysLogger,
		SessionService:      sessionService,
		NotificationService: notificationService,
		AnalyticsService:    analyticsService,
		CleanupService:      cleanupService,
		TrackerService:      trackerService,
		IngestService:       ingestService,
		NatsSubscriber:      natsSubscriber,
	}
}
