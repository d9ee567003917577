package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techfix-tracking-be/internal/bootstrap"
	"techfix-tracking-be/internal/config"
	"techfix-tracking-be/internal/pkg/authz"
	"techfix-tracking-be/internal/tracer"
	"techfix-tracking-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Initialize Database
	var gormDb *gorm.DB
	var err error
	if os.Getenv("OTEL_ENABLED") == "true" {
		gormDb, err = database.NewTracedGormDB(cfg.Database.Connection)
	} else {
		gormDb, err = database.NewGormDBFromDSN(cfg.Database.Connection)
	}
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	// 3. Build Container
	container := bootstrap.NewContainer(gormDb, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The worker is the scheduler collaborator: it purges, sweeps and
	// aggregates, and records its own diagnostic events.
	ctx = authz.AsService(ctx, "maintenance-worker", authz.RoleScheduler)

	// 4. Start Analytics Ingest
	if container.NatsSubscriber != nil {
		if err := container.NatsSubscriber.Subscribe("track.>", "analytics-ingest", container.IngestService.HandleTrackEvent); err != nil {
			log.Printf("[WARN] NATS ingest failed to start: %v", err)
		}
	}
	// The channel consumer always runs so in-process events are drained
	// even when the nats transport is active for external collaborators.
	if err := container.IngestService.Consume(ctx); err != nil {
		log.Printf("[WARN] Channel ingest failed to start: %v", err)
	}

	// 5. Start Maintenance Loops
	go container.CleanupService.Start(ctx, time.Duration(cfg.Cleanup.IntervalMinutes)*time.Minute)
	go container.AnalyticsService.StartRollup(ctx, time.Duration(cfg.Analytics.RollupIntervalMinutes)*time.Minute)

	log.Println("Worker started. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Println("Shutting down worker...")
	_ = container.Logger.Sync()
}
