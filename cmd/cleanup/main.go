package main

import (
	"context"
	"log"
	"os"
	"time"

	"techfix-tracking-be/internal/bootstrap"
	"techfix-tracking-be/internal/config"
	"techfix-tracking-be/internal/pkg/authz"
	"techfix-tracking-be/pkg/database"

	"github.com/fatih/color"
)

// One-shot cleanup pass, intended for external cron. The long-running
// worker schedules the same pass on its own.
func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	container := bootstrap.NewContainer(db, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = authz.AsService(ctx, "cleanup-cron", authz.RoleScheduler)

	log.Println("Running session cleanup pass...")

	deleted, err := container.CleanupService.Run(ctx)
	if err != nil {
		color.Red("Cleanup failed: %v", err)
		os.Exit(1)
	}

	color.Green("Cleanup finished: %d expired inactive sessions removed.", deleted)
	_ = container.Logger.Sync()
}
