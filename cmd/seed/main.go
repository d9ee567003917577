package main

import (
	"log"
	"os"

	"techfix-tracking-be/internal/model"
	"techfix-tracking-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding broadcast notifications...")

	// Idempotent: existing titles are left untouched.
	notifications := []model.Notification{
		{
			Title:   "Welcome to TechFix AI",
			Message: "Describe your issue and get a step-by-step repair plan in minutes.",
		},
		{
			Title:   "Keep your session token handy",
			Message: "Your XXXX-XXXX token links the desktop agent to this session. Sessions expire 30 minutes after creation unless extended.",
		},
		{
			Title:   "Need a human?",
			Message: "If the automated plan does not solve it, request human help from your session page.",
		},
	}

	for _, n := range notifications {
		if err := db.Where("title = ?", n.Title).FirstOrCreate(&n).Error; err != nil {
			log.Printf("Error seeding notification %q: %v", n.Title, err)
		}
	}

	color.Green("✅ Notification seeding completed.")
}
