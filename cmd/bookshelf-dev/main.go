package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bookshelf/internal/app"
)

// devDefaults are applied only when the variable is not already set
var devDefaults = map[string]string{
	"PORT":              "9000",
	"HOST":              "localhost",
	"LOG_LEVEL":         "debug",
	"LOG_FORMAT":        "console",
	"SEED_SAMPLE_BOOKS": "true",
}

func main() {
	for key, value := range devDefaults {
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}

	if os.Getenv("TELEGRAM_BOT_TOKEN") == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, notifications are disabled.")
	}

	log.Println("Starting Bookshelf API in development mode...")
	fmt.Println()

	// Create and initialize application
	application, err := app.New()
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}
	log.Println("Received shutdown signal, bye")
}
