// Package main implements the entry point for the TaskDeck API server,
// a task management service with JWT-authenticated, per-user task CRUD.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/taskdeck/taskdeck-api/internal/config"
	"github.com/taskdeck/taskdeck-api/internal/platform/logger"
)

// main wires configuration, logging, the database, and the HTTP server,
// then blocks until shutdown.
func main() {
	// A local .env file is a development convenience only; deployments
	// configure the process through the environment.
	_ = godotenv.Load()

	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	if err := app.run(context.Background()); err != nil {
		slog.Error("Server exited with error", "error", err)
		app.cleanup()
		log.Fatalf("Server exited with error: %v", err)
	}
}

// initializeApp loads configuration and sets up application components.
// Returns the assembled application and any initialization error.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble application: %w", err)
	}

	return app, nil
}
