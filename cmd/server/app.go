package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/taskdeck-api/internal/config"
	"github.com/taskdeck/taskdeck-api/internal/platform/postgres"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// application holds the assembled dependencies of the running server.
// Everything downstream of config is constructed exactly once here and
// injected into handlers, so tests can swap any piece for a fake.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService     auth.JWTService
	passwordHasher *auth.BcryptHasher
}

// newApplication connects to the database, applies pending migrations, and
// constructs the stores and services.
func newApplication(cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, appLogger); err != nil {
		_ = db.Close()
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	return &application{
		config:         cfg,
		logger:         appLogger,
		db:             db,
		userStore:      postgres.NewPostgresUserStore(db, appLogger),
		taskStore:      postgres.NewPostgresTaskStore(db, appLogger),
		jwtService:     jwtService,
		passwordHasher: auth.NewBcryptHasher(bcrypt.DefaultCost),
	}, nil
}

// run starts the HTTP server and blocks until shutdown completes.
func (app *application) run(ctx context.Context) error {
	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup releases resources held by the application. Safe to call more
// than once.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
		app.db = nil
	}
}
