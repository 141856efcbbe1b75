package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/platform/logger"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed
// by the caller. If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.UserStore.Create
// It saves a new user to the database, handling domain validation and
// translating unique constraint violations on email to store.ErrEmailExists.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (id, name, email, hashed_password, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.HashedPassword,
		user.Bio,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate email during user creation",
				slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}

		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	log.Info("user created successfully",
		slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
// It retrieves a user by their unique ID.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, email, hashed_password, bio, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found by ID", slog.String("user_id", id.String()))
			return nil, store.ErrUserNotFound
		}

		log.Error("failed to get user by ID",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return nil, MapError(err)
	}

	return user, nil
}

// GetByEmail implements store.UserStore.GetByEmail
// It retrieves a user by email, matching case-insensitively. The returned
// user includes the password hash for credential verification.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, email, hashed_password, bio, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	row := s.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email))

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found by email")
			return nil, store.ErrUserNotFound
		}

		log.Error("failed to get user by email",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return user, nil
}

// UpdateProfile implements store.UserStore.UpdateProfile
// It applies a partial update to the user's name and bio; nil fields keep
// their prior values. The update is re-validated through the domain model
// before being written, and the updated user is returned.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) UpdateProfile(
	ctx context.Context,
	id uuid.UUID,
	update store.ProfileUpdate,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := user.UpdateProfile(update.Name, update.Bio); err != nil {
		log.Warn("profile validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return nil, err
	}

	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET name = $1, bio = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query, user.Name, user.Bio, user.UpdatedAt, id)
	if err != nil {
		log.Error("failed to update user profile",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return nil, MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return nil, err
	}

	log.Info("user profile updated successfully",
		slog.String("user_id", id.String()))
	return user, nil
}

// scanUser maps a single users row onto a domain User.
func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.HashedPassword,
		&user.Bio,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	return &user, nil
}
