package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
)

// ProfileUpdate carries a partial profile mutation. Nil fields are left
// untouched on the stored user.
type ProfileUpdate struct {
	Name *string
	Bio  *string
}

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user must already carry a
	// password hash; plaintext passwords never reach this layer.
	// Returns ErrEmailExists if the email is already taken (case-insensitive).
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address, matching
	// case-insensitively. The returned user includes the password hash; this
	// lookup exists for the authentication path only.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateProfile applies a partial update to the user's name and bio.
	// Omitted (nil) fields retain their prior values. Length constraints are
	// re-validated before persisting.
	// Returns ErrUserNotFound if the user does not exist.
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*domain.User, error)
}
