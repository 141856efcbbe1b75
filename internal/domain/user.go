package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for User
var (
	ErrUserIDEmpty        = errors.New("user ID cannot be empty")
	ErrUserNameLength     = errors.New("name must be between 2 and 50 characters")
	ErrUserEmailEmpty     = errors.New("email cannot be empty")
	ErrUserEmailInvalid   = errors.New("invalid email format")
	ErrUserBioTooLong     = errors.New("bio cannot exceed 200 characters")
	ErrUserPasswordLength = errors.New("password must be between 6 and 72 characters")
	ErrUserHashEmpty      = errors.New("hashed password cannot be empty")
)

// User name and bio length limits.
const (
	UserNameMinLen = 2
	UserNameMaxLen = 50
	UserBioMaxLen  = 200

	// Bcrypt truncates input beyond 72 bytes, so longer passwords are rejected.
	PasswordMinLen = 6
	PasswordMaxLen = 72
)

// User represents a registered account. The password hash is never
// serialized; handlers build explicit response models on top of this.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Bio            string    `json:"bio,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUser creates a new User with the given name, email, and password hash.
// The email is lowercase-normalized so uniqueness checks and lookups are
// case-insensitive. Returns an error if validation fails.
func NewUser(name, email, hashedPassword string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(name),
		Email:          NormalizeEmail(email),
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// NormalizeEmail lowercases and trims an email address. All store lookups
// and uniqueness checks operate on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrUserIDEmpty
	}

	if !validNameLength(u.Name) {
		return ErrUserNameLength
	}

	if u.Email == "" {
		return ErrUserEmailEmpty
	}

	if !validEmailFormat(u.Email) {
		return ErrUserEmailInvalid
	}

	if len([]rune(u.Bio)) > UserBioMaxLen {
		return ErrUserBioTooLong
	}

	if u.HashedPassword == "" {
		return ErrUserHashEmpty
	}

	return nil
}

// UpdateProfile applies a partial profile update. Nil fields are left
// untouched; supplied fields are re-validated before being set.
func (u *User) UpdateProfile(name, bio *string) error {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if !validNameLength(trimmed) {
			return ErrUserNameLength
		}
		u.Name = trimmed
	}

	if bio != nil {
		if len([]rune(*bio)) > UserBioMaxLen {
			return ErrUserBioTooLong
		}
		u.Bio = *bio
	}

	u.UpdatedAt = time.Now().UTC()
	return nil
}

// ValidPassword reports whether a plaintext password meets length limits.
// Complexity rules are deliberately not enforced; length matters more.
func ValidPassword(password string) bool {
	return len(password) >= PasswordMinLen && len(password) <= PasswordMaxLen
}

func validNameLength(name string) bool {
	n := len([]rune(name))
	return n >= UserNameMinLen && n <= UserNameMaxLen
}

// validEmailFormat performs basic structural validation of an email address:
// a local part, a single @, and a domain containing an interior dot.
func validEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]
	if strings.Contains(domain, "@") {
		return false
	}

	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
