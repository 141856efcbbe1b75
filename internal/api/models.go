package api

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck-api/internal/domain"
)

// Common request/response structures

// SignupRequest defines the payload for the user signup endpoint.
type SignupRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// UserResponse is the public view of a user. It never carries the password
// hash, regardless of how the domain model evolves.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// newUserResponse builds the public view of a domain user.
func newUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// Token is the JWT bearer token used for API authorization
	Token string `json:"token"`

	// User is the public profile of the authenticated user
	User UserResponse `json:"user"`
}

// UpdateProfileRequest defines the payload for the profile update endpoint.
// Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	Name *string `json:"name" validate:"omitempty,min=2,max=50"`
	Bio  *string `json:"bio"  validate:"omitempty,max=200"`
}

// CreateTaskRequest defines the payload for the task creation endpoint.
// Status and priority are optional and fall back to their defaults.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Status      string `json:"status"      validate:"omitempty,oneof=todo in-progress done"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=low medium high"`
}

// UpdateTaskRequest defines the payload for the partial task update
// endpoint. Omitted fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Status      *string `json:"status"      validate:"omitempty,oneof=todo in-progress done"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=low medium high"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

// TaskListResponse defines the successful response for the task listing
// endpoint. Total counts the full filtered set, not just this page.
type TaskListResponse struct {
	Tasks      []*domain.Task `json:"tasks"`
	Pagination Pagination     `json:"pagination"`
}

// MessageResponse carries a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// newValidator builds a validator that reports field names from json tags,
// so validation errors reference the names clients actually sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}
