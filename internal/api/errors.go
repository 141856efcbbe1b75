package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// domainValidationErrors lists the domain sentinels that describe bad input.
// They surface from the store layer when a merged update fails validation
// and must read as client errors, not server failures.
var domainValidationErrors = []error{
	domain.ErrUserNameLength,
	domain.ErrUserEmailEmpty,
	domain.ErrUserEmailInvalid,
	domain.ErrUserBioTooLong,
	domain.ErrUserPasswordLength,
	domain.ErrTaskTitleEmpty,
	domain.ErrTaskTitleTooLong,
	domain.ErrTaskDescTooLong,
	domain.ErrTaskStatusInvalid,
	domain.ErrTaskPriorityInvalid,
}

func isDomainValidationError(err error) bool {
	for _, target := range domainValidationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
//
// Note that a duplicate email maps to 400, not 409: clients treat it as a
// failed signup validation, same as a malformed address.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors. Owner-scoped lookups fold "exists but not yours"
	// into this bucket.
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		isDomainValidationError(err):
		return http.StatusBadRequest

	// Default: internal server error (includes store.ErrTimeout)
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return "Invalid token"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already in use"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier format"

	// Domain validation sentinels carry static, client-safe messages.
	case isDomainValidationError(err):
		return err.Error()

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// validationFieldErrors converts a validation failure into field-level
// errors for the response body. It understands both validator tag failures
// and the domain's own ValidationError aggregate.
func validationFieldErrors(err error) []domain.FieldError {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}

	var tagErrs validator.ValidationErrors
	if errors.As(err, &tagErrs) {
		fields := make([]domain.FieldError, 0, len(tagErrs))
		for _, fe := range tagErrs {
			fields = append(fields, domain.FieldError{
				Field:   fe.Field(),
				Message: messageForTag(fe),
			})
		}
		return fields
	}

	return []domain.FieldError{{Field: "body", Message: "is invalid"}}
}

// messageForTag renders a human-readable message for a failed validator tag.
func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	default:
		return "is invalid"
	}
}
