package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/taskdeck/taskdeck-api/internal/api/shared"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// ProfileHandler handles the authenticated user's profile endpoints.
type ProfileHandler struct {
	userStore store.UserStore
	validator *validator.Validate
}

// NewProfileHandler creates a new ProfileHandler with the given dependencies.
func NewProfileHandler(userStore store.UserStore) *ProfileHandler {
	return &ProfileHandler{
		userStore: userStore,
		validator: newValidator(),
	}
}

// GetProfile handles GET /profile. It returns the authenticated
// user's public profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		respondUnauthenticated(w, r)
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newUserResponse(user))
}

// UpdateProfile handles PUT /profile. Only name and bio are mutable;
// email and password are fixed at signup.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		respondUnauthenticated(w, r)
		return
	}

	var req UpdateProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithValidationErrors(w, r, validationFieldErrors(err))
		return
	}

	user, err := h.userStore.UpdateProfile(r.Context(), userID, store.ProfileUpdate{
		Name: req.Name,
		Bio:  req.Bio,
	})
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newUserResponse(user))
}
