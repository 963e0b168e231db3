package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ahirvonen/chatserver/internal/errs"
	"github.com/ahirvonen/chatserver/internal/service"
	"github.com/ahirvonen/chatserver/internal/transport/http/middleware"
	"github.com/ahirvonen/chatserver/pkg/validator"
)

type UserHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewUserHandler(authService *service.AuthService, logger *zap.Logger) *UserHandler {
	return &UserHandler{authService: authService, logger: logger}
}

// Register creates a new user. Admin only.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetPrincipal(r.Context())

	var input service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if verrs := validator.ValidateRegister(input.Username, input.Password, input.Email); verrs.HasErrors() {
		writeValidationErrors(w, verrs)
		return
	}

	user, err := h.authService.Register(r.Context(), caller, input)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrForbidden):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only admins can register users")
		case errors.Is(err, errs.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "USERNAME_TAKEN", "Username is already taken")
		case errors.Is(err, errs.ErrMalformedInput):
			writeError(w, http.StatusBadRequest, "INVALID_ROLE", "Role must be admin or user")
		case errors.Is(err, errs.ErrStorageUnavailable):
			writeError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Storage is unavailable")
		default:
			h.logger.Error("register failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Profile returns a user's email and nickname. Self or admin.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetPrincipal(r.Context())
	username := r.PathValue("username")

	profile, err := h.authService.FetchProfile(r.Context(), caller, username)
	if err != nil {
		h.writeUserError(w, err, "fetch profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Update edits a user's profile. Self may edit everything but role; role
// changes and editing other users require admin.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetPrincipal(r.Context())
	username := r.PathValue("username")

	var input service.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if verrs := validator.ValidateProfile(input.Username, input.Email); verrs.HasErrors() {
		writeValidationErrors(w, verrs)
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), caller, username, input)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "USERNAME_TAKEN", "Username is already taken")
		case errors.Is(err, errs.ErrMalformedInput):
			writeError(w, http.StatusBadRequest, "INVALID_ROLE", "Role must be admin or user")
		default:
			h.writeUserError(w, err, "update profile")
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type changePasswordInput struct {
	Password string `json:"password"`
}

// ChangePassword regenerates salt and hash. Self or admin.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetPrincipal(r.Context())
	username := r.PathValue("username")

	var input changePasswordInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if verrs := validator.ValidatePassword(input.Password); verrs.HasErrors() {
		writeValidationErrors(w, verrs)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), caller, username, input.Password); err != nil {
		h.writeUserError(w, err, "change password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a user entirely. Admin only.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetPrincipal(r.Context())
	username := r.PathValue("username")

	if err := h.authService.Delete(r.Context(), caller, username); err != nil {
		h.writeUserError(w, err, "delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) writeUserError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, errs.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not allowed to do that")
	case errors.Is(err, errs.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Storage is unavailable")
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
