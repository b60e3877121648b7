package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/learnsphere/client/internal/models"
	"go.uber.org/zap"
)

// ProfileAPI is the interface that wraps the backend profile calls.
type ProfileAPI interface {
	// Method Profile retrieves the profile of the current session.
	//
	// If the session is not authenticated or some error occurs, the error will be returned together with "nil" value.
	Profile(ctx context.Context) (*models.Profile, error)
	// Method UpdateProfile changes the non-empty fields of "update".
	UpdateProfile(ctx context.Context, update models.UpdateProfileRequest) error
	// Method UpdatePassword changes the password of the current session.
	//
	// If the current password is wrong, the backend error will be returned.
	UpdatePassword(ctx context.Context, update models.UpdatePasswordRequest) error
}

// ProfileHandler handles profile requests
type ProfileHandler struct {
	BaseHandler
	api ProfileAPI
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(api ProfileAPI, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler: BaseHandler{logger: logger},
		api:         api,
	}
}

// RegisterRoutes registers all profile handler routes
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Put("/password", h.UpdatePassword)
	})
}

// Get handles GET /profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.api.Profile(r.Context())
	if err != nil {
		h.respondBackendError(w, err, "failed to get profile")
		return
	}

	h.respondJSON(w, http.StatusOK, profile)
}

// Update handles PUT /profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" && req.Email == "" && req.Phone == "" && req.Address == "" {
		h.respondError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if req.Email != "" {
		if err := validateEmail(req.Email); err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := validatePhone(req.Phone); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.api.UpdateProfile(r.Context(), req); err != nil {
		h.respondBackendError(w, err, "failed to update profile")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "profile updated successfully"})
}

// UpdatePassword handles PUT /profile/password
func (h *ProfileHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePasswordRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentPassword == "" {
		h.respondError(w, http.StatusBadRequest, "current password is required")
		return
	}
	if err := validatePassword(req.NewPassword); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.api.UpdatePassword(r.Context(), req); err != nil {
		h.respondBackendError(w, err, "failed to update password")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "password updated successfully"})
}
