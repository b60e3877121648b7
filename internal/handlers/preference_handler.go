package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AutoplaySettings is the persisted autoplay preference
type AutoplaySettings interface {
	Autoplay() bool
	SetAutoplay(ctx context.Context, enabled bool) error
}

// PreferenceHandler handles user preference requests
type PreferenceHandler struct {
	BaseHandler
	prefs AutoplaySettings
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(prefs AutoplaySettings, logger *zap.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		BaseHandler: BaseHandler{logger: logger},
		prefs:       prefs,
	}
}

// RegisterRoutes registers all preference handler routes
func (h *PreferenceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/preferences/autoplay", h.GetAutoplay)
	r.Post("/preferences/autoplay/toggle", h.ToggleAutoplay)
}

// GetAutoplay handles GET /preferences/autoplay
func (h *PreferenceHandler) GetAutoplay(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]bool{"autoplay": h.prefs.Autoplay()})
}

// ToggleAutoplay handles POST /preferences/autoplay/toggle
func (h *PreferenceHandler) ToggleAutoplay(w http.ResponseWriter, r *http.Request) {
	enabled := !h.prefs.Autoplay()
	if err := h.prefs.SetAutoplay(r.Context(), enabled); err != nil {
		h.logger.Error("failed to toggle autoplay", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to save autoplay preference")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]bool{"autoplay": enabled})
}
