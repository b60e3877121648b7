package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/learnsphere/client/internal/backend"
	"github.com/learnsphere/client/internal/sequencer"
	"github.com/learnsphere/client/internal/services"
	"go.uber.org/zap"
)

// Messages shown by the lecture page before it redirects
const (
	msgLoginRequired = "Please login to view this page."
	msgAccessDenied  = "You are not enrolled in or do not own this course."
	msgNoCourseID    = "No course ID provided."
)

// LectureService is the interface that wraps the lecture page operations.
type LectureService interface {
	// Method Open checks access to a course and registers a fresh player page for it.
	//
	// If the session is not logged in, services.ErrLoginRequired is returned.
	// If the session neither owns the course nor is enrolled in it, services.ErrAccessDenied is returned.
	// Backend failures are returned wrapped.
	Open(ctx context.Context, courseID string) (*services.LecturePage, error)
	// Method Page returns the open page of a course, or services.ErrPageNotFound.
	Page(courseID string) (*services.LecturePage, error)
	// Method Close discards the page of a course.
	Close(courseID string)
	// Method RedirectDelay returns how long an access error is shown before redirecting.
	RedirectDelay() time.Duration
}

// ChapterRecorder records chapter completions
type ChapterRecorder interface {
	RecordChapterCompleted(advanced bool)
}

// PlayerHandler drives the lecture player pages
type PlayerHandler struct {
	BaseHandler
	lectures LectureService
	recorder ChapterRecorder
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(lectures LectureService, recorder ChapterRecorder, logger *zap.Logger) *PlayerHandler {
	return &PlayerHandler{
		BaseHandler: BaseHandler{logger: logger},
		lectures:    lectures,
		recorder:    recorder,
	}
}

// RegisterRoutes registers all player handler routes
func (h *PlayerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/player/{courseID}", func(r chi.Router) {
		r.Post("/", h.Open)
		r.Get("/", h.Get)
		r.Delete("/", h.Close)
		r.Post("/select/{index}", h.Select)
		r.Post("/complete", h.Complete)
		r.Post("/error", h.ReportError)
		r.Post("/description", h.ToggleDescription)
		r.Post("/autoplay", h.ToggleAutoplay)
	})
}

// Open handles POST /player/{courseID}
// @Summary Open the lecture page of a course
// @Failure 401 {object} map[string]any "Not logged in, redirect to /login"
// @Failure 403 {object} map[string]any "Not enrolled and not the owner, redirect to the course page"
// @Router /player/{courseID} [post]
func (h *PlayerHandler) Open(w http.ResponseWriter, r *http.Request) {
	courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))

	page, err := h.lectures.Open(r.Context(), courseID)
	if err != nil {
		h.respondOpenError(w, r, courseID, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, page.Response())
}

// Get handles GET /player/{courseID}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	page, ok := h.page(w, r)
	if !ok {
		return
	}

	h.respondJSON(w, http.StatusOK, page.Response())
}

// Close handles DELETE /player/{courseID}
func (h *PlayerHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.lectures.Close(strings.TrimSpace(chi.URLParam(r, "courseID")))
	w.WriteHeader(http.StatusNoContent)
}

// Select handles POST /player/{courseID}/select/{index}
func (h *PlayerHandler) Select(w http.ResponseWriter, r *http.Request) {
	page, ok := h.page(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid index parameter")
		return
	}

	if err := page.Sequencer.Select(index); err != nil {
		if errors.Is(err, sequencer.ErrIndexOutOfRange) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to select chapter", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to select chapter")
		return
	}

	h.respondJSON(w, http.StatusOK, page.Response())
}

// Complete handles POST /player/{courseID}/complete
// @Summary Report the end of the current chapter
// @Description Marks the chapter completed and advances when autoplay is on and a next chapter exists
// @Router /player/{courseID}/complete [post]
func (h *PlayerHandler) Complete(w http.ResponseWriter, r *http.Request) {
	page, ok := h.page(w, r)
	if !ok {
		return
	}

	advanced := page.Sequencer.Complete()
	h.recorder.RecordChapterCompleted(advanced)

	h.respondJSON(w, http.StatusOK, map[string]any{
		"advanced": advanced,
		"player":   page.Sequencer.Snapshot(),
	})
}

// ReportError handles POST /player/{courseID}/error
func (h *PlayerHandler) ReportError(w http.ResponseWriter, r *http.Request) {
	page, ok := h.page(w, r)
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	page.Sequencer.ReportError(req.Message)
	h.respondJSON(w, http.StatusOK, page.Sequencer.Snapshot())
}

// ToggleDescription handles POST /player/{courseID}/description
func (h *PlayerHandler) ToggleDescription(w http.ResponseWriter, r *http.Request) {
	page, ok := h.page(w, r)
	if !ok {
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]bool{"descriptionOpen": page.Sequencer.ToggleDescription()})
}

// ToggleAutoplay handles POST /player/{courseID}/autoplay
func (h *PlayerHandler) ToggleAutoplay(w http.ResponseWriter, r *http.Request) {
	page, ok := h.page(w, r)
	if !ok {
		return
	}

	enabled, err := page.Sequencer.ToggleAutoplay(r.Context())
	if err != nil {
		h.logger.Error("failed to toggle autoplay", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to save autoplay preference")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]bool{"autoplay": enabled})
}

// page looks up the open page of the request's course.
// It answers 401 with a login redirect once the session is gone, and 404 when the page is not open.
func (h *PlayerHandler) page(w http.ResponseWriter, r *http.Request) (*services.LecturePage, bool) {
	courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))

	page, err := h.lectures.Page(courseID)
	switch {
	case errors.Is(err, services.ErrLoginRequired):
		h.respondOpenError(w, r, courseID, err)
		return nil, false
	case err != nil:
		h.respondError(w, http.StatusNotFound, "lecture page is not open")
		return nil, false
	}
	return page, true
}

func (h *PlayerHandler) respondOpenError(w http.ResponseWriter, r *http.Request, courseID string, err error) {
	delay := h.lectures.RedirectDelay().Milliseconds()

	switch {
	case errors.Is(err, services.ErrLoginRequired):
		h.respondJSON(w, http.StatusUnauthorized, map[string]any{
			"error":         msgLoginRequired,
			"redirect":      "/login",
			"redirectAfter": delay,
		})
	case errors.Is(err, services.ErrAccessDenied):
		h.respondJSON(w, http.StatusForbidden, map[string]any{
			"error":         msgAccessDenied,
			"redirect":      "/courses/" + courseID,
			"redirectAfter": delay,
		})
	case errors.Is(err, services.ErrMissingCourseID):
		h.respondError(w, http.StatusBadRequest, msgNoCourseID)
	case errors.Is(err, context.Canceled):
		h.logger.Debug("lecture page open cancelled", zap.String("course_id", courseID))
		h.respondError(w, http.StatusServiceUnavailable, "request cancelled")
	case backend.StatusCode(err) == http.StatusNotFound:
		h.respondError(w, http.StatusNotFound, "course not found")
	default:
		h.logger.Error("failed to open lecture page",
			zap.String("course_id", courseID),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.respondError(w, http.StatusBadGateway, "Failed to load course data")
	}
}
