package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/learnsphere/client/internal/config"
	"github.com/learnsphere/client/internal/middlewares"
	"github.com/learnsphere/client/internal/models"
	"go.uber.org/zap"
)

// multipartMemory is how much of a parsed form is kept in memory before spilling to disk
const multipartMemory = 32 << 20

// InstructorAPI is the interface that wraps the backend course authoring calls.
type InstructorAPI interface {
	// Method OwnedCourseIDs returns the ids of the courses the current session instructs.
	OwnedCourseIDs(ctx context.Context) ([]int64, error)
	// Method CreateCourse creates a course with an optional thumbnail and returns the backend answer as is.
	//
	// If the course is rejected or some error occurs, the error will be returned together with "nil" value.
	CreateCourse(ctx context.Context, course models.CreateCourseRequest, thumbnailName string, thumbnail io.Reader) (json.RawMessage, error)
	// Method UpdateCourse changes the non-empty fields of a course.
	UpdateCourse(ctx context.Context, courseID string, update models.UpdateCourseRequest) error
	// Method DeleteCourse deletes a course.
	DeleteCourse(ctx context.Context, courseID string) error
	// Method UploadVideo streams a video file to a course and returns the backend answer as is.
	//
	// Please reference CreateCourse method for more information about error values.
	UploadVideo(ctx context.Context, upload models.UploadVideoRequest, file io.Reader) (json.RawMessage, error)
	// Method UpdateVideoDetails changes the title and description of a video.
	UpdateVideoDetails(ctx context.Context, videoID string, update models.UpdateVideoRequest) error
	// Method DeleteVideo deletes a video.
	DeleteVideo(ctx context.Context, videoID string) error
}

// InstructorHandler handles course authoring requests of teachers
type InstructorHandler struct {
	BaseHandler
	api     InstructorAPI
	session SessionReader
	limits  config.UploadConfig
}

// NewInstructorHandler creates a new instructor handler
func NewInstructorHandler(api InstructorAPI, session SessionReader, limits config.UploadConfig, logger *zap.Logger) *InstructorHandler {
	return &InstructorHandler{
		BaseHandler: BaseHandler{logger: logger},
		api:         api,
		session:     session,
		limits:      limits,
	}
}

// RegisterRoutes registers all instructor handler routes.
// Upload routes carry their own size limits, so the router must not apply a smaller global one.
func (h *InstructorHandler) RegisterRoutes(r chi.Router) {
	r.Route("/instructor", func(r chi.Router) {
		r.Use(h.requireTeacher)

		r.Get("/course-ids", h.CourseIDs)
		r.With(middlewares.RequestSizeLimitMiddleware(h.limits.MaxThumbnailSize)).Post("/courses", h.CreateCourse)
		r.With(middlewares.RequestSizeLimitMiddleware(maxBodySize)).Put("/courses/{id}", h.UpdateCourse)
		r.Delete("/courses/{id}", h.DeleteCourse)
		r.With(middlewares.RequestSizeLimitMiddleware(h.limits.MaxVideoSize)).Post("/courses/{id}/videos", h.UploadVideo)
		r.With(middlewares.RequestSizeLimitMiddleware(maxBodySize)).Put("/videos/{videoID}", h.UpdateVideo)
		r.Delete("/videos/{videoID}", h.DeleteVideo)
	})
}

func (h *InstructorHandler) requireTeacher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := h.session.State()
		if !state.IsAuthenticated {
			h.respondError(w, http.StatusUnauthorized, "login required")
			return
		}
		if !state.CurrentUser.IsTeacher() {
			h.respondError(w, http.StatusForbidden, "instructor role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CourseIDs handles GET /instructor/course-ids
func (h *InstructorHandler) CourseIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.api.OwnedCourseIDs(r.Context())
	if err != nil {
		h.respondBackendError(w, err, "failed to get course ids")
		return
	}
	if ids == nil {
		ids = []int64{}
	}

	h.respondJSON(w, http.StatusOK, ids)
}

// CreateCourse handles POST /instructor/courses
// @Summary Create a course
// @Accept multipart/form-data
// @Param courseName formData string true "Course name"
// @Param title formData string true "Course title"
// @Param difficultyLevel formData string true "BEGINNER, INTERMEDIATE or ADVANCED"
// @Param price formData number false "Price, default: 0"
// @Param thumbnail formData file false "Thumbnail image"
// @Router /instructor/courses [post]
func (h *InstructorHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.logger.Error("failed to parse multipart form", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}

	req := models.CreateCourseRequest{
		CourseName:      strings.TrimSpace(r.FormValue("courseName")),
		Title:           strings.TrimSpace(r.FormValue("title")),
		DifficultyLevel: models.Difficulty(strings.ToUpper(r.FormValue("difficultyLevel"))),
	}
	if req.CourseName == "" || req.Title == "" {
		h.respondError(w, http.StatusBadRequest, "courseName and title are required")
		return
	}
	if !validDifficulty(req.DifficultyLevel) {
		h.respondError(w, http.StatusBadRequest, "invalid difficultyLevel")
		return
	}
	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			h.respondError(w, http.StatusBadRequest, "invalid price")
			return
		}
		req.Price = price
	}

	var (
		thumbnail     io.Reader
		thumbnailName string
	)
	file, header, err := r.FormFile("thumbnail")
	if err == nil {
		defer file.Close()
		if header.Size > 0 {
			thumbnail = file
			thumbnailName = header.Filename
		}
	} else if err != http.ErrMissingFile {
		h.logger.Error("failed to get thumbnail file from form", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, "failed to process thumbnail file")
		return
	}

	created, err := h.api.CreateCourse(r.Context(), req, thumbnailName, thumbnail)
	if err != nil {
		h.respondBackendError(w, err, "failed to create course")
		return
	}

	h.respondRaw(w, http.StatusCreated, created)
}

// UpdateCourse handles PUT /instructor/courses/{id}
func (h *InstructorHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateCourseRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DifficultyLevel != "" && !validDifficulty(req.DifficultyLevel) {
		h.respondError(w, http.StatusBadRequest, "invalid difficultyLevel")
		return
	}
	if req.Price != nil && *req.Price < 0 {
		h.respondError(w, http.StatusBadRequest, "invalid price")
		return
	}

	if err := h.api.UpdateCourse(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		h.respondBackendError(w, err, "failed to update course")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "course updated successfully"})
}

// DeleteCourse handles DELETE /instructor/courses/{id}
func (h *InstructorHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.api.DeleteCourse(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondBackendError(w, err, "failed to delete course")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadVideo handles POST /instructor/courses/{id}/videos
// @Summary Upload a video to a course
// @Description The file part is streamed to the backend without buffering the whole video
// @Accept multipart/form-data
// @Param title formData string true "Video title"
// @Param description formData string false "Video description"
// @Param video formData file true "Video file"
// @Router /instructor/courses/{id}/videos [post]
func (h *InstructorHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	reader, err := r.MultipartReader()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}

	upload := models.UploadVideoRequest{CourseID: courseID}
	video, err := nextVideoPart(reader, &upload)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer video.Close()

	if strings.TrimSpace(upload.Title) == "" {
		h.respondError(w, http.StatusBadRequest, "title is required before the video part")
		return
	}

	uploaded, err := h.api.UploadVideo(r.Context(), upload, video)
	if err != nil {
		h.respondBackendError(w, err, "failed to upload video")
		return
	}

	h.respondRaw(w, http.StatusCreated, uploaded)
}

// UpdateVideo handles PUT /instructor/videos/{videoID}
func (h *InstructorHandler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateVideoRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		h.respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	if err := h.api.UpdateVideoDetails(r.Context(), chi.URLParam(r, "videoID"), req); err != nil {
		h.respondBackendError(w, err, "failed to update video")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "video updated successfully"})
}

// DeleteVideo handles DELETE /instructor/videos/{videoID}
func (h *InstructorHandler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	if err := h.api.DeleteVideo(r.Context(), chi.URLParam(r, "videoID")); err != nil {
		h.respondBackendError(w, err, "failed to delete video")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// respondRaw sends a backend JSON answer unchanged
func (h *InstructorHandler) respondRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	if len(body) == 0 {
		body = json.RawMessage(`{}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

// nextVideoPart reads form fields up to the "video" file part and returns that part unread
func nextVideoPart(reader *multipart.Reader, upload *models.UploadVideoRequest) (*multipart.Part, error) {
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return nil, errMissingVideo
		}
		if err != nil {
			return nil, errMalformedForm
		}

		switch part.FormName() {
		case "video":
			if part.FileName() == "" {
				part.Close()
				return nil, errMissingVideo
			}
			upload.FileName = part.FileName()
			return part, nil
		case "title", "description":
			value, err := io.ReadAll(io.LimitReader(part, 64<<10))
			part.Close()
			if err != nil {
				return nil, errMalformedForm
			}
			if part.FormName() == "title" {
				upload.Title = strings.TrimSpace(string(value))
			} else {
				upload.Description = string(value)
			}
		default:
			part.Close()
		}
	}
}

func validDifficulty(level models.Difficulty) bool {
	switch level {
	case models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced:
		return true
	}
	return false
}
