package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/learnsphere/client/internal/models"
	"go.uber.org/zap"
)

// CourseAPI is the interface that wraps the backend catalog and enrollment calls.
type CourseAPI interface {
	// Method FilteredCourses retrieves one page of courses.
	//
	// Please reference models.CourseFilter for the supported filters.
	// If some error occurs during data retrieve, the error will be returned together with "nil" value.
	FilteredCourses(ctx context.Context, filter models.CourseFilter) (*models.CoursePage, error)
	// Method GetCourse retrieves a course with its videos.
	//
	// If the course does not exist or some error occurs, the error will be returned together with "nil" value.
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	// Method Enroll enrolls the current session in a course.
	Enroll(ctx context.Context, courseID string) error
	// Method EnrolledCourseIDs returns the ids of the courses the current session is enrolled in.
	EnrolledCourseIDs(ctx context.Context) ([]int64, error)
	// Method StudentCourses returns the courses the current session is enrolled in.
	StudentCourses(ctx context.Context) ([]models.CourseListItem, error)
	// Method InstructorCourses returns the courses the current session teaches.
	InstructorCourses(ctx context.Context) ([]models.CourseListItem, error)
}

// SessionReader gives handlers read access to the session
type SessionReader interface {
	State() models.SessionState
}

// CourseHandler handles catalog and enrollment requests
type CourseHandler struct {
	BaseHandler
	api       CourseAPI
	session   SessionReader
	sanitizer Sanitizer
}

// Sanitizer strips unsafe markup from backend supplied text
type Sanitizer interface {
	Sanitize(text string) string
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(api CourseAPI, session SessionReader, sanitizer Sanitizer, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler: BaseHandler{logger: logger},
		api:         api,
		session:     session,
		sanitizer:   sanitizer,
	}
}

// RegisterRoutes registers all course handler routes
func (h *CourseHandler) RegisterRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/enroll", h.Enroll)
	})
	r.Get("/me/courses", h.MyCourses)
}

// List handles GET /courses
// @Summary List courses
// @Param page query int false "Page number, default: 0"
// @Param size query int false "Page size, default: 12"
// @Param category query string false "Category"
// @Param difficulty query string false "BEGINNER, INTERMEDIATE or ADVANCED"
// @Param search query string false "Search text"
// @Router /courses [get]
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := models.CourseFilter{
		Category:   query.Get("category"),
		Difficulty: query.Get("difficulty"),
		Search:     query.Get("search"),
	}

	var err error
	if filter.Page, err = intQuery(query.Get("page"), 0); err != nil || filter.Page < 0 {
		h.respondError(w, http.StatusBadRequest, "invalid page parameter")
		return
	}
	if filter.Size, err = intQuery(query.Get("size"), 0); err != nil || filter.Size < 0 {
		h.respondError(w, http.StatusBadRequest, "invalid size parameter")
		return
	}

	page, err := h.api.FilteredCourses(r.Context(), filter)
	if err != nil {
		h.respondBackendError(w, err, "failed to get courses")
		return
	}

	if h.session.State().IsAuthenticated {
		h.markEnrolled(r.Context(), page.Content)
	}

	h.respondJSON(w, http.StatusOK, page)
}

// Get handles GET /courses/{id}
// @Summary Get a course with its videos
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")

	course, err := h.api.GetCourse(r.Context(), courseID)
	if err != nil {
		h.respondBackendError(w, err, "failed to get course")
		return
	}

	course.Description = h.sanitizer.Sanitize(course.Description)
	for i := range course.Videos {
		course.Videos[i].Description = h.sanitizer.Sanitize(course.Videos[i].Description)
	}

	h.respondJSON(w, http.StatusOK, course)
}

// Enroll handles POST /courses/{id}/enroll
// @Summary Enroll in a course
// @Router /courses/{id}/enroll [post]
func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	if !h.session.State().IsAuthenticated {
		h.respondError(w, http.StatusUnauthorized, "login required")
		return
	}

	courseID := chi.URLParam(r, "id")
	if err := h.api.Enroll(r.Context(), courseID); err != nil {
		h.respondBackendError(w, err, "failed to enroll")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "enrolled successfully"})
}

// MyCourses handles GET /me/courses
// @Summary List the courses of the current user
// @Description Teachers get the courses they instruct, students the courses they are enrolled in
// @Router /me/courses [get]
func (h *CourseHandler) MyCourses(w http.ResponseWriter, r *http.Request) {
	state := h.session.State()
	if !state.IsAuthenticated {
		h.respondError(w, http.StatusUnauthorized, "login required")
		return
	}

	var (
		courses []models.CourseListItem
		err     error
	)
	if state.CurrentUser.IsTeacher() {
		courses, err = h.api.InstructorCourses(r.Context())
	} else {
		courses, err = h.api.StudentCourses(r.Context())
		for i := range courses {
			courses[i].IsEnrolled = true
		}
	}
	if err != nil {
		h.respondBackendError(w, err, "failed to get courses")
		return
	}
	if courses == nil {
		courses = []models.CourseListItem{}
	}

	h.respondJSON(w, http.StatusOK, courses)
}

// markEnrolled flags the courses the session is enrolled in; a failed lookup leaves every flag false
func (h *CourseHandler) markEnrolled(ctx context.Context, courses []models.CourseListItem) {
	ids, err := h.api.EnrolledCourseIDs(ctx)
	if err != nil {
		h.logger.Warn("failed to get enrolled course ids", zap.Error(err))
		return
	}

	enrolled := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		enrolled[id] = struct{}{}
	}
	for i := range courses {
		_, courses[i].IsEnrolled = enrolled[courses[i].CourseID]
	}
}

func intQuery(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
