package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/learnsphere/client/internal/config"
	"github.com/learnsphere/client/internal/models"
	"github.com/learnsphere/client/internal/services"
	"github.com/stretchr/testify/require"
)

// routeRegistrar is implemented by every handler
type routeRegistrar interface {
	RegisterRoutes(r chi.Router)
}

func serve(t *testing.T, h routeRegistrar, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func serveJSON(t *testing.T, h routeRegistrar, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return serve(t, h, method, target, reader, "application/json")
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

var testUploadLimits = config.UploadConfig{
	MaxRequestSize:   10 << 20,
	MaxThumbnailSize: 10 << 20,
	MaxVideoSize:     2 << 30,
}

func teacherState() models.SessionState {
	return models.SessionState{
		IsAuthenticated: true,
		CurrentUser:     &models.User{DisplayName: "Tom", Email: "tom@x.com", Role: models.RoleTeacher},
	}
}

func studentState() models.SessionState {
	return models.SessionState{
		IsAuthenticated: true,
		CurrentUser:     &models.User{DisplayName: "Ana", Email: "ana@x.com", Role: models.RoleStudent},
	}
}

// mockAuthAPI is a mock implementation of AuthAPI
type mockAuthAPI struct {
	resp      *models.LoginResponse
	err       error
	calls     int
	lastLogin models.LoginRequest
	lastReg   models.RegisterRequest
	lastFlow  models.OAuthFlow
	lastCode  string
	lastRole  models.Role
}

func (m *mockAuthAPI) Login(ctx context.Context, credentials models.LoginRequest) (*models.LoginResponse, error) {
	m.calls++
	m.lastLogin = credentials
	return m.resp, m.err
}

func (m *mockAuthAPI) Register(ctx context.Context, registration models.RegisterRequest) (*models.LoginResponse, error) {
	m.calls++
	m.lastReg = registration
	return m.resp, m.err
}

func (m *mockAuthAPI) OAuthCallback(ctx context.Context, flow models.OAuthFlow, code string, role models.Role) (*models.LoginResponse, error) {
	m.calls++
	m.lastFlow, m.lastCode, m.lastRole = flow, code, role
	return m.resp, m.err
}

// mockSessionController is a mock implementation of SessionController
type mockSessionController struct {
	state     models.SessionState
	outcome   models.AuthOutcome
	candidate *models.User
	fetches   int
	logouts   int
}

func (m *mockSessionController) State() models.SessionState {
	return m.state
}

func (m *mockSessionController) FetchSession(ctx context.Context) bool {
	m.fetches++
	return m.state.IsAuthenticated
}

func (m *mockSessionController) Login(ctx context.Context, candidate models.User) models.AuthOutcome {
	m.candidate = &candidate
	return m.outcome
}

func (m *mockSessionController) Logout(ctx context.Context) models.AuthOutcome {
	m.logouts++
	return models.AuthOutcome{Result: models.AuthResultLoggedOut, Redirect: "/login"}
}

// mockCourseAPI is a mock implementation of CourseAPI
type mockCourseAPI struct {
	page        *models.CoursePage
	course      *models.Course
	courses     []models.CourseListItem
	enrolledIDs []int64
	err         error
	idsErr      error
	lastFilter  models.CourseFilter
	enrolled    []string
	student     int
	instructor  int
}

func (m *mockCourseAPI) FilteredCourses(ctx context.Context, filter models.CourseFilter) (*models.CoursePage, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

func (m *mockCourseAPI) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.course, nil
}

func (m *mockCourseAPI) Enroll(ctx context.Context, courseID string) error {
	m.enrolled = append(m.enrolled, courseID)
	return m.err
}

func (m *mockCourseAPI) EnrolledCourseIDs(ctx context.Context) ([]int64, error) {
	return m.enrolledIDs, m.idsErr
}

func (m *mockCourseAPI) StudentCourses(ctx context.Context) ([]models.CourseListItem, error) {
	m.student++
	return m.courses, m.err
}

func (m *mockCourseAPI) InstructorCourses(ctx context.Context) ([]models.CourseListItem, error) {
	m.instructor++
	return m.courses, m.err
}

// mockSessionReader is a mock implementation of SessionReader
type mockSessionReader struct {
	state models.SessionState
}

func (m *mockSessionReader) State() models.SessionState {
	return m.state
}

// tagSanitizer removes a single marker so tests can see sanitizing happened
type tagSanitizer struct{}

func (tagSanitizer) Sanitize(text string) string {
	return strings.ReplaceAll(text, "<script>", "")
}

// mockProfileAPI is a mock implementation of ProfileAPI
type mockProfileAPI struct {
	profile      *models.Profile
	err          error
	lastUpdate   models.UpdateProfileRequest
	lastPassword models.UpdatePasswordRequest
	calls        int
}

func (m *mockProfileAPI) Profile(ctx context.Context) (*models.Profile, error) {
	m.calls++
	return m.profile, m.err
}

func (m *mockProfileAPI) UpdateProfile(ctx context.Context, update models.UpdateProfileRequest) error {
	m.calls++
	m.lastUpdate = update
	return m.err
}

func (m *mockProfileAPI) UpdatePassword(ctx context.Context, update models.UpdatePasswordRequest) error {
	m.calls++
	m.lastPassword = update
	return m.err
}

// mockLectureService is a mock implementation of LectureService
type mockLectureService struct {
	mu      sync.Mutex
	pages   map[string]*services.LecturePage
	openErr error
	pageErr error
	open    *services.LecturePage
}

func (m *mockLectureService) Open(ctx context.Context, courseID string) (*services.LecturePage, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pages == nil {
		m.pages = make(map[string]*services.LecturePage)
	}
	m.pages[courseID] = m.open
	return m.open, nil
}

func (m *mockLectureService) Page(courseID string) (*services.LecturePage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pageErr != nil {
		return nil, m.pageErr
	}
	page, ok := m.pages[courseID]
	if !ok {
		return nil, services.ErrPageNotFound
	}
	return page, nil
}

func (m *mockLectureService) Close(courseID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pages, courseID)
}

func (m *mockLectureService) RedirectDelay() time.Duration {
	return 2 * time.Second
}

// mockChapterRecorder is a mock implementation of ChapterRecorder
type mockChapterRecorder struct {
	completions []bool
}

func (m *mockChapterRecorder) RecordChapterCompleted(advanced bool) {
	m.completions = append(m.completions, advanced)
}

// mockAutoplay is a mock implementation of AutoplaySettings and sequencer.AutoplayPreference
type mockAutoplay struct {
	enabled bool
	err     error
}

func (m *mockAutoplay) Autoplay() bool {
	return m.enabled
}

func (m *mockAutoplay) SetAutoplay(ctx context.Context, enabled bool) error {
	if m.err != nil {
		return m.err
	}
	m.enabled = enabled
	return nil
}

// mockInstructorAPI is a mock implementation of InstructorAPI
type mockInstructorAPI struct {
	err           error
	ids           []int64
	created       models.CreateCourseRequest
	thumbnailName string
	thumbnail     string
	upload        models.UploadVideoRequest
	video         string
	updatedCourse models.UpdateCourseRequest
	updatedVideo  models.UpdateVideoRequest
	deleted       []string
}

func (m *mockInstructorAPI) OwnedCourseIDs(ctx context.Context) ([]int64, error) {
	return m.ids, m.err
}

func (m *mockInstructorAPI) CreateCourse(ctx context.Context, course models.CreateCourseRequest, thumbnailName string, thumbnail io.Reader) (json.RawMessage, error) {
	m.created = course
	m.thumbnailName = thumbnailName
	if thumbnail != nil {
		data, _ := io.ReadAll(thumbnail)
		m.thumbnail = string(data)
	}
	if m.err != nil {
		return nil, m.err
	}
	return json.RawMessage(`{"courseId":42}`), nil
}

func (m *mockInstructorAPI) UpdateCourse(ctx context.Context, courseID string, update models.UpdateCourseRequest) error {
	m.updatedCourse = update
	return m.err
}

func (m *mockInstructorAPI) DeleteCourse(ctx context.Context, courseID string) error {
	m.deleted = append(m.deleted, "course:"+courseID)
	return m.err
}

func (m *mockInstructorAPI) UploadVideo(ctx context.Context, upload models.UploadVideoRequest, file io.Reader) (json.RawMessage, error) {
	m.upload = upload
	data, _ := io.ReadAll(file)
	m.video = string(data)
	if m.err != nil {
		return nil, m.err
	}
	return json.RawMessage(`{"id":7}`), nil
}

func (m *mockInstructorAPI) UpdateVideoDetails(ctx context.Context, videoID string, update models.UpdateVideoRequest) error {
	m.updatedVideo = update
	return m.err
}

func (m *mockInstructorAPI) DeleteVideo(ctx context.Context, videoID string) error {
	m.deleted = append(m.deleted, "video:"+videoID)
	return m.err
}

// mockPinger is a mock implementation of Pinger
type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.err
}

