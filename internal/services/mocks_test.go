package services

import (
	"context"
	"sync"

	"github.com/learnsphere/client/internal/models"
	"github.com/learnsphere/client/internal/repositories"
)

// mockSessionAPI is a mock implementation of SessionAPI
type mockSessionAPI struct {
	mu          sync.Mutex
	user        *models.User
	err         error
	logoutErr   error
	sessionFn   func(ctx context.Context) (*models.User, error)
	calls       int
	logoutCalls int
}

func (m *mockSessionAPI) Session(ctx context.Context) (*models.User, error) {
	m.mu.Lock()
	m.calls++
	fn := m.sessionFn
	user, err := m.user, m.err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (m *mockSessionAPI) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logoutCalls++
	return m.logoutErr
}

// mockStorage is a mock implementation of LocalStorage
type mockStorage struct {
	mu        sync.Mutex
	values    map[string]string
	getErr    error
	setErr    error
	removeErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{values: make(map[string]string)}
}

func (m *mockStorage) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	value, ok := m.values[key]
	if !ok {
		return "", repositories.ErrKeyNotFound
	}
	return value, nil
}

func (m *mockStorage) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockStorage) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.values, key)
	return nil
}

func (m *mockStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

func (m *mockStorage) value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// mockRecorder is a mock implementation of SessionRecorder
type mockRecorder struct {
	mu      sync.Mutex
	results []bool
}

func (m *mockRecorder) RecordSessionCheck(authenticated bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, authenticated)
}

// mockSession is a mock implementation of SessionProvider
type mockSession struct {
	state      models.SessionState
	fetchState models.SessionState
	fetchOK    bool
	fetches    int
}

func (m *mockSession) State() models.SessionState {
	return m.state
}

func (m *mockSession) FetchSession(ctx context.Context) bool {
	m.fetches++
	if m.fetchOK {
		m.state = m.fetchState
	}
	return m.fetchOK
}

// mockCourseAPI is a mock implementation of CourseAPI
type mockCourseAPI struct {
	mu          sync.Mutex
	course      *models.Course
	courseErr   error
	related     *models.CoursePage
	relatedErr  error
	enrolled    map[string]bool
	enrolledErr error
	owner       bool
	ownerErr    error
	ownerCalls  []string
	filters     []models.CourseFilter
}

func (m *mockCourseAPI) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	if m.courseErr != nil {
		return nil, m.courseErr
	}
	return m.course, nil
}

func (m *mockCourseAPI) FilteredCourses(ctx context.Context, filter models.CourseFilter) (*models.CoursePage, error) {
	m.mu.Lock()
	m.filters = append(m.filters, filter)
	m.mu.Unlock()
	if m.relatedErr != nil {
		return nil, m.relatedErr
	}
	if m.related == nil {
		return &models.CoursePage{}, nil
	}
	return m.related, nil
}

func (m *mockCourseAPI) IsEnrolled(ctx context.Context, courseID string) (bool, error) {
	if m.enrolledErr != nil {
		return false, m.enrolledErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enrolled[courseID], nil
}

func (m *mockCourseAPI) IsCourseOwner(ctx context.Context, courseID, username string) (bool, error) {
	m.mu.Lock()
	m.ownerCalls = append(m.ownerCalls, username)
	m.mu.Unlock()
	if m.ownerErr != nil {
		return false, m.ownerErr
	}
	return m.owner, nil
}

// passthroughSanitizer is a mock implementation of Sanitizer
type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(text string) string {
	return text
}

// mockPreference is a mock implementation of sequencer.AutoplayPreference
type mockPreference struct {
	enabled bool
}

func (m *mockPreference) Autoplay() bool {
	return m.enabled
}

func (m *mockPreference) SetAutoplay(ctx context.Context, enabled bool) error {
	m.enabled = enabled
	return nil
}
