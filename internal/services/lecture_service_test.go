package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/learnsphere/client/internal/backend"
	"github.com/learnsphere/client/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func authenticatedSession() *mockSession {
	return &mockSession{state: models.SessionState{
		IsAuthenticated: true,
		CurrentUser:     &models.User{DisplayName: "Ana", Email: "ana@x.com", Role: models.RoleStudent},
	}}
}

func sampleCourse() *models.Course {
	return &models.Course{
		CourseID:    7,
		CourseName:  "Go Basics",
		Description: "Learn <b>Go</b>",
		Category:    "Programming",
		Videos: []models.Video{
			{ID: 1, Title: "Intro", Description: "Welcome", Duration: 65, HLSURL: "https://cdn.test/1.m3u8"},
			{ID: 2, Title: "", Duration: 0},
			{ID: 3, Title: "Wrap up", Duration: 3600.9, HLSURL: "https://cdn.test/3.m3u8"},
		},
	}
}

func setupLectureService(t *testing.T, api *mockCourseAPI, session *mockSession) (*LectureService, *mockPreference) {
	t.Helper()
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	prefs := &mockPreference{enabled: true}
	return NewLectureService(api, session, prefs, passthroughSanitizer{}, logger, 2*time.Second), prefs
}

func TestLectureService_Open_Access(t *testing.T) {
	tests := []struct {
		name          string
		api           *mockCourseAPI
		session       *mockSession
		courseID      string
		expectedError error
	}{
		{
			name:     "enrolled student",
			api:      &mockCourseAPI{course: sampleCourse(), enrolled: map[string]bool{"7": true}},
			session:  authenticatedSession(),
			courseID: "7",
		},
		{
			name:     "course owner",
			api:      &mockCourseAPI{course: sampleCourse(), owner: true},
			session:  authenticatedSession(),
			courseID: "7",
		},
		{
			name:          "neither enrolled nor owner",
			api:           &mockCourseAPI{course: sampleCourse()},
			session:       authenticatedSession(),
			courseID:      "7",
			expectedError: ErrAccessDenied,
		},
		{
			name: "access checks failing count as denied",
			api: &mockCourseAPI{
				course:      sampleCourse(),
				enrolledErr: errors.New("timeout"),
				ownerErr:    errors.New("timeout"),
			},
			session:       authenticatedSession(),
			courseID:      "7",
			expectedError: ErrAccessDenied,
		},
		{
			name:          "not logged in",
			api:           &mockCourseAPI{course: sampleCourse(), enrolled: map[string]bool{"7": true}},
			session:       &mockSession{},
			courseID:      "7",
			expectedError: ErrLoginRequired,
		},
		{
			name:     "session revived by backend check",
			api:      &mockCourseAPI{course: sampleCourse(), enrolled: map[string]bool{"7": true}},
			session:  &mockSession{fetchOK: true, fetchState: authenticatedSession().state},
			courseID: "7",
		},
		{
			name:          "missing course id",
			api:           &mockCourseAPI{course: sampleCourse()},
			session:       authenticatedSession(),
			courseID:      "  ",
			expectedError: ErrMissingCourseID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := setupLectureService(t, tt.api, tt.session)

			page, err := service.Open(context.Background(), tt.courseID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, page)
				_, lookupErr := service.Page(tt.courseID)
				assert.ErrorIs(t, lookupErr, ErrPageNotFound)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, page)
			assert.Equal(t, "7", page.CourseID)
		})
	}
}

func TestLectureService_Open_OwnershipUsesEmail(t *testing.T) {
	api := &mockCourseAPI{course: sampleCourse(), owner: true}
	service, _ := setupLectureService(t, api, authenticatedSession())

	_, err := service.Open(context.Background(), "7")

	require.NoError(t, err)
	assert.Equal(t, []string{"ana@x.com"}, api.ownerCalls)
}

func TestLectureService_Open_CourseLoadError(t *testing.T) {
	api := &mockCourseAPI{
		courseErr: &backend.APIError{StatusCode: 404, Message: "course not found"},
		enrolled:  map[string]bool{"7": true},
	}
	service, _ := setupLectureService(t, api, authenticatedSession())

	page, err := service.Open(context.Background(), "7")

	assert.Error(t, err)
	assert.Nil(t, page)
	assert.Equal(t, 404, backend.StatusCode(err))
}

func TestLectureService_Open_BuildsPage(t *testing.T) {
	api := &mockCourseAPI{
		course:   sampleCourse(),
		enrolled: map[string]bool{"7": true, "9": true},
		related: &models.CoursePage{Content: []models.CourseListItem{
			{CourseID: 7, Title: "Go Basics", IsEnrolled: true},
			{CourseID: 8, Title: "Go Concurrency", IsEnrolled: true},
			{CourseID: 9, Title: "Go Testing"},
		}},
	}
	service, _ := setupLectureService(t, api, authenticatedSession())

	page, err := service.Open(context.Background(), "7")
	require.NoError(t, err)

	assert.Equal(t, models.LectureCourse{
		ID:          "7",
		Title:       "Go Basics",
		Description: "Learn <b>Go</b>",
		Category:    "Programming",
	}, page.Course)

	chapters := page.Sequencer.Chapters()
	require.Len(t, chapters, 3)
	assert.Equal(t, models.Chapter{
		ID:              1,
		Title:           "Intro",
		Description:     "Welcome",
		DurationSeconds: 65,
		Duration:        "1:05",
		MediaURL:        "https://cdn.test/1.m3u8",
	}, chapters[0])
	assert.Equal(t, "Untitled Video", chapters[1].Title)
	assert.Equal(t, "0:00", chapters[1].Duration)
	assert.False(t, chapters[1].HasMedia())
	assert.Equal(t, "60:00", chapters[2].Duration)

	index, ok := page.Sequencer.Current()
	assert.True(t, ok)
	assert.Equal(t, 0, index)

	require.Len(t, api.filters, 1)
	assert.Equal(t, models.CourseFilter{Category: "Programming", Page: 0, Size: 4}, api.filters[0])
	assert.Equal(t, []models.CourseListItem{
		{CourseID: 8, Title: "Go Concurrency", IsEnrolled: false},
		{CourseID: 9, Title: "Go Testing", IsEnrolled: true},
	}, page.RelatedCourses)

	response := page.Response()
	assert.Equal(t, page.Course, response.Course)
	assert.True(t, response.Player.Autoplay)
	require.NotNil(t, response.Player.CurrentIndex)
	assert.Equal(t, 0, *response.Player.CurrentIndex)
}

func TestLectureService_Open_Defaults(t *testing.T) {
	api := &mockCourseAPI{
		course:   &models.Course{CourseID: 7, Title: "Fallback Title"},
		enrolled: map[string]bool{"7": true},
	}
	service, _ := setupLectureService(t, api, authenticatedSession())

	page, err := service.Open(context.Background(), "7")
	require.NoError(t, err)

	assert.Equal(t, "Fallback Title", page.Course.Title)
	assert.Equal(t, "No description available", page.Course.Description)
	assert.Empty(t, page.RelatedCourses)
	assert.NotNil(t, page.RelatedCourses)
	assert.Empty(t, api.filters)

	_, ok := page.Sequencer.Current()
	assert.False(t, ok)
	assert.Nil(t, page.Response().Player.CurrentIndex)

	api.course = &models.Course{CourseID: 7}
	page, err = service.Open(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Untitled Course", page.Course.Title)
}

func TestLectureService_Open_RelatedFailureKeepsPage(t *testing.T) {
	api := &mockCourseAPI{
		course:     sampleCourse(),
		enrolled:   map[string]bool{"7": true},
		relatedErr: errors.New("bad gateway"),
	}
	service, _ := setupLectureService(t, api, authenticatedSession())

	page, err := service.Open(context.Background(), "7")

	require.NoError(t, err)
	assert.Empty(t, page.RelatedCourses)
}

func TestLectureService_PageLifecycle(t *testing.T) {
	api := &mockCourseAPI{course: sampleCourse(), enrolled: map[string]bool{"7": true}}
	service, _ := setupLectureService(t, api, authenticatedSession())
	ctx := context.Background()

	first, err := service.Open(ctx, "7")
	require.NoError(t, err)
	require.NoError(t, first.Sequencer.Select(2))

	found, err := service.Page("7")
	require.NoError(t, err)
	assert.Same(t, first, found)

	// Re-opening replaces the page with a fresh sequencer
	second, err := service.Open(ctx, "7")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	index, _ := second.Sequencer.Current()
	assert.Equal(t, 0, index)

	found, err = service.Page("7")
	require.NoError(t, err)
	assert.Same(t, second, found)

	service.Close("7")
	_, err = service.Page("7")
	assert.ErrorIs(t, err, ErrPageNotFound)

	// Closing twice is harmless
	service.Close("7")
}

func TestLectureService_Page_SessionEnded(t *testing.T) {
	api := &mockCourseAPI{course: sampleCourse(), enrolled: map[string]bool{"7": true}}
	session := authenticatedSession()
	service, _ := setupLectureService(t, api, session)

	_, err := service.Open(context.Background(), "7")
	require.NoError(t, err)
	loggedIn := session.state

	session.state = models.SessionState{}

	found, err := service.Page("7")
	assert.Nil(t, found)
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.ErrorIs(t, err, ErrPageNotFound)

	// The page was discarded, logging back in does not revive it
	session.state = loggedIn
	_, err = service.Page("7")
	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.NotErrorIs(t, err, ErrLoginRequired)
}

func TestLectureService_Page_OtherUser(t *testing.T) {
	api := &mockCourseAPI{course: sampleCourse(), enrolled: map[string]bool{"7": true}}
	session := authenticatedSession()
	service, _ := setupLectureService(t, api, session)

	_, err := service.Open(context.Background(), "7")
	require.NoError(t, err)

	session.state = models.SessionState{
		IsAuthenticated: true,
		CurrentUser:     &models.User{DisplayName: "Bob", Email: "bob@x.com", Role: models.RoleStudent},
	}

	_, err = service.Page("7")
	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.NotErrorIs(t, err, ErrLoginRequired)
}

func TestLectureService_Page_TrimsCourseID(t *testing.T) {
	api := &mockCourseAPI{course: sampleCourse(), enrolled: map[string]bool{"7": true}}
	service, _ := setupLectureService(t, api, authenticatedSession())

	page, err := service.Open(context.Background(), " 7 ")
	require.NoError(t, err)
	assert.Equal(t, "7", page.CourseID)

	for _, id := range []string{"7", " 7", "7 "} {
		found, err := service.Page(id)
		require.NoError(t, err, id)
		assert.Same(t, page, found)
	}

	service.Close(" 7")
	_, err = service.Page("7")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestLectureService_Open_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	api := &mockCourseAPI{course: sampleCourse(), enrolled: map[string]bool{"7": true}}
	service, _ := setupLectureService(t, api, authenticatedSession())

	page, err := service.Open(ctx, "7")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, page)
	_, err = service.Page("7")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestLectureService_RedirectDelay(t *testing.T) {
	service, _ := setupLectureService(t, &mockCourseAPI{}, authenticatedSession())

	assert.Equal(t, 2*time.Second, service.RedirectDelay())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{5, "0:05"},
		{59, "0:59"},
		{60, "1:00"},
		{65, "1:05"},
		{754, "12:34"},
		{3600, "60:00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.seconds))
		})
	}
}
