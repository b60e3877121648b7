package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/learnsphere/client/internal/models"
	"github.com/learnsphere/client/internal/sequencer"
	"go.uber.org/zap"
)

// Lecture page defaults
const (
	untitledCourse      = "Untitled Course"
	untitledVideo       = "Untitled Video"
	noDescription       = "No description available"
	relatedCoursesLimit = 4
)

// Lecture page errors
var (
	ErrLoginRequired   = errors.New("login required")
	ErrMissingCourseID = errors.New("no course id provided")
	ErrAccessDenied    = errors.New("not enrolled in and not owner of the course")
	ErrPageNotFound    = errors.New("lecture page not open")
)

// CourseAPI is the interface that wraps the backend course calls used by the lecture page.
type CourseAPI interface {
	// Method GetCourse retrieves a course with its videos.
	//
	// If the course does not exist or some error occurs, the error will be returned together with "nil" value.
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	// Method FilteredCourses retrieves one page of courses matching filter.
	//
	// Please reference models.CourseFilter for the supported filters.
	FilteredCourses(ctx context.Context, filter models.CourseFilter) (*models.CoursePage, error)
	// Method IsEnrolled reports whether the current session is enrolled in the course.
	IsEnrolled(ctx context.Context, courseID string) (bool, error)
	// Method IsCourseOwner reports whether username instructs the course.
	IsCourseOwner(ctx context.Context, courseID, username string) (bool, error)
}

// SessionProvider is the read side of the session manager used by pages
type SessionProvider interface {
	State() models.SessionState
	FetchSession(ctx context.Context) bool
}

// Sanitizer strips unsafe markup from backend supplied text
type Sanitizer interface {
	Sanitize(text string) string
}

// LecturePage is one open player page: the course header, its sequencer and the related courses
type LecturePage struct {
	CourseID       string
	Course         models.LectureCourse
	Sequencer      *sequencer.Sequencer
	RelatedCourses []models.CourseListItem

	// viewer identifies the user whose access was checked when the page was opened
	viewer string
}

// Response returns the JSON view of the page
func (p *LecturePage) Response() models.LecturePageResponse {
	return models.LecturePageResponse{
		Course:         p.Course,
		Player:         p.Sequencer.Snapshot(),
		RelatedCourses: p.RelatedCourses,
	}
}

// LectureService opens lecture pages after checking access, and owns the open pages
type LectureService struct {
	api       CourseAPI
	session   SessionProvider
	prefs     sequencer.AutoplayPreference
	sanitizer Sanitizer
	logger    *zap.Logger
	delay     time.Duration

	mu    sync.RWMutex
	pages map[string]*LecturePage
}

// NewLectureService creates a new lecture service.
// redirectDelay is how long the UI shows an access error before following the redirect.
func NewLectureService(api CourseAPI, session SessionProvider, prefs sequencer.AutoplayPreference, sanitizer Sanitizer, logger *zap.Logger, redirectDelay time.Duration) *LectureService {
	return &LectureService{
		api:       api,
		session:   session,
		prefs:     prefs,
		sanitizer: sanitizer,
		logger:    logger,
		delay:     redirectDelay,
		pages:     make(map[string]*LecturePage),
	}
}

// RedirectDelay returns how long an access error is shown before redirecting
func (s *LectureService) RedirectDelay() time.Duration {
	return s.delay
}

// Open checks access to a course, loads its chapters and registers a fresh page for it.
// Re-opening a course replaces the previous page so only one sequencer exists per course.
func (s *LectureService) Open(ctx context.Context, courseID string) (*LecturePage, error) {
	state := s.session.State()
	if !state.IsAuthenticated {
		if !s.session.FetchSession(ctx) {
			return nil, ErrLoginRequired
		}
		state = s.session.State()
	}

	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, ErrMissingCourseID
	}

	if !s.hasAccess(ctx, courseID, state.CurrentUser) {
		return nil, ErrAccessDenied
	}

	course, err := s.api.GetCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("failed to load course", zap.String("course_id", courseID), zap.Error(err))
		return nil, fmt.Errorf("failed to load course data: %w", err)
	}

	header := s.courseHeader(courseID, course)
	page := &LecturePage{
		CourseID:       courseID,
		Course:         header,
		Sequencer:      sequencer.New(s.chapters(course.Videos), s.prefs),
		RelatedCourses: s.relatedCourses(ctx, courseID, header.Category, state.IsAuthenticated),
		viewer:         viewerKey(state.CurrentUser),
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pages[courseID] = page
	s.mu.Unlock()

	return page, nil
}

// Page returns the open page of a course.
// A page only lives as long as the session that opened it: once the session is logged out every
// open page is discarded and the error wraps both ErrLoginRequired and ErrPageNotFound.
// A page opened by another user is discarded as well.
func (s *LectureService) Page(courseID string) (*LecturePage, error) {
	courseID = strings.TrimSpace(courseID)
	state := s.session.State()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !state.IsAuthenticated {
		if len(s.pages) > 0 {
			s.logger.Info("session ended, closing lecture pages", zap.Int("pages", len(s.pages)))
			clear(s.pages)
		}
		return nil, fmt.Errorf("%w: %w", ErrLoginRequired, ErrPageNotFound)
	}

	page, ok := s.pages[courseID]
	if !ok {
		return nil, ErrPageNotFound
	}
	if page.viewer != viewerKey(state.CurrentUser) {
		s.logger.Info("session user changed, closing lecture page", zap.String("course_id", courseID))
		delete(s.pages, courseID)
		return nil, ErrPageNotFound
	}
	return page, nil
}

// Close discards the page of a course. Closing a page that is not open is not an error.
func (s *LectureService) Close(courseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pages, strings.TrimSpace(courseID))
}

func viewerKey(user *models.User) string {
	if user == nil {
		return ""
	}
	if user.Email != "" {
		return strings.ToLower(user.Email)
	}
	return user.DisplayName
}

// hasAccess checks enrollment and ownership in parallel.
// A failed check counts as no access.
func (s *LectureService) hasAccess(ctx context.Context, courseID string, user *models.User) bool {
	results := make(chan bool, 2)

	go func() {
		enrolled, err := s.api.IsEnrolled(ctx, courseID)
		if err != nil {
			s.logger.Warn("failed to check enrollment", zap.String("course_id", courseID), zap.Error(err))
		}
		results <- err == nil && enrolled
	}()

	go func() {
		if user == nil || user.Email == "" {
			results <- false
			return
		}
		owner, err := s.api.IsCourseOwner(ctx, courseID, user.Email)
		if err != nil {
			s.logger.Warn("failed to check ownership", zap.String("course_id", courseID), zap.Error(err))
		}
		results <- err == nil && owner
	}()

	access := false
	for range 2 {
		if <-results {
			access = true
		}
	}
	return access
}

func (s *LectureService) courseHeader(courseID string, course *models.Course) models.LectureCourse {
	title := course.CourseName
	if title == "" {
		title = course.Title
	}
	if title == "" {
		title = untitledCourse
	}

	description := s.sanitizer.Sanitize(course.Description)
	if description == "" {
		description = noDescription
	}

	return models.LectureCourse{
		ID:          courseID,
		Title:       title,
		Description: description,
		Category:    course.Category,
	}
}

func (s *LectureService) chapters(videos []models.Video) []models.Chapter {
	chapters := make([]models.Chapter, 0, len(videos))
	for _, video := range videos {
		title := video.Title
		if title == "" {
			title = untitledVideo
		}

		seconds := 0
		if video.Duration > 0 && !math.IsInf(video.Duration, 0) {
			seconds = int(video.Duration)
		}

		chapters = append(chapters, models.Chapter{
			ID:              video.ID,
			Title:           title,
			Description:     s.sanitizer.Sanitize(video.Description),
			DurationSeconds: seconds,
			Duration:        formatDuration(seconds),
			MediaURL:        video.HLSURL,
		})
	}
	return chapters
}

// relatedCourses loads up to four courses of the same category, without the current one.
// Failures only cost the related list.
func (s *LectureService) relatedCourses(ctx context.Context, courseID, category string, authenticated bool) []models.CourseListItem {
	related := []models.CourseListItem{}
	if category == "" {
		return related
	}

	page, err := s.api.FilteredCourses(ctx, models.CourseFilter{
		Category: category,
		Page:     0,
		Size:     relatedCoursesLimit,
	})
	if err != nil {
		s.logger.Warn("failed to load related courses", zap.String("category", category), zap.Error(err))
		return related
	}

	for _, course := range page.Content {
		if strconv.FormatInt(course.CourseID, 10) == courseID {
			continue
		}
		course.IsEnrolled = false
		related = append(related, course)
	}
	if !authenticated {
		return related
	}

	var wg sync.WaitGroup
	for i := range related {
		wg.Add(1)
		go func() {
			defer wg.Done()
			enrolled, err := s.api.IsEnrolled(ctx, strconv.FormatInt(related[i].CourseID, 10))
			related[i].IsEnrolled = err == nil && enrolled
		}()
	}
	wg.Wait()

	return related
}

// formatDuration formats seconds as M:SS
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
