package models

// Difficulty represents the difficulty level of a course
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "BEGINNER"
	DifficultyIntermediate Difficulty = "INTERMEDIATE"
	DifficultyAdvanced     Difficulty = "ADVANCED"
)

// Video is a course video as returned by the backend
type Video struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	HLSURL      string  `json:"hlsUrl"`
}

// Course is a full course as returned by the backend course endpoint
type Course struct {
	CourseID     int64      `json:"courseId"`
	CourseName   string     `json:"courseName"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Level        Difficulty `json:"level,omitempty"`
	Price        float64    `json:"price"`
	TeacherName  string     `json:"teacherName,omitempty"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	CreatedAt    string     `json:"createdAt,omitempty"`
	Videos       []Video    `json:"videos"`
}

// CourseListItem represents a course card in list responses
type CourseListItem struct {
	CourseID        int64      `json:"courseId"`
	Title           string     `json:"title"`
	ThumbnailURL    string     `json:"thumbnailUrl,omitempty"`
	LessonCount     int        `json:"lessonCount"`
	Duration        string     `json:"duration,omitempty"`
	Level           Difficulty `json:"level,omitempty"`
	DifficultyLevel Difficulty `json:"difficultyLevel,omitempty"`
	Price           float64    `json:"price"`
	Category        string     `json:"category,omitempty"`
	IsEnrolled      bool       `json:"isEnrolled"`
}

// CoursePage is a page of courses.
// The backend answers either with a bare array or with a paginated object; both decode here.
type CoursePage struct {
	Content       []CourseListItem `json:"content"`
	TotalPages    int              `json:"totalPages"`
	TotalElements int              `json:"totalElements"`
	Number        int              `json:"number"`
	Size          int              `json:"size"`
}

// CourseFilter holds filtered course query parameters
type CourseFilter struct {
	Page       int
	Size       int
	Category   string
	Difficulty string
	Search     string
}

// CreateCourseRequest represents a request to create a course
type CreateCourseRequest struct {
	CourseName      string     `json:"courseName"`
	Title           string     `json:"title"`
	DifficultyLevel Difficulty `json:"difficultyLevel"`
	Price           float64    `json:"price"`
}

// UpdateCourseRequest represents a partial course update
type UpdateCourseRequest struct {
	CourseName      string     `json:"courseName,omitempty"`
	Title           string     `json:"title,omitempty"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category,omitempty"`
	DifficultyLevel Difficulty `json:"difficultyLevel,omitempty"`
	Price           *float64   `json:"price,omitempty"`
}

// UploadVideoRequest represents a video upload for a course
type UploadVideoRequest struct {
	CourseID    int64
	Title       string
	Description string
	FileName    string
}

// UpdateVideoRequest represents a change of video details
type UpdateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
