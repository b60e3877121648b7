package models

// Chapter is one playable video unit within a loaded course.
// Completed is tracked on the client only.
type Chapter struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationSeconds int    `json:"durationSeconds"`
	Duration        string `json:"duration"`
	MediaURL        string `json:"mediaUrl,omitempty"`
	Completed       bool   `json:"completed"`
}

// HasMedia reports whether the chapter has a playable source (it may still be processing)
func (c Chapter) HasMedia() bool {
	return c.MediaURL != ""
}

// PlayerState is the snapshot of a lecture sequencer
type PlayerState struct {
	Chapters        []Chapter `json:"chapters"`
	CurrentIndex    *int      `json:"currentIndex"`
	Autoplay        bool      `json:"autoplay"`
	Error           string    `json:"error,omitempty"`
	DescriptionOpen bool      `json:"descriptionOpen"`
}

// LectureCourse is the course header shown on the lecture page
type LectureCourse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// LecturePageResponse is what the gateway returns for an open lecture page
type LecturePageResponse struct {
	Course         LectureCourse    `json:"course"`
	Player         PlayerState      `json:"player"`
	RelatedCourses []CourseListItem `json:"relatedCourses"`
}
