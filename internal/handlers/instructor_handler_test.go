package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/learnsphere/client/internal/backend"
	"github.com/learnsphere/client/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type formFile struct {
	field, name, content string
}

func multipartForm(t *testing.T, fields [][2]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, field := range fields {
		require.NoError(t, writer.WriteField(field[0], field[1]))
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.field, file.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(file.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestInstructorHandler_RequiresTeacher(t *testing.T) {
	tests := []struct {
		name           string
		session        models.SessionState
		expectedStatus int
	}{
		{name: "anonymous", expectedStatus: http.StatusUnauthorized},
		{name: "student", session: studentState(), expectedStatus: http.StatusForbidden},
		{name: "teacher", session: teacherState(), expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockInstructorAPI{ids: []int64{3, 4}}
			h := NewInstructorHandler(api, &mockSessionReader{state: tt.session}, testUploadLimits, zap.NewNop())

			rec := serveJSON(t, h, http.MethodGet, "/instructor/course-ids", "")

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.JSONEq(t, "[3,4]", rec.Body.String())
			}
		})
	}
}

func TestInstructorHandler_CreateCourse(t *testing.T) {
	api := &mockInstructorAPI{}
	h := NewInstructorHandler(api, &mockSessionReader{state: teacherState()}, testUploadLimits, zap.NewNop())
	body, contentType := multipartForm(t,
		[][2]string{{"courseName", "Go"}, {"title", "Go Basics"}, {"difficultyLevel", "beginner"}, {"price", "19.99"}},
		formFile{field: "thumbnail", name: "thumb.png", content: "png-bytes"},
	)

	rec := serve(t, h, http.MethodPost, "/instructor/courses", body, contentType)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"courseId":42}`, rec.Body.String())
	assert.Equal(t, models.CreateCourseRequest{
		CourseName:      "Go",
		Title:           "Go Basics",
		DifficultyLevel: models.DifficultyBeginner,
		Price:           19.99,
	}, api.created)
	assert.Equal(t, "thumb.png", api.thumbnailName)
	assert.Equal(t, "png-bytes", api.thumbnail)
}

func TestInstructorHandler_CreateCourse_Validation(t *testing.T) {
	tests := []struct {
		name   string
		fields [][2]string
	}{
		{name: "missing title", fields: [][2]string{{"courseName", "Go"}, {"difficultyLevel", "BEGINNER"}}},
		{name: "bad difficulty", fields: [][2]string{{"courseName", "Go"}, {"title", "Go"}, {"difficultyLevel", "EXPERT"}}},
		{name: "negative price", fields: [][2]string{{"courseName", "Go"}, {"title", "Go"}, {"difficultyLevel", "BEGINNER"}, {"price", "-1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockInstructorAPI{}
			h := NewInstructorHandler(api, &mockSessionReader{state: teacherState()}, testUploadLimits, zap.NewNop())
			body, contentType := multipartForm(t, tt.fields)

			rec := serve(t, h, http.MethodPost, "/instructor/courses", body, contentType)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, api.created.CourseName)
		})
	}
}

func TestInstructorHandler_CreateCourse_ThumbnailLimit(t *testing.T) {
	api := &mockInstructorAPI{}
	limits := testUploadLimits
	limits.MaxThumbnailSize = 64
	h := NewInstructorHandler(api, &mockSessionReader{state: teacherState()}, limits, zap.NewNop())
	body, contentType := multipartForm(t,
		[][2]string{{"courseName", "Go"}, {"title", "Go Basics"}, {"difficultyLevel", "BEGINNER"}},
		formFile{field: "thumbnail", name: "thumb.png", content: strings.Repeat("x", 256)},
	)

	rec := serve(t, h, http.MethodPost, "/instructor/courses", body, contentType)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"request body too large (limit 64B)"}`, rec.Body.String())
	assert.Empty(t, api.created.CourseName)
}

func TestInstructorHandler_UploadVideo(t *testing.T) {
	api := &mockInstructorAPI{}
	h := NewInstructorHandler(api, &mockSessionReader{state: teacherState()}, testUploadLimits, zap.NewNop())
	body, contentType := multipartForm(t,
		[][2]string{{"title", " Lesson 1 "}, {"description", "First steps"}},
		formFile{field: "video", name: "lesson1.mp4", content: "video-bytes"},
	)

	rec := serve(t, h, http.MethodPost, "/instructor/courses/12/videos", body, contentType)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, models.UploadVideoRequest{
		CourseID:    12,
		Title:       "Lesson 1",
		Description: "First steps",
		FileName:    "lesson1.mp4",
	}, api.upload)
	assert.Equal(t, "video-bytes", api.video)
}

func TestInstructorHandler_UploadVideo_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		fields [][2]string
		files  []formFile
	}{
		{
			name:   "missing video",
			target: "/instructor/courses/12/videos",
			fields: [][2]string{{"title", "Lesson"}},
		},
		{
			name:   "title after video",
			target: "/instructor/courses/12/videos",
			files:  []formFile{{field: "video", name: "a.mp4", content: "x"}},
		},
		{
			name:   "invalid course id",
			target: "/instructor/courses/abc/videos",
			fields: [][2]string{{"title", "Lesson"}},
			files:  []formFile{{field: "video", name: "a.mp4", content: "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockInstructorAPI{}
			h := NewInstructorHandler(api, &mockSessionReader{state: teacherState()}, testUploadLimits, zap.NewNop())
			body, contentType := multipartForm(t, tt.fields, tt.files...)

			rec := serve(t, h, http.MethodPost, tt.target, body, contentType)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, api.video)
		})
	}
}

func TestInstructorHandler_UpdateAndDelete(t *testing.T) {
	api := &mockInstructorAPI{}
	h := NewInstructorHandler(api, &mockSessionReader{state: teacherState()}, testUploadLimits, zap.NewNop())

	rec := serveJSON(t, h, http.MethodPut, "/instructor/courses/3", `{"title":"New title","price":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "New title", api.updatedCourse.Title)
	require.NotNil(t, api.updatedCourse.Price)
	assert.Zero(t, *api.updatedCourse.Price)

	rec = serveJSON(t, h, http.MethodPut, "/instructor/courses/3", `{"difficultyLevel":"EXPERT"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serveJSON(t, h, http.MethodPut, "/instructor/videos/9", `{"title":"Renamed","description":"d"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.UpdateVideoRequest{Title: "Renamed", Description: "d"}, api.updatedVideo)

	rec = serveJSON(t, h, http.MethodPut, "/instructor/videos/9", `{"title":" "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNoContent, serveJSON(t, h, http.MethodDelete, "/instructor/videos/9", "").Code)
	assert.Equal(t, http.StatusNoContent, serveJSON(t, h, http.MethodDelete, "/instructor/courses/3", "").Code)
	assert.Equal(t, []string{"video:9", "course:3"}, api.deleted)
}

func TestInstructorHandler_BackendForbidden(t *testing.T) {
	api := &mockInstructorAPI{err: &backend.APIError{StatusCode: http.StatusForbidden, Message: "Not your course"}}
	h := NewInstructorHandler(api, &mockSessionReader{state: teacherState()}, testUploadLimits, zap.NewNop())

	rec := serveJSON(t, h, http.MethodDelete, "/instructor/courses/3", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not your course", decodeBody(t, rec)["error"])
}
