package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/learnsphere/client/internal/models"
)

// GetCourse returns a course with its videos
func (c *Client) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	course := &models.Course{}
	err := c.do(ctx, request{
		endpoint: "get_course",
		method:   http.MethodGet,
		path:     "/Public/course/" + url.PathEscape(courseID),
	}, course)
	if err != nil {
		return nil, err
	}
	return course, nil
}

// FilteredCourses returns a page of courses matching filter.
// The backend answers with either a bare array or a paginated object.
func (c *Client) FilteredCourses(ctx context.Context, filter models.CourseFilter) (*models.CoursePage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(filter.Page))
	size := filter.Size
	if size <= 0 {
		size = 12
	}
	query.Set("size", strconv.Itoa(size))
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Difficulty != "" {
		query.Set("difficulty", filter.Difficulty)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}

	var raw json.RawMessage
	err := c.do(ctx, request{
		endpoint: "filtered_courses",
		method:   http.MethodGet,
		path:     "/Public/FilteredCourses",
		query:    query,
	}, &raw)
	if err != nil {
		return nil, err
	}

	return decodeCoursePage(raw)
}

func decodeCoursePage(raw json.RawMessage) (*models.CoursePage, error) {
	page := &models.CoursePage{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &page.Content); err != nil {
			return nil, fmt.Errorf("failed to decode course list: %w", err)
		}
		page.Size = len(page.Content)
		page.TotalElements = len(page.Content)
		return page, nil
	}

	if err := json.Unmarshal(trimmed, page); err != nil {
		return nil, fmt.Errorf("failed to decode course page: %w", err)
	}
	if page.Content == nil {
		page.Content = []models.CourseListItem{}
	}
	return page, nil
}

// AllCourses returns every published course
func (c *Client) AllCourses(ctx context.Context) ([]models.CourseListItem, error) {
	var courses []models.CourseListItem
	err := c.do(ctx, request{
		endpoint: "all_courses",
		method:   http.MethodGet,
		path:     "/Public/all/Course",
	}, &courses)
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// Enroll enrolls the current student in a course
func (c *Client) Enroll(ctx context.Context, courseID string) error {
	return c.do(ctx, request{
		endpoint:    "enroll",
		method:      http.MethodPost,
		path:        "/Student/Enroll-In/" + url.PathEscape(courseID),
		body:        bytes.NewReader([]byte("{}")),
		contentType: "application/json",
	}, nil)
}

// IsEnrolled reports whether the current session is enrolled in a course
func (c *Client) IsEnrolled(ctx context.Context, courseID string) (bool, error) {
	var enrolled bool
	err := c.do(ctx, request{
		endpoint: "is_enrolled",
		method:   http.MethodGet,
		path:     "/Public/is-enrolled/" + url.PathEscape(courseID),
	}, &enrolled)
	if err != nil {
		return false, err
	}
	return enrolled, nil
}

// IsCourseOwner reports whether username (the user's email) instructs a course
func (c *Client) IsCourseOwner(ctx context.Context, courseID, username string) (bool, error) {
	var owner bool
	err := c.do(ctx, request{
		endpoint: "course_owner",
		method:   http.MethodGet,
		path:     "/Public/AuthCourseInstructor",
		query:    url.Values{"id": {courseID}, "username": {username}},
	}, &owner)
	if err != nil {
		return false, err
	}
	return owner, nil
}

// EnrolledCourseIDs returns the IDs of the courses the current session is enrolled in
func (c *Client) EnrolledCourseIDs(ctx context.Context) ([]int64, error) {
	return c.courseIDs(ctx, "enrolled_ids", "/Public/enrolled-ids")
}

// OwnedCourseIDs returns the IDs of the courses the current session instructs
func (c *Client) OwnedCourseIDs(ctx context.Context) ([]int64, error) {
	return c.courseIDs(ctx, "owned_ids", "/Public/owned-ids")
}

func (c *Client) courseIDs(ctx context.Context, endpoint, path string) ([]int64, error) {
	ids := []int64{}
	err := c.do(ctx, request{
		endpoint: endpoint,
		method:   http.MethodGet,
		path:     path,
	}, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// StudentCourses returns the courses of the current student
func (c *Client) StudentCourses(ctx context.Context) ([]models.CourseListItem, error) {
	return c.courseList(ctx, "student_courses", "/Student/My-Courses")
}

// InstructorCourses returns the courses owned by the current instructor
func (c *Client) InstructorCourses(ctx context.Context) ([]models.CourseListItem, error) {
	return c.courseList(ctx, "instructor_courses", "/Instructor/My-Courses")
}

func (c *Client) courseList(ctx context.Context, endpoint, path string) ([]models.CourseListItem, error) {
	courses := []models.CourseListItem{}
	err := c.do(ctx, request{
		endpoint: endpoint,
		method:   http.MethodGet,
		path:     path,
	}, &courses)
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// CreateCourse creates a course with its thumbnail.
// thumbnail may be nil when no image is uploaded.
func (c *Client) CreateCourse(ctx context.Context, course models.CreateCourseRequest, thumbnailName string, thumbnail io.Reader) (json.RawMessage, error) {
	fields := map[string]string{
		"courseName":      course.CourseName,
		"title":           course.Title,
		"difficultyLevel": string(course.DifficultyLevel),
		"price":           strconv.FormatFloat(course.Price, 'f', -1, 64),
	}

	body, contentType, err := multipartBody(fields, "file", thumbnailName, thumbnail)
	if err != nil {
		return nil, err
	}

	var created json.RawMessage
	err = c.do(ctx, request{
		endpoint:    "create_course",
		method:      http.MethodPost,
		path:        "/Instructor/New-Course",
		body:        body,
		contentType: contentType,
	}, &created)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateCourse updates the non-empty fields of a course
func (c *Client) UpdateCourse(ctx context.Context, courseID string, update models.UpdateCourseRequest) error {
	fields := map[string]string{}
	if update.CourseName != "" {
		fields["courseName"] = update.CourseName
	}
	if update.Title != "" {
		fields["title"] = update.Title
	}
	if update.Description != "" {
		fields["description"] = update.Description
	}
	if update.Category != "" {
		fields["category"] = update.Category
	}
	if update.DifficultyLevel != "" {
		fields["difficultyLevel"] = string(update.DifficultyLevel)
	}
	if update.Price != nil {
		fields["price"] = strconv.FormatFloat(*update.Price, 'f', -1, 64)
	}

	body, contentType, err := multipartBody(fields, "", "", nil)
	if err != nil {
		return err
	}

	return c.do(ctx, request{
		endpoint:    "update_course",
		method:      http.MethodPut,
		path:        "/Courses/updateCourse/" + url.PathEscape(courseID),
		body:        body,
		contentType: contentType,
	}, nil)
}

// DeleteCourse deletes a course
func (c *Client) DeleteCourse(ctx context.Context, courseID string) error {
	return c.do(ctx, request{
		endpoint: "delete_course",
		method:   http.MethodDelete,
		path:     "/Courses/delete/" + url.PathEscape(courseID),
	}, nil)
}

// multipartBody builds a multipart form with fields and an optional file part
func multipartBody(fields map[string]string, fileField, fileName string, file io.Reader) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	if file != nil {
		part, err := writer.CreateFormFile(fileField, fileName)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, "", fmt.Errorf("failed to copy form file: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return buf, writer.FormDataContentType(), nil
}
