package backend

import (
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

// UploadVideo streams a video file into a course.
// The body is produced through a pipe so large files are never held in memory.
func (c *Client) UploadVideo(ctx context.Context, upload models.UploadVideoRequest, file io.Reader) (json.RawMessage, error) {
	if file == nil {
		return nil, fmt.Errorf("video file is required")
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := writeVideoForm(writer, upload, file)
		if err == nil {
			err = writer.Close()
		}
		pw.CloseWithError(err)
	}()

	var uploaded json.RawMessage
	err := c.do(ctx, request{
		endpoint:    "upload_video",
		method:      http.MethodPost,
		path:        "/Instructor/addVideo",
		body:        pr,
		contentType: writer.FormDataContentType(),
	}, &uploaded)
	// Unblock the writer goroutine if the request ended before consuming the body
	pr.Close()
	if err != nil {
		return nil, err
	}
	return uploaded, nil
}

func writeVideoForm(writer *multipart.Writer, upload models.UploadVideoRequest, file io.Reader) error {
	fields := [][2]string{
		{"courseId", strconv.FormatInt(upload.CourseID, 10)},
		{"title", upload.Title},
		{"description", upload.Description},
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", field[0], err)
		}
	}

	part, err := writer.CreateFormFile("file", upload.FileName)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy video file: %w", err)
	}
	return nil
}

// UpdateVideoDetails changes the title and description of a video
func (c *Client) UpdateVideoDetails(ctx context.Context, videoID string, update models.UpdateVideoRequest) error {
	body, contentType, err := multipartBody(map[string]string{
		"title":       update.Title,
		"description": update.Description,
	}, "", "", nil)
	if err != nil {
		return err
	}

	return c.do(ctx, request{
		endpoint:    "update_video",
		method:      http.MethodPut,
		path:        "/Instructor/UpdateVideoDetails/" + url.PathEscape(videoID),
		body:        body,
		contentType: contentType,
	}, nil)
}

// DeleteVideo removes a video from its course
func (c *Client) DeleteVideo(ctx context.Context, videoID string) error {
	return c.do(ctx, request{
		endpoint: "delete_video",
		method:   http.MethodDelete,
		path:     "/Instructor/DeleteVideoFromCourses/" + url.PathEscape(videoID),
	}, nil)
}
