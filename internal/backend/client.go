// Package backend is the HTTP client of the remote LearnSphere backend.
// Every call carries the cookie jar credentials, the caller's request ID and the outbound rate limit.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/learnsphere/client/internal/middlewares"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxResponseSize caps how much of a backend response body is read
const maxResponseSize = 10 * 1024 * 1024

// RequestRecorder records finished backend requests.
//
// Method RecordBackendRequest takes the endpoint name, the status code (0 when no response arrived)
// and the request duration.
type RequestRecorder interface {
	RecordBackendRequest(endpoint string, statusCode int, duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RecordBackendRequest(string, int, time.Duration) {}

// Options holds the transport settings of the client
type Options struct {
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

// APIError is returned when the backend answers with a non-2xx status
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the backend status code carried by err, or 0 if err is not an *APIError
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a backend 401 answer
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// Client calls the LearnSphere backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	recorder   RequestRecorder
	logger     *zap.Logger
}

// NewClient creates a new backend client with its own cookie jar.
// recorder may be nil.
func NewClient(baseURL string, opts Options, recorder RequestRecorder, logger *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	if recorder == nil {
		recorder = noopRecorder{}
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: opts.Timeout,
		},
		limiter:  rate.NewLimiter(limit, burst),
		recorder: recorder,
		logger:   logger,
	}, nil
}

// BaseURL returns the backend base URL without trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one backend call
type request struct {
	endpoint    string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

// jsonRequest builds a request with a JSON encoded body
func jsonRequest(endpoint, method, path string, payload any) (request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}
	return request{
		endpoint:    endpoint,
		method:      method,
		path:        path,
		body:        bytes.NewReader(data),
		contentType: "application/json",
	}, nil
}

// do performs req and decodes a 2xx JSON body into out (out may be nil).
// A non-2xx answer is returned as *APIError.
func (c *Client) do(ctx context.Context, req request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for backend rate limit: %w", err)
	}

	reqURL := c.baseURL + req.path
	if len(req.query) > 0 {
		reqURL += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, reqURL, req.body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", req.endpoint, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if requestID := middlewares.GetRequestID(ctx); requestID != "" {
		httpReq.Header.Set(middlewares.RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.recorder.RecordBackendRequest(req.endpoint, 0, time.Since(start))
		return fmt.Errorf("failed to call %s: %w", req.endpoint, err)
	}
	defer resp.Body.Close()
	c.recorder.RecordBackendRequest(req.endpoint, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", req.endpoint, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Debug("backend returned error status",
			zap.String("endpoint", req.endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", middlewares.GetRequestID(ctx)),
		)
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.endpoint, err)
	}
	return nil
}

// errorMessage extracts a readable message from an error body.
// The backend answers with {"message": ...}, {"error": ...} or plain text.
func errorMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	const maxLen = 200
	message := string(body)
	if len(message) > maxLen {
		message = message[:maxLen]
	}
	return message
}
