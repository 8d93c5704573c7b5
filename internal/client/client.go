// Package client is a thin JSON client for the rollcall HTTP API. The CLI
// commands use it so every operation goes through the same wire contracts
// the handlers serve.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mstanek/rollcall/internal/attendance"
	"github.com/mstanek/rollcall/internal/web/handlers"
)

// DefaultBaseURL is where a locally started server listens.
const DefaultBaseURL = "http://localhost:8090"

// Client calls a running rollcall server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates an API client. An empty baseURL falls back to the local
// server default. Enrollment requests carry whole image batches, so the
// timeout is generous.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// Register enrolls a student from base64 encoded images.
func (c *Client) Register(ctx context.Context, req handlers.RegisterRequest) (*handlers.RegisterResponse, error) {
	return doPost[handlers.RegisterResponse](ctx, c, "/api/v1/students", req, http.StatusCreated)
}

// Students lists enrolled students, optionally filtered by name.
func (c *Client) Students(ctx context.Context, query string) (*handlers.StudentListResponse, error) {
	path := "/api/v1/students"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	return doGet[handlers.StudentListResponse](ctx, c, path)
}

// Recognize matches all faces in a base64 encoded image against the gallery.
func (c *Client) Recognize(ctx context.Context, req handlers.RecognizeRequest) (*handlers.RecognizeResponse, error) {
	return doPost[handlers.RecognizeResponse](ctx, c, "/api/v1/recognize", req, http.StatusOK)
}

// SaveAttendance stores an attendance record for a course. A nil student
// list is sent as an empty class, not as a missing key.
func (c *Client) SaveAttendance(ctx context.Context, course string, students []string) (*attendance.Record, error) {
	if students == nil {
		students = []string{}
	}
	req := handlers.SaveAttendanceRequest{Course: course, Students: &students}
	return doPost[attendance.Record](ctx, c, "/api/v1/attendance", req, http.StatusCreated)
}

// Attendance lists attendance records, optionally filtered by course.
func (c *Client) Attendance(ctx context.Context, course string) (*handlers.AttendanceListResponse, error) {
	path := "/api/v1/attendance"
	if course != "" {
		path += "?course=" + url.QueryEscape(course)
	}
	return doGet[handlers.AttendanceListResponse](ctx, c, path)
}

// Stats returns the server's operational snapshot.
func (c *Client) Stats(ctx context.Context) (*handlers.StatsResponse, error) {
	return doGet[handlers.StatsResponse](ctx, c, "/api/v1/stats")
}

// doGet performs a GET request and unmarshals the JSON response.
func doGet[T any](ctx context.Context, c *Client, path string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	return decodeResponse[T](c, req, http.StatusOK)
}

// doPost performs a POST request with a JSON body and unmarshals the JSON
// response, requiring the given status.
func doPost[T any](ctx context.Context, c *Client, path string, body any, expectStatus int) (*T, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return decodeResponse[T](c, req, expectStatus)
}

func decodeResponse[T any](c *Client, req *http.Request, expectStatus int) (*T, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode != expectStatus {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, apiError(body))
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

// apiError extracts the message from an {"error": ...} body, falling back to
// the raw body.
func apiError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
