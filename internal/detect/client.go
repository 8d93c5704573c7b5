// Package detect talks to the face detection sidecar: an HTTP service that
// takes an image and returns every face found in it together with a
// fixed-length embedding per face. The sidecar owns the models; this package
// owns nothing but the wire format.
package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/mstanek/rollcall/internal/gallery"
)

const defaultBaseURL = "http://localhost:8000"

// Face is a single detected face with its embedding.
type Face struct {
	Index     int               `json:"face_index"`
	Dim       int               `json:"dim"`
	Embedding gallery.Embedding `json:"embedding"`
	BBox      []float64         `json:"bbox"` // [x1, y1, x2, y2]
	Score     float64           `json:"det_score"`
}

// Detection is the sidecar response for one image.
type Detection struct {
	FacesCount int    `json:"faces_count"`
	Faces      []Face `json:"faces"`
	Model      string `json:"model"`
}

// Client calls the face detection sidecar.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates a detector client. An empty baseURL falls back to the
// local sidecar default.
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Model returns the model name the client was configured with.
func (c *Client) Model() string {
	return c.model
}

// DetectFaces posts an image to the sidecar and returns all detected faces
// with their embeddings. Zero faces is a normal result, not an error.
func (c *Client) DetectFaces(ctx context.Context, imageData []byte) (*Detection, error) {
	body, err := c.postMultipartImage(ctx, "/faces", imageData)
	if err != nil {
		return nil, err
	}

	var det Detection
	if err := json.Unmarshal(body, &det); err != nil {
		return nil, fmt.Errorf("failed to parse detector response: %w", err)
	}
	return &det, nil
}

// Ping checks that the sidecar is up and has its models loaded.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("detector unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector not ready (status %d)", resp.StatusCode)
	}
	return nil
}

// postMultipartImage constructs a multipart form with the image data and
// posts it to the given endpoint. The part carries an explicit Content-Type
// header based on magic byte detection; the configured model name rides
// along as a form field so the sidecar picks the matching pipeline.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if c.model != "" {
		if err := writer.WriteField("model", c.model); err != nil {
			return nil, fmt.Errorf("failed to write model field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// detectMIMEType sniffs the image MIME type from magic bytes.
func detectMIMEType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "image/png"
	case bytes.HasPrefix(data, []byte("GIF8")):
		return "image/gif"
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
