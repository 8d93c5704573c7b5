package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mstanek/rollcall/internal/config"
	"github.com/mstanek/rollcall/internal/detect"
	"github.com/mstanek/rollcall/internal/gallery"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Matching: config.MatchingConfig{
			Model:        "dlib_resnet",
			Threshold:    0.6,
			MaxImageSize: 256,
		},
	}
}

// stubDetector queues canned detector responses. Each POST /faces pops the
// next detection; when the queue runs dry it reports zero faces.
type stubDetector struct {
	mu    sync.Mutex
	queue []detect.Detection
	calls int
}

func (s *stubDetector) next() detect.Detection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.queue) == 0 {
		return detect.Detection{Faces: []detect.Face{}}
	}
	det := s.queue[0]
	s.queue = s.queue[1:]
	return det
}

func (s *stubDetector) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// newStubDetector starts a fake sidecar and returns a client wired to it.
func newStubDetector(t *testing.T, detections ...detect.Detection) (*detect.Client, *stubDetector) {
	t.Helper()

	stub := &stubDetector{queue: detections}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/faces", func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("file"); err != nil {
			http.Error(w, "missing file part", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stub.next())
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return detect.NewClient(server.URL, "dlib_resnet", 5*time.Second), stub
}

// newBrokenDetector returns a client whose sidecar always fails.
func newBrokenDetector(t *testing.T) *detect.Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	return detect.NewClient(server.URL, "dlib_resnet", 5*time.Second)
}

// detection builds a sidecar response with one face per embedding.
func detection(embeddings ...gallery.Embedding) detect.Detection {
	faces := make([]detect.Face, len(embeddings))
	for i, emb := range embeddings {
		faces[i] = detect.Face{
			Index:     i,
			Dim:       len(emb),
			Embedding: emb,
			BBox:      []float64{10, 10, 50, 50},
			Score:     0.99,
		}
	}
	return detect.Detection{
		FacesCount: len(faces),
		Faces:      faces,
		Model:      "dlib_resnet",
	}
}

// testImagePayload returns a small PNG as a base64 string.
func testImagePayload(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// postJSON builds a JSON POST request
func postJSON(t *testing.T, path string, body any) *http.Request {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
