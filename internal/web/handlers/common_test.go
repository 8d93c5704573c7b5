package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondJSON(recorder, http.StatusCreated, map[string]any{"count": 42})

	if recorder.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type 'application/json', got '%s'", ct)
	}

	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if result["count"] != float64(42) {
		t.Errorf("expected count 42, got %v", result["count"])
	}
}

func TestRespondJSON_NilDataWritesNoBody(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondJSON(recorder, http.StatusOK, nil)

	if recorder.Body.Len() != 0 {
		t.Errorf("expected empty body for nil data, got '%s'", recorder.Body.String())
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
	}{
		{"bad request", http.StatusBadRequest, "student_id and name are required"},
		{"bad gateway", http.StatusBadGateway, "face detector unavailable"},
		{"empty message", http.StatusInternalServerError, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondError(recorder, tc.status, tc.message)

			if recorder.Code != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, recorder.Code)
			}

			var result map[string]string
			if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if result["error"] != tc.message {
				t.Errorf("expected error '%s', got '%s'", tc.message, result["error"])
			}
		})
	}
}

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean string", "Jan Novák", "Jan Novák"},
		{"newline injection", "s001\nFAKE LOG LINE", "s001FAKE LOG LINE"},
		{"carriage return", "s001\r\nfake", "s001fake"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeForLog(tc.input); got != tc.expected {
				t.Errorf("sanitizeForLog(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestDecodeImagePayload(t *testing.T) {
	payload := testImagePayload(t)

	data, err := decodeImagePayload(payload, 256)
	if err != nil {
		t.Fatalf("decodeImagePayload failed on a valid image: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected normalized image bytes")
	}

	if _, err := decodeImagePayload("definitely not base64 image data", 256); err == nil {
		t.Error("expected error for garbage payload")
	}
}

func TestHealthCheck(t *testing.T) {
	for _, method := range []string{"GET", "POST", "HEAD"} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/health", nil)
			recorder := httptest.NewRecorder()

			HealthCheck(recorder, req)

			if recorder.Code != http.StatusOK {
				t.Errorf("expected status %d, got %d", http.StatusOK, recorder.Code)
			}

			var result map[string]string
			if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if result["status"] != "ok" {
				t.Errorf("expected status 'ok', got '%s'", result["status"])
			}
		})
	}
}
