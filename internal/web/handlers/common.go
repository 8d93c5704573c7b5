package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mstanek/rollcall/internal/detect"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeImagePayload turns a base64 image payload (raw or data URL) into
// normalized JPEG bytes ready for the detector.
func decodeImagePayload(payload string, maxSize int) ([]byte, error) {
	raw, err := detect.DecodeBase64Image(payload)
	if err != nil {
		return nil, err
	}
	return detect.NormalizeImage(raw, maxSize)
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
