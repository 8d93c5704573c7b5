package handlers

import (
	"net/http"

	"github.com/mstanek/rollcall/internal/detect"
)

// ReadyHandler reports whether the service can actually recognize faces,
// which requires the detector sidecar to be up with its models loaded.
type ReadyHandler struct {
	detector *detect.Client
}

// NewReadyHandler creates a new readiness handler.
func NewReadyHandler(detector *detect.Client) *ReadyHandler {
	return &ReadyHandler{
		detector: detector,
	}
}

// Check pings the detector sidecar. 503 until it answers.
func (h *ReadyHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.detector.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "face detector not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"model":  h.detector.Model(),
	})
}
