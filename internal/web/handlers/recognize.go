package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/mstanek/rollcall/internal/config"
	"github.com/mstanek/rollcall/internal/detect"
	"github.com/mstanek/rollcall/internal/gallery"
	"github.com/mstanek/rollcall/internal/match"
	"github.com/mstanek/rollcall/internal/metrics"
)

// RecognizeHandler serves face recognition against the enrolled gallery.
type RecognizeHandler struct {
	config   *config.Config
	matcher  *match.Matcher
	detector *detect.Client
}

// NewRecognizeHandler creates a new recognize handler.
func NewRecognizeHandler(cfg *config.Config, matcher *match.Matcher, detector *detect.Client) *RecognizeHandler {
	return &RecognizeHandler{
		config:   cfg,
		matcher:  matcher,
		detector: detector,
	}
}

// RecognizeRequest carries one image and an optional distance threshold.
// A zero or absent threshold uses the configured default.
type RecognizeRequest struct {
	Image     string  `json:"image"`
	Threshold float64 `json:"threshold"`
}

// RecognizeResponse lists the students recognized in the image. Faces
// without a qualifying match are omitted, so matches can be shorter than
// faces_detected.
type RecognizeResponse struct {
	FacesDetected int            `json:"faces_detected"`
	Matches       []match.Result `json:"matches"`
}

// Recognize detects all faces in the posted image and matches each against
// the gallery.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req RecognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Image == "" {
		respondError(w, http.StatusBadRequest, "image is required")
		return
	}
	if req.Threshold < 0 {
		respondError(w, http.StatusBadRequest, "threshold must not be negative")
		return
	}

	data, err := decodeImagePayload(req.Image, h.config.Matching.MaxImageSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	det, err := h.detector.DetectFaces(r.Context(), data)
	if err != nil {
		log.Printf("detector failed during recognition: %v", err)
		respondError(w, http.StatusBadGateway, "face detector unavailable")
		return
	}

	probes := make([]gallery.Embedding, len(det.Faces))
	for i, face := range det.Faces {
		probes[i] = face.Embedding
	}

	results, err := h.matcher.FindAllMatches(probes, req.Threshold)
	if err != nil {
		if errors.Is(err, gallery.ErrDimensionMismatch) {
			respondError(w, http.StatusBadRequest, "embedding dimension does not match the configured model")
			return
		}
		respondError(w, http.StatusInternalServerError, "matching failed")
		return
	}
	if results == nil {
		results = []match.Result{}
	}

	metrics.ObserveRecognition(time.Since(started), len(results), max(det.FacesCount-len(results), 0))

	respondJSON(w, http.StatusOK, RecognizeResponse{
		FacesDetected: det.FacesCount,
		Matches:       results,
	})
}
