package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/mstanek/rollcall/internal/config"
	"github.com/mstanek/rollcall/internal/detect"
	"github.com/mstanek/rollcall/internal/gallery"
	"github.com/mstanek/rollcall/internal/metrics"
)

// StudentsHandler serves enrollment and listing of students.
type StudentsHandler struct {
	config   *config.Config
	store    *gallery.Store
	detector *detect.Client
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(cfg *config.Config, store *gallery.Store, detector *detect.Client) *StudentsHandler {
	return &StudentsHandler{
		config:   cfg,
		store:    store,
		detector: detector,
	}
}

// RegisterRequest is the enrollment request body. Images are base64 encoded,
// raw or as data URLs.
type RegisterRequest struct {
	StudentID string   `json:"student_id"`
	Name      string   `json:"name"`
	Images    []string `json:"images"`
}

// RegisterResponse reports what an enrollment stored.
type RegisterResponse struct {
	StudentID      string `json:"student_id"`
	Name           string `json:"name"`
	ImagesReceived int    `json:"images_received"`
	Embeddings     int    `json:"embeddings"`
	Replaced       bool   `json:"replaced"`
}

// StudentListResponse is the listing response.
type StudentListResponse struct {
	Count    int                   `json:"count"`
	Students []gallery.SubjectInfo `json:"students"`
}

// Register enrolls a student from one or more face images. An image
// contributes an embedding only when the detector finds exactly one face in
// it; images with zero or several faces are skipped. Re-registering an id
// replaces the stored embeddings instead of extending them.
func (h *StudentsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Name = strings.TrimSpace(req.Name)
	if req.StudentID == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "student_id and name are required")
		return
	}
	if len(req.Images) == 0 {
		respondError(w, http.StatusBadRequest, "at least one image is required")
		return
	}

	var embeddings []gallery.Embedding
	skipped := 0
	for i, payload := range req.Images {
		data, err := decodeImagePayload(payload, h.config.Matching.MaxImageSize)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("image %d: %v", i, err))
			return
		}

		det, err := h.detector.DetectFaces(r.Context(), data)
		if err != nil {
			log.Printf("detector failed during enrollment: %v", err)
			respondError(w, http.StatusBadGateway, "face detector unavailable")
			return
		}

		if det.FacesCount != 1 {
			skipped++
			continue
		}
		embeddings = append(embeddings, det.Faces[0].Embedding)
	}

	if len(embeddings) == 0 {
		respondError(w, http.StatusBadRequest, "no usable face found in any image")
		return
	}

	replaced := false
	for _, s := range h.store.Subjects() {
		if s.ID == req.StudentID {
			replaced = true
			break
		}
	}

	if err := h.store.Enroll(req.StudentID, req.Name, embeddings); err != nil {
		switch {
		case errors.Is(err, gallery.ErrDimensionMismatch):
			respondError(w, http.StatusBadRequest, "embedding dimension does not match the configured model")
		case errors.Is(err, gallery.ErrInvalidEnrollment):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to enroll student")
		}
		return
	}

	metrics.IncEnrollment()
	metrics.SetGallerySize(h.store.Count(), h.store.EmbeddingCount())
	log.Printf("enrolled student %s (%s): %d embeddings from %d images, %d skipped",
		sanitizeForLog(req.StudentID), sanitizeForLog(req.Name), len(embeddings), len(req.Images), skipped)

	respondJSON(w, http.StatusCreated, RegisterResponse{
		StudentID:      req.StudentID,
		Name:           req.Name,
		ImagesReceived: len(req.Images),
		Embeddings:     len(embeddings),
		Replaced:       replaced,
	})
}

// List returns enrolled students in enrollment order. The optional q query
// parameter filters by name, ignoring case and diacritics.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	var students []gallery.SubjectInfo
	if q := r.URL.Query().Get("q"); q != "" {
		students = h.store.FindByName(q)
	} else {
		students = h.store.Subjects()
	}
	if students == nil {
		students = []gallery.SubjectInfo{}
	}

	respondJSON(w, http.StatusOK, StudentListResponse{
		Count:    len(students),
		Students: students,
	})
}
