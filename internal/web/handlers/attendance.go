package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mstanek/rollcall/internal/attendance"
	"github.com/mstanek/rollcall/internal/metrics"
)

// AttendanceHandler serves saving and listing of attendance records.
type AttendanceHandler struct {
	log *attendance.Log
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(attLog *attendance.Log) *AttendanceHandler {
	return &AttendanceHandler{log: attLog}
}

// SaveAttendanceRequest is the request body for saving a record. Students is
// a pointer so an absent key can be told apart from an empty class.
type SaveAttendanceRequest struct {
	Course   string    `json:"course"`
	Students *[]string `json:"students"`
}

// AttendanceListResponse is the listing response.
type AttendanceListResponse struct {
	Count   int                 `json:"count"`
	Records []attendance.Record `json:"records"`
}

// Save stores an attendance record. An empty student list is valid: a class
// where nobody was recognized still gets a record.
func (h *AttendanceHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Students == nil {
		respondError(w, http.StatusBadRequest, "students is required")
		return
	}

	record, err := h.log.Save(req.Course, *req.Students)
	if err != nil {
		if errors.Is(err, attendance.ErrMissingCourse) {
			respondError(w, http.StatusBadRequest, "course is required")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to save attendance")
		return
	}

	metrics.IncAttendanceSave()
	metrics.SetAttendanceRecords(h.log.Count())
	log.Printf("saved attendance %s: %d students", sanitizeForLog(record.ID), len(record.Students))

	respondJSON(w, http.StatusCreated, record)
}

// List returns attendance records in save order. The optional course query
// parameter filters by course.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	records := h.log.Records(r.URL.Query().Get("course"))
	if records == nil {
		records = []attendance.Record{}
	}

	respondJSON(w, http.StatusOK, AttendanceListResponse{
		Count:   len(records),
		Records: records,
	})
}
