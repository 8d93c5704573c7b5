package handlers

import (
	"net/http"

	"github.com/mstanek/rollcall/internal/attendance"
	"github.com/mstanek/rollcall/internal/config"
	"github.com/mstanek/rollcall/internal/gallery"
)

// StatsHandler reports an operational snapshot of the service.
type StatsHandler struct {
	config *config.Config
	store  *gallery.Store
	log    *attendance.Log
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(cfg *config.Config, store *gallery.Store, attLog *attendance.Log) *StatsHandler {
	return &StatsHandler{
		config: cfg,
		store:  store,
		log:    attLog,
	}
}

// StatsResponse represents the statistics response.
type StatsResponse struct {
	Subjects          int     `json:"subjects"`
	Embeddings        int     `json:"embeddings"`
	AttendanceRecords int     `json:"attendance_records"`
	Model             string  `json:"model"`
	Dimension         int     `json:"dimension"`
	Threshold         float64 `json:"threshold"`
	HNSW              bool    `json:"hnsw"`
}

// Get returns gallery and attendance counters together with the active
// matching configuration.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, StatsResponse{
		Subjects:          h.store.Count(),
		Embeddings:        h.store.EmbeddingCount(),
		AttendanceRecords: h.log.Count(),
		Model:             h.config.Matching.Model,
		Dimension:         h.store.Dimension(),
		Threshold:         h.config.Matching.Threshold,
		HNSW:              h.config.Matching.HNSWEnabled,
	})
}
