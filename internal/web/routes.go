package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/mstanek/rollcall/internal/attendance"
	"github.com/mstanek/rollcall/internal/detect"
	"github.com/mstanek/rollcall/internal/gallery"
	"github.com/mstanek/rollcall/internal/match"
	"github.com/mstanek/rollcall/internal/metrics"
	"github.com/mstanek/rollcall/internal/web/handlers"
)

func (s *Server) setupRoutes(store *gallery.Store, matcher *match.Matcher, attLog *attendance.Log, detector *detect.Client) {
	// Create handlers
	studentsHandler := handlers.NewStudentsHandler(s.config, store, detector)
	recognizeHandler := handlers.NewRecognizeHandler(s.config, matcher, detector)
	attendanceHandler := handlers.NewAttendanceHandler(attLog)
	statsHandler := handlers.NewStatsHandler(s.config, store, attLog)
	readyHandler := handlers.NewReadyHandler(detector)

	// Liveness on a short path for load balancers, and under the API prefix
	// for everyone else.
	s.router.Get("/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)
		r.Get("/ready", readyHandler.Check)

		// Students (enrollment)
		r.Post("/students", studentsHandler.Register)
		r.Get("/students", studentsHandler.List)

		// Recognition
		r.Post("/recognize", recognizeHandler.Recognize)

		// Attendance
		r.Post("/attendance", attendanceHandler.Save)
		r.Get("/attendance", attendanceHandler.List)

		// Stats
		r.Get("/stats", statsHandler.Get)
	})

	// Prometheus scrape endpoint
	s.router.Handle("/metrics", metrics.Handler())
}
