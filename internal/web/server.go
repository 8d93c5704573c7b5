package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mstanek/rollcall/internal/attendance"
	"github.com/mstanek/rollcall/internal/config"
	"github.com/mstanek/rollcall/internal/detect"
	"github.com/mstanek/rollcall/internal/gallery"
	"github.com/mstanek/rollcall/internal/match"
	"github.com/mstanek/rollcall/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates a new web server around the shared gallery store,
// matcher, attendance log and detector client.
func NewServer(cfg *config.Config, store *gallery.Store, matcher *match.Matcher, attLog *attendance.Log, detector *detect.Client) *Server {
	r := chi.NewRouter()

	s := &Server{
		config: cfg,
		router: r,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.CORS())
	r.Use(middleware.SecurityHeaders())

	// Set up routes
	s.setupRoutes(store, matcher, attLog, detector)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
