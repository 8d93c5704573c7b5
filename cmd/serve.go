package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mstanek/rollcall/internal/attendance"
	"github.com/mstanek/rollcall/internal/config"
	"github.com/mstanek/rollcall/internal/detect"
	"github.com/mstanek/rollcall/internal/gallery"
	"github.com/mstanek/rollcall/internal/match"
	"github.com/mstanek/rollcall/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance server",
	Long: `Start the rollcall HTTP server.

The server keeps the student gallery and attendance records in memory and
sends images to the face detector sidecar configured by DETECTOR_URL.
The embedding model is selected with FACE_MODEL; it fixes the gallery
dimensionality and the default match threshold.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}

	store := gallery.NewStore(cfg.Matching.Profile.Dim)
	matcher := match.NewMatcher(store, cfg.Matching.Threshold)
	if cfg.Matching.HNSWEnabled {
		matcher.EnableHNSW(cfg.Matching.HNSWCandidates)
		fmt.Printf("HNSW index enabled (%d candidates per search)\n", cfg.Matching.HNSWCandidates)
	}
	attLog := attendance.NewLog()
	detector := detect.NewClient(cfg.Detector.URL, cfg.Matching.Model, cfg.Detector.Timeout)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := detector.Ping(pingCtx); err != nil {
		fmt.Printf("Warning: detector sidecar not reachable at %s: %v\n", cfg.Detector.URL, err)
		fmt.Println("Enrollment and recognition will fail until it comes up.")
	}
	cancelPing()

	server := web.NewServer(cfg, store, matcher, attLog, detector)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Model %s (%d dimensions), match threshold %.2f\n",
		cfg.Matching.Model, cfg.Matching.Profile.Dim, cfg.Matching.Threshold)
	fmt.Printf("Starting rollcall server on http://localhost:%d\n", cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
