// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Matching constants
const (
	// DefaultMatchThreshold is the default maximum euclidean distance at which
	// two face embeddings are considered the same person. Lower values =
	// stricter matching. Calibrated for the dlib_resnet profile.
	DefaultMatchThreshold = 0.6

	// DefaultHNSWCandidates is the number of approximate neighbors the HNSW
	// index retrieves and re-ranks with exact distances per query.
	DefaultHNSWCandidates = 32
)

// Image constants
const (
	// MaxImageSize is the maximum dimension (width or height) an image may
	// have before it is downscaled for the detector sidecar.
	MaxImageSize = 1920
)

// Web constants
const (
	// DefaultWebPort is the port the API server listens on.
	DefaultWebPort = 8090

	// DefaultDetectorTimeout is the detector request timeout in seconds.
	DefaultDetectorTimeout = 30
)
