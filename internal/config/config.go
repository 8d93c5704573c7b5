// Package config loads service configuration from environment variables and
// the embedded model profile registry.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mstanek/rollcall/internal/constants"
)

//go:embed models.yaml
var modelsYAML []byte

// DefaultModel is the profile used when FACE_MODEL is unset. It matches the
// dlib face_recognition pipeline most detector sidecars ship by default.
const DefaultModel = "dlib_resnet"

// Profile describes an embedding model the detector sidecar can serve. The
// dimension is enforced on every embedding entering the gallery; the
// threshold is the default maximum euclidean distance for a match.
type Profile struct {
	Dim         int     `yaml:"dim"`
	Threshold   float64 `yaml:"threshold"`
	Description string  `yaml:"description"`
}

type profileRegistry struct {
	Models map[string]Profile `yaml:"models"`
}

type Config struct {
	Detector DetectorConfig
	Matching MatchingConfig
	Web      WebConfig
}

type DetectorConfig struct {
	URL     string        // detector sidecar base URL
	Timeout time.Duration // per-request timeout
}

type MatchingConfig struct {
	Model          string  // active profile key
	Profile        Profile // resolved profile
	Threshold      float64 // default distance threshold for matching
	HNSWEnabled    bool
	HNSWCandidates int
	MaxImageSize   int // longest image side shipped to the detector
}

type WebConfig struct {
	Host string // empty binds all interfaces
	Port int
}

// Load builds the configuration from environment variables. Call
// godotenv.Load beforehand if a .env file should participate.
func Load() (*Config, error) {
	profiles, err := Profiles()
	if err != nil {
		return nil, err
	}

	model := envStr("FACE_MODEL", DefaultModel)
	profile, ok := profiles[model]
	if !ok {
		return nil, fmt.Errorf("unknown face model %q, known models: %v", model, profileNames(profiles))
	}

	threshold := envFloat("MATCH_THRESHOLD", profile.Threshold)
	if threshold <= 0 {
		return nil, fmt.Errorf("MATCH_THRESHOLD must be positive, got %v", threshold)
	}

	return &Config{
		Detector: DetectorConfig{
			URL:     envStr("DETECTOR_URL", "http://localhost:8000"),
			Timeout: time.Duration(envInt("DETECTOR_TIMEOUT_SECONDS", constants.DefaultDetectorTimeout)) * time.Second,
		},
		Matching: MatchingConfig{
			Model:          model,
			Profile:        profile,
			Threshold:      threshold,
			HNSWEnabled:    envBool("HNSW_ENABLED", false),
			HNSWCandidates: envInt("HNSW_CANDIDATES", constants.DefaultHNSWCandidates),
			MaxImageSize:   envInt("MAX_IMAGE_SIZE", constants.MaxImageSize),
		},
		Web: WebConfig{
			Host: envStr("WEB_HOST", ""),
			Port: envInt("WEB_PORT", constants.DefaultWebPort),
		},
	}, nil
}

// Profiles parses the embedded model profile registry.
func Profiles() (map[string]Profile, error) {
	var reg profileRegistry
	if err := yaml.Unmarshal(modelsYAML, &reg); err != nil {
		return nil, fmt.Errorf("parsing embedded models.yaml: %w", err)
	}
	if len(reg.Models) == 0 {
		return nil, errors.New("embedded models.yaml contains no models")
	}
	return reg.Models, nil
}

func profileNames(profiles map[string]Profile) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// envStr reads an environment variable with a fallback for unset or empty.
func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

// envBool reads an environment variable as a boolean. Accepts the forms
// strconv.ParseBool does ("1", "t", "true", ...).
func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}
