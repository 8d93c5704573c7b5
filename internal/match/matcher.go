// Package match answers identity queries against the gallery: given a probe
// embedding it finds the closest enrolled embedding under a distance
// threshold and reports which subject it belongs to.
package match

import (
	"fmt"

	"github.com/mstanek/rollcall/internal/constants"
	"github.com/mstanek/rollcall/internal/gallery"
)

// Result is a single identity match for a probe embedding. Similarity is
// 1 - distance and is deliberately not clamped: with distance-calibrated
// thresholds at or below 1 it stays in (0, 1], and a caller who passes a
// larger threshold sees an honest negative score instead of a floored one.
type Result struct {
	SubjectID  string  `json:"student_id"`
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
	Distance   float64 `json:"distance"`
}

// Index is the nearest-neighbor strategy behind the matcher. Nearest returns
// the enrolled embedding closest to the probe with distance strictly below
// threshold, or nil when nothing qualifies. Implementations must resolve
// equal distances to the earliest-enrolled candidate so results stay
// deterministic across runs.
type Index interface {
	Nearest(probe gallery.Embedding, threshold float64) (*Result, error)
}

// Matcher searches the gallery for the identity of probe embeddings.
type Matcher struct {
	store            *gallery.Store
	index            Index
	defaultThreshold float64
}

// NewMatcher creates a matcher over the store using the exact linear scan.
// A defaultThreshold of zero or less falls back to the package default.
func NewMatcher(store *gallery.Store, defaultThreshold float64) *Matcher {
	if defaultThreshold <= 0 {
		defaultThreshold = constants.DefaultMatchThreshold
	}
	return &Matcher{
		store:            store,
		index:            NewLinear(store),
		defaultThreshold: defaultThreshold,
	}
}

// EnableHNSW switches the matcher to the approximate HNSW index, re-ranking
// the given number of candidates per query with exact distances. Intended
// for galleries beyond classroom size; the linear scan stays the default.
func (m *Matcher) EnableHNSW(candidates int) {
	m.index = NewHNSW(m.store, candidates)
}

// DefaultThreshold returns the threshold used when a caller passes zero.
func (m *Matcher) DefaultThreshold() float64 {
	return m.defaultThreshold
}

// FindBestMatch returns the best match for the probe, or nil when no
// enrolled embedding lies strictly below the threshold. An empty gallery is
// a normal no-match, not an error. A threshold of zero or less selects the
// matcher's default. A probe of foreign dimensionality fails with
// gallery.ErrDimensionMismatch.
func (m *Matcher) FindBestMatch(probe gallery.Embedding, threshold float64) (*Result, error) {
	if threshold <= 0 {
		threshold = m.defaultThreshold
	}
	if m.store.IsEmpty() {
		return nil, nil
	}
	if dim := m.store.Dimension(); len(probe) != dim {
		return nil, fmt.Errorf("%w: probe has %d dimensions, gallery expects %d", gallery.ErrDimensionMismatch, len(probe), dim)
	}
	return m.index.Nearest(probe, threshold)
}

// FindAllMatches applies FindBestMatch to every probe in order. Probes
// without a qualifying match are omitted from the result, so the output may
// be shorter than the input.
func (m *Matcher) FindAllMatches(probes []gallery.Embedding, threshold float64) ([]Result, error) {
	results := make([]Result, 0, len(probes))
	for i, probe := range probes {
		res, err := m.FindBestMatch(probe, threshold)
		if err != nil {
			return nil, fmt.Errorf("matching probe %d: %w", i, err)
		}
		if res != nil {
			results = append(results, *res)
		}
	}
	return results, nil
}
