package match

import (
	"math"

	"github.com/mstanek/rollcall/internal/gallery"
)

// Linear is the exact brute-force index: it scans every enrolled embedding
// in enrollment order. At classroom gallery sizes (tens to low hundreds of
// subjects, a handful of embeddings each) this is the reference strategy.
type Linear struct {
	store *gallery.Store
}

var _ Index = (*Linear)(nil)

// NewLinear creates a linear index over the store.
func NewLinear(store *gallery.Store) *Linear {
	return &Linear{store: store}
}

// Nearest scans all embeddings and keeps the strictly smallest distance
// below threshold. A candidate only replaces the current best when strictly
// closer, so equal distances keep the earliest-enrolled subject.
func (l *Linear) Nearest(probe gallery.Embedding, threshold float64) (*Result, error) {
	best := math.Inf(1)
	var found *Result

	l.store.Walk(func(_ int, subj *gallery.Subject) bool {
		for _, emb := range subj.Embeddings {
			d := EuclideanDistance(probe, emb)
			if d < best && d < threshold {
				best = d
				found = &Result{
					SubjectID:  subj.ID,
					Name:       subj.Name,
					Similarity: 1 - d,
					Distance:   d,
				}
			}
		}
		return true
	})

	return found, nil
}
