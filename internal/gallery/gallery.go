// Package gallery holds the in-memory store of enrolled subjects and their
// face embeddings. The store is the single source of truth for matching:
// subjects are keyed by a caller-assigned id, keep every embedding captured
// for them, and iterate in enrollment order so search results stay
// deterministic.
package gallery

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Embedding is a fixed-length face descriptor produced by the detector
// sidecar. Distances over embeddings are computed in float64.
type Embedding []float32

// Clone returns an independent copy of the embedding.
func (e Embedding) Clone() Embedding {
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}

// Subject is one enrolled person with all embeddings captured for them.
// A stored subject always has at least one embedding.
type Subject struct {
	ID         string
	Name       string
	Embeddings []Embedding
}

// SubjectInfo describes an enrolled subject without exposing embeddings.
type SubjectInfo struct {
	ID         string `json:"student_id"`
	Name       string `json:"name"`
	Embeddings int    `json:"embeddings"`
}

var (
	// ErrInvalidEnrollment is returned when an enrollment carries no usable
	// embeddings or misses the subject id or name.
	ErrInvalidEnrollment = errors.New("invalid enrollment")

	// ErrDimensionMismatch is returned when an embedding does not match the
	// gallery dimensionality. All embeddings in a gallery share one fixed
	// dimensionality; a mismatch means the caller mixed embedding models.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Store keeps enrolled subjects in memory for the lifetime of the process.
// All methods are safe for concurrent use; readers never observe a partially
// replaced subject.
type Store struct {
	mu       sync.RWMutex
	order    []string
	subjects map[string]*Subject
	dim      int
	fixedDim bool
	version  uint64
}

// NewStore creates an empty store. A dim greater than zero fixes the
// embedding dimensionality up front (typically from the configured model
// profile); dim zero adopts the dimensionality of the first enrollment.
func NewStore(dim int) *Store {
	return &Store{
		subjects: make(map[string]*Subject),
		dim:      dim,
		fixedDim: dim > 0,
	}
}

// Enroll stores the subject with the given embeddings, fully replacing any
// prior entry for the same id. Embeddings are never merged across calls and
// the display name is updated along with them. A re-enrolled subject keeps
// its original position in iteration order; new subjects are appended.
//
// Returns ErrInvalidEnrollment when id, name or embeddings are empty, and
// ErrDimensionMismatch when any embedding does not match the gallery
// dimensionality. Nothing is stored on error.
func (s *Store) Enroll(id, name string, embeddings []Embedding) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: subject id is empty", ErrInvalidEnrollment)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: subject name is empty", ErrInvalidEnrollment)
	}
	if len(embeddings) == 0 {
		return fmt.Errorf("%w: no embeddings for subject %q", ErrInvalidEnrollment, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dim
	for i, emb := range embeddings {
		if len(emb) == 0 {
			return fmt.Errorf("%w: embedding %d for subject %q is empty", ErrInvalidEnrollment, i, id)
		}
		if dim == 0 {
			dim = len(emb)
		}
		if len(emb) != dim {
			return fmt.Errorf("%w: embedding %d has %d dimensions, gallery expects %d", ErrDimensionMismatch, i, len(emb), dim)
		}
	}

	stored := make([]Embedding, len(embeddings))
	for i, emb := range embeddings {
		stored[i] = emb.Clone()
	}

	if _, ok := s.subjects[id]; !ok {
		s.order = append(s.order, id)
	}
	s.subjects[id] = &Subject{ID: id, Name: name, Embeddings: stored}
	s.dim = dim
	s.version++
	return nil
}

// Subjects returns a snapshot of all enrolled subjects in enrollment order,
// without their embeddings.
func (s *Store) Subjects() []SubjectInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SubjectInfo, 0, len(s.order))
	for _, id := range s.order {
		subj := s.subjects[id]
		out = append(out, SubjectInfo{ID: subj.ID, Name: subj.Name, Embeddings: len(subj.Embeddings)})
	}
	return out
}

// FindByName returns the subjects whose display name contains the query,
// compared case- and diacritics-insensitively. Order follows enrollment.
func (s *Store) FindByName(query string) []SubjectInfo {
	norm := NormalizeName(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []SubjectInfo
	for _, id := range s.order {
		subj := s.subjects[id]
		if strings.Contains(NormalizeName(subj.Name), norm) {
			out = append(out, SubjectInfo{ID: subj.ID, Name: subj.Name, Embeddings: len(subj.Embeddings)})
		}
	}
	return out
}

// IsEmpty reports whether no subject is enrolled. The matcher uses it to
// short-circuit searches into an immediate no-match.
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order) == 0
}

// Count returns the number of enrolled subjects.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// EmbeddingCount returns the total number of stored embeddings.
func (s *Store) EmbeddingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, subj := range s.subjects {
		total += len(subj.Embeddings)
	}
	return total
}

// Dimension returns the gallery embedding dimensionality, or zero while the
// store is empty and no dimensionality was configured.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

// Version returns a counter that changes with every mutation. Derived
// structures such as search indexes use it to detect staleness.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Walk calls fn for every subject in enrollment order, with the subject's
// position, until fn returns false. The walk holds the read lock: fn must
// not mutate the store and must not retain the subject past the call.
func (s *Store) Walk(fn func(pos int, subj *Subject) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for pos, id := range s.order {
		if !fn(pos, s.subjects[id]) {
			return
		}
	}
}

// Clear removes all subjects. A configured dimensionality survives; an
// adopted one is reset so the next enrollment adopts afresh.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.subjects = make(map[string]*Subject)
	if !s.fixedDim {
		s.dim = 0
	}
	s.version++
}
