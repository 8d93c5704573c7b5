package match

import (
	"sync"

	"github.com/coder/hnsw"

	"github.com/mstanek/rollcall/internal/constants"
	"github.com/mstanek/rollcall/internal/gallery"
)

const (
	hnswMaxNeighbors = 16

	// Node keys encode (subject position << hnswKeyIndexBits | embedding
	// index), so smaller keys are earlier in enrollment order.
	hnswKeyIndexBits = 20
)

// subjectRef maps an HNSW node back to the subject it belongs to.
type subjectRef struct {
	id   string
	name string
}

// HNSW is an approximate index for galleries too large for the linear scan.
// It mirrors the exact semantics as closely as an ANN structure can: graph
// candidates are re-ranked with exact euclidean distances and equal
// distances resolve by node key, which encodes enrollment order. The graph
// is rebuilt lazily whenever the store version moves; recall is bounded by
// the candidate count, so the true nearest neighbor can in principle be
// missed on adversarial data.
type HNSW struct {
	store      *gallery.Store
	candidates int

	mu    sync.RWMutex
	graph *hnsw.Graph[uint64]
	refs  map[uint64]subjectRef
	size  int
	built uint64
}

var _ Index = (*HNSW)(nil)

// NewHNSW creates an HNSW index over the store. candidates is the number of
// approximate neighbors fetched and re-ranked per query; zero or less picks
// the default.
func NewHNSW(store *gallery.Store, candidates int) *HNSW {
	if candidates <= 0 {
		candidates = constants.DefaultHNSWCandidates
	}
	return &HNSW{
		store:      store,
		candidates: candidates,
	}
}

// Nearest searches the graph and returns the closest enrolled embedding
// strictly below threshold, or nil when nothing qualifies.
func (h *HNSW) Nearest(probe gallery.Embedding, threshold float64) (*Result, error) {
	h.ensureFresh()

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.size == 0 {
		return nil, nil
	}

	k := h.candidates
	if k > h.size {
		k = h.size
	}
	neighbors := h.graph.Search([]float32(probe), k)

	best := 0.0
	var bestKey uint64
	found := false
	for _, node := range neighbors {
		d := EuclideanDistance(probe, gallery.Embedding(node.Value))
		if d >= threshold {
			continue
		}
		if !found || d < best || (d == best && node.Key < bestKey) {
			found = true
			best = d
			bestKey = node.Key
		}
	}
	if !found {
		return nil, nil
	}

	ref := h.refs[bestKey]
	return &Result{
		SubjectID:  ref.id,
		Name:       ref.name,
		Similarity: 1 - best,
		Distance:   best,
	}, nil
}

// Size returns the number of indexed embeddings.
func (h *HNSW) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// ensureFresh rebuilds the graph when the store changed since the last
// build. An enrollment racing past the version check is picked up by the
// next query.
func (h *HNSW) ensureFresh() {
	version := h.store.Version()

	h.mu.RLock()
	fresh := h.graph != nil && h.built == version
	h.mu.RUnlock()
	if fresh {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.graph != nil && h.built == version {
		return
	}
	h.rebuild()
	h.built = version
}

// rebuild constructs a fresh graph from the store. Caller holds the write
// lock.
func (h *HNSW) rebuild() {
	g := hnsw.NewGraph[uint64]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	g.Distance = hnsw.EuclideanDistance

	refs := make(map[uint64]subjectRef)
	size := 0
	h.store.Walk(func(pos int, subj *gallery.Subject) bool {
		for i, emb := range subj.Embeddings {
			key := uint64(pos)<<hnswKeyIndexBits | uint64(i)
			g.Add(hnsw.MakeNode(key, []float32(emb.Clone())))
			refs[key] = subjectRef{id: subj.ID, name: subj.Name}
			size++
		}
		return true
	})

	h.graph = g
	h.refs = refs
	h.size = size
}
