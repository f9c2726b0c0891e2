package database

import (
	"errors"
	"math"
	"sync"

	"github.com/coder/hnsw"

	"github.com/kozaktomas/staff-clock/internal/facematch"
)

// HNSWIndex wraps the HNSW graph for approximate enrollment search.
// Keys are staff ids; distances are euclidean to match the acceptance policy.
// Results may miss the true nearest neighbours, so the index never feeds a match decision.
type HNSWIndex struct {
	graph *hnsw.Graph[string]
	mu    sync.RWMutex
}

// NewHNSWIndex creates a new empty HNSW index.
func NewHNSWIndex() *HNSWIndex {
	return &HNSWIndex{}
}

// Build builds the index from a slice of enrollments, replacing any previous graph.
func (h *HNSWIndex) Build(enrollments []StoredEnrollment) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(enrollments) == 0 {
		h.graph = nil
		return
	}

	g := hnsw.NewGraph[string]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1 / math.Log(float64(HNSWMaxNeighbors))
	g.EfSearch = HNSWEfSearch
	g.Distance = hnsw.EuclideanDistance

	for i := range enrollments {
		enr := &enrollments[i]
		if len(enr.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(enr.StaffID, enr.Embedding))
	}

	h.graph = g
}

// Search finds the k nearest enrollments to the query embedding.
// Returns staff ids and their exact euclidean distances.
func (h *HNSWIndex) Search(query []float32, k int) ([]string, []float64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil {
		return nil, nil, errors.New("index not initialized")
	}

	neighbors := h.graph.Search(query, k)

	ids := make([]string, 0, len(neighbors))
	distances := make([]float64, 0, len(neighbors))
	for _, n := range neighbors {
		d, err := facematch.EuclideanDistance(query, n.Value)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, n.Key)
		distances = append(distances, d)
	}

	return ids, distances, nil
}
