package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kozaktomas/staff-clock/internal/facematch"
)

// EnrollmentCache keeps an in-memory snapshot of all enrollments.
// Enrollment is rare compared to matching, so the snapshot is loaded once and
// dropped whenever an enrollment changes. Returned slices are shared and must not be modified.
type EnrollmentCache struct {
	reader   EnrollmentReader
	minIndex int // 0 disables the HNSW look-alike index

	mu      sync.RWMutex
	loaded  bool
	gen     uint64
	entries []StoredEnrollment // sorted by StaffID
	index   *HNSWIndex
}

// NewEnrollmentCache creates a cache over reader. The HNSW look-alike index is built once
// the roster has at least minIndex enrollments.
func NewEnrollmentCache(reader EnrollmentReader, minIndex int) *EnrollmentCache {
	return &EnrollmentCache{
		reader:   reader,
		minIndex: minIndex,
	}
}

// Snapshot returns all enrollments sorted by staff id. This is the candidate set for matching.
func (c *EnrollmentCache) Snapshot(ctx context.Context) ([]StoredEnrollment, error) {
	entries, _, err := c.snapshot(ctx)
	return entries, err
}

// LookAlike is another staff member's enrollment close to a given embedding.
type LookAlike struct {
	StaffID  string  `json:"staff_id"`
	Distance float64 `json:"distance"`
}

// LookAlikes returns enrollments other than exclude within radius of embedding, nearest first.
// Large rosters are searched through the HNSW index, which can miss neighbours, so the
// result is advisory only. Matching always scans the full snapshot.
func (c *EnrollmentCache) LookAlikes(ctx context.Context, embedding []float32, exclude string, radius float64) ([]LookAlike, error) {
	entries, index, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var out []LookAlike
	if ids, dists, serr := searchIndex(index, embedding); serr == nil {
		for i, id := range ids {
			if id != exclude && dists[i] <= radius {
				out = append(out, LookAlike{StaffID: id, Distance: dists[i]})
			}
		}
	} else {
		for _, e := range entries {
			if e.StaffID == exclude {
				continue
			}
			d, derr := facematch.EuclideanDistance(embedding, e.Embedding)
			if derr == nil && d <= radius {
				out = append(out, LookAlike{StaffID: e.StaffID, Distance: d})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].StaffID < out[j].StaffID
	})
	return out, nil
}

func searchIndex(index *HNSWIndex, embedding []float32) ([]string, []float64, error) {
	if index == nil {
		return nil, nil, errors.New("no index")
	}
	// One extra neighbour because the excluded enrollment is usually the closest.
	return index.Search(embedding, HNSWLookAlikeK+1)
}

// Invalidate drops the snapshot. The next read reloads from the store.
func (c *EnrollmentCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.loaded = false
	c.entries = nil
	c.index = nil
}

// Rebuild reloads the snapshot and the HNSW index immediately.
// Returns the number of enrollments loaded.
func (c *EnrollmentCache) Rebuild(ctx context.Context) (int, error) {
	c.Invalidate()
	entries, _, err := c.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// IndexActive reports whether the current snapshot has an HNSW look-alike index.
func (c *EnrollmentCache) IndexActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index != nil
}

func (c *EnrollmentCache) snapshot(ctx context.Context) ([]StoredEnrollment, *HNSWIndex, error) {
	c.mu.RLock()
	if c.loaded {
		entries, index := c.entries, c.index
		c.mu.RUnlock()
		return entries, index, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	list, err := c.reader.ListEnrollments(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading enrollments: %w", err)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StaffID < list[j].StaffID })

	var index *HNSWIndex
	if c.minIndex > 0 && len(list) >= c.minIndex {
		index = NewHNSWIndex()
		index.Build(list)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// An enrollment changed while we were loading, so don't install a stale snapshot.
	if c.gen == gen {
		c.entries = list
		c.index = index
		c.loaded = true
	}
	return list, index, nil
}
