package semantic

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force exact index over squared Euclidean
// distance. For a corpus of tens to low hundreds of chunks a linear scan
// beats any approximate structure, and results are exact.
type MemoryIndex struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
}

// NewMemoryIndex creates an index for vectors of the given dimension.
// dim 0 adopts the dimension of the first inserted vector.
func NewMemoryIndex(dim int) *MemoryIndex {
	return &MemoryIndex{dim: dim}
}

// Insert appends vectors, assigning sequential ids in input order.
func (m *MemoryIndex) Insert(_ context.Context, vectors [][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, v := range vectors {
		if m.dim == 0 {
			m.dim = len(v)
		}
		if len(v) != m.dim {
			return fmt.Errorf("insert vector %d: got dim %d, want %d: %w",
				i, len(v), m.dim, ErrDimensionMismatch)
		}
	}
	m.vectors = append(m.vectors, vectors...)
	return nil
}

// Search scans every stored vector and returns the k nearest by squared
// L2 distance, ascending. Ties keep insertion order.
func (m *MemoryIndex) Search(_ context.Context, vector []float32, k int) ([]Neighbor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.vectors) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(vector) != m.dim {
		return nil, fmt.Errorf("query: got dim %d, want %d: %w",
			len(vector), m.dim, ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, nil
	}

	neighbors := make([]Neighbor, len(m.vectors))
	for i, v := range m.vectors {
		neighbors[i] = Neighbor{ID: i, Distance: sqDist(v, vector)}
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})

	if k > len(neighbors) {
		k = len(neighbors)
	}
	return neighbors[:k], nil
}

// Len reports the number of stored vectors.
func (m *MemoryIndex) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors), nil
}

func sqDist(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
