// Package semantic stores passage embeddings and answers nearest-neighbor
// queries over them. The default backend is an exact in-memory index;
// a Qdrant-backed implementation is available behind the same interface
// for corpora that outgrow a single process.
package semantic

import (
	"context"
	"errors"
)

// Errors shared by all index backends.
var (
	// ErrEmptyIndex is returned by Search before anything was inserted.
	// Callers treat it as "no grounding available", not as a fault.
	ErrEmptyIndex = errors.New("semantic: index is empty")
	// ErrDimensionMismatch means a vector does not match the index
	// dimension. Always a caller bug.
	ErrDimensionMismatch = errors.New("semantic: vector dimension mismatch")
)

// Neighbor is a single nearest-neighbor hit. ID is the insertion-order
// sequence number of the stored vector; Distance is squared Euclidean.
type Neighbor struct {
	ID       int
	Distance float32
}

// Index is a store of fixed-dimension vectors addressable by insertion
// order. Implementations are safe for concurrent reads once built.
type Index interface {
	// Insert appends vectors, assigning sequential ids.
	Insert(ctx context.Context, vectors [][]float32) error
	// Search returns up to k neighbors ordered by ascending distance.
	// k larger than the index returns everything; an empty index
	// returns ErrEmptyIndex.
	Search(ctx context.Context, vector []float32, k int) ([]Neighbor, error)
	// Len reports how many vectors are stored.
	Len(ctx context.Context) (int, error)
}
