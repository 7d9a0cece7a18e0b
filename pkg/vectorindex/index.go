package vectorindex

import "errors"

// ErrDimensionMismatch is returned when a query vector's length does not match
// the dimension the index was built with.
var ErrDimensionMismatch = errors.New("vectorindex: query vector dimension mismatch")

// Result is a single nearest-neighbor hit. Id is the catalog position of the
// product the row was built from.
type Result struct {
	Id       int
	Distance float32
}

// Index is a read-only nearest-neighbor index over one embedding space.
// Implementations must be safe for concurrent Search calls.
type Index interface {
	// Search returns up to topK hits ordered by ascending distance.
	Search(query []float32, topK int) ([]Result, error)
	Dim() int
	Size() int
}
