package vectorindex

import (
	"fmt"
	"sort"
)

// FlatIndex is an exact brute-force index over squared L2 distance. Rows are
// appended in catalog order, so the row position is the product id. All data
// lives in memory; Search never mutates.
type FlatIndex struct {
	dim     int
	vectors [][]float32
}

var _ Index = &FlatIndex{}

func NewFlatIndex(dim int) *FlatIndex {
	return &FlatIndex{dim: dim}
}

// Add appends a row. Row position becomes the id returned by Search.
func (x *FlatIndex) Add(vec []float32) error {
	if len(vec) != x.dim {
		return fmt.Errorf("%w: got %d, index dim %d", ErrDimensionMismatch, len(vec), x.dim)
	}
	x.vectors = append(x.vectors, vec)
	return nil
}

func (x *FlatIndex) Dim() int {
	return x.dim
}

func (x *FlatIndex) Size() int {
	return len(x.vectors)
}

func (x *FlatIndex) Search(query []float32, topK int) ([]Result, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: got %d, index dim %d", ErrDimensionMismatch, len(query), x.dim)
	}
	if topK <= 0 {
		return []Result{}, nil
	}

	results := make([]Result, 0, len(x.vectors))
	for i, row := range x.vectors {
		results = append(results, Result{Id: i, Distance: l2Squared(query, row)})
	}

	// Stable sort keeps insertion order on equal distances.
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Distance < results[b].Distance
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func l2Squared(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
