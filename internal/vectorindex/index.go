// Package vectorindex implements an exact, exhaustive squared-L2 nearest-neighbor index.
//
// An Index is immutable after Build and safe for concurrent Search calls without locking.
package vectorindex

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/circulars/internal/domain"
)

// Index stores vectors row-major in a single contiguous slice.
type Index struct {
	dim  int
	rows int
	data []float32
}

// Build creates an index from vectors. The dimension is fixed by the first vector;
// any later vector of another length is a configuration error.
func Build(vectors [][]float32) (*Index, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: cannot build an index from zero vectors", domain.ErrConfiguration)
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: vectors must not be empty", domain.ErrConfiguration)
	}

	data := make([]float32, 0, dim*len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("insert row %d: %w", i, domain.NewDimMismatch(dim, len(v)))
		}
		data = append(data, v...)
	}
	return &Index{dim: dim, rows: len(vectors), data: data}, nil
}

// Dim returns the vector dimension.
func (ix *Index) Dim() int { return ix.dim }

// Len returns the number of stored rows.
func (ix *Index) Len() int { return ix.rows }

// vector returns a copy of the stored vector at row.
func (ix *Index) vector(row int) []float32 {
	if row < 0 || row >= ix.rows {
		return nil
	}
	return slices.Clone(ix.data[row*ix.dim : (row+1)*ix.dim])
}

// Search returns up to k rows ordered by ascending squared Euclidean distance.
// Equal distances keep row order. k larger than the index returns every row.
func (ix *Index) Search(query []float32, k int) ([]domain.Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrConfiguration, k)
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("search: %w", domain.NewDimMismatch(ix.dim, len(query)))
	}

	hits := make([]domain.Neighbor, ix.rows)
	for row := range ix.rows {
		hits[row] = domain.Neighbor{Row: row, Distance: ix.distance(row, query)}
	}
	slices.SortStableFunc(hits, func(a, b domain.Neighbor) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (ix *Index) distance(row int, query []float32) float32 {
	vec := ix.data[row*ix.dim : (row+1)*ix.dim]
	var sum float64
	for i, v := range vec {
		d := float64(v) - float64(query[i])
		sum += d * d
	}
	return float32(sum)
}
