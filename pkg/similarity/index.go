package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrIndexNotBuilt     = errors.New("similarity index not built")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Hit is one search result. Position is the insertion order of the vector.
type Hit struct {
	Position int
	Score    float64
}

// Index is an exact inner-product index over L2-normalized vectors, built once per job.
// It is not safe for concurrent mutation.
type Index struct {
	dim     int
	vectors [][]float64
	built   bool
}

func NewIndex(dim int) *Index {
	return &Index{dim: dim}
}

// Build stores normalized copies of vectors, replacing any previous content.
func (x *Index) Build(vectors [][]float32) error {
	stored := make([][]float64, 0, len(vectors))
	for i, v := range vectors {
		if len(v) != x.dim {
			return fmt.Errorf("%w: vector %d has %d, index has %d", ErrDimensionMismatch, i, len(v), x.dim)
		}
		stored = append(stored, normalize(v))
	}
	x.vectors = stored
	x.built = true
	return nil
}

func (x *Index) Len() int { return len(x.vectors) }

// Scores returns one similarity percentage per stored vector, in insertion order.
func (x *Index) Scores(query []float32) ([]float64, error) {
	q, err := x.prepare(query)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x.vectors))
	for i, v := range x.vectors {
		out[i] = ToPercent(dot(q, v))
	}
	return out, nil
}

// Search returns the k best hits by descending score. k is clamped to the
// number of stored vectors; k <= 0 means all of them. Equal scores keep insertion order.
func (x *Index) Search(query []float32, k int) ([]Hit, error) {
	scores, err := x.Scores(query)
	if err != nil {
		return nil, err
	}
	if k <= 0 || k > len(scores) {
		k = len(scores)
	}
	hits := make([]Hit, len(scores))
	for i, s := range scores {
		hits[i] = Hit{Position: i, Score: s}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return hits[:k], nil
}

// percentPrecision drops float round-off left by normalize and dot, so an
// identical vector scores exactly 100.
const percentPrecision = 1e9

// ToPercent maps an inner product of unit vectors to [0,100].
func ToPercent(p float64) float64 {
	v := math.Round((p+1)*50*percentPrecision) / percentPrecision
	return math.Max(0, math.Min(100, v))
}

func (x *Index) prepare(query []float32) ([]float64, error) {
	if !x.built {
		return nil, ErrIndexNotBuilt
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(query), x.dim)
	}
	return normalize(query), nil
}

// normalize returns a unit-length float64 copy; the zero vector stays zero.
func normalize(v []float32) []float64 {
	out := make([]float64, len(v))
	var sum float64
	for i, f := range v {
		out[i] = float64(f)
		sum += out[i] * out[i]
	}
	if sum == 0 {
		return out
	}
	n := math.Sqrt(sum)
	for i := range out {
		out[i] /= n
	}
	return out
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
