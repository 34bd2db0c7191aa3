package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/artem13815/shortlist/pkg/nlp"
)

const (
	DefaultDimension = 384
	HashingModelName = "hashing-v1"
)

// HashingModel is the local in-process embedding model: signed feature hashing
// of unigrams and bigrams, log-scaled and L2-normalized. It has no mutable state.
type HashingModel struct {
	dim int
}

func NewHashingModel(dim int) (*HashingModel, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrModelUnavailable, dim)
	}
	return &HashingModel{dim: dim}, nil
}

func (m *HashingModel) Dimension() int      { return m.dim }
func (m *HashingModel) MaxInputTokens() int { return MaxInputWords }
func (m *HashingModel) Name() string        { return HashingModelName }

func (m *HashingModel) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.encode(Preprocess(text)), nil
}

func (m *HashingModel) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *HashingModel) encode(text string) []float32 {
	acc := make([]float64, m.dim)
	words := nlp.Words(text)
	for i, w := range words {
		m.add(acc, w)
		if i > 0 {
			m.add(acc, words[i-1]+" "+w)
		}
	}

	var norm float64
	for i, v := range acc {
		if v == 0 {
			continue
		}
		// dampen frequent terms, keep the sign
		s := math.Copysign(math.Log1p(math.Abs(v)), v)
		acc[i] = s
		norm += s * s
	}
	out := make([]float32, m.dim)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out
}

func (m *HashingModel) add(acc []float64, feature string) {
	h := xxhash.Sum64String(feature)
	idx := h % uint64(m.dim)
	if h>>63 == 1 {
		acc[idx]--
		return
	}
	acc[idx]++
}
