package embedding

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Cache stores encoded vectors. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Cached puts a byte cache in front of an Embedder. Cache failures are logged
// and never fail an embedding call.
type Cached struct {
	inner  Embedder
	cache  Cache
	prefix string
	log    *zap.Logger
}

func NewCached(inner Embedder, cache Cache, model string, log *zap.Logger) *Cached {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{
		inner:  inner,
		cache:  cache,
		prefix: "emb:" + model + ":" + strconv.Itoa(inner.Dimension()) + ":",
		log:    log,
	}
}

func (c *Cached) Dimension() int      { return c.inner.Dimension() }
func (c *Cached) MaxInputTokens() int { return c.inner.MaxInputTokens() }

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := c.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (c *Cached) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var (
		missIdx   []int
		missTexts []string
	)
	for i, t := range texts {
		keys[i] = c.key(t)
		if v, ok := c.lookup(ctx, keys[i]); ok {
			out[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	if len(missIdx) == 0 {
		return out, nil
	}

	vecs, err := c.inner.EmbedMany(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(missTexts))
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		if err := c.cache.Set(ctx, keys[i], encodeVector(vecs[j])); err != nil {
			c.log.Warn("embedding cache set failed", zap.Error(err))
		}
	}
	return out, nil
}

func (c *Cached) lookup(ctx context.Context, key string) ([]float32, bool) {
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("embedding cache get failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	v, ok := decodeVector(raw, c.inner.Dimension())
	return v, ok
}

func (c *Cached) key(text string) string {
	return c.prefix + strconv.FormatUint(xxhash.Sum64String(Preprocess(text)), 16)
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(raw []byte, dim int) ([]float32, bool) {
	if len(raw) != 4*dim {
		return nil, false
	}
	v := make([]float32, dim)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return v, true
}
