package embedding

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	assert.Equal(t, "a b c", Preprocess("  a \n\t b   c  "))
	long := strings.Repeat("w ", 600)
	assert.Len(t, strings.Fields(Preprocess(long)), MaxInputWords)
	assert.Equal(t, "", Preprocess("   "))
}

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func TestHashingModel(t *testing.T) {
	m, err := NewHashingModel(DefaultDimension)
	require.NoError(t, err)
	ctx := context.Background()

	a, err := m.Embed(ctx, "Senior Go engineer with Kubernetes experience")
	require.NoError(t, err)
	require.Len(t, a, DefaultDimension)
	assert.InDelta(t, 1.0, norm(a), 1e-5)

	b, err := m.Embed(ctx, "  senior go   engineer with kubernetes experience ")
	require.NoError(t, err)
	assert.Equal(t, a, b, "preprocessing and case folding make these identical")

	c, err := m.Embed(ctx, "Pastry chef, french cuisine")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	empty, err := m.Embed(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, norm(empty))
}

func TestHashingModelEmbedManyAligned(t *testing.T) {
	m, err := NewHashingModel(64)
	require.NoError(t, err)
	ctx := context.Background()
	texts := []string{"alpha beta", "gamma", "alpha beta"}

	vecs, err := m.EmbedMany(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, v, vecs[i])
	}
}

func TestHashingModelRejectsDimension(t *testing.T) {
	_, err := NewHashingModel(0)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestHashingModelCanceledContext(t *testing.T) {
	m, _ := NewHashingModel(8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Embed(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLazyInitOnceConcurrent(t *testing.T) {
	var calls atomic.Int32
	l := NewLazy(func() (Embedder, error) {
		calls.Add(1)
		return NewHashingModel(16)
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Embed(context.Background(), "text")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 16, l.Dimension())
	assert.Equal(t, MaxInputWords, l.MaxInputTokens())
}

func TestLazyFailureIsModelUnavailable(t *testing.T) {
	l := NewLazy(func() (Embedder, error) { return nil, errors.New("weights missing") })

	require.ErrorIs(t, l.Load(), ErrModelUnavailable)
	_, err := l.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, ErrModelUnavailable)
	_, err = l.EmbedMany(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Equal(t, 0, l.Dimension())
}

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, false, errors.New("cache down")
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

type countingEmbedder struct {
	*HashingModel
	texts atomic.Int32
}

func (c *countingEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	c.texts.Add(int32(len(texts)))
	return c.HashingModel.EmbedMany(ctx, texts)
}

func TestCachedReusesVectors(t *testing.T) {
	hm, _ := NewHashingModel(32)
	inner := &countingEmbedder{HashingModel: hm}
	cache := &memCache{data: map[string][]byte{}}
	c := NewCached(inner, cache, HashingModelName, nil)
	ctx := context.Background()

	first, err := c.EmbedMany(ctx, []string{"go developer", "python developer"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.texts.Load())
	assert.Len(t, cache.data, 2)

	second, err := c.EmbedMany(ctx, []string{"python developer", "rust developer", "go  developer"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), inner.texts.Load(), "only the new text is embedded")
	assert.Equal(t, first[1], second[0])
	assert.Equal(t, first[0], second[2])

	one, err := c.Embed(ctx, "rust developer")
	require.NoError(t, err)
	assert.Equal(t, second[1], one)
}

func TestCachedBypassesBrokenCache(t *testing.T) {
	hm, _ := NewHashingModel(8)
	c := NewCached(hm, &memCache{data: map[string][]byte{}, failGet: true}, "m", nil)
	v, err := c.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Len(t, v, 8)
}

func TestVectorCodec(t *testing.T) {
	v := []float32{0, -1.5, 3.25, float32(math.Pi)}
	got, ok := decodeVector(encodeVector(v), len(v))
	require.True(t, ok)
	assert.Equal(t, v, got)

	_, ok = decodeVector([]byte{1, 2, 3}, 1)
	assert.False(t, ok)
}
