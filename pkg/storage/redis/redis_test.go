package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/artem13815/shortlist/pkg/embedding"
)

// testCache connects to TEST_REDIS_ADDR; the tests are skipped without it.
func testCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Connect(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, ttl)
}

func TestCache_SetGet(t *testing.T) {
	c := testCache(t, time.Minute)
	ctx := context.Background()
	key := "test:emb:" + uuid.NewString()

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, []byte{1, 2, 3}))
	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)

	ttl := c.client.TTL(ctx, key).Val()
	assert.True(t, ttl > 0 && ttl <= time.Minute)
}

func TestCache_RejectsEmptyKey(t *testing.T) {
	c := NewCache(nil, time.Minute)
	_, _, err := c.Get(context.Background(), "")
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), "", nil))
}

func TestCache_BacksCachedEmbedder(t *testing.T) {
	c := testCache(t, time.Minute)
	model, err := embedding.NewHashingModel(64)
	require.NoError(t, err)
	cached := embedding.NewCached(model, c, "test-"+uuid.NewString(), zaptest.NewLogger(t))

	first, err := cached.Embed(context.Background(), "golang developer")
	require.NoError(t, err)
	second, err := cached.Embed(context.Background(), "golang developer")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
