package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), DisableIdentity: true})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, WithTimeout(time.Second)), mr
}

type item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestTryGet_MissThenHit(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	_, ok, err := c.TryGet(ctx, KeyAllProducts)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, KeyAllProducts, []byte(`[]`), DefaultTTL))

	b, ok, err := c.TryGet(ctx, KeyAllProducts)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(b))
}

func TestPut_SetsTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	require.NoError(t, c.Put(ctx, KeyAllCategories, []byte(`[]`), DefaultTTL))
	assert.Equal(t, DefaultTTL, mr.TTL(KeyAllCategories))

	mr.FastForward(DefaultTTL + time.Second)

	_, ok, err := c.TryGet(ctx, KeyAllCategories)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	require.NoError(t, c.Put(ctx, KeyAllCategories, []byte(`[1]`), DefaultTTL))
	require.NoError(t, c.Put(ctx, KeyAllProducts, []byte(`[2]`), DefaultTTL))

	require.NoError(t, c.Invalidate(ctx, KeyAllProducts))
	assert.False(t, mr.Exists(KeyAllProducts))
	assert.True(t, mr.Exists(KeyAllCategories))

	// absent key and empty key list
	require.NoError(t, c.Invalidate(ctx, KeyAllProducts))
	require.NoError(t, c.Invalidate(ctx))
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	in := []item{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
	require.NoError(t, StoreJSON(ctx, c, KeyAllProducts, in, DefaultTTL))

	out, ok, err := LoadJSON[[]item](ctx, c, KeyAllProducts)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, out)

	require.NoError(t, mr.Set(KeyAllCategories, "not json"))
	_, ok, err = LoadJSON[[]item](ctx, c, KeyAllCategories)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestStoreDown(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	mr.Close()

	_, _, err := c.TryGet(ctx, KeyAllProducts)
	assert.ErrorIs(t, err, common.ErrorStoreUnavailable)

	err = c.Put(ctx, KeyAllProducts, []byte(`[]`), DefaultTTL)
	assert.ErrorIs(t, err, common.ErrorStoreUnavailable)

	err = c.Invalidate(ctx, KeyAllProducts)
	assert.ErrorIs(t, err, common.ErrorStoreUnavailable)
}
