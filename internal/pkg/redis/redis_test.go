package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGetSetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, c.Del(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := Connect("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = Connect("::not a url")
	assert.Error(t, err)
}
