package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgredis "github.com/mx-space/folio/internal/pkg/redis"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"file":   NewFile(filepath.Join(t.TempDir(), "nested", "kv.json")),
		"redis":  NewRedis(pkgredis.New(rdb)),
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "blog-bookmarks")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "blog-bookmarks", []byte(`[{"slug":"a"}]`)))
			v, ok, err := s.Get(ctx, "blog-bookmarks")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `[{"slug":"a"}]`, string(v))

			require.NoError(t, s.Delete(ctx, "blog-bookmarks"))
			_, ok, err = s.Get(ctx, "blog-bookmarks")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Delete(ctx, "never-set"))
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	var got []string
	ok, err := GetJSON(ctx, s, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(ctx, s, "k", []string{"x", "y"}))
	ok, err = GetJSON(ctx, s, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, got)

	require.NoError(t, s.Set(ctx, "bad", []byte("{")))
	_, err = GetJSON(ctx, s, "bad", &got)
	assert.Error(t, err)
}

func TestRedisPrefixesKeys(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewRedis(pkgredis.New(rdb))

	require.NoError(t, s.Set(ctx, "blog-analytics", []byte(`[]`)))
	raw, err := mr.Get("folio:kv:blog-analytics")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
	assert.False(t, mr.Exists("blog-analytics"))

	require.NoError(t, s.Delete(ctx, "blog-analytics"))
	assert.False(t, mr.Exists("folio:kv:blog-analytics"))
}

func TestFilePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.json")

	require.NoError(t, NewFile(path).Set(ctx, "a", []byte(`1`)))
	require.NoError(t, NewFile(path).Set(ctx, "b", []byte(`"two"`)))

	v, ok, err := NewFile(path).Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", string(v))

	assert.Error(t, NewFile(path).Set(ctx, "c", []byte("not json")))

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	_, _, err = NewFile(path).Get(ctx, "a")
	assert.Error(t, err)
}
