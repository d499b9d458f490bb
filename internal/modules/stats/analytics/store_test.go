package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mx-space/folio/internal/models"
)

func makeEvents(n int, start int64) []models.AnalyticsEvent {
	out := make([]models.AnalyticsEvent, n)
	for i := range out {
		out[i] = models.NewEvent(models.EventClick, "p", nil, time.UnixMilli(start+int64(i)))
	}
	return out
}

func eventStores(t *testing.T, retain int) map[string]EventStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return map[string]EventStore{
		"memory": NewMemoryStore(retain),
		"redis":  NewRedisStore(rdb, retain),
	}
}

func TestEventStoreRetainsNewest(t *testing.T) {
	ctx := context.Background()
	for name, store := range eventStores(t, 5) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Append(ctx, makeEvents(3, 1)))
			require.NoError(t, store.Append(ctx, makeEvents(4, 4)))
			require.NoError(t, store.Append(ctx, nil))

			got, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, got, 5)
			assert.Equal(t, int64(3), got[0].Timestamp)
			assert.Equal(t, int64(7), got[4].Timestamp)
		})
	}
}

func TestEventStoreEmptyList(t *testing.T) {
	ctx := context.Background()
	for name, store := range eventStores(t, 10) {
		t.Run(name, func(t *testing.T) {
			got, err := store.List(ctx)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}
