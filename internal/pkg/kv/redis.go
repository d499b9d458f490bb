package kv

import (
	"context"

	pkgredis "github.com/mx-space/folio/internal/pkg/redis"
)

const redisKeyPrefix = "folio:kv:"

// Redis is a Store backed by plain Redis string keys.
type Redis struct {
	rc *pkgredis.Client
}

func NewRedis(rc *pkgredis.Client) *Redis {
	return &Redis{rc: rc}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := r.rc.Get(ctx, redisKeyPrefix+key)
	if err != nil || !ok {
		return nil, false, err
	}
	return []byte(v), true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.rc.Set(ctx, redisKeyPrefix+key, value, 0)
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.rc.Del(ctx, redisKeyPrefix+key)
}
