// Package kv is the key-value persistence port used for bookmarks and the
// locally mirrored analytics list.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store persists opaque values by key. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns (nil, false, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// GetJSON decodes the value at key into v. It reports whether the key existed.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("kv: decode %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv: encode %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
