// Package kvstore provides the persistent string key-value store the client
// keeps its session and local caches in.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known keys.
const (
	KeyToken          = "token"
	KeyUser           = "user"
	KeyRecentlyPlayed = "recently_played"
	KeyTheme          = "theme"
)

// Store is an async-style get/set/remove primitive over string values.
// Missing keys report ok=false with a nil error. Writes are last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// ErrDecode marks a stored value that exists but is not valid JSON for the
// requested type. Read failures from the backend are returned unwrapped.
var ErrDecode = errors.New("decode")

// GetJSON decodes the value stored under key into dest. It reports false when
// the key is absent.
func GetJSON(ctx context.Context, s Store, key string, dest any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrDecode, key, err)
	}
	return true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
