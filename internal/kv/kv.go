// Package kv is the key-value store used for image items, project
// publishing and pipe/rule registration.
//
// Items are hashes keyed like "glworb:<id>". Binary blobs live under plain
// string keys that an item's binary fields point at.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key or hash field does not exist.
var ErrNotFound = errors.New("key not found")

// Store is the subset of redis the annotator needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	HGet(ctx context.Context, key, field string) (string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	Close() error
}
