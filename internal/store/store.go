// Package store keeps named saves: a flat namespace of string keys mapping
// to serialized layouts.
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("save not found")

// Store is the key/value contract every backend implements. Get returns
// ErrNotFound for missing keys; Remove of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// ListKeys returns all keys in ascending order.
	ListKeys(ctx context.Context) ([]string, error)
	Close() error
}
